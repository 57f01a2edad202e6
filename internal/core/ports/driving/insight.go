package driving

import (
	"context"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

// InsightService produces LLM-written narratives over stored snapshots.
// All methods return domain.ErrLLMUnavailable when no LLM is configured.
type InsightService interface {
	// Summarise writes an executive summary of the selected snapshots
	// in the given tone and records it in the audit trail.
	// An empty snapshotIDs selects every snapshot of the project.
	Summarise(ctx context.Context, projectID string, snapshotIDs []string, tone domain.Tone) (*domain.ExecutiveSummary, error)

	// Summaries returns the audit trail of a project, newest first.
	Summaries(ctx context.Context, projectID string) ([]domain.ExecutiveSummary, error)

	// Insights lists cross-snapshot trends as bullet points.
	Insights(ctx context.Context, projectID string, snapshotIDs []string) ([]string, error)

	// SuggestRisks proposes risks not yet tracked by a snapshot.
	SuggestRisks(ctx context.Context, snapshotID string) ([]domain.SuggestedRisk, error)

	// Search answers a free-text question across all stored snapshots.
	Search(ctx context.Context, question string) (string, error)
}
