package driven

import (
	"context"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

// SummaryStore keeps the audit trail of generated executive summaries.
type SummaryStore interface {
	// Save appends a summary to the audit trail.
	Save(ctx context.Context, summary *domain.ExecutiveSummary) error

	// List returns a project's summaries, newest first.
	List(ctx context.Context, projectID string) ([]domain.ExecutiveSummary, error)
}
