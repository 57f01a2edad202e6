package driving

import (
	"context"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

// RiskClassifier maps a KPI delta to classified risks.
// An empty classification with a nil error means no risks were found;
// failures are always reported as *domain.ClassificationError.
type RiskClassifier interface {
	Classify(ctx context.Context, current domain.KPIs, delta domain.KPIDelta) (domain.Classification, error)
}

// Comparison is the diff and classification of one snapshot pair.
type Comparison struct {
	Previous       *domain.Snapshot
	Current        *domain.Snapshot
	Diff           domain.SnapshotDiff
	Classification *domain.Classification

	// Err is set when classification failed; Diff is still valid.
	Err error
}

// CompareService compares snapshots and classifies their risks.
type CompareService interface {
	// Compare diffs two stored snapshots and classifies the KPI delta.
	Compare(ctx context.Context, currentID, previousID string) (*Comparison, error)

	// CompareLatest compares the two most recent snapshots of a project.
	// Returns domain.ErrNoPreviousSnapshot when fewer than two exist.
	CompareLatest(ctx context.Context, projectID string) (*Comparison, error)

	// RefreshRisks classifies every consecutive snapshot pair of a project.
	// Per-pair failures are carried in Comparison.Err; the returned error is
	// reserved for storage failures.
	RefreshRisks(ctx context.Context, projectID string) ([]Comparison, error)

	// RiskSummaries returns the dashboard row of each consecutive pair with a
	// cached classification, without classifying anything.
	RiskSummaries(ctx context.Context, projectID string) ([]domain.RiskSummary, error)
}
