package driven

import (
	"context"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

// SnapshotStore persists ingested snapshots.
// Snapshots are immutable: Save never overwrites.
type SnapshotStore interface {
	// Save stores a new snapshot.
	// Returns domain.ErrAlreadyExists if a snapshot with the same ID is stored.
	Save(ctx context.Context, snapshot *domain.Snapshot) error

	// Get retrieves a snapshot by ID.
	// Returns domain.ErrNotFound if the snapshot does not exist.
	Get(ctx context.Context, id string) (*domain.Snapshot, error)

	// List returns the snapshots of a project in (report_date, uploaded_at) order.
	List(ctx context.Context, projectID string) ([]domain.Snapshot, error)

	// Latest returns the most recent snapshot of a project.
	// Returns domain.ErrNotFound if the project has no snapshots.
	Latest(ctx context.Context, projectID string) (*domain.Snapshot, error)

	// Previous returns the latest snapshot strictly before the given one
	// in (report_date, uploaded_at) order.
	// Returns domain.ErrNotFound if there is none.
	Previous(ctx context.Context, snapshot *domain.Snapshot) (*domain.Snapshot, error)
}
