package driving

import (
	"context"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

// IngestRequest describes an uploaded status report.
type IngestRequest struct {
	// Filename is used for format detection and kept on the snapshot.
	Filename string

	// Content is the raw file bytes.
	Content []byte

	// ProjectName overrides the project name found in the report.
	ProjectName string
}

// SnapshotService ingests and retrieves snapshots.
type SnapshotService interface {
	// Ingest extracts a snapshot from a report file and saves it.
	// JSON files are imported as-is; other formats need an LLM for extraction.
	Ingest(ctx context.Context, req IngestRequest) (*domain.Snapshot, error)

	// Import saves a snapshot document that is already structured.
	Import(ctx context.Context, req IngestRequest) (*domain.Snapshot, error)

	// Get retrieves a snapshot by ID.
	Get(ctx context.Context, id string) (*domain.Snapshot, error)

	// List returns the snapshots of a project in report order.
	List(ctx context.Context, projectID string) ([]domain.Snapshot, error)

	// Previous returns the snapshot preceding the given one.
	// Returns domain.ErrNoPreviousSnapshot if it is the first.
	Previous(ctx context.Context, snapshotID string) (*domain.Snapshot, error)
}
