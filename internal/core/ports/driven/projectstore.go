package driven

import (
	"context"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

// ProjectStore persists project registrations.
type ProjectStore interface {
	// Save stores or updates a project.
	Save(ctx context.Context, project domain.Project) error

	// Get retrieves a project by ID.
	// Returns domain.ErrNotFound if the project does not exist.
	Get(ctx context.Context, id string) (*domain.Project, error)

	// Delete removes a project.
	Delete(ctx context.Context, id string) error

	// List returns all projects ordered by name.
	List(ctx context.Context) ([]domain.Project, error)
}
