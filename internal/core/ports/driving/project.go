package driving

import (
	"context"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

// ProjectService manages project registrations.
type ProjectService interface {
	// Create registers a project, deriving its ID from the name.
	// Registering an existing name updates its details but keeps its ID and CreatedAt.
	Create(ctx context.Context, project domain.Project) (*domain.Project, error)

	// Get retrieves a project by ID.
	Get(ctx context.Context, id string) (*domain.Project, error)

	// List returns all projects.
	List(ctx context.Context) ([]domain.Project, error)

	// SetStatus changes a project's lifecycle state.
	SetStatus(ctx context.Context, id string, status domain.ProjectStatus) error
}
