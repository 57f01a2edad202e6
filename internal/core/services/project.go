package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
)

// Ensure ProjectService implements the interface.
var _ driving.ProjectService = (*ProjectService)(nil)

// ProjectService manages project registrations.
type ProjectService struct {
	projectStore driven.ProjectStore
	now          func() time.Time
}

// NewProjectService creates a new project service.
func NewProjectService(projectStore driven.ProjectStore) *ProjectService {
	return &ProjectService{
		projectStore: projectStore,
		now:          time.Now,
	}
}

// Create registers a project or updates an existing one with the same name.
func (s *ProjectService) Create(ctx context.Context, project domain.Project) (*domain.Project, error) {
	project.Name = strings.TrimSpace(project.Name)
	id := domain.ProjectID(project.Name)
	if id == "" {
		return nil, fmt.Errorf("%w: project name is required", domain.ErrInvalidInput)
	}
	project.ID = id

	if project.StartDate != "" {
		date, ok := domain.NormaliseReportDate(project.StartDate)
		if !ok {
			return nil, fmt.Errorf("%w: start date %q", domain.ErrInvalidInput, project.StartDate)
		}
		project.StartDate = date
	}
	if project.Status == "" {
		project.Status = domain.ProjectStatusActive
	}
	if !project.Status.IsValid() {
		return nil, fmt.Errorf("%w: project status %q", domain.ErrInvalidInput, project.Status)
	}

	existing, err := s.projectStore.Get(ctx, id)
	switch {
	case err == nil:
		project.CreatedAt = existing.CreatedAt
	case errors.Is(err, domain.ErrNotFound):
		project.CreatedAt = s.now()
	default:
		return nil, fmt.Errorf("loading project: %w", err)
	}

	if err := s.projectStore.Save(ctx, project); err != nil {
		return nil, fmt.Errorf("saving project: %w", err)
	}
	return &project, nil
}

// Get retrieves a project by ID.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.projectStore.Get(ctx, id)
}

// List returns all projects.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.projectStore.List(ctx)
}

// SetStatus changes a project's lifecycle state.
func (s *ProjectService) SetStatus(ctx context.Context, id string, status domain.ProjectStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: project status %q", domain.ErrInvalidInput, status)
	}
	project, err := s.projectStore.Get(ctx, id)
	if err != nil {
		return err
	}
	project.Status = status
	if err := s.projectStore.Save(ctx, *project); err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

// ensureProject registers a project by name unless it already exists.
// It returns the project ID.
func ensureProject(ctx context.Context, store driven.ProjectStore, name string, now time.Time) (string, error) {
	id := domain.ProjectID(name)
	if id == "" {
		return "", fmt.Errorf("%w: project name is required", domain.ErrInvalidInput)
	}
	_, err := store.Get(ctx, id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("loading project: %w", err)
	}
	project := domain.Project{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Status:    domain.ProjectStatusActive,
		CreatedAt: now,
	}
	if err := store.Save(ctx, project); err != nil {
		return "", fmt.Errorf("saving project: %w", err)
	}
	return id, nil
}
