package memory

import (
	"context"
	"sync"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.Snapshot
	byProject map[string][]string
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]domain.Snapshot),
		byProject: make(map[string][]string),
	}
}

// Save stores a new snapshot. Existing IDs are rejected.
func (s *SnapshotStore) Save(_ context.Context, snapshot *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.snapshots[snapshot.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.snapshots[snapshot.ID] = *snapshot
	s.byProject[snapshot.ProjectID] = append(s.byProject[snapshot.ProjectID], snapshot.ID)
	return nil
}

// Get retrieves a snapshot by ID.
func (s *SnapshotStore) Get(_ context.Context, id string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &snapshot, nil
}

// List returns the snapshots of a project in report order.
func (s *SnapshotStore) List(_ context.Context, projectID string) ([]domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(projectID), nil
}

func (s *SnapshotStore) listLocked(projectID string) []domain.Snapshot {
	ids := s.byProject[projectID]
	result := make([]domain.Snapshot, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.snapshots[id])
	}
	domain.SortSnapshots(result)
	return result
}

// Latest returns the most recent snapshot of a project.
func (s *SnapshotStore) Latest(_ context.Context, projectID string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.listLocked(projectID)
	if len(list) == 0 {
		return nil, domain.ErrNotFound
	}
	return &list[len(list)-1], nil
}

// Previous returns the latest snapshot strictly before the given one.
func (s *SnapshotStore) Previous(_ context.Context, snapshot *domain.Snapshot) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.listLocked(snapshot.ProjectID)
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].ID != snapshot.ID && list[i].Before(snapshot) {
			return &list[i], nil
		}
	}
	return nil, domain.ErrNotFound
}
