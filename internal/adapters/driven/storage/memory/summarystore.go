package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
)

// Ensure SummaryStore implements the interface.
var _ driven.SummaryStore = (*SummaryStore)(nil)

// SummaryStore is an in-memory implementation of driven.SummaryStore.
type SummaryStore struct {
	mu        sync.RWMutex
	summaries map[string][]domain.ExecutiveSummary
}

// NewSummaryStore creates a new in-memory summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{
		summaries: make(map[string][]domain.ExecutiveSummary),
	}
}

// Save appends a summary to the project's audit trail.
func (s *SummaryStore) Save(_ context.Context, summary *domain.ExecutiveSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summary.ProjectID] = append(s.summaries[summary.ProjectID], *summary)
	return nil
}

// List returns a project's summaries, newest first.
func (s *SummaryStore) List(_ context.Context, projectID string) ([]domain.ExecutiveSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.ExecutiveSummary, len(s.summaries[projectID]))
	copy(result, s.summaries[projectID])
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].GeneratedAt.After(result[j].GeneratedAt)
	})
	return result, nil
}
