package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
)

// Ensure RiskCacheStore implements the interface.
var _ driven.RiskCacheStore = (*RiskCacheStore)(nil)

// RiskCacheStore is an in-memory implementation of driven.RiskCacheStore.
// Entries live for the lifetime of the process.
type RiskCacheStore struct {
	mu      sync.RWMutex
	entries map[string]domain.RiskCacheEntry
}

// NewRiskCacheStore creates a new in-memory risk cache store.
func NewRiskCacheStore() *RiskCacheStore {
	return &RiskCacheStore{
		entries: make(map[string]domain.RiskCacheEntry),
	}
}

// Get retrieves the entry for a pair hash.
func (s *RiskCacheStore) Get(_ context.Context, pairHash string) (*domain.RiskCacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[pairHash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// Put stores or replaces an entry.
func (s *RiskCacheStore) Put(_ context.Context, entry domain.RiskCacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.PairHash] = entry
	return nil
}

// ListByProject returns a project's entries ordered by current date.
func (s *RiskCacheStore) ListByProject(_ context.Context, projectID string) ([]domain.RiskCacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.RiskCacheEntry
	for _, entry := range s.entries {
		if entry.ProjectID == projectID {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CurrentDate != result[j].CurrentDate {
			return result[i].CurrentDate < result[j].CurrentDate
		}
		return result[i].PairHash < result[j].PairHash
	})
	return result, nil
}

// Len returns the number of cached entries.
func (s *RiskCacheStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
