package driven

import (
	"context"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

// RiskCacheStore persists memoised risk classifications keyed by pair hash.
// Entries never expire; concurrent writers of the same key are last-write-wins.
type RiskCacheStore interface {
	// Get retrieves the entry for a pair hash.
	// Returns domain.ErrNotFound on a miss.
	Get(ctx context.Context, pairHash string) (*domain.RiskCacheEntry, error)

	// Put stores or replaces the entry for entry.PairHash.
	Put(ctx context.Context, entry domain.RiskCacheEntry) error

	// ListByProject returns a project's entries ordered by current date.
	ListByProject(ctx context.Context, projectID string) ([]domain.RiskCacheEntry, error)
}
