// Package redis provides a Redis-backed risk cache shared between processes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
)

const (
	entryKeyPrefix   = "insights:risk:"
	projectKeyPrefix = "insights:risk-project:"
)

// Ensure RiskCacheStore implements the interface.
var _ driven.RiskCacheStore = (*RiskCacheStore)(nil)

// RiskCacheStore keeps risk cache entries as JSON strings, with a set per
// project indexing its pair hashes. Entries never expire.
type RiskCacheStore struct {
	client *goredis.Client
}

// NewRiskCacheStore wraps an existing client.
func NewRiskCacheStore(client *goredis.Client) *RiskCacheStore {
	return &RiskCacheStore{client: client}
}

// Connect dials addr and verifies the server answers PING.
func Connect(ctx context.Context, addr string, timeout time.Duration) (*RiskCacheStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: timeout,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	if pong != "PONG" {
		client.Close()
		return nil, fmt.Errorf("expected PONG, got %s", pong)
	}

	return NewRiskCacheStore(client), nil
}

// Close closes the underlying client.
func (s *RiskCacheStore) Close() error {
	return s.client.Close()
}

// cachedEntry is the stored form of a domain.RiskCacheEntry.
type cachedEntry struct {
	ProjectID    string    `json:"project_id"`
	CurrentDate  string    `json:"current_date"`
	PreviousDate string    `json:"previous_date"`
	PairHash     string    `json:"pair_hash"`
	RiskJSON     string    `json:"risk_json"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Get retrieves the entry for a pair hash.
func (s *RiskCacheStore) Get(ctx context.Context, pairHash string) (*domain.RiskCacheEntry, error) {
	val, err := s.client.Get(ctx, entryKeyPrefix+pairHash).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting risk cache entry: %w", err)
	}
	return decodeEntry(val)
}

// Put stores or replaces an entry. SET is atomic, so concurrent writers of
// the same key are last-write-wins.
func (s *RiskCacheStore) Put(ctx context.Context, entry domain.RiskCacheEntry) error {
	data, err := json.Marshal(cachedEntry(entry))
	if err != nil {
		return fmt.Errorf("marshalling risk cache entry: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, entryKeyPrefix+entry.PairHash, data, 0)
		pipe.SAdd(ctx, projectKeyPrefix+entry.ProjectID, entry.PairHash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving risk cache entry: %w", err)
	}
	return nil
}

// ListByProject returns a project's entries ordered by current date.
func (s *RiskCacheStore) ListByProject(ctx context.Context, projectID string) ([]domain.RiskCacheEntry, error) {
	hashes, err := s.client.SMembers(ctx, projectKeyPrefix+projectID).Result()
	if err != nil {
		return nil, fmt.Errorf("listing risk cache entries: %w", err)
	}
	if len(hashes) == 0 {
		return nil, nil
	}

	keys := make([]string, len(hashes))
	for i, hash := range hashes {
		keys[i] = entryKeyPrefix + hash
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("loading risk cache entries: %w", err)
	}

	entries := make([]domain.RiskCacheEntry, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // index points at a missing key
		}
		entry, err := decodeEntry(str)
		if err != nil {
			return nil, err
		}
		if entry.ProjectID != projectID {
			continue
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CurrentDate != entries[j].CurrentDate {
			return entries[i].CurrentDate < entries[j].CurrentDate
		}
		return entries[i].PairHash < entries[j].PairHash
	})
	return entries, nil
}

func decodeEntry(val string) (*domain.RiskCacheEntry, error) {
	var stored cachedEntry
	if err := json.Unmarshal([]byte(val), &stored); err != nil {
		return nil, fmt.Errorf("unmarshalling risk cache entry: %w", err)
	}
	entry := domain.RiskCacheEntry(stored)
	return &entry, nil
}
