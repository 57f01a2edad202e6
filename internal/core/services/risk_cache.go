package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/logger"
	"github.com/PetersQuinn/executive-insights/internal/metrics"
)

// CacheRequest identifies the KPI pair to classify.
type CacheRequest struct {
	ProjectID    string
	PreviousDate string
	CurrentDate  string
	Previous     domain.KPIs
	Current      domain.KPIs
}

// ComputeFunc produces a classification on a cache miss.
type ComputeFunc func(ctx context.Context) (domain.Classification, error)

// RiskCache memoises classifications by the content of the compared KPI pair.
// Entries never expire. Concurrent misses on one key may both compute; the
// last write wins, which is harmless because classification is deterministic.
type RiskCache struct {
	store driven.RiskCacheStore
	now   func() time.Time
}

// NewRiskCache creates a cache over store.
func NewRiskCache(store driven.RiskCacheStore) *RiskCache {
	return &RiskCache{store: store, now: time.Now}
}

// PairHash returns the hex SHA-256 of the canonical JSON of previous followed
// by current. Map keys are sorted at every level; nil KPIs hash as {}.
func PairHash(previous, current domain.KPIs) (string, error) {
	h := sha256.New()
	for _, kpis := range []domain.KPIs{previous, current} {
		if kpis == nil {
			kpis = domain.KPIs{}
		}
		data, err := json.Marshal(kpis)
		if err != nil {
			return "", fmt.Errorf("canonicalising kpis: %w", err)
		}
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// GetOrCompute returns the cached classification of the pair, calling
// compute only on a miss. Compute errors are returned and never cached.
// A failed write is logged and the computed result is still returned.
func (c *RiskCache) GetOrCompute(ctx context.Context, req CacheRequest, compute ComputeFunc) (domain.Classification, error) {
	hash, err := PairHash(req.Previous, req.Current)
	if err != nil {
		return domain.Classification{}, err
	}

	if c.store != nil {
		entry, err := c.store.Get(ctx, hash)
		switch {
		case err == nil:
			result, decodeErr := decodeClassification(entry.RiskJSON)
			if decodeErr == nil {
				metrics.CacheLookups.WithLabelValues(metrics.ResultHit).Inc()
				logger.Debug("risk cache hit for %s (%s → %s)", req.ProjectID, req.PreviousDate, req.CurrentDate)
				return result, nil
			}
			logger.Warn("risk cache entry %s is unreadable, recomputing: %v", hash, decodeErr)
		case errors.Is(err, domain.ErrNotFound):
		default:
			logger.Warn("risk cache lookup failed, recomputing: %v", err)
		}
	}
	metrics.CacheLookups.WithLabelValues(metrics.ResultMiss).Inc()
	logger.Debug("risk cache miss for %s (%s → %s)", req.ProjectID, req.PreviousDate, req.CurrentDate)

	computed, err := compute(ctx)
	if err != nil {
		return domain.Classification{}, err
	}

	data, err := json.Marshal(computed)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("encoding classification: %w", err)
	}

	if c.store != nil {
		entry := domain.RiskCacheEntry{
			ProjectID:    req.ProjectID,
			CurrentDate:  req.CurrentDate,
			PreviousDate: req.PreviousDate,
			PairHash:     hash,
			RiskJSON:     string(data),
			GeneratedAt:  c.now(),
		}
		if err := c.store.Put(ctx, entry); err != nil {
			metrics.CacheWriteFailures.Inc()
			logger.Warn("risk cache write failed for %s: %v", hash, err)
		}
	}

	// Decode from the stored form so a miss returns exactly what a later hit will.
	return decodeClassification(string(data))
}

// Classified returns a project's cached classifications keyed by pair hash.
// It never computes; unreadable entries are logged and left out.
func (c *RiskCache) Classified(ctx context.Context, projectID string) (map[string]domain.Classification, error) {
	classified := map[string]domain.Classification{}
	if c.store == nil {
		return classified, nil
	}
	entries, err := c.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing cached classifications: %w", err)
	}
	for _, entry := range entries {
		result, err := decodeClassification(entry.RiskJSON)
		if err != nil {
			logger.Warn("risk cache entry %s is unreadable, skipping: %v", entry.PairHash, err)
			continue
		}
		classified[entry.PairHash] = result
	}
	return classified, nil
}

func decodeClassification(data string) (domain.Classification, error) {
	result := domain.NewClassification()
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return domain.Classification{}, fmt.Errorf("decoding classification: %w", err)
	}
	for _, category := range domain.AllRiskCategories() {
		if result.Entries(category) == nil {
			fillEmpty(&result, category)
		}
	}
	return result, nil
}

// fillEmpty replaces a null category with an empty list.
func fillEmpty(c *domain.Classification, category domain.RiskCategory) {
	switch category {
	case domain.RiskCost:
		c.Cost = []domain.RiskEntry{}
	case domain.RiskTimeline:
		c.Timeline = []domain.RiskEntry{}
	case domain.RiskScope:
		c.Scope = []domain.RiskEntry{}
	case domain.RiskClientSentiment:
		c.ClientSentiment = []domain.RiskEntry{}
	}
}
