package services

import (
	"context"
	"fmt"
	"time"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
	"github.com/PetersQuinn/executive-insights/internal/logger"
	"github.com/PetersQuinn/executive-insights/internal/metrics"
)

// Ensure CompareService implements the interface.
var _ driving.CompareService = (*CompareService)(nil)

// CompareService diffs snapshot pairs and classifies their KPI deltas
// through the risk cache.
type CompareService struct {
	snapshotStore driven.SnapshotStore
	classifier    driving.RiskClassifier
	cache         *RiskCache
}

// NewCompareService creates a new compare service.
// cache may be nil, in which case every comparison is classified afresh.
func NewCompareService(snapshotStore driven.SnapshotStore, classifier driving.RiskClassifier, cache *RiskCache) *CompareService {
	if cache == nil {
		cache = NewRiskCache(nil)
	}
	return &CompareService{
		snapshotStore: snapshotStore,
		classifier:    classifier,
		cache:         cache,
	}
}

// Compare diffs two stored snapshots of the same project.
func (s *CompareService) Compare(ctx context.Context, currentID, previousID string) (*driving.Comparison, error) {
	current, err := s.snapshotStore.Get(ctx, currentID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", currentID, err)
	}
	previous, err := s.snapshotStore.Get(ctx, previousID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", previousID, err)
	}
	if current.ProjectID != previous.ProjectID {
		return nil, fmt.Errorf("%w: snapshots belong to %s and %s", domain.ErrInvalidInput, current.ProjectID, previous.ProjectID)
	}
	comparison := s.compare(ctx, current, previous)
	return &comparison, nil
}

// CompareLatest compares the two most recent snapshots of a project.
func (s *CompareService) CompareLatest(ctx context.Context, projectID string) (*driving.Comparison, error) {
	snapshots, err := s.snapshotStore.List(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	if len(snapshots) < 2 {
		return nil, domain.ErrNoPreviousSnapshot
	}
	n := len(snapshots)
	comparison := s.compare(ctx, &snapshots[n-1], &snapshots[n-2])
	return &comparison, nil
}

// RefreshRisks classifies every consecutive snapshot pair of a project.
// Pairs already classified are served from the cache.
func (s *CompareService) RefreshRisks(ctx context.Context, projectID string) ([]driving.Comparison, error) {
	snapshots, err := s.snapshotStore.List(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	if len(snapshots) < 2 {
		return []driving.Comparison{}, nil
	}

	comparisons := make([]driving.Comparison, 0, len(snapshots)-1)
	for i := 1; i < len(snapshots); i++ {
		if err := ctx.Err(); err != nil {
			return comparisons, err
		}
		comparison := s.compare(ctx, &snapshots[i], &snapshots[i-1])
		if comparison.Err != nil {
			logger.Warn("classifying %s (%s → %s): %v", projectID,
				snapshots[i-1].ReportDate, snapshots[i].ReportDate, comparison.Err)
		}
		comparisons = append(comparisons, comparison)
	}
	return comparisons, nil
}

// RiskSummaries returns the dashboard row of each consecutive snapshot pair
// that already has a cached classification. Nothing is classified here;
// pairs not yet refreshed are left out.
func (s *CompareService) RiskSummaries(ctx context.Context, projectID string) ([]domain.RiskSummary, error) {
	snapshots, err := s.snapshotStore.List(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	classified, err := s.cache.Classified(ctx, projectID)
	if err != nil {
		return nil, err
	}

	summaries := []domain.RiskSummary{}
	for i := 1; i < len(snapshots); i++ {
		previous, current := &snapshots[i-1], &snapshots[i]
		hash, err := PairHash(previous.KPIs, current.KPIs)
		if err != nil {
			return nil, err
		}
		result, ok := classified[hash]
		if !ok {
			continue
		}
		summaries = append(summaries, domain.SummariseClassification(previous.ReportDate, current.ReportDate, &result))
	}
	return summaries, nil
}

// compare diffs a pair and classifies its KPI delta. A classification
// failure is carried in Comparison.Err and leaves the diff intact.
func (s *CompareService) compare(ctx context.Context, current, previous *domain.Snapshot) driving.Comparison {
	comparison := driving.Comparison{
		Previous: previous,
		Current:  current,
		Diff:     DiffSnapshots(current, previous),
	}
	if s.classifier == nil {
		comparison.Err = &domain.ClassificationError{Kind: domain.KindBackend, Err: domain.ErrLLMUnavailable}
		return comparison
	}

	req := CacheRequest{
		ProjectID:    current.ProjectID,
		PreviousDate: previous.ReportDate,
		CurrentDate:  current.ReportDate,
		Previous:     previous.KPIs,
		Current:      current.KPIs,
	}
	delta := comparison.Diff.KPIChanges
	result, err := s.cache.GetOrCompute(ctx, req, func(ctx context.Context) (domain.Classification, error) {
		return s.classify(ctx, current.KPIs, delta)
	})
	if err != nil {
		comparison.Err = err
		return comparison
	}
	comparison.Classification = &result
	return comparison
}

// classify runs the classifier and records its duration and alerts.
func (s *CompareService) classify(ctx context.Context, current domain.KPIs, delta domain.KPIDelta) (domain.Classification, error) {
	start := time.Now()
	result, err := s.classifier.Classify(ctx, current, delta)
	metrics.ClassificationDuration.WithLabelValues(classifierBackend(s.classifier)).Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.Classification{}, err
	}
	for _, category := range domain.AllRiskCategories() {
		for _, entry := range result.Entries(category) {
			metrics.AlertsRaised.WithLabelValues(string(category), string(entry.AlertLevel)).Inc()
		}
	}
	return result, nil
}

func classifierBackend(c driving.RiskClassifier) string {
	switch c.(type) {
	case *RuleClassifier:
		return string(domain.ClassifierRules)
	case *LLMClassifier:
		return string(domain.ClassifierLLM)
	default:
		return "custom"
	}
}
