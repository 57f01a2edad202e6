// Package metrics holds the Prometheus instruments of the risk engine.
// They are registered with the default registry and served on /metrics by
// "insights mcp serve" in HTTP mode or with --metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheLookups counts risk cache lookups by result ("hit" or "miss").
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insights_risk_cache_lookups_total",
		Help: "Risk cache lookups by result",
	}, []string{"result"})

	// CacheWriteFailures counts classifications that could not be persisted.
	CacheWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "insights_risk_cache_write_failures_total",
		Help: "Risk classifications computed but not persisted",
	})

	// ClassificationDuration observes classification time by backend.
	ClassificationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "insights_classification_duration_seconds",
		Help:    "Duration of risk classification calls",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60},
	}, []string{"backend"})

	// ClassificationFailures counts failed classifications by error kind.
	ClassificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insights_classification_failures_total",
		Help: "Failed risk classifications by kind",
	}, []string{"kind"})

	// AlertsRaised counts classified risk entries by category and alert level.
	AlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insights_alerts_raised_total",
		Help: "Risk entries produced by category and alert level",
	}, []string{"category", "level"})

	// SnapshotsIngested counts saved snapshots by source format.
	SnapshotsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insights_snapshots_ingested_total",
		Help: "Snapshots saved by source format",
	}, []string{"format"})
)

// Cache lookup results.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Handler returns the HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
