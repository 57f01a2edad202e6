package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheLookups_CountsByResult(t *testing.T) {
	before := testutil.ToFloat64(CacheLookups.WithLabelValues(ResultHit))

	CacheLookups.WithLabelValues(ResultHit).Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(CacheLookups.WithLabelValues(ResultHit)))
}

func TestHandler_ExposesInstruments(t *testing.T) {
	SnapshotsIngested.WithLabelValues("json").Inc()
	AlertsRaised.WithLabelValues("cost", "HIGH").Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "insights_snapshots_ingested_total")
	assert.Contains(t, string(body), `insights_alerts_raised_total{category="cost",level="HIGH"}`)
}
