package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/services"
)

func TestCompare_LatestPair(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "compare", "ERP Rollout")

	require.NoError(t, err)
	assert.Contains(t, out, "erp_rollout: 2024-03-01 → 2024-03-08")
	assert.Contains(t, out, "Budget: +$200,000")
	assert.Contains(t, out, "Timeline: on track → delayed")
	assert.Contains(t, out, "0 added, 0 removed, 1 changed")
	assert.Contains(t, out, "Status: Open → Closed")
	assert.Contains(t, out, services.RiskBudgetOverrun)
	assert.Contains(t, out, services.RiskScheduleDeviation)
	assert.Contains(t, out, "HIGH")
}

func TestCompare_ExplicitPairJSON(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "compare", "--current", "snap-2", "--previous", "snap-1", "--json")
	require.NoError(t, err)

	var got struct {
		Diff  map[string]any        `json:"diff"`
		Risks domain.Classification `json:"risks"`
		Error string                `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Empty(t, got.Error)
	require.NotEmpty(t, got.Risks.Cost)
	assert.Equal(t, services.RiskBudgetOverrun, got.Risks.Cost[0].Risk)
	assert.Equal(t, domain.AlertHigh, got.Risks.MaxAlert(domain.RiskCost))
}

func TestCompare_FlagsMustBePaired(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "compare", "--current", "snap-2")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--current and --previous must be given together")
}

func TestCompare_NeedsProjectOrPair(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "compare")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "a project or --current and --previous is required")
}

func TestCompare_SingleSnapshot(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	path := writeReport(t, t.TempDir(), "dp.json", `{"project_name": "Data Platform", "report_date": "2024-03-01"}`)
	_, err := execute(t, "snapshot", "import", path)
	require.NoError(t, err)

	_, err = execute(t, "compare", "data_platform")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "data_platform needs at least two snapshots to compare")
}

func TestCompare_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()
	compareService = nil

	_, err := execute(t, "compare", "erp_rollout")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "compare service not configured")
}

func TestRisksRefreshThenShow(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "risks", "refresh", "erp_rollout")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-01 → 2024-03-08")
	assert.Contains(t, out, "Classified 1 of 1 pairs.")

	out, err = execute(t, "risks", "show", "erp_rollout")
	require.NoError(t, err)
	assert.Contains(t, out, "From")
	assert.Contains(t, out, "2024-03-01  2024-03-08")
	assert.Contains(t, out, "HIGH")
}

func TestRisksShow_NothingClassified(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "risks", "show", "erp_rollout")

	require.NoError(t, err)
	assert.Contains(t, out, "No classified snapshot pairs for erp_rollout.")
}

func TestRisksSuggest(t *testing.T) {
	insight, cleanup := setupTestServices(t)
	defer cleanup()
	insight.suggestions = []domain.SuggestedRisk{{
		Name:           "Key staff attrition",
		Description:    "Two integrators leave in April.",
		ImpactRating:   0.7,
		DateIdentified: "2024-03-08",
	}}

	out, err := execute(t, "risks", "suggest", "snap-2")

	require.NoError(t, err)
	assert.Contains(t, out, "[1] Key staff attrition (impact 0.7, identified 2024-03-08)")
	assert.Contains(t, out, "Two integrators leave in April.")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$1,200,000", formatAmount(1200000))
	assert.Equal(t, "-$950", formatAmount(-950))
	assert.Equal(t, "+$200,000", signedAmount(200000))
	assert.Equal(t, "-$1,000", signedAmount(-1000))
}
