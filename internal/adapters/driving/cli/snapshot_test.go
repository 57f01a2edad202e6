package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

func writeReport(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const week3JSON = `{
  "project_name": "ERP Rollout",
  "report_date": "2024-03-15",
  "kpis": {"budget": "$1.3M", "timeline": "Delayed"},
  "issues": [{"Issue #": "2", "Status": "Open"}]
}`

func TestSnapshotImport_SavesJSONDocument(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	path := writeReport(t, t.TempDir(), "week3.json", week3JSON)
	out, err := execute(t, "snapshot", "import", path)

	require.NoError(t, err)
	assert.Contains(t, out, "for erp_rollout (2024-03-15)")

	snapshots, err := snapshotService.List(context.Background(), "erp_rollout")
	require.NoError(t, err)
	require.Len(t, snapshots, 3)
	assert.Equal(t, "2024-03-15", snapshots[2].ReportDate)
	assert.Equal(t, "week3.json", snapshots[2].Filename)
}

func TestSnapshotIngest_ProjectFlagOverridesReport(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	path := writeReport(t, t.TempDir(), "week3.json", week3JSON)
	out, err := execute(t, "snapshot", "ingest", "--project", "Data Platform", path)

	require.NoError(t, err)
	assert.Contains(t, out, "for data_platform")

	_, err = projectService.Get(context.Background(), "data_platform")
	assert.NoError(t, err)
}

func TestSnapshotIngest_ReportsEveryFailure(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	dir := t.TempDir()
	good := writeReport(t, dir, "week3.json", week3JSON)
	text := writeReport(t, dir, "week4.md", "# ERP Rollout\nBudget: $1.4M")
	missing := filepath.Join(dir, "missing.json")

	out, err := execute(t, "snapshot", "ingest", good, text, missing)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 files failed")
	assert.Contains(t, out, "week3.json: snapshot")
	// No LLM is configured, so text reports cannot be extracted.
	assert.Contains(t, out, domain.ErrLLMUnavailable.Error())
	assert.Contains(t, out, "reading report")
}

func TestSnapshotList(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "snapshot", "list", "ERP Rollout")

	require.NoError(t, err)
	assert.Contains(t, out, "Snapshots of erp_rollout:")
	assert.Contains(t, out, "2024-03-01  snap-1")
	assert.Contains(t, out, "2024-03-08  snap-2")
}

func TestSnapshotList_Empty(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "snapshot", "list", "unknown")

	require.NoError(t, err)
	assert.Contains(t, out, "No snapshots for unknown.")
}

func TestSnapshotShow_Text(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "snapshot", "show", "snap-2")

	require.NoError(t, err)
	assert.Contains(t, out, "erp_rollout - 2024-03-08")
	assert.Contains(t, out, "$1.2M")
	assert.Contains(t, out, "Vendor delays pushed go-live.")
	assert.Contains(t, out, "Issues: 1")
	assert.NotContains(t, out, "week 2")
}

func TestSnapshotShow_JSONWithRaw(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "snapshot", "show", "snap-1", "--json", "--raw")
	require.NoError(t, err)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "snap-1", snap.ID)
	assert.Equal(t, "week 1", snap.RawText)
}

func TestSnapshotShow_NotFound(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "snapshot", "show", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "-", formatValue(nil))
	assert.Equal(t, "On Track", formatValue("On Track"))
	assert.Equal(t, "42", formatValue(42))
	assert.Equal(t, `{"a":1}`, formatValue(map[string]any{"a": 1}))
	assert.Equal(t, `["x","y"]`, formatValue([]any{"x", "y"}))
}
