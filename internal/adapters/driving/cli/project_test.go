package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

func TestProjectCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range projectCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"create", "list", "show", "status"}, names)
}

func TestProjectCreate_RegistersProject(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "project", "create", "Data Platform",
		"--issuer", "Globex", "--start-date", "2024-01-15", "--tag", "infra", "--tag", "q1")

	require.NoError(t, err)
	assert.Contains(t, out, "Project registered: Data Platform (data_platform)")

	p, err := projectService.Get(context.Background(), "data_platform")
	require.NoError(t, err)
	assert.Equal(t, "Globex", p.Issuer)
	assert.Equal(t, "2024-01-15", p.StartDate)
	assert.Equal(t, []string{"infra", "q1"}, p.Tags)
	assert.Equal(t, domain.ProjectStatusActive, p.Status)
}

func TestProjectCreate_InvalidStatus(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "project", "create", "Data Platform", "--status", "paused")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProjectCreate_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()
	projectService = nil

	_, err := execute(t, "project", "create", "Data Platform")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "project service not configured")
}

func TestProjectList(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "project", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "erp_rollout")
	assert.Contains(t, out, "ERP Rollout")
	assert.Contains(t, out, "active")
}

func TestProjectShow_AcceptsDisplayName(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "project", "show", "ERP Rollout")

	require.NoError(t, err)
	assert.Contains(t, out, "ID:         erp_rollout")
	assert.Contains(t, out, "Issuer:     Acme")
	assert.Contains(t, out, "Snapshots:  2")
}

func TestProjectShow_Unknown(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "project", "show", "nope")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectStatus(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "project", "status", "erp_rollout", "Completed")

	require.NoError(t, err)
	assert.Contains(t, out, "Project erp_rollout is now completed.")

	p, err := projectService.Get(context.Background(), "erp_rollout")
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusCompleted, p.Status)
}

func TestProjectStatus_RequiresTwoArgs(t *testing.T) {
	_, err := execute(t, "project", "status", "erp_rollout")
	assert.Error(t, err)
}
