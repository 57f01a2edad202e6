package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PetersQuinn/executive-insights/internal/adapters/driving/mcp"
)

func TestMCPServeCmd_Flags(t *testing.T) {
	port := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "0", port.DefValue)

	metricsFlag := mcpServeCmd.Flags().Lookup("metrics")
	require.NotNil(t, metricsFlag)
	assert.Equal(t, "", metricsFlag.DefValue)
}

func TestMCPServe_RequiresCompareService(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()
	compareService = nil

	_, err := execute(t, "mcp", "serve")

	assert.ErrorIs(t, err, mcp.ErrMissingCompareService)
}

func TestMCPServe_RequiresClassifier(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()
	riskClassifier = nil

	_, err := execute(t, "mcp", "serve")

	assert.ErrorIs(t, err, mcp.ErrMissingClassifier)
}
