package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/PetersQuinn/executive-insights/internal/adapters/driving/mcp"
	"github.com/PetersQuinn/executive-insights/internal/logger"
	"github.com/PetersQuinn/executive-insights/internal/metrics"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server exposing the diff_kpis,
classify_risks, compare_latest and list_projects tools and the project and
snapshot resources.

By default, the server communicates over stdio using JSON-RPC.
Use --port to serve streamable HTTP instead; Prometheus metrics are then
exposed on /metrics of the same listener. In stdio mode, --metrics starts a
separate metrics listener.

Examples:
  # Stdio mode (default, for desktop assistants)
  insights mcp serve

  # HTTP mode with metrics on :8080/metrics
  insights mcp serve --port 8080

  # Stdio mode with metrics on :9090/metrics
  insights mcp serve --metrics :9090`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("metrics", "", "metrics listen address in stdio mode (e.g. :9090)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	metricsAddr, err := cmd.Flags().GetString("metrics")
	if err != nil {
		return fmt.Errorf("getting metrics flag: %w", err)
	}

	ports := &mcp.Ports{
		Compare:    compareService,
		Classifier: riskClassifier,
		Project:    projectService,
		Snapshot:   snapshotService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr, map[string]http.Handler{
			"/metrics": metrics.Handler(),
		})
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics listener stopped: %v", err)
			}
		}()
		defer srv.Close()
	}

	// stdout carries JSON-RPC; nothing else may be printed to it.
	return server.Run(cmd.Context())
}
