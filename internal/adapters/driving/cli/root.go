// Package cli provides the cobra command tree of the insights binary.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
	"github.com/PetersQuinn/executive-insights/internal/logger"
)

var version = "dev"

var verbose bool

// Services set by SetServices. Commands check for nil and report
// "not configured" so the tree can be exercised without wiring.
var (
	projectService  driving.ProjectService
	snapshotService driving.SnapshotService
	compareService  driving.CompareService
	insightService  driving.InsightService
	settingsService driving.SettingsService
	riskClassifier  driving.RiskClassifier
)

// Services groups the driving ports used by the commands.
type Services struct {
	Project    driving.ProjectService
	Snapshot   driving.SnapshotService
	Compare    driving.CompareService
	Insight    driving.InsightService
	Settings   driving.SettingsService
	Classifier driving.RiskClassifier
}

var rootCmd = &cobra.Command{
	Use:   "insights",
	Short: "Project status snapshots, deltas and risk alerts",
	Long: `insights ingests project status reports, keeps a snapshot per report
and compares consecutive snapshots of a project: KPI deltas, changes to
budget lines, deliverables, issues, schedule and risks, and cost, timeline,
scope and client sentiment risk alerts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	projectService = s.Project
	snapshotService = s.Snapshot
	compareService = s.Compare
	insightService = s.Insight
	settingsService = s.Settings
	riskClassifier = s.Classifier
}

// SetVersion sets the version reported by "insights version".
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
