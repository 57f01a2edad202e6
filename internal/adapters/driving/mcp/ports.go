package mcp

import (
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Compare diffs stored snapshots and classifies their risks.
	Compare driving.CompareService

	// Classifier scores ad-hoc KPI pairs for the classify_risks tool.
	Classifier driving.RiskClassifier

	// Project lists registered projects.
	Project driving.ProjectService

	// Snapshot reads stored snapshots.
	Snapshot driving.SnapshotService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Compare == nil {
		return ErrMissingCompareService
	}
	if p.Classifier == nil {
		return ErrMissingClassifier
	}
	// Project and Snapshot only back list_projects and resources
	return nil
}
