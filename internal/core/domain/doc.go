// Package domain defines the core business entities for Executive Insights.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Project: A tracked engagement, identified by a slug of its name
//   - Snapshot: One ingested status report for a project
//   - KPIDelta / CollectionDiff: Changes between two consecutive snapshots
//   - Classification: Risk entries per category with alert levels
//   - RiskCacheEntry: A memoised classification for a KPI pair
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
