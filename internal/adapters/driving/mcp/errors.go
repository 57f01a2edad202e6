// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// risk engine. It lets AI assistants diff KPI sets, classify risks and read
// stored projects and snapshots.
package mcp

import "errors"

// ErrMissingCompareService is returned when the compare service is not provided.
var ErrMissingCompareService = errors.New("mcp: compare service is required")

// ErrMissingClassifier is returned when the risk classifier is not provided.
var ErrMissingClassifier = errors.New("mcp: risk classifier is required")
