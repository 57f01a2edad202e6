package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for project resources.
	uriScheme = "insights://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing projects.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "projects",
		Name:        "projects",
		Description: "List of all registered projects",
		MIMEType:    "application/json",
	}, s.handleProjectsResource)

	// Template for a project's snapshots.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "projects/{projectId}/snapshots",
		Name:        "project-snapshots",
		Description: "Snapshots of a project in report order",
		MIMEType:    "application/json",
	}, s.handleSnapshotsResource)

	// Template for one snapshot document.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "snapshots/{snapshotId}",
		Name:        "snapshot",
		Description: "A stored snapshot with its KPIs and collections",
		MIMEType:    "application/json",
	}, s.handleSnapshotResource)
}

// handleProjectsResource returns a list of all registered projects.
func (s *Server) handleProjectsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Project == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	projects, err := s.ports.Project.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	type projectInfo struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Status string `json:"status"`
	}

	infos := make([]projectInfo, len(projects))
	for i := range projects {
		infos[i] = projectInfo{
			ID:     projects[i].ID,
			Name:   projects[i].Name,
			Status: string(projects[i].Status),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling projects: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleSnapshotsResource returns the snapshots of a project.
func (s *Server) handleSnapshotsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Snapshot == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract projectId from URI: insights://projects/{projectId}/snapshots
	projectID := extractProjectID(req.Params.URI)
	if projectID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	snapshots, err := s.ports.Snapshot.List(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	type snapshotInfo struct {
		ID         string `json:"id"`
		ReportDate string `json:"report_date"`
		Filename   string `json:"filename"`
		FileType   string `json:"file_type"`
	}

	infos := make([]snapshotInfo, len(snapshots))
	for i := range snapshots {
		infos[i] = snapshotInfo{
			ID:         snapshots[i].ID,
			ReportDate: snapshots[i].ReportDate,
			Filename:   snapshots[i].Filename,
			FileType:   snapshots[i].FileType,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling snapshots: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleSnapshotResource returns one snapshot without its raw report text.
func (s *Server) handleSnapshotResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Snapshot == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract snapshotId from URI: insights://snapshots/{snapshotId}
	snapshotID := extractSnapshotID(req.Params.URI)
	if snapshotID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	snapshot, err := s.ports.Snapshot.Get(ctx, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}

	trimmed := *snapshot
	trimmed.RawText = ""
	data, err := json.MarshalIndent(trimmed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling snapshot: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractProjectID extracts the project ID from a URI like insights://projects/{projectId}/snapshots.
func extractProjectID(uri string) string {
	const prefix = uriScheme + "projects/"
	const suffix = "/snapshots"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}

// extractSnapshotID extracts the snapshot ID from a URI like insights://snapshots/{snapshotId}.
func extractSnapshotID(uri string) string {
	const prefix = uriScheme + "snapshots/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
