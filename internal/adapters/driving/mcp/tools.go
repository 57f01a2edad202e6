package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/services"
)

// KPIPairInput is the input schema for the diff_kpis and classify_risks tools.
type KPIPairInput struct {
	Current  map[string]any `json:"current" jsonschema:"KPIs of the newer snapshot, e.g. budget, timeline, scope, client_sentiment"`
	Previous map[string]any `json:"previous" jsonschema:"KPIs of the older snapshot"`
}

// DiffKPIsOutput is the output schema for the diff_kpis tool.
type DiffKPIsOutput struct {
	Delta   map[string]any `json:"delta"`
	Changed bool           `json:"changed"`
}

// RiskOutput is one classified risk.
type RiskOutput struct {
	Category   string `json:"category"`
	Risk       string `json:"risk"`
	Confidence int    `json:"confidence"`
	Impact     string `json:"impact"`
	AlertLevel string `json:"alert_level"`
}

// ClassifyOutput is the output schema for the classify_risks tool.
type ClassifyOutput struct {
	Delta  map[string]any    `json:"delta"`
	Risks  []RiskOutput      `json:"risks"`
	Levels map[string]string `json:"levels"`
}

// CompareLatestInput is the input schema for the compare_latest tool.
type CompareLatestInput struct {
	Project string `json:"project" jsonschema:"project ID or name"`
}

// CompareLatestOutput is the output schema for the compare_latest tool.
type CompareLatestOutput struct {
	ProjectID    string            `json:"project_id"`
	PreviousDate string            `json:"previous_date"`
	CurrentDate  string            `json:"current_date"`
	Diff         map[string]any    `json:"diff"`
	Risks        []RiskOutput      `json:"risks"`
	Levels       map[string]string `json:"levels"`
	Error        string            `json:"error,omitempty"`
}

// ListProjectsInput is the input schema for the list_projects tool.
type ListProjectsInput struct {
	Status string `json:"status,omitempty" jsonschema:"only list projects in this state: active, completed or archived"`
}

// ProjectOutput is one registered project.
type ProjectOutput struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Issuer    string   `json:"issuer,omitempty"`
	StartDate string   `json:"start_date,omitempty"`
	Status    string   `json:"status"`
	Tags      []string `json:"tags,omitempty"`
}

// ListProjectsOutput is the output schema for the list_projects tool.
type ListProjectsOutput struct {
	Projects []ProjectOutput `json:"projects"`
	Count    int             `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "diff_kpis",
		Description: "Compute the KPI delta between two KPI sets (budget, timeline, scope, client sentiment)",
	}, s.handleDiffKPIs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_risks",
		Description: "Classify cost, timeline, scope and client sentiment risks from two KPI sets",
	}, s.handleClassifyRisks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compare_latest",
		Description: "Diff the two most recent snapshots of a project and classify their risks",
	}, s.handleCompareLatest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_projects",
		Description: "List registered projects",
	}, s.handleListProjects)
}

// handleDiffKPIs handles the diff_kpis tool invocation.
func (s *Server) handleDiffKPIs(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input KPIPairInput,
) (*mcp.CallToolResult, DiffKPIsOutput, error) {
	delta := services.DiffKPIs(input.Current, input.Previous)

	m, err := toMap(delta)
	if err != nil {
		return nil, DiffKPIsOutput{}, err
	}
	return nil, DiffKPIsOutput{Delta: m, Changed: !delta.IsEmpty()}, nil
}

// handleClassifyRisks handles the classify_risks tool invocation.
func (s *Server) handleClassifyRisks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input KPIPairInput,
) (*mcp.CallToolResult, ClassifyOutput, error) {
	delta := services.DiffKPIs(input.Current, input.Previous)

	classification, err := s.ports.Classifier.Classify(ctx, input.Current, delta)
	if err != nil {
		return nil, ClassifyOutput{}, fmt.Errorf("classifying risks: %w", err)
	}

	m, err := toMap(delta)
	if err != nil {
		return nil, ClassifyOutput{}, err
	}
	return nil, ClassifyOutput{
		Delta:  m,
		Risks:  riskOutputs(&classification),
		Levels: levels(&classification),
	}, nil
}

// handleCompareLatest handles the compare_latest tool invocation.
// A classification failure is reported in the output; the diff is still returned.
func (s *Server) handleCompareLatest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CompareLatestInput,
) (*mcp.CallToolResult, CompareLatestOutput, error) {
	projectID := s.resolveProject(ctx, input.Project)
	if projectID == "" {
		return nil, CompareLatestOutput{}, fmt.Errorf("%w: project is required", domain.ErrInvalidInput)
	}

	cmp, err := s.ports.Compare.CompareLatest(ctx, projectID)
	if err != nil {
		return nil, CompareLatestOutput{}, fmt.Errorf("comparing %s: %w", projectID, err)
	}

	diff, err := toMap(cmp.Diff)
	if err != nil {
		return nil, CompareLatestOutput{}, err
	}

	out := CompareLatestOutput{
		ProjectID:    projectID,
		PreviousDate: cmp.Previous.ReportDate,
		CurrentDate:  cmp.Current.ReportDate,
		Diff:         diff,
		Risks:        []RiskOutput{},
		Levels:       map[string]string{},
	}
	if cmp.Err != nil {
		out.Error = cmp.Err.Error()
	}
	if cmp.Classification != nil {
		out.Risks = riskOutputs(cmp.Classification)
		out.Levels = levels(cmp.Classification)
	}
	return nil, out, nil
}

// handleListProjects handles the list_projects tool invocation.
func (s *Server) handleListProjects(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListProjectsInput,
) (*mcp.CallToolResult, ListProjectsOutput, error) {
	output := ListProjectsOutput{Projects: []ProjectOutput{}}
	if s.ports.Project == nil {
		return nil, output, nil
	}

	projects, err := s.ports.Project.List(ctx)
	if err != nil {
		return nil, ListProjectsOutput{}, fmt.Errorf("listing projects: %w", err)
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	for i := range projects {
		if status != "" && string(projects[i].Status) != status {
			continue
		}
		output.Projects = append(output.Projects, ProjectOutput{
			ID:        projects[i].ID,
			Name:      projects[i].Name,
			Issuer:    projects[i].Issuer,
			StartDate: projects[i].StartDate,
			Status:    string(projects[i].Status),
			Tags:      projects[i].Tags,
		})
	}
	output.Count = len(output.Projects)

	return nil, output, nil
}

// resolveProject accepts a project ID or a display name.
func (s *Server) resolveProject(ctx context.Context, project string) string {
	project = strings.TrimSpace(project)
	if project == "" {
		return ""
	}
	if s.ports.Project != nil {
		if p, err := s.ports.Project.Get(ctx, project); err == nil {
			return p.ID
		}
	}
	return domain.ProjectID(project)
}

func riskOutputs(c *domain.Classification) []RiskOutput {
	risks := []RiskOutput{}
	for _, category := range domain.AllRiskCategories() {
		for _, e := range c.Entries(category) {
			risks = append(risks, RiskOutput{
				Category:   string(category),
				Risk:       e.Risk,
				Confidence: e.Confidence,
				Impact:     string(e.Impact),
				AlertLevel: string(e.AlertLevel),
			})
		}
	}
	return risks
}

func levels(c *domain.Classification) map[string]string {
	out := make(map[string]string, 4)
	for _, category := range domain.AllRiskCategories() {
		out[string(category)] = string(c.MaxAlert(category))
	}
	return out
}

// toMap converts a JSON-encodable value to its generic object form.
func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return m, nil
}
