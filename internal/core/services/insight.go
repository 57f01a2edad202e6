package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
	"github.com/PetersQuinn/executive-insights/internal/logger"
)

// Ensure InsightService implements the interface.
var _ driving.InsightService = (*InsightService)(nil)

// InsightService writes narratives over stored snapshots with the LLM.
type InsightService struct {
	snapshotStore driven.SnapshotStore
	projectStore  driven.ProjectStore
	summaryStore  driven.SummaryStore
	llm           driven.LLMService
	promptStore   driven.PromptStore
	now           func() time.Time
}

// NewInsightService creates a new insight service. llm may be nil.
func NewInsightService(
	snapshotStore driven.SnapshotStore,
	projectStore driven.ProjectStore,
	summaryStore driven.SummaryStore,
	llm driven.LLMService,
) *InsightService {
	return &InsightService{
		snapshotStore: snapshotStore,
		projectStore:  projectStore,
		summaryStore:  summaryStore,
		llm:           llm,
		now:           time.Now,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *InsightService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Summarise writes an executive summary and appends it to the audit trail.
// A failed audit write is logged; the summary is still returned.
func (s *InsightService) Summarise(ctx context.Context, projectID string, snapshotIDs []string, tone domain.Tone) (*domain.ExecutiveSummary, error) {
	if tone == "" {
		tone = domain.ToneFormal
	}
	if !tone.IsValid() {
		return nil, fmt.Errorf("%w: tone %q", domain.ErrInvalidInput, tone)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	snapshots, err := s.selectSnapshots(ctx, projectID, snapshotIDs)
	if err != nil {
		return nil, err
	}
	digest, err := snapshotDigest(snapshots)
	if err != nil {
		return nil, err
	}

	prompt := renderPrompt(loadPrompt(s.promptStore, driven.PromptExecutiveSummary, defaultSummaryPrompt), map[string]string{
		"tone":      string(tone),
		"snapshots": digest,
	})
	content, err := s.generate(ctx, prompt, 1024)
	if err != nil {
		return nil, fmt.Errorf("generating summary: %w", err)
	}

	ids := make([]string, len(snapshots))
	for i := range snapshots {
		ids[i] = snapshots[i].ID
	}
	summary := &domain.ExecutiveSummary{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Tone:        tone,
		SnapshotIDs: ids,
		Content:     content,
		GeneratedAt: s.now(),
	}
	if s.summaryStore != nil {
		if err := s.summaryStore.Save(ctx, summary); err != nil {
			logger.Warn("could not save summary to audit trail: %v", err)
		}
	}
	return summary, nil
}

// Summaries returns the audit trail of a project, newest first.
func (s *InsightService) Summaries(ctx context.Context, projectID string) ([]domain.ExecutiveSummary, error) {
	if s.summaryStore == nil {
		return []domain.ExecutiveSummary{}, nil
	}
	return s.summaryStore.List(ctx, projectID)
}

// Insights lists cross-snapshot trends, one bullet per element.
func (s *InsightService) Insights(ctx context.Context, projectID string, snapshotIDs []string) ([]string, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	snapshots, err := s.selectSnapshots(ctx, projectID, snapshotIDs)
	if err != nil {
		return nil, err
	}
	digest, err := snapshotDigest(snapshots)
	if err != nil {
		return nil, err
	}

	prompt := renderPrompt(loadPrompt(s.promptStore, driven.PromptInsights, defaultInsightsPrompt), map[string]string{
		"snapshots": digest,
	})
	content, err := s.generate(ctx, prompt, 1024)
	if err != nil {
		return nil, fmt.Errorf("generating insights: %w", err)
	}
	return ParseBullets(content), nil
}

// SuggestRisks proposes risks for a snapshot that its register does not track.
func (s *InsightService) SuggestRisks(ctx context.Context, snapshotID string) ([]domain.SuggestedRisk, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	current, err := s.snapshotStore.Get(ctx, snapshotID)
	if err != nil {
		return nil, err
	}

	var delta domain.KPIDelta
	previous, err := s.snapshotStore.Previous(ctx, current)
	switch {
	case err == nil:
		delta = DiffKPIs(current.KPIs, previous.KPIs)
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, fmt.Errorf("loading previous snapshot: %w", err)
	}

	tracked := trackedRiskNames(current.Risks)
	kpisJSON, err := indentJSON(nonNilKPIs(current.KPIs))
	if err != nil {
		return nil, err
	}
	deltaJSON, err := indentJSON(delta)
	if err != nil {
		return nil, err
	}
	trackedJSON, err := indentJSON(tracked)
	if err != nil {
		return nil, err
	}

	today := s.now().Format(domain.ReportDateLayout)
	prompt := renderPrompt(loadPrompt(s.promptStore, driven.PromptSuggestRisks, defaultSuggestRisksPrompt), map[string]string{
		"today":   today,
		"kpis":    kpisJSON,
		"delta":   deltaJSON,
		"tracked": trackedJSON,
	})
	raw, err := s.generate(ctx, prompt, 1024)
	if err != nil {
		return nil, fmt.Errorf("suggesting risks: %w", err)
	}

	suggestions, err := ParseSuggestedRisks(raw)
	if err != nil {
		return nil, err
	}
	return filterSuggestions(suggestions, tracked, today), nil
}

// Search answers a question over a digest of every stored snapshot.
func (s *InsightService) Search(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	entries, err := s.searchEntries(ctx)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("searching: no snapshots stored: %w", domain.ErrNotFound)
	}
	digest, err := indentJSON(entries)
	if err != nil {
		return "", err
	}

	prompt := renderPrompt(loadPrompt(s.promptStore, driven.PromptSearch, defaultSearchPrompt), map[string]string{
		"question": question,
		"entries":  digest,
	})
	answer, err := s.generate(ctx, prompt, 1024)
	if err != nil {
		return "", fmt.Errorf("searching: %w", err)
	}
	return answer, nil
}

// searchEntry is the compact form of a snapshot given to search.
type searchEntry struct {
	Project   string      `json:"project"`
	Date      string      `json:"date"`
	KPIs      domain.KPIs `json:"kpis"`
	Summary   string      `json:"summary"`
	Issues    any         `json:"issues"`
	NextSteps string      `json:"next_steps"`
}

func (s *InsightService) searchEntries(ctx context.Context) ([]searchEntry, error) {
	projects, err := s.projectStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	var entries []searchEntry
	for _, project := range projects {
		snapshots, err := s.snapshotStore.List(ctx, project.ID)
		if err != nil {
			return nil, fmt.Errorf("listing snapshots of %s: %w", project.ID, err)
		}
		for i := range snapshots {
			snap := &snapshots[i]
			var issues any = snap.Issues
			if len(snap.Issues) == 0 {
				issues = snap.Narrative["issues"]
			}
			entries = append(entries, searchEntry{
				Project:   project.Name,
				Date:      snap.ReportDate,
				KPIs:      nonNilKPIs(snap.KPIs),
				Summary:   snap.Summary,
				Issues:    issues,
				NextSteps: snap.NextSteps,
			})
		}
	}
	return entries, nil
}

// selectSnapshots loads the requested snapshots of a project, or all of
// them when ids is empty. The result is in report order.
func (s *InsightService) selectSnapshots(ctx context.Context, projectID string, ids []string) ([]domain.Snapshot, error) {
	if len(ids) == 0 {
		snapshots, err := s.snapshotStore.List(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("listing snapshots: %w", err)
		}
		if len(snapshots) == 0 {
			return nil, fmt.Errorf("%w: project %s has no snapshots", domain.ErrInvalidInput, projectID)
		}
		return snapshots, nil
	}

	snapshots := make([]domain.Snapshot, 0, len(ids))
	for _, id := range ids {
		snap, err := s.snapshotStore.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot %s: %w", id, err)
		}
		if snap.ProjectID != projectID {
			return nil, fmt.Errorf("%w: snapshot %s belongs to %s", domain.ErrInvalidInput, id, snap.ProjectID)
		}
		snapshots = append(snapshots, *snap)
	}
	domain.SortSnapshots(snapshots)
	return snapshots, nil
}

func (s *InsightService) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	logger.Debug("generating with %s (%d prompt bytes)", s.llm.ModelName(), len(prompt))
	out, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: maxTokens, Temperature: 0.3})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%s returned an empty response", s.llm.ModelName())
	}
	return out, nil
}

// snapshotDigest renders snapshots as indented JSON without their raw text.
func snapshotDigest(snapshots []domain.Snapshot) (string, error) {
	trimmed := make([]domain.Snapshot, len(snapshots))
	for i, snap := range snapshots {
		snap.RawText = ""
		trimmed[i] = snap
	}
	return indentJSON(trimmed)
}

func indentJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding prompt input: %w", err)
	}
	return string(data), nil
}

func nonNilKPIs(k domain.KPIs) domain.KPIs {
	if k == nil {
		return domain.KPIs{}
	}
	return k
}

// ParseBullets extracts list items from Markdown. Text without any list
// markers is returned one non-empty line per element.
func ParseBullets(s string) []string {
	var bullets, lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if item, ok := trimListMarker(line); ok {
			bullets = append(bullets, item)
		}
	}
	if len(bullets) == 0 {
		return lines
	}
	return bullets
}

func trimListMarker(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• ", "+ "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	// Numbered items: "1. text" or "1) text".
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(line) && (line[i] == '.' || line[i] == ')') && line[i+1] == ' ' {
		return strings.TrimSpace(line[i+2:]), true
	}
	return "", false
}

// ParseSuggestedRisks decodes a JSON list of suggested risks. A single
// object wrapping the list under "risks" is accepted too.
func ParseSuggestedRisks(raw string) ([]domain.SuggestedRisk, error) {
	var list []domain.SuggestedRisk
	listErr := decodeModelJSON(raw, &list)
	if listErr == nil {
		if list == nil {
			list = []domain.SuggestedRisk{}
		}
		return list, nil
	}
	var wrapped struct {
		Risks []domain.SuggestedRisk `json:"risks"`
	}
	if err := decodeModelJSON(raw, &wrapped); err == nil && wrapped.Risks != nil {
		return wrapped.Risks, nil
	}
	return nil, fmt.Errorf("%w: suggested risks are not a JSON list: %v", domain.ErrInvalidInput, listErr)
}

// trackedRiskNames lists the risk register entries of a snapshot.
func trackedRiskNames(risks []domain.Record) []string {
	names := make([]string, 0, len(risks))
	for _, r := range risks {
		name := r.Text("Risk Name and Description")
		if name == "" {
			name = r.Text("Risk Name")
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// filterSuggestions drops unnamed or already tracked risks, clamps impact
// ratings to 0..10 and defaults the identification date.
func filterSuggestions(suggestions []domain.SuggestedRisk, tracked []string, today string) []domain.SuggestedRisk {
	out := make([]domain.SuggestedRisk, 0, len(suggestions))
	for _, sr := range suggestions {
		sr.Name = strings.TrimSpace(sr.Name)
		if sr.Name == "" || isTracked(sr.Name, tracked) {
			continue
		}
		sr.Description = strings.TrimSpace(sr.Description)
		sr.ImpactRating = math.Max(0, math.Min(10, sr.ImpactRating))
		if date, ok := domain.NormaliseReportDate(sr.DateIdentified); ok {
			sr.DateIdentified = date
		} else {
			sr.DateIdentified = today
		}
		out = append(out, sr)
	}
	return out
}

func isTracked(name string, tracked []string) bool {
	name = strings.ToLower(name)
	for _, t := range tracked {
		if strings.Contains(strings.ToLower(t), name) {
			return true
		}
	}
	return false
}
