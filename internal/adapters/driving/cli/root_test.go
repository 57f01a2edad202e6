package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PetersQuinn/executive-insights/internal/adapters/driven/config/file"
	"github.com/PetersQuinn/executive-insights/internal/adapters/driven/storage/memory"
	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/services"
)

// mockInsightService is a mock implementation of driving.InsightService.
type mockInsightService struct {
	summaries   []domain.ExecutiveSummary
	bullets     []string
	suggestions []domain.SuggestedRisk
	answer      string
	err         error

	gotTone     domain.Tone
	gotIDs      []string
	gotQuestion string
}

func (m *mockInsightService) Summarise(_ context.Context, projectID string, ids []string, tone domain.Tone) (*domain.ExecutiveSummary, error) {
	m.gotTone, m.gotIDs = tone, ids
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ExecutiveSummary{
		ID:        "sum-1",
		ProjectID: projectID,
		Tone:      tone,
		Content:   "ERP rollout is over budget and delayed.",
	}, nil
}

func (m *mockInsightService) Summaries(_ context.Context, _ string) ([]domain.ExecutiveSummary, error) {
	return m.summaries, m.err
}

func (m *mockInsightService) Insights(_ context.Context, _ string, ids []string) ([]string, error) {
	m.gotIDs = ids
	return m.bullets, m.err
}

func (m *mockInsightService) SuggestRisks(_ context.Context, _ string) ([]domain.SuggestedRisk, error) {
	return m.suggestions, m.err
}

func (m *mockInsightService) Search(_ context.Context, question string) (string, error) {
	m.gotQuestion = question
	return m.answer, m.err
}

// setupTestServices wires real services over in-memory stores holding two
// snapshots of "ERP Rollout", plus a mock insight service. The returned
// function restores the previous services and resets command flags.
func setupTestServices(t *testing.T) (*mockInsightService, func()) {
	t.Helper()
	ctx := context.Background()

	projectStore := memory.NewProjectStore()
	snapshotStore := memory.NewSnapshotStore()
	projects := services.NewProjectService(projectStore)
	_, err := projects.Create(ctx, domain.Project{Name: "ERP Rollout", Issuer: "Acme"})
	require.NoError(t, err)

	uploaded := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, snapshotStore.Save(ctx, &domain.Snapshot{
		ID:         "snap-1",
		ProjectID:  "erp_rollout",
		ReportDate: "2024-03-01",
		UploadedAt: uploaded,
		Filename:   "week1.md",
		FileType:   "markdown",
		KPIs:       domain.KPIs{"budget": "$1.0M", "timeline": "On Track"},
		Issues:     []domain.Record{{"Issue #": "1", "Status": "Open"}},
		RawText:    "week 1",
	}))
	require.NoError(t, snapshotStore.Save(ctx, &domain.Snapshot{
		ID:         "snap-2",
		ProjectID:  "erp_rollout",
		ReportDate: "2024-03-08",
		UploadedAt: uploaded.Add(7 * 24 * time.Hour),
		Filename:   "week2.md",
		FileType:   "markdown",
		Summary:    "Vendor delays pushed go-live.",
		KPIs:       domain.KPIs{"budget": "$1.2M", "timeline": "Delayed"},
		Issues:     []domain.Record{{"Issue #": "1", "Status": "Closed"}},
		RawText:    "week 2",
	}))

	insight := &mockInsightService{}
	classifier := services.NewRuleClassifier()
	saved := Services{
		Project:    projectService,
		Snapshot:   snapshotService,
		Compare:    compareService,
		Insight:    insightService,
		Settings:   settingsService,
		Classifier: riskClassifier,
	}

	configStore, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	SetServices(Services{
		Project:    projects,
		Snapshot:   services.NewSnapshotService(snapshotStore, projectStore, nil, nil),
		Compare:    services.NewCompareService(snapshotStore, classifier, services.NewRiskCache(memory.NewRiskCacheStore())),
		Insight:    insight,
		Settings:   services.NewSettingsService(configStore, nil),
		Classifier: classifier,
	})

	return insight, func() {
		SetServices(saved)
		resetFlags()
	}
}

// resetFlags clears flag variables that persist between Execute calls.
func resetFlags() {
	snapshotProject, snapshotJSON, snapshotRaw = "", false, false
	compareCurrent, comparePrevious, compareJSON = "", "", false
	summaryTone, summarySnapshots, summaryHistory = string(domain.ToneFormal), nil, false
	trendsSnapshots = nil
	projectIssuer, projectStart, projectSummary, projectStatusArg = "", "", "", ""
	projectContacts, projectTags = nil, nil
	watchProject, watchDebounce = "", 500*time.Millisecond
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// executeWithInput runs the root command with stdin set to input.
func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// safeBuffer is a bytes.Buffer safe for a command writing from another goroutine.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) Contains(s string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(b.buf.String(), s)
}
