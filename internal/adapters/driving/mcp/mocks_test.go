package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PetersQuinn/executive-insights/internal/adapters/driven/storage/memory"
	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
	"github.com/PetersQuinn/executive-insights/internal/core/services"
)

// mockCompareService is a mock implementation of driving.CompareService.
type mockCompareService struct {
	comparison *driving.Comparison
	err        error
}

func (m *mockCompareService) Compare(_ context.Context, _, _ string) (*driving.Comparison, error) {
	return m.comparison, m.err
}

func (m *mockCompareService) CompareLatest(_ context.Context, _ string) (*driving.Comparison, error) {
	return m.comparison, m.err
}

func (m *mockCompareService) RefreshRisks(_ context.Context, _ string) ([]driving.Comparison, error) {
	return nil, m.err
}

func (m *mockCompareService) RiskSummaries(_ context.Context, _ string) ([]domain.RiskSummary, error) {
	return nil, m.err
}

// mockProjectService is a mock implementation of driving.ProjectService.
type mockProjectService struct {
	projects []domain.Project
	err      error
}

func (m *mockProjectService) Create(_ context.Context, p domain.Project) (*domain.Project, error) {
	return &p, m.err
}

func (m *mockProjectService) Get(_ context.Context, id string) (*domain.Project, error) {
	for i := range m.projects {
		if m.projects[i].ID == id {
			return &m.projects[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockProjectService) List(_ context.Context) ([]domain.Project, error) {
	return m.projects, m.err
}

func (m *mockProjectService) SetStatus(_ context.Context, _ string, _ domain.ProjectStatus) error {
	return m.err
}

// testPorts wires real services over in-memory stores holding two
// snapshots of the "erp_rollout" project.
func testPorts(t *testing.T) *Ports {
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
		KPIs:       domain.KPIs{"budget": "$1.0M", "timeline": "On Track"},
		Issues:     []domain.Record{{"Issue #": "1", "Status": "Open"}},
		RawText:    "week 1",
	}))
	require.NoError(t, snapshotStore.Save(ctx, &domain.Snapshot{
		ID:         "snap-2",
		ProjectID:  "erp_rollout",
		ReportDate: "2024-03-08",
		UploadedAt: uploaded.Add(7 * 24 * time.Hour),
		KPIs:       domain.KPIs{"budget": "$1.2M", "timeline": "Delayed"},
		Issues:     []domain.Record{{"Issue #": "1", "Status": "Closed"}},
		RawText:    "week 2",
	}))

	classifier := services.NewRuleClassifier()
	return &Ports{
		Compare:    services.NewCompareService(snapshotStore, classifier, services.NewRiskCache(memory.NewRiskCacheStore())),
		Classifier: classifier,
		Project:    projects,
		Snapshot:   services.NewSnapshotService(snapshotStore, projectStore, nil, nil),
	}
}
