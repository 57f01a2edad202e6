package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

func TestIdentityStrategy(t *testing.T) {
	tests := []struct {
		name     string
		strategy IdentityStrategy
		record   domain.Record
		want     string
		ok       bool
	}{
		{"single field", FieldIdentity("Category"), domain.Record{"Category": " Labour "}, "Labour", true},
		{"single field missing", FieldIdentity("Category"), domain.Record{}, "", false},
		{"single field null", FieldIdentity("Category"), domain.Record{"Category": nil}, "", false},
		{"numeric field", FieldIdentity("Task ID"), domain.Record{"Task ID": 7.0}, "7", true},
		{
			"composite",
			CompositeIdentity("Issue Detail", "Issue Creation Date"),
			domain.Record{"Issue Detail": "Vendor late", "Issue Creation Date": "2024-01-03"},
			"Vendor late__2024-01-03", true,
		},
		{
			"composite with blank tail",
			CompositeIdentity("Issue Detail", "Issue Creation Date"),
			domain.Record{"Issue Detail": "Vendor late"},
			"Vendor late__", true,
		},
		{
			"composite without head",
			CompositeIdentity("Issue Detail", "Issue Creation Date"),
			domain.Record{"Issue Creation Date": "2024-01-03"},
			"", false,
		},
		{"prefixed", IdentityStrategy{Fields: []string{"Issue #"}, Prefix: "#"}, domain.Record{"Issue #": "12"}, "#12", true},
		{"no fields", IdentityStrategy{}, domain.Record{"x": "y"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.strategy.Identity(tt.record)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentitySpec_FallbackOrder(t *testing.T) {
	id, ok := ScheduleIdentity.Identity(domain.Record{"Task ID": "T-1", "Task Name": "Design"})
	require.True(t, ok)
	assert.Equal(t, "T-1", id)

	id, ok = ScheduleIdentity.Identity(domain.Record{"Task Name": "Design"})
	require.True(t, ok)
	assert.Equal(t, "Design", id)

	_, ok = ScheduleIdentity.Identity(domain.Record{"Status": "Open"})
	assert.False(t, ok)
}

func TestDiffCollection_AddedRemovedChanged(t *testing.T) {
	previous := []domain.Record{
		{"Deliverable": "Design doc", "Status": "In Progress", "Date Due": "2024-02-01"},
		{"Deliverable": "Test plan", "Status": "Open"},
	}
	current := []domain.Record{
		{"Deliverable": "Design doc", "Status": "Complete", "Date Due": "2024-02-01"},
		{"Deliverable": "Cutover", "Status": "Open"},
	}

	diff := DiffCollection(current, previous, DeliverableIdentity)

	require.Len(t, diff.Added, 1)
	assert.Equal(t, "Cutover", diff.Added[0]["Deliverable"])
	require.Len(t, diff.Removed, 1)
	assert.Equal(t, "Test plan", diff.Removed[0]["Deliverable"])
	require.Len(t, diff.Changed, 1)
	assert.Equal(t, "Design doc", diff.Changed[0].Identity)
	assert.Equal(t, map[string]domain.FieldChange{
		"Status": {Previous: "In Progress", Current: "Complete"},
	}, diff.Changed[0].Diff)
	assert.Empty(t, diff.Warnings)
}

func TestDiffCollection_UnwatchedFieldsIgnored(t *testing.T) {
	previous := []domain.Record{{"Deliverable": "Design doc", "Notes": "draft"}}
	current := []domain.Record{{"Deliverable": "Design doc", "Notes": "final"}}

	diff := DiffCollection(current, previous, DeliverableIdentity)
	assert.True(t, diff.IsEmpty())
}

func TestDiffCollection_FieldAppearsAndDisappears(t *testing.T) {
	previous := []domain.Record{{"Issue #": "4", "Owner": "Ana"}}
	current := []domain.Record{{"Issue #": "4", "Status": "Closed"}}

	diff := DiffCollection(current, previous, IssueIdentity)

	require.Len(t, diff.Changed, 1)
	assert.Equal(t, "#4", diff.Changed[0].Identity)
	assert.Equal(t, domain.FieldChange{Previous: nil, Current: "Closed"}, diff.Changed[0].Diff["Status"])
	assert.Equal(t, domain.FieldChange{Previous: "Ana", Current: nil}, diff.Changed[0].Diff["Owner"])
}

func TestDiffCollection_EmptyInputs(t *testing.T) {
	diff := DiffCollection(nil, nil, BudgetIdentity)

	assert.NotNil(t, diff.Added)
	assert.NotNil(t, diff.Removed)
	assert.NotNil(t, diff.Changed)
	assert.True(t, diff.IsEmpty())

	data, err := json.Marshal(diff)
	require.NoError(t, err)
	assert.JSONEq(t, `{"added":[],"removed":[],"changed":[]}`, string(data))
}

func TestDiffCollection_Symmetry(t *testing.T) {
	a := []domain.Record{
		{"Category": "Labour", "Spent Budget": 100.0},
		{"Category": "Licences", "Spent Budget": 50.0},
	}
	b := []domain.Record{
		{"Category": "Labour", "Spent Budget": 120.0},
		{"Category": "Travel", "Spent Budget": 10.0},
	}

	forward := DiffCollection(b, a, BudgetIdentity)
	backward := DiffCollection(a, b, BudgetIdentity)

	assert.Equal(t, forward.Added, backward.Removed)
	assert.Equal(t, forward.Removed, backward.Added)
	require.Len(t, forward.Changed, 1)
	require.Len(t, backward.Changed, 1)
	assert.Equal(t, forward.Changed[0].Identity, backward.Changed[0].Identity)
	for field, change := range forward.Changed[0].Diff {
		reversed := backward.Changed[0].Diff[field]
		assert.Equal(t, change.Previous, reversed.Current)
		assert.Equal(t, change.Current, reversed.Previous)
	}
}

func TestDiffCollection_SortedByIdentity(t *testing.T) {
	current := []domain.Record{
		{"Task ID": "T-3"}, {"Task ID": "T-1"}, {"Task ID": "T-2"},
	}

	diff := DiffCollection(current, nil, ScheduleIdentity)

	require.Len(t, diff.Added, 3)
	assert.Equal(t, "T-1", diff.Added[0]["Task ID"])
	assert.Equal(t, "T-2", diff.Added[1]["Task ID"])
	assert.Equal(t, "T-3", diff.Added[2]["Task ID"])
}

func TestDiffCollection_AmbiguousIdentity(t *testing.T) {
	current := []domain.Record{
		{"Issue #": "1", "Status": "Open"},
		{"Status": "Open", "Owner": "Raj"},
	}

	diff := DiffCollection(current, nil, IssueIdentity)

	require.Len(t, diff.Added, 1)
	require.Len(t, diff.Warnings, 1)

	w := diff.Warnings[0]
	assert.Equal(t, SideCurrent, w.Side)
	assert.Equal(t, 1, w.Index)
	assert.Empty(t, w.Identity)
	assert.True(t, errors.Is(w.Err, domain.ErrAmbiguousIdentity))
	assert.Contains(t, w.Reason, "ambiguous identity")
}

func TestDiffCollection_DuplicateIdentityKeepsFirst(t *testing.T) {
	previous := []domain.Record{
		{"Category": "Labour", "Spent Budget": 100.0},
		{"Category": "Labour", "Spent Budget": 999.0},
	}
	current := []domain.Record{
		{"Category": "Labour", "Spent Budget": 100.0},
	}

	diff := DiffCollection(current, previous, BudgetIdentity)

	assert.True(t, diff.IsEmpty(), "first occurrence matches current")
	require.Len(t, diff.Warnings, 1)
	assert.Equal(t, SidePrevious, diff.Warnings[0].Side)
	assert.Equal(t, "Labour", diff.Warnings[0].Identity)
	assert.ErrorIs(t, diff.Warnings[0].Err, domain.ErrDuplicateIdentity)
}

// Two distinct issues without an issue number, with the same detail and
// creation date, collapse into one identity.
func TestDiffCollection_IssueCompositeMerge(t *testing.T) {
	previous := []domain.Record{
		{"Issue Detail": "Vendor late", "Issue Creation Date": "2024-03-01", "Owner": "Ana"},
	}
	current := []domain.Record{
		{"Issue Detail": "Vendor late", "Issue Creation Date": "2024-03-01", "Owner": "Raj"},
		{"Issue Detail": "Vendor late", "Issue Creation Date": "2024-03-01", "Owner": "Lee"},
	}

	diff := DiffCollection(current, previous, IssueIdentity)

	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Removed)
	require.Len(t, diff.Changed, 1)
	assert.Equal(t, "Vendor late__2024-03-01", diff.Changed[0].Identity)
	assert.Equal(t, domain.FieldChange{Previous: "Ana", Current: "Raj"}, diff.Changed[0].Diff["Owner"])
	require.Len(t, diff.Warnings, 1)
	assert.ErrorIs(t, diff.Warnings[0].Err, domain.ErrDuplicateIdentity)
}

func TestDiffCollection_IssueNumberAndCompositeDoNotCollide(t *testing.T) {
	previous := []domain.Record{{"Issue #": "Vendor late__", "Status": "Open"}}
	current := []domain.Record{{"Issue Detail": "Vendor late", "Status": "Open"}}

	diff := DiffCollection(current, previous, IssueIdentity)

	assert.Len(t, diff.Added, 1)
	assert.Len(t, diff.Removed, 1)
	assert.Empty(t, diff.Changed)
}

func TestDiffCollection_RiskMitigationChange(t *testing.T) {
	risk := func(owner string) domain.Record {
		return domain.Record{
			"Risk Name and Description": "Key engineer leaving",
			"Date Identified":           "2024-01-10",
			"Impact Rating":             4.0,
			"Mitigation Owner":          owner,
		}
	}

	diff := DiffCollection([]domain.Record{risk("Lee")}, []domain.Record{risk("Ana")}, RiskIdentity)

	require.Len(t, diff.Changed, 1)
	assert.Equal(t, "Key engineer leaving__2024-01-10", diff.Changed[0].Identity)
	assert.Len(t, diff.Changed[0].Diff, 1)
}

func TestDiffSnapshots(t *testing.T) {
	previous := &domain.Snapshot{
		ID: "s1", ProjectID: "erp", ReportDate: "2024-01-01",
		KPIs:     domain.KPIs{"timeline": "On Track"},
		Schedule: []domain.Record{{"Task ID": "T-1", "Status": "Open"}},
	}
	current := &domain.Snapshot{
		ID: "s2", ProjectID: "erp", ReportDate: "2024-02-01",
		KPIs:     domain.KPIs{"timeline": "Delayed"},
		Schedule: []domain.Record{{"Task ID": "T-1", "Status": "Done"}},
		Risks:    []domain.Record{{"Risk Name and Description": "Data loss", "Date Identified": "2024-01-20"}},
	}

	diff := DiffSnapshots(current, previous)

	assert.Equal(t, "erp", diff.ProjectID)
	assert.Equal(t, "s1", diff.PreviousID)
	assert.Equal(t, "s2", diff.CurrentID)
	assert.Equal(t, "2024-01-01", diff.PreviousDate)
	assert.Equal(t, "2024-02-01", diff.CurrentDate)
	require.NotNil(t, diff.KPIChanges.TimelineChange)
	assert.Len(t, diff.Collection(domain.EntitySchedule).Changed, 1)
	assert.Len(t, diff.Collection(domain.EntityRisks).Added, 1)
	assert.True(t, diff.Collection(domain.EntityIssues).IsEmpty())
}
