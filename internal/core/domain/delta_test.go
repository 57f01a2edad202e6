package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_JSON(t *testing.T) {
	tr := Transition{From: "on track", To: "delayed"}
	assert.Equal(t, "on track → delayed", tr.String())

	data, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.Equal(t, `"on track → delayed"`, string(data))

	var decoded Transition
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, tr, decoded)
}

func TestTransition_UnmarshalWithoutArrow(t *testing.T) {
	var tr Transition
	err := json.Unmarshal([]byte(`"delayed"`), &tr)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestKPIDelta_JSONOmitsUnchanged(t *testing.T) {
	change := 300000.0
	pct := 15.0
	delta := KPIDelta{
		BudgetChange:         &change,
		BudgetPercentChange:  &pct,
		AllottedBudgetChange: &AmountChange{Previous: 100, Current: 120},
	}

	data, err := json.Marshal(delta)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"budget_change": 300000,
		"budget_percent_change": 15,
		"allotted_budget_change": [100, 120]
	}`, string(data))

	var decoded KPIDelta
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.AllottedBudgetChange)
	assert.Equal(t, 120.0, decoded.AllottedBudgetChange.Current)
	assert.Nil(t, decoded.TimelineChange)
}

func TestKPIDelta_IsEmpty(t *testing.T) {
	assert.True(t, KPIDelta{}.IsEmpty())
	assert.False(t, KPIDelta{ScopeChange: &Transition{From: "a", To: "b"}}.IsEmpty())
}

func TestChangedRecord_JSONShape(t *testing.T) {
	rec := ChangedRecord{
		Identity: "42",
		Diff: map[string]FieldChange{
			"Status": {Previous: "Open", Current: nil},
		},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"key": "42", "diff": {"Status": ["Open", null]}}`, string(data))
}

func TestSnapshotDiff_Collection(t *testing.T) {
	diff := SnapshotDiff{
		IssueChanges: CollectionDiff{Added: []Record{{"Issue #": "7"}}},
	}

	assert.Len(t, diff.Collection(EntityIssues).Added, 1)
	assert.True(t, diff.Collection(EntityRisks).IsEmpty())
	assert.True(t, diff.Collection(EntityKind("unknown")).IsEmpty())
}
