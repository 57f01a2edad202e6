package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TransitionArrow separates the previous and current value of a transition.
const TransitionArrow = " → "

// Transition is a categorical change rendered as "previous → current".
type Transition struct {
	From string
	To   string
}

// String returns the "from → to" form.
func (t Transition) String() string {
	return t.From + TransitionArrow + t.To
}

// MarshalJSON encodes the transition as its display string.
func (t Transition) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a "from → to" string.
func (t *Transition) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	from, to, ok := strings.Cut(s, TransitionArrow)
	if !ok {
		return fmt.Errorf("%w: transition %q has no arrow", ErrInvalidInput, s)
	}
	t.From, t.To = from, to
	return nil
}

// AmountChange is a numeric (previous, current) pair, encoded as a two-element array.
type AmountChange struct {
	Previous float64
	Current  float64
}

// MarshalJSON encodes the pair as [previous, current].
func (a AmountChange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{a.Previous, a.Current})
}

// UnmarshalJSON decodes a [previous, current] array.
func (a *AmountChange) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	a.Previous, a.Current = pair[0], pair[1]
	return nil
}

// KPIDelta is the field-level change between two KPI sets.
// A nil field means no comparable signal or no change.
type KPIDelta struct {
	AllottedBudgetChange  *AmountChange `json:"allotted_budget_change,omitempty"`
	PercentSpentChange    *Transition   `json:"percent_spent_change,omitempty"`
	BudgetChange          *float64      `json:"budget_change,omitempty"`
	BudgetPercentChange   *float64      `json:"budget_percent_change,omitempty"`
	TimelineChange        *Transition   `json:"timeline_change,omitempty"`
	ScopeChange           *Transition   `json:"scope_change,omitempty"`
	ClientSentimentChange *Transition   `json:"client_sentiment_change,omitempty"`
}

// IsEmpty reports whether no KPI changed.
func (d KPIDelta) IsEmpty() bool {
	return d.AllottedBudgetChange == nil &&
		d.PercentSpentChange == nil &&
		d.BudgetChange == nil &&
		d.BudgetPercentChange == nil &&
		d.TimelineChange == nil &&
		d.ScopeChange == nil &&
		d.ClientSentimentChange == nil
}

// FieldChange is the (previous, current) value of one watched field,
// encoded as a two-element array.
type FieldChange struct {
	Previous any
	Current  any
}

// MarshalJSON encodes the change as [previous, current].
func (c FieldChange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.Previous, c.Current})
}

// UnmarshalJSON decodes a [previous, current] array.
func (c *FieldChange) UnmarshalJSON(data []byte) error {
	var pair [2]any
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	c.Previous, c.Current = pair[0], pair[1]
	return nil
}

// ChangedRecord is an entity present in both snapshots with at least one
// differing watched field.
type ChangedRecord struct {
	Identity string                 `json:"key"`
	Diff     map[string]FieldChange `json:"diff"`
}

// IdentityWarning records an entity excluded from a collection diff.
type IdentityWarning struct {
	// Side is "current" or "previous".
	Side string `json:"side"`

	// Index is the position of the entity in its collection.
	Index int `json:"index"`

	// Identity is set for duplicates; ambiguous entities have none.
	Identity string `json:"identity,omitempty"`

	// Reason is the text of Err, kept for serialisation.
	Reason string `json:"reason"`

	Err error `json:"-"`
}

// CollectionDiff reconciles one entity collection between two snapshots.
// Every identity lands in at most one of Added, Removed or Changed.
type CollectionDiff struct {
	Added    []Record          `json:"added"`
	Removed  []Record          `json:"removed"`
	Changed  []ChangedRecord   `json:"changed"`
	Warnings []IdentityWarning `json:"warnings,omitempty"`
}

// IsEmpty reports whether nothing was added, removed or changed.
func (d CollectionDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// EntityKind names a snapshot collection.
type EntityKind string

// Snapshot collections that are diffed.
const (
	EntityBudget       EntityKind = "budget"
	EntityDeliverables EntityKind = "deliverables"
	EntityIssues       EntityKind = "issues"
	EntitySchedule     EntityKind = "schedule"
	EntityRisks        EntityKind = "risks"
)

// SnapshotDiff aggregates every delta between two snapshots of a project.
type SnapshotDiff struct {
	ProjectID    string `json:"project_id"`
	PreviousID   string `json:"previous_id,omitempty"`
	CurrentID    string `json:"current_id,omitempty"`
	PreviousDate string `json:"previous_date,omitempty"`
	CurrentDate  string `json:"current_date,omitempty"`

	KPIChanges         KPIDelta       `json:"kpi_changes"`
	BudgetChanges      CollectionDiff `json:"budget_changes"`
	DeliverableChanges CollectionDiff `json:"deliverable_changes"`
	IssueChanges       CollectionDiff `json:"issue_changes"`
	ScheduleChanges    CollectionDiff `json:"schedule_changes"`
	RiskChanges        CollectionDiff `json:"risk_changes"`
}

// Collection returns the diff for one entity kind.
func (d *SnapshotDiff) Collection(kind EntityKind) CollectionDiff {
	switch kind {
	case EntityBudget:
		return d.BudgetChanges
	case EntityDeliverables:
		return d.DeliverableChanges
	case EntityIssues:
		return d.IssueChanges
	case EntitySchedule:
		return d.ScheduleChanges
	case EntityRisks:
		return d.RiskChanges
	default:
		return CollectionDiff{}
	}
}
