package services

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/logger"
)

// Sides of a collection diff, as reported in identity warnings.
const (
	SideCurrent  = "current"
	SidePrevious = "previous"
)

// compositeSeparator joins the parts of a composite identity.
const compositeSeparator = "__"

// IdentityStrategy derives an entity identity from one or more fields.
//
// A single-field strategy needs that field to be non-empty. A composite
// strategy needs its first field to be non-empty; the remaining parts may be
// blank and are joined with "__".
type IdentityStrategy struct {
	Fields []string

	// Prefix is prepended to the identity, keeping strategies apart.
	Prefix string
}

// FieldIdentity returns a strategy keyed on a single field.
func FieldIdentity(name string) IdentityStrategy {
	return IdentityStrategy{Fields: []string{name}}
}

// CompositeIdentity returns a strategy keyed on several fields.
func CompositeIdentity(fields ...string) IdentityStrategy {
	return IdentityStrategy{Fields: fields}
}

// Identity returns the identity of r, or false when the strategy cannot apply.
func (s IdentityStrategy) Identity(r domain.Record) (string, bool) {
	if len(s.Fields) == 0 {
		return "", false
	}
	parts := make([]string, len(s.Fields))
	for i, field := range s.Fields {
		parts[i] = r.Text(field)
	}
	if parts[0] == "" {
		return "", false
	}
	return s.Prefix + strings.Join(parts, compositeSeparator), true
}

// IdentitySpec describes how one collection is reconciled.
type IdentitySpec struct {
	Kind domain.EntityKind

	// Strategies are tried in order; the first that applies wins.
	Strategies []IdentityStrategy

	// Watched lists the fields compared between matched entities.
	Watched []string
}

// Identity returns the identity of r under the first applicable strategy.
func (s IdentitySpec) Identity(r domain.Record) (string, bool) {
	for _, strategy := range s.Strategies {
		if id, ok := strategy.Identity(r); ok {
			return id, true
		}
	}
	return "", false
}

// Identity specs for each snapshot collection.
//
// Issues fall back to "Issue Detail__Issue Creation Date" when "Issue #" is
// missing. Two distinct issues with the same detail text recorded on the same
// date therefore share an identity and are matched as one entity across
// snapshots. Within a single snapshot the second of them is reported as a
// duplicate rather than merged.
var (
	BudgetIdentity = IdentitySpec{
		Kind:       domain.EntityBudget,
		Strategies: []IdentityStrategy{FieldIdentity("Category")},
		Watched:    []string{"Allotted Budget", "Spent Budget", "Remaining Budget", "Percent Spent", "Notes"},
	}

	DeliverableIdentity = IdentitySpec{
		Kind:       domain.EntityDeliverables,
		Strategies: []IdentityStrategy{FieldIdentity("Deliverable")},
		Watched:    []string{"Start Date", "Date Due", "Status"},
	}

	IssueIdentity = IdentitySpec{
		Kind: domain.EntityIssues,
		Strategies: []IdentityStrategy{
			{Fields: []string{"Issue #"}, Prefix: "#"},
			CompositeIdentity("Issue Detail", "Issue Creation Date"),
		},
		Watched: []string{"Status", "Owner", "Due Date", "Recommended Action", "Issue Category", "Resolution"},
	}

	ScheduleIdentity = IdentitySpec{
		Kind:       domain.EntitySchedule,
		Strategies: []IdentityStrategy{FieldIdentity("Task ID"), FieldIdentity("Task Name")},
		Watched:    []string{"Start Date", "End Date", "Status", "Assigned To", "Dependencies"},
	}

	RiskIdentity = IdentitySpec{
		Kind:       domain.EntityRisks,
		Strategies: []IdentityStrategy{CompositeIdentity("Risk Name and Description", "Date Identified")},
		Watched: []string{
			"Probability Rating", "Impact Rating", "Risk Category", "Task Area",
			"Mitigation Strategy", "Mitigation Owner",
		},
	}
)

// DiffCollection reconciles one entity collection between two snapshots.
//
// Entities without an identity, and repeats of an identity within one side,
// are left out of the diff and reported in Warnings. Added, Removed and
// Changed are sorted by identity, and each identity lands in at most one of them.
func DiffCollection(current, previous []domain.Record, spec IdentitySpec) domain.CollectionDiff {
	diff := domain.CollectionDiff{
		Added:   []domain.Record{},
		Removed: []domain.Record{},
		Changed: []domain.ChangedRecord{},
	}

	curMap := indexRecords(current, spec, SideCurrent, &diff.Warnings)
	prevMap := indexRecords(previous, spec, SidePrevious, &diff.Warnings)

	for _, id := range sortedKeys(curMap) {
		cur := curMap[id]
		prev, ok := prevMap[id]
		if !ok {
			diff.Added = append(diff.Added, cur)
			continue
		}
		if changes := diffFields(cur, prev, spec.Watched); len(changes) > 0 {
			diff.Changed = append(diff.Changed, domain.ChangedRecord{Identity: id, Diff: changes})
		}
	}
	for _, id := range sortedKeys(prevMap) {
		if _, ok := curMap[id]; !ok {
			diff.Removed = append(diff.Removed, prevMap[id])
		}
	}

	return diff
}

func indexRecords(records []domain.Record, spec IdentitySpec, side string, warnings *[]domain.IdentityWarning) map[string]domain.Record {
	index := make(map[string]domain.Record, len(records))
	for i, r := range records {
		id, ok := spec.Identity(r)
		if !ok {
			err := fmt.Errorf("%s %s[%d]: %w", side, spec.Kind, i, domain.ErrAmbiguousIdentity)
			*warnings = append(*warnings, domain.IdentityWarning{
				Side: side, Index: i, Reason: err.Error(), Err: err,
			})
			logger.Warn("diff %s: skipping %s entity %d with no identity", spec.Kind, side, i)
			continue
		}
		if _, dup := index[id]; dup {
			err := fmt.Errorf("%s %s[%d] %q: %w", side, spec.Kind, i, id, domain.ErrDuplicateIdentity)
			*warnings = append(*warnings, domain.IdentityWarning{
				Side: side, Index: i, Identity: id, Reason: err.Error(), Err: err,
			})
			logger.Warn("diff %s: skipping duplicate %s entity %q at %d", spec.Kind, side, id, i)
			continue
		}
		index[id] = r
	}
	return index
}

func diffFields(cur, prev domain.Record, watched []string) map[string]domain.FieldChange {
	var changes map[string]domain.FieldChange
	for _, field := range watched {
		c, p := cur[field], prev[field]
		if reflect.DeepEqual(c, p) {
			continue
		}
		if changes == nil {
			changes = make(map[string]domain.FieldChange)
		}
		changes[field] = domain.FieldChange{Previous: p, Current: c}
	}
	return changes
}

func sortedKeys(m map[string]domain.Record) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DiffSnapshots aggregates the KPI delta and every collection diff of a pair.
func DiffSnapshots(current, previous *domain.Snapshot) domain.SnapshotDiff {
	return domain.SnapshotDiff{
		ProjectID:    current.ProjectID,
		PreviousID:   previous.ID,
		CurrentID:    current.ID,
		PreviousDate: previous.ReportDate,
		CurrentDate:  current.ReportDate,

		KPIChanges:         DiffKPIs(current.KPIs, previous.KPIs),
		BudgetChanges:      DiffCollection(current.BudgetDetails, previous.BudgetDetails, BudgetIdentity),
		DeliverableChanges: DiffCollection(current.Deliverables, previous.Deliverables, DeliverableIdentity),
		IssueChanges:       DiffCollection(current.Issues, previous.Issues, IssueIdentity),
		ScheduleChanges:    DiffCollection(current.Schedule, previous.Schedule, ScheduleIdentity),
		RiskChanges:        DiffCollection(current.Risks, previous.Risks, RiskIdentity),
	}
}
