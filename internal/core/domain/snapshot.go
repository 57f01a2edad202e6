package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Well-known KPI keys.
const (
	KPIBudget          = "budget"
	KPIAllottedBudget  = "allotted_budget"
	KPIPercentSpent    = "percent_spent"
	KPITimeline        = "timeline"
	KPIScope           = "scope"
	KPIClientSentiment = "client_sentiment"
)

// ReportDateLayout is the canonical report date format.
const ReportDateLayout = "2006-01-02"

// Record is one entity of a snapshot collection (a budget line, an issue, a task...).
// Field names follow the report column headings, e.g. "Issue #" or "Date Due".
type Record map[string]any

// Text returns the trimmed textual form of a field, or "" when absent or null.
func (r Record) Text(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(stringify(v))
}

// KPIs holds the headline indicators of a snapshot.
//
// Budget may be a display string such as "$2.3M (80% used)" or an object
// with allotted/spent/remaining/percent_spent members. Extraction output is
// not uniform, so accessors tolerate common key aliases.
type KPIs map[string]any

// Text returns the first non-empty trimmed value among keys.
func (k KPIs) Text(keys ...string) string {
	for _, key := range keys {
		v, ok := k[key]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(stringify(v)); s != "" {
			return s
		}
	}
	return ""
}

// Timeline returns the timeline status, e.g. "On Track".
func (k KPIs) Timeline() string {
	return k.Text(KPITimeline, "Timeline", "schedule")
}

// Scope returns the scope description.
func (k KPIs) Scope() string {
	return k.Text(KPIScope, "Scope")
}

// ClientSentiment returns the client sentiment, e.g. "Positive".
func (k KPIs) ClientSentiment() string {
	return k.Text(KPIClientSentiment, "client sentiment", "Client Sentiment", "sentiment")
}

// BudgetText returns the budget display string. It is empty when the budget
// is modelled as an object or is absent.
func (k KPIs) BudgetText() string {
	v, ok := k[KPIBudget]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// AllottedBudget returns the numeric allotted budget, from either the
// top-level allotted_budget key or the budget object.
func (k KPIs) AllottedBudget() (float64, bool) {
	if f, ok := toFloat(k[KPIAllottedBudget]); ok {
		return f, true
	}
	if m := k.budgetObject(); m != nil {
		for _, key := range []string{"allotted", KPIAllottedBudget, "Allotted Budget"} {
			if f, ok := toFloat(m[key]); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// PercentSpent returns the spent fraction (0..1), from either the top-level
// percent_spent key or the budget object.
func (k KPIs) PercentSpent() (float64, bool) {
	if f, ok := toFloat(k[KPIPercentSpent]); ok {
		return f, true
	}
	if m := k.budgetObject(); m != nil {
		for _, key := range []string{KPIPercentSpent, "Percent Spent"} {
			if f, ok := toFloat(m[key]); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func (k KPIs) budgetObject() map[string]any {
	switch m := k[KPIBudget].(type) {
	case map[string]any:
		return m
	case KPIs:
		return m
	default:
		return nil
	}
}

// Snapshot is one ingested status report for a project at a point in time.
// Snapshots are immutable once saved; a correction is a new snapshot.
type Snapshot struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name,omitempty"`
	ReportDate  string    `json:"report_date"`
	UploadedAt  time.Time `json:"uploaded_at"`
	Filename    string    `json:"filename,omitempty"`
	FileType    string    `json:"file_type,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	NextSteps   string    `json:"next_steps,omitempty"`

	KPIs          KPIs     `json:"kpis,omitempty"`
	BudgetDetails []Record `json:"budget_details,omitempty"`
	Schedule      []Record `json:"schedule,omitempty"`
	Issues        []Record `json:"issues,omitempty"`
	Deliverables  []Record `json:"deliverables,omitempty"`
	Risks         []Record `json:"risks,omitempty"`

	// Narrative keeps collection fields that arrived as free text instead of
	// a list of records (extraction often returns issues as prose).
	Narrative map[string]string `json:"narrative,omitempty"`

	RawText string `json:"raw_text,omitempty"`
}

// Before reports whether s precedes other in (report_date, uploaded_at) order.
func (s *Snapshot) Before(other *Snapshot) bool {
	if s.ReportDate != other.ReportDate {
		return s.ReportDate < other.ReportDate
	}
	return s.UploadedAt.Before(other.UploadedAt)
}

// SortSnapshots orders snapshots by report date, breaking ties by upload time.
func SortSnapshots(snapshots []Snapshot) {
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Before(&snapshots[j])
	})
}

// collectionFields lists the snapshot JSON keys holding record collections.
var collectionFields = []string{"budget_details", "schedule", "issues", "deliverables", "risks"}

// DecodeSnapshot parses a snapshot document. Scalars and collections are
// optional; a collection item that is not an object fails with ErrInvalidInput.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: snapshot is not a JSON object: %v", ErrInvalidInput, err)
	}
	return SnapshotFromMap(raw)
}

// SnapshotFromMap builds a snapshot from a generic decoded document.
func SnapshotFromMap(raw map[string]any) (*Snapshot, error) {
	snap := &Snapshot{
		ID:          Record(raw).Text("id"),
		ProjectID:   Record(raw).Text("project_id"),
		ProjectName: Record(raw).Text("project_name"),
		Filename:    Record(raw).Text("filename"),
		FileType:    Record(raw).Text("file_type"),
		Summary:     joinText(raw["summary"]),
		NextSteps:   joinText(raw["next_steps"]),
		RawText:     Record(raw).Text("raw_text"),
	}

	if date, ok := NormaliseReportDate(Record(raw).Text("report_date")); ok {
		snap.ReportDate = date
	}
	if ts := Record(raw).Text("uploaded_at"); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			snap.UploadedAt = t
		}
	}

	switch kpis := raw["kpis"].(type) {
	case nil:
	case map[string]any:
		snap.KPIs = KPIs(kpis)
	default:
		return nil, fmt.Errorf("%w: kpis must be an object, got %T", ErrInvalidInput, kpis)
	}

	for _, field := range collectionFields {
		records, text, err := decodeCollection(field, raw[field])
		if err != nil {
			return nil, err
		}
		if text != "" {
			if snap.Narrative == nil {
				snap.Narrative = make(map[string]string)
			}
			snap.Narrative[field] = text
		}
		switch field {
		case "budget_details":
			snap.BudgetDetails = records
		case "schedule":
			snap.Schedule = records
		case "issues":
			snap.Issues = records
		case "deliverables":
			snap.Deliverables = records
		case "risks":
			snap.Risks = records
		}
	}

	return snap, nil
}

func decodeCollection(field string, v any) ([]Record, string, error) {
	switch items := v.(type) {
	case nil:
		return nil, "", nil
	case string:
		return nil, strings.TrimSpace(items), nil
	case []any:
		records := make([]Record, 0, len(items))
		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, "", fmt.Errorf("%w: %s[%d] is %T, not an object", ErrInvalidInput, field, i, item)
			}
			records = append(records, Record(m))
		}
		return records, "", nil
	default:
		return nil, "", fmt.Errorf("%w: %s must be a list, got %T", ErrInvalidInput, field, v)
	}
}

// reportDateLayouts are the date spellings accepted from extracted reports.
var reportDateLayouts = []string{
	ReportDateLayout,
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// NormaliseReportDate converts a report date to YYYY-MM-DD.
// It returns false when s is empty or not a recognised date.
func NormaliseReportDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range reportDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ReportDateLayout), true
		}
	}
	return "", false
}

// joinText flattens a scalar or list of scalars into newline-separated text.
func joinText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(stringify(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return strings.TrimSpace(stringify(v))
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
