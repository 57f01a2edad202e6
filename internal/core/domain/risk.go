package domain

import (
	"strings"
	"time"
)

// RiskCategory groups risk entries.
type RiskCategory string

// Risk categories, in display order.
const (
	RiskCost            RiskCategory = "cost"
	RiskTimeline        RiskCategory = "timeline"
	RiskScope           RiskCategory = "scope"
	RiskClientSentiment RiskCategory = "client_sentiment"
)

// AllRiskCategories returns every category in display order.
func AllRiskCategories() []RiskCategory {
	return []RiskCategory{RiskCost, RiskTimeline, RiskScope, RiskClientSentiment}
}

// IsValid returns true if the category is recognised.
func (c RiskCategory) IsValid() bool {
	switch c {
	case RiskCost, RiskTimeline, RiskScope, RiskClientSentiment:
		return true
	default:
		return false
	}
}

// Impact is the severity of a risk should it materialise.
type Impact string

// Impact levels.
const (
	ImpactLow    Impact = "LOW"
	ImpactMedium Impact = "MEDIUM"
	ImpactHigh   Impact = "HIGH"
)

// AllImpacts returns every impact level from lowest to highest.
func AllImpacts() []Impact {
	return []Impact{ImpactLow, ImpactMedium, ImpactHigh}
}

// IsValid returns true if the impact is recognised.
func (i Impact) IsValid() bool {
	switch i {
	case ImpactLow, ImpactMedium, ImpactHigh:
		return true
	default:
		return false
	}
}

// ParseImpact parses an impact level case-insensitively.
func ParseImpact(s string) (Impact, bool) {
	i := Impact(strings.ToUpper(strings.TrimSpace(s)))
	return i, i.IsValid()
}

// AlertLevel is the final severity shown to users.
type AlertLevel string

// Alert levels. AlertNone is only used for summaries of empty categories.
const (
	AlertNone   AlertLevel = "NONE"
	AlertLow    AlertLevel = "LOW"
	AlertMedium AlertLevel = "MEDIUM"
	AlertHigh   AlertLevel = "HIGH"
)

// Rank orders alert levels; NONE and unknown values rank lowest.
func (a AlertLevel) Rank() int {
	switch a {
	case AlertLow:
		return 1
	case AlertMedium:
		return 2
	case AlertHigh:
		return 3
	default:
		return 0
	}
}

// Confidence bounds.
const (
	MinConfidence = 1
	MaxConfidence = 10
)

// alertMatrix is indexed by confidence band (1-2, 3-4, 5-6, 7-8, 9-10)
// then by impact (LOW, MEDIUM, HIGH).
var alertMatrix = [5][3]AlertLevel{
	{AlertLow, AlertLow, AlertMedium},
	{AlertLow, AlertMedium, AlertMedium},
	{AlertLow, AlertMedium, AlertHigh},
	{AlertMedium, AlertHigh, AlertHigh},
	{AlertHigh, AlertHigh, AlertHigh},
}

// AlertLevelFor derives the alert level of a risk from its confidence and impact.
// Confidence is clamped to 1..10; an unknown impact is read as LOW.
func AlertLevelFor(confidence int, impact Impact) AlertLevel {
	if confidence < MinConfidence {
		confidence = MinConfidence
	}
	if confidence > MaxConfidence {
		confidence = MaxConfidence
	}
	band := (confidence - 1) / 2

	col := 0
	switch impact {
	case ImpactMedium:
		col = 1
	case ImpactHigh:
		col = 2
	}
	return alertMatrix[band][col]
}

// RiskEntry is one classified risk.
type RiskEntry struct {
	Risk       string     `json:"risk"`
	Confidence int        `json:"confidence"`
	Impact     Impact     `json:"impact"`
	AlertLevel AlertLevel `json:"alert_level"`
}

// NewRiskEntry builds an entry with its alert level taken from the matrix.
func NewRiskEntry(risk string, confidence int, impact Impact) RiskEntry {
	return RiskEntry{
		Risk:       risk,
		Confidence: confidence,
		Impact:     impact,
		AlertLevel: AlertLevelFor(confidence, impact),
	}
}

// Classification holds the risk entries found for each category.
// An empty classification is a legitimate "no risks" result.
type Classification struct {
	Cost            []RiskEntry `json:"cost"`
	Timeline        []RiskEntry `json:"timeline"`
	Scope           []RiskEntry `json:"scope"`
	ClientSentiment []RiskEntry `json:"client_sentiment"`
}

// NewClassification returns a classification with empty, non-nil categories.
func NewClassification() Classification {
	return Classification{
		Cost:            []RiskEntry{},
		Timeline:        []RiskEntry{},
		Scope:           []RiskEntry{},
		ClientSentiment: []RiskEntry{},
	}
}

// Entries returns the entries of one category.
func (c *Classification) Entries(category RiskCategory) []RiskEntry {
	switch category {
	case RiskCost:
		return c.Cost
	case RiskTimeline:
		return c.Timeline
	case RiskScope:
		return c.Scope
	case RiskClientSentiment:
		return c.ClientSentiment
	default:
		return nil
	}
}

// Add appends an entry to a category. Unknown categories are ignored.
func (c *Classification) Add(category RiskCategory, entry RiskEntry) {
	switch category {
	case RiskCost:
		c.Cost = append(c.Cost, entry)
	case RiskTimeline:
		c.Timeline = append(c.Timeline, entry)
	case RiskScope:
		c.Scope = append(c.Scope, entry)
	case RiskClientSentiment:
		c.ClientSentiment = append(c.ClientSentiment, entry)
	}
}

// IsEmpty reports whether no category holds an entry.
func (c *Classification) IsEmpty() bool {
	return len(c.Cost) == 0 && len(c.Timeline) == 0 && len(c.Scope) == 0 && len(c.ClientSentiment) == 0
}

// MaxAlert returns the highest alert level in a category, or NONE.
func (c *Classification) MaxAlert(category RiskCategory) AlertLevel {
	level := AlertNone
	for _, e := range c.Entries(category) {
		if e.AlertLevel.Rank() > level.Rank() {
			level = e.AlertLevel
		}
	}
	return level
}

// RiskCacheEntry is a memoised classification for one (previous, current) KPI pair.
type RiskCacheEntry struct {
	ProjectID    string
	CurrentDate  string
	PreviousDate string

	// PairHash is the primary key: hex SHA-256 of both canonical KPI documents.
	PairHash string

	// RiskJSON is the serialised Classification.
	RiskJSON string

	GeneratedAt time.Time
}

// RiskSummary is the dashboard view of one classified snapshot pair.
type RiskSummary struct {
	PreviousDate string
	CurrentDate  string

	// Levels holds the highest alert level per category.
	Levels map[RiskCategory]AlertLevel

	// HighCount is the number of categories at HIGH.
	HighCount int
}

// SummariseClassification reduces a classification to its dashboard row.
func SummariseClassification(previousDate, currentDate string, c *Classification) RiskSummary {
	summary := RiskSummary{
		PreviousDate: previousDate,
		CurrentDate:  currentDate,
		Levels:       make(map[RiskCategory]AlertLevel, 4),
	}
	for _, category := range AllRiskCategories() {
		level := c.MaxAlert(category)
		summary.Levels[category] = level
		if level == AlertHigh {
			summary.HighCount++
		}
	}
	return summary
}

// SuggestedRisk is a new risk proposed for the project's risk register.
// It is advisory and never feeds the alert matrix.
type SuggestedRisk struct {
	DateIdentified string  `json:"Date Identified"`
	ImpactRating   float64 `json:"Impact Rating"`
	Name           string  `json:"Risk Name"`
	Description    string  `json:"Risk Description"`
}
