package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
)

// Ensure RuleClassifier implements the interface.
var _ driving.RiskClassifier = (*RuleClassifier)(nil)

// Risk texts emitted by the decision table.
const (
	RiskBudgetOverrun      = "Budget overrun likely"
	RiskBudgetPressure     = "Possible budget pressure"
	RiskScheduleDeviation  = "Schedule deviation reported"
	RiskScopeCreep         = "Scope creep risk due to new work"
	RiskClientDissatisfied = "Client dissatisfaction trend"
)

var scopeGrowthPattern = regexp.MustCompile(`(?i)\b(expanded|added|increased|enhanced)\b`)

// sentimentRank orders client sentiment: Positive > Neutral > Negative.
var sentimentRank = map[string]int{
	"negative": 1,
	"neutral":  2,
	"positive": 3,
}

// rule is one row of the decision table.
type rule struct {
	risk       string
	confidence int
	impact     domain.Impact
}

var (
	ruleBudgetOverrunSevere = rule{RiskBudgetOverrun, 9, domain.ImpactHigh}
	ruleBudgetOverrun       = rule{RiskBudgetOverrun, 8, domain.ImpactHigh}
	ruleBudgetPressure      = rule{RiskBudgetPressure, 6, domain.ImpactHigh}
	ruleScheduleDeviation   = rule{RiskScheduleDeviation, 7, domain.ImpactHigh}
	ruleScopeCreep          = rule{RiskScopeCreep, 6, domain.ImpactMedium}
	ruleClientDissatisfied  = rule{RiskClientDissatisfied, 7, domain.ImpactMedium}
)

// decisionTable lists every row a category can produce.
var decisionTable = map[domain.RiskCategory][]rule{
	domain.RiskCost:            {ruleBudgetOverrunSevere, ruleBudgetOverrun, ruleBudgetPressure},
	domain.RiskTimeline:        {ruleScheduleDeviation},
	domain.RiskScope:           {ruleScopeCreep},
	domain.RiskClientSentiment: {ruleClientDissatisfied},
}

// tableRow finds the row of category matching risk text (case-insensitive),
// confidence and impact.
func tableRow(category domain.RiskCategory, risk string, confidence int, impact domain.Impact) (rule, bool) {
	risk = strings.TrimSpace(risk)
	for _, r := range decisionTable[category] {
		if strings.EqualFold(r.risk, risk) && r.confidence == confidence && r.impact == impact {
			return r, true
		}
	}
	return rule{}, false
}

// RuleClassifier maps a KPI delta to risks with a fixed decision table.
// It is deterministic and never calls out.
type RuleClassifier struct{}

// NewRuleClassifier creates a rule classifier.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Classify applies the decision table to delta. Each category holds at most
// one entry: when several rules match, the highest confidence wins.
// The current KPIs are not consulted by the table.
func (c *RuleClassifier) Classify(ctx context.Context, _ domain.KPIs, delta domain.KPIDelta) (domain.Classification, error) {
	if err := ctx.Err(); err != nil {
		return domain.Classification{}, classificationContextError(err)
	}

	result := domain.NewClassification()
	add := func(category domain.RiskCategory, matches ...rule) {
		best, ok := strongest(matches)
		if ok {
			result.Add(category, domain.NewRiskEntry(best.risk, best.confidence, best.impact))
		}
	}

	add(domain.RiskCost, budgetRules(delta)...)
	add(domain.RiskTimeline, timelineRules(delta)...)
	add(domain.RiskScope, scopeRules(delta)...)
	add(domain.RiskClientSentiment, sentimentRules(delta)...)

	return result, nil
}

// budgetRules keys off the display-string percent change only. An allotted
// budget pair carries no percent change of its own.
func budgetRules(delta domain.KPIDelta) []rule {
	if delta.BudgetPercentChange == nil {
		return nil
	}
	switch pct := *delta.BudgetPercentChange; {
	case pct > 15:
		return []rule{ruleBudgetOverrunSevere}
	case pct >= 10:
		return []rule{ruleBudgetOverrun}
	case pct >= 5:
		return []rule{ruleBudgetPressure}
	default:
		return nil
	}
}

func timelineRules(delta domain.KPIDelta) []rule {
	t := delta.TimelineChange
	if t == nil {
		return nil
	}
	if normaliseStatus(t.From) == "on track" && normaliseStatus(t.To) != "on track" {
		return []rule{ruleScheduleDeviation}
	}
	return nil
}

func scopeRules(delta domain.KPIDelta) []rule {
	s := delta.ScopeChange
	if s == nil {
		return nil
	}
	if scopeGrowthPattern.MatchString(s.To) {
		return []rule{ruleScopeCreep}
	}
	return nil
}

func sentimentRules(delta domain.KPIDelta) []rule {
	s := delta.ClientSentimentChange
	if s == nil {
		return nil
	}
	from, fromOK := SentimentRank(s.From)
	to, toOK := SentimentRank(s.To)
	if fromOK && toOK && to < from {
		return []rule{ruleClientDissatisfied}
	}
	return nil
}

// SentimentRank returns the ordinal of a sentiment value. Qualified values
// such as "Mostly positive" rank by the keyword they contain.
func SentimentRank(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r, ok := sentimentRank[s]; ok {
		return r, true
	}
	for _, word := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == ',' || r == '/'
	}) {
		if r, ok := sentimentRank[word]; ok {
			return r, true
		}
	}
	return 0, false
}

// normaliseStatus lower-cases a timeline status and folds "on-track" into "on track".
func normaliseStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func strongest(rules []rule) (rule, bool) {
	if len(rules) == 0 {
		return rule{}, false
	}
	best := rules[0]
	for _, r := range rules[1:] {
		if r.confidence > best.confidence {
			best = r
		}
	}
	return best, true
}

// classificationContextError maps a context error to a classification failure.
func classificationContextError(err error) error {
	kind := domain.KindBackend
	if errors.Is(err, context.DeadlineExceeded) {
		kind = domain.KindTimeout
	}
	return &domain.ClassificationError{Kind: kind, Err: err}
}
