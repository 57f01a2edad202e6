package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

// budgetAmountPattern matches the leading amount of a budget display string
// such as "$2.3M (80% used)". Thousands separators are tolerated.
var budgetAmountPattern = regexp.MustCompile(`\$([\d,\.]+)\s*([KkMm]?)`)

// DiffKPIs computes the field-level change from previous to current.
// It never fails: a KPI that is absent or empty on either side produces no
// output, and equal values produce no output, so DiffKPIs(x, x) is empty.
func DiffKPIs(current, previous domain.KPIs) domain.KPIDelta {
	var delta domain.KPIDelta

	curAllotted, curOK := current.AllottedBudget()
	prevAllotted, prevOK := previous.AllottedBudget()
	if curOK && prevOK && curAllotted != prevAllotted {
		delta.AllottedBudgetChange = &domain.AmountChange{Previous: prevAllotted, Current: curAllotted}
	}

	curPct, curPctOK := current.PercentSpent()
	prevPct, prevPctOK := previous.PercentSpent()
	if curPctOK && prevPctOK && curPct != prevPct {
		delta.PercentSpentChange = &domain.Transition{
			From: formatFraction(prevPct),
			To:   formatFraction(curPct),
		}
	}

	// Display strings are only consulted when no numeric allotted pair exists.
	if !curOK || !prevOK {
		diffBudgetText(&delta, current.BudgetText(), previous.BudgetText())
	}

	delta.TimelineChange = transition(
		strings.ToLower(strings.TrimSpace(previous.Timeline())),
		strings.ToLower(strings.TrimSpace(current.Timeline())),
	)
	delta.ScopeChange = transition(
		strings.TrimSpace(previous.Scope()),
		strings.TrimSpace(current.Scope()),
	)
	delta.ClientSentimentChange = transition(
		capitalise(previous.ClientSentiment()),
		capitalise(current.ClientSentiment()),
	)

	return delta
}

func diffBudgetText(delta *domain.KPIDelta, current, previous string) {
	cur, ok := ParseBudgetAmount(current)
	if !ok {
		return
	}
	prev, ok := ParseBudgetAmount(previous)
	if !ok || cur == prev {
		return
	}

	change := roundTo(cur-prev, 100)
	pct := 0.0
	if prev != 0 {
		pct = roundTo((cur-prev)/prev*100, 1e6)
	}
	delta.BudgetChange = &change
	delta.BudgetPercentChange = &pct
}

// ParseBudgetAmount extracts the dollar amount from a budget display string,
// scaling K by 1e3 and M by 1e6. It reports false when no amount is found.
func ParseBudgetAmount(s string) (float64, bool) {
	m := budgetAmountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	num := strings.TrimRight(strings.ReplaceAll(m[1], ",", ""), ".")
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		f *= 1_000
	case "M":
		f *= 1_000_000
	}
	return f, true
}

// transition returns nil unless both sides are non-empty and differ.
func transition(previous, current string) *domain.Transition {
	if previous == "" || current == "" || previous == current {
		return nil
	}
	return &domain.Transition{From: previous, To: current}
}

// capitalise trims s and upper-cases its first letter, lower-casing the rest.
func capitalise(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// formatFraction renders a 0..1 fraction as a percentage with two decimals.
func formatFraction(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

func roundTo(v, scale float64) float64 {
	return math.Round(v*scale) / scale
}
