package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
	"github.com/PetersQuinn/executive-insights/internal/logger"
	"github.com/PetersQuinn/executive-insights/internal/metrics"
)

// Ensure LLMClassifier implements the interface.
var _ driving.RiskClassifier = (*LLMClassifier)(nil)

// defaultClassifyPrompt is used when no prompt store override exists.
const defaultClassifyPrompt = `You are a project risk classifier. Apply this decision table exactly.

| Trigger | Risk text | Confidence | Impact |
|---|---|---|---|
| budget increase above 15% | "Budget overrun likely" | 9 | HIGH |
| budget increase 10% to 15% | "Budget overrun likely" | 8 | HIGH |
| budget increase 5% to 10% | "Possible budget pressure" | 6 | HIGH |
| timeline moves from "on track" to anything else | "Schedule deviation reported" | 7 | HIGH |
| new scope mentions expanded, added, increased or enhanced | "Scope creep risk due to new work" | 6 | MEDIUM |
| client sentiment worsens (Positive > Neutral > Negative) | "Client dissatisfaction trend" | 7 | MEDIUM |

Improvements (timeline back on track, reduced scope, better sentiment) are not risks.
Return at most one entry per category. If nothing matches, return empty lists.

Respond with only this JSON object:
{"cost": [], "timeline": [], "scope": [], "client_sentiment": []}
where each entry is {"risk": string, "confidence": integer 1-10, "impact": "LOW"|"MEDIUM"|"HIGH"}.

Current KPIs:
{{kpis}}

KPI delta:
{{delta}}`

// LLMClassifier classifies risks by prompting a language model. Every entry
// the model returns must be a row of the decision table, alert levels are
// recomputed from the matrix, and the result must match what RuleClassifier
// derives from the same delta.
type LLMClassifier struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// NewLLMClassifier creates a classifier backed by llm.
func NewLLMClassifier(llm driven.LLMService) *LLMClassifier {
	return &LLMClassifier{llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (c *LLMClassifier) SetPromptStore(store driven.PromptStore) {
	c.promptStore = store
}

// Classify sends one prompt and parses the reply. There are no retries:
// malformed output gets one local repair pass, then fails with KindParseFailure.
// A well-formed reply that disagrees with the decision table also fails
// with KindParseFailure.
func (c *LLMClassifier) Classify(ctx context.Context, current domain.KPIs, delta domain.KPIDelta) (domain.Classification, error) {
	if c.llm == nil {
		return domain.Classification{}, &domain.ClassificationError{Kind: domain.KindBackend, Err: domain.ErrLLMUnavailable}
	}

	kpisJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return domain.Classification{}, &domain.ClassificationError{Kind: domain.KindBackend, Err: err}
	}
	deltaJSON, err := json.MarshalIndent(delta, "", "  ")
	if err != nil {
		return domain.Classification{}, &domain.ClassificationError{Kind: domain.KindBackend, Err: err}
	}

	prompt := renderPrompt(loadPrompt(c.promptStore, driven.PromptClassifyRisks, defaultClassifyPrompt), map[string]string{
		"kpis":  string(kpisJSON),
		"delta": string(deltaJSON),
	})

	logger.Debug("classifying risks with %s", c.llm.ModelName())
	raw, err := c.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: 1024, Temperature: 0})
	if err != nil {
		metrics.ClassificationFailures.WithLabelValues(string(backendErrorKind(ctx, err))).Inc()
		return domain.Classification{}, &domain.ClassificationError{Kind: backendErrorKind(ctx, err), Err: err}
	}

	result, err := ParseClassification(raw)
	if err == nil {
		err = checkAgainstRules(ctx, raw, current, delta, result)
	}
	if err != nil {
		metrics.ClassificationFailures.WithLabelValues(string(domain.KindParseFailure)).Inc()
		return domain.Classification{}, err
	}
	return result, nil
}

// checkAgainstRules fails when result differs from the decision table's
// answer for delta in any category.
func checkAgainstRules(ctx context.Context, raw string, current domain.KPIs, delta domain.KPIDelta, result domain.Classification) error {
	want, err := NewRuleClassifier().Classify(ctx, current, delta)
	if err != nil {
		return err
	}
	for _, category := range domain.AllRiskCategories() {
		got, expected := result.Entries(category), want.Entries(category)
		if !sameEntries(got, expected) {
			return &domain.ClassificationError{
				Kind: domain.KindParseFailure,
				Raw:  raw,
				Err:  fmt.Errorf("%s: model returned %s, decision table gives %s", category, describeEntries(got), describeEntries(expected)),
			}
		}
	}
	return nil
}

func sameEntries(a, b []domain.RiskEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func describeEntries(entries []domain.RiskEntry) string {
	if len(entries) == 0 {
		return "nothing"
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%q (%d, %s)", e.Risk, e.Confidence, e.Impact)
	}
	return strings.Join(parts, ", ")
}

// wireEntry is a risk entry as returned by a model. Any alert_level it
// carries is ignored.
type wireEntry struct {
	Risk       string  `json:"risk"`
	Confidence float64 `json:"confidence"`
	Impact     string  `json:"impact"`
}

// ParseClassification validates a classification document produced by a
// model. Each entry must match a decision table row of its category; the
// strongest entry per category is kept. Failures are
// *domain.ClassificationError of kind KindParseFailure carrying raw unmodified.
func ParseClassification(raw string) (domain.Classification, error) {
	fail := func(err error) (domain.Classification, error) {
		return domain.Classification{}, &domain.ClassificationError{Kind: domain.KindParseFailure, Raw: raw, Err: err}
	}

	var doc map[string][]wireEntry
	if err := decodeModelJSON(raw, &doc); err != nil {
		return fail(err)
	}
	if doc == nil {
		return fail(errors.New("response is not a JSON object"))
	}

	categories := make([]string, 0, len(doc))
	for name := range doc {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	result := domain.NewClassification()
	for _, name := range categories {
		category := domain.RiskCategory(name)
		if !category.IsValid() {
			return fail(fmt.Errorf("unknown risk category %q", name))
		}
		rows := make([]rule, 0, len(doc[name]))
		for i, e := range doc[name] {
			row, err := validateEntry(category, e)
			if err != nil {
				return fail(fmt.Errorf("%s[%d]: %w", name, i, err))
			}
			rows = append(rows, row)
		}
		if best, ok := strongest(rows); ok {
			result.Add(category, domain.NewRiskEntry(best.risk, best.confidence, best.impact))
		}
	}
	return result, nil
}

func validateEntry(category domain.RiskCategory, e wireEntry) (rule, error) {
	if e.Risk == "" {
		return rule{}, errors.New("missing risk text")
	}
	if e.Confidence != math.Trunc(e.Confidence) ||
		e.Confidence < domain.MinConfidence || e.Confidence > domain.MaxConfidence {
		return rule{}, fmt.Errorf("confidence %v outside %d..%d", e.Confidence, domain.MinConfidence, domain.MaxConfidence)
	}
	impact, ok := domain.ParseImpact(e.Impact)
	if !ok {
		return rule{}, fmt.Errorf("unknown impact %q", e.Impact)
	}
	row, ok := tableRow(category, e.Risk, int(e.Confidence), impact)
	if !ok {
		return rule{}, fmt.Errorf("%q (%d, %s) is not a %s row of the decision table", e.Risk, int(e.Confidence), impact, category)
	}
	return row, nil
}

func backendErrorKind(ctx context.Context, err error) domain.ClassificationErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.KindTimeout
	}
	return domain.KindBackend
}
