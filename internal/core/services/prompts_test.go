package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
)

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

func TestDefaultPrompts(t *testing.T) {
	placeholders := map[string][]string{
		driven.PromptExtractSnapshot:  {"report"},
		driven.PromptClassifyRisks:    {"kpis", "delta"},
		driven.PromptExecutiveSummary: {"tone", "snapshots"},
		driven.PromptInsights:         {"snapshots"},
		driven.PromptSuggestRisks:     {"today", "kpis", "delta", "tracked"},
		driven.PromptSearch:           {"question", "entries"},
	}

	prompts := DefaultPrompts()
	assert.Len(t, prompts, len(placeholders))

	for name, want := range placeholders {
		t.Run(name, func(t *testing.T) {
			prompt, ok := prompts[name]
			assert.True(t, ok)

			var got []string
			for _, m := range placeholderPattern.FindAllStringSubmatch(prompt, -1) {
				got = append(got, m[1])
			}
			assert.ElementsMatch(t, want, got)

			vars := make(map[string]string, len(want))
			for _, v := range want {
				vars[v] = "x"
			}
			assert.NotContains(t, renderPrompt(prompt, vars), "{{")
		})
	}
}

func TestRenderPrompt(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		want     string
	}{
		{"substitutes", "A={{a}} B={{b}}", map[string]string{"a": "1", "b": "2"}, "A=1 B=2"},
		{"repeated", "{{a}}/{{a}}", map[string]string{"a": "x"}, "x/x"},
		{"percent signs verbatim", "over 15% and %s and %%", map[string]string{}, "over 15% and %s and %%"},
		{"unknown placeholder kept", "{{missing}} {{a}}", map[string]string{"a": "1"}, "{{missing}} 1"},
		{"values are not rescanned", "{{a}}", map[string]string{"a": "{{b}}", "b": "no"}, "{{b}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderPrompt(tt.template, tt.vars))
		})
	}
}
