package services

import (
	"strings"

	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
)

// Default prompt templates, used when no prompt store override exists.
// Inputs are substituted into {{name}} placeholders; everything else,
// percent signs included, is sent verbatim.

const defaultExtractPrompt = `You extract structured project status data from a report.

Report text:
{{report}}

Return a JSON object with these fields:
- project_name: string
- report_date: string, YYYY-MM-DD if a date is stated
- summary: string
- kpis: object with keys budget, timeline, scope, client_sentiment
- issues: list of objects with keys "Issue #", "Issue Detail", "Issue Creation Date", "Status", "Owner", "Due Date"
- deliverables: list of objects with keys "Deliverable", "Start Date", "Date Due", "Status"
- schedule: list of objects with keys "Task ID", "Task Name", "Start Date", "End Date", "Status", "Assigned To"
- budget_details: list of objects with keys "Category", "Allotted Budget", "Spent Budget", "Remaining Budget", "Percent Spent"
- risks: list of objects with keys "Risk Name and Description", "Date Identified", "Probability Rating", "Impact Rating"
- next_steps: string

Leave out fields the report does not mention. Respond with only the JSON.`

const defaultSummaryPrompt = `You are a senior analyst assistant. Use a {{tone}} tone to summarise the following project snapshots into a brief executive summary (2 to 4 sentences), followed by a bullet list of key updates.

Snapshots:
{{snapshots}}

Format the response in Markdown with one short paragraph at the top, then 3 to 6 bullet points highlighting notable changes, risks or progress.`

const defaultInsightsPrompt = `You generate insights across project snapshots.
Given the following snapshots, identify key trends, risks and changes across the project timeline.
Highlight patterns in budget, scope, sentiment and risk.

Summarise the findings in 5 to 7 bullet points, one per line, each starting with "- ".

Snapshots:
{{snapshots}}`

const defaultSuggestRisksPrompt = `You suggest new project risks from a status snapshot.

Suggest only new, realistic risks justified by the KPI values, the change since the previous snapshot and the risks already tracked.
Do not repeat tracked risks. Do not invent metrics, budgets, timelines or events. Return an empty list when nothing is justified.

Impact Rating is a number from 0.0 to 10.0:
- 0 to 3: minor, isolated concern
- 4 to 6: moderate disruption
- 7 to 10: broad consequences, major delay or cost

Respond with only a JSON list in this format:
[{"Date Identified": "{{today}}", "Impact Rating": 5.0, "Risk Name": "short and specific", "Risk Description": "one or two sentences"}]

Current KPIs:
{{kpis}}

Change since previous snapshot:
{{delta}}

Risks already tracked:
{{tracked}}`

const defaultSearchPrompt = `You search through project status snapshots.

A user asked:
"{{question}}"

Return the 3 to 5 most relevant entries from the list below. For each give the project name, the report date, one sentence on why it matched and the content relevant to the question.

Entries:
{{entries}}`

// DefaultPrompts returns every built-in template keyed by prompt name.
// Prompt stores use it to seed user-editable copies.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptExtractSnapshot:  defaultExtractPrompt,
		driven.PromptClassifyRisks:    defaultClassifyPrompt,
		driven.PromptExecutiveSummary: defaultSummaryPrompt,
		driven.PromptInsights:         defaultInsightsPrompt,
		driven.PromptSuggestRisks:     defaultSuggestRisksPrompt,
		driven.PromptSearch:           defaultSearchPrompt,
	}
}

// loadPrompt returns the named prompt from store, or fallback when the store
// is unset or fails.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// renderPrompt replaces each {{name}} in template with vars[name].
// Unknown placeholders are left as written.
func renderPrompt(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{{"+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
