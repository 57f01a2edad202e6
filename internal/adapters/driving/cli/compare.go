package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
)

var (
	compareCurrent  string
	comparePrevious string
	compareJSON     bool
)

var compareCmd = &cobra.Command{
	Use:   "compare [project]",
	Short: "Compare the latest two snapshots of a project",
	Long: `Diffs two snapshots and classifies the KPI delta into cost, timeline,
scope and client sentiment risks.

By default the two most recent snapshots of the project are compared. Use
--current and --previous to compare two specific snapshots instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareCurrent, "current", "", "ID of the newer snapshot")
	compareCmd.Flags().StringVar(&comparePrevious, "previous", "", "ID of the older snapshot")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "output the comparison as JSON")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if compareService == nil {
		return errors.New("compare service not configured")
	}

	var (
		cmp *driving.Comparison
		err error
	)
	switch {
	case compareCurrent != "" || comparePrevious != "":
		if compareCurrent == "" || comparePrevious == "" {
			return errors.New("--current and --previous must be given together")
		}
		cmp, err = compareService.Compare(cmd.Context(), compareCurrent, comparePrevious)
	case len(args) == 1:
		projectID := resolveProjectID(cmd, args[0])
		cmp, err = compareService.CompareLatest(cmd.Context(), projectID)
		if errors.Is(err, domain.ErrNoPreviousSnapshot) {
			return fmt.Errorf("%s needs at least two snapshots to compare", projectID)
		}
	default:
		return errors.New("a project or --current and --previous is required")
	}
	if err != nil {
		return fmt.Errorf("compare failed: %w", err)
	}

	if compareJSON {
		return outputComparisonJSON(cmd, cmp)
	}
	outputComparison(cmd, cmp)
	return nil
}

// comparisonJSON is the --json form of a comparison.
type comparisonJSON struct {
	Diff           domain.SnapshotDiff    `json:"diff"`
	Classification *domain.Classification `json:"risks"`
	Error          string                 `json:"error,omitempty"`
}

func outputComparisonJSON(cmd *cobra.Command, cmp *driving.Comparison) error {
	out := comparisonJSON{Diff: cmp.Diff, Classification: cmp.Classification}
	if cmp.Err != nil {
		out.Error = cmp.Err.Error()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal comparison: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputComparison(cmd *cobra.Command, cmp *driving.Comparison) {
	st := newStyles(cmd.OutOrStdout())
	d := &cmp.Diff

	cmd.Println(st.heading(fmt.Sprintf("%s: %s → %s", d.ProjectID, d.PreviousDate, d.CurrentDate)))
	cmd.Println()

	cmd.Println(st.heading("KPI changes"))
	kpiLines := kpiChangeLines(d.KPIChanges)
	if len(kpiLines) == 0 {
		cmd.Println("  (none)")
	}
	for _, line := range kpiLines {
		cmd.Printf("  %s\n", line)
	}

	for _, section := range []struct {
		title string
		kind  domain.EntityKind
	}{
		{"Budget", domain.EntityBudget},
		{"Deliverables", domain.EntityDeliverables},
		{"Issues", domain.EntityIssues},
		{"Schedule", domain.EntitySchedule},
		{"Risk register", domain.EntityRisks},
	} {
		diff := d.Collection(section.kind)
		if diff.IsEmpty() && len(diff.Warnings) == 0 {
			continue
		}
		cmd.Println()
		cmd.Println(st.heading(section.title))
		cmd.Printf("  %d added, %d removed, %d changed\n", len(diff.Added), len(diff.Removed), len(diff.Changed))
		for _, c := range diff.Changed {
			cmd.Printf("  ~ %s\n", c.Identity)
			fields := make([]string, 0, len(c.Diff))
			for f := range c.Diff {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				change := c.Diff[f]
				cmd.Printf("      %s: %s → %s\n", f, formatValue(change.Previous), formatValue(change.Current))
			}
		}
		for _, w := range diff.Warnings {
			cmd.Println(st.muted.Render(fmt.Sprintf("  ! %s #%d skipped: %s", w.Side, w.Index, w.Reason)))
		}
	}

	cmd.Println()
	cmd.Println(st.heading("Risks"))
	outputClassification(cmd, st, cmp)
}

func outputClassification(cmd *cobra.Command, st *styles, cmp *driving.Comparison) {
	if cmp.Err != nil {
		cmd.Printf("  Classification failed: %v\n", cmp.Err)
		return
	}
	if cmp.Classification == nil || cmp.Classification.IsEmpty() {
		cmd.Println("  No risks detected.")
		return
	}
	for _, category := range domain.AllRiskCategories() {
		for _, e := range cmp.Classification.Entries(category) {
			cmd.Printf("  %s %-17s %s (confidence %d, impact %s)\n",
				st.alert(e.AlertLevel), category, e.Risk, e.Confidence, e.Impact)
		}
	}
}

// kpiChangeLines renders the non-empty fields of a KPI delta.
func kpiChangeLines(delta domain.KPIDelta) []string {
	var lines []string
	if a := delta.AllottedBudgetChange; a != nil {
		lines = append(lines, fmt.Sprintf("Allotted budget: %s → %s", formatAmount(a.Previous), formatAmount(a.Current)))
	}
	if t := delta.PercentSpentChange; t != nil {
		lines = append(lines, "Percent spent: "+t.String())
	}
	if delta.BudgetChange != nil {
		line := "Budget: " + signedAmount(*delta.BudgetChange)
		if delta.BudgetPercentChange != nil {
			line += fmt.Sprintf(" (%+.2f%%)", *delta.BudgetPercentChange)
		}
		lines = append(lines, line)
	}
	if t := delta.TimelineChange; t != nil {
		lines = append(lines, "Timeline: "+t.String())
	}
	if t := delta.ScopeChange; t != nil {
		lines = append(lines, "Scope: "+t.String())
	}
	if t := delta.ClientSentimentChange; t != nil {
		lines = append(lines, "Client sentiment: "+t.String())
	}
	return lines
}

// formatAmount renders a currency amount with thousands separators.
func formatAmount(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

func signedAmount(v float64) string {
	if v >= 0 {
		return "+" + formatAmount(v)
	}
	return formatAmount(v)
}
