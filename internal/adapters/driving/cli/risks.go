package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

var risksCmd = &cobra.Command{
	Use:   "risks",
	Short: "Classify and review project risks",
}

var risksRefreshCmd = &cobra.Command{
	Use:   "refresh [project]",
	Short: "Classify every consecutive snapshot pair",
	Long: `Classifies the KPI delta of every consecutive snapshot pair of a project.
Pairs whose KPIs were classified before are served from the risk cache.`,
	Args: cobra.ExactArgs(1),
	RunE: runRisksRefresh,
}

var risksShowCmd = &cobra.Command{
	Use:   "show [project]",
	Short: "Show the risk dashboard of a project",
	Long:  `Shows the highest alert level per category for every classified snapshot pair.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRisksShow,
}

var risksSuggestCmd = &cobra.Command{
	Use:   "suggest [snapshot-id]",
	Short: "Suggest new risk register entries",
	Long: `Asks the LLM for risks the snapshot's risk register does not track yet.
Suggestions are advisory and do not affect alert levels.`,
	Args: cobra.ExactArgs(1),
	RunE: runRisksSuggest,
}

func init() {
	risksCmd.AddCommand(risksRefreshCmd)
	risksCmd.AddCommand(risksShowCmd)
	risksCmd.AddCommand(risksSuggestCmd)
	rootCmd.AddCommand(risksCmd)
}

func runRisksRefresh(cmd *cobra.Command, args []string) error {
	if compareService == nil {
		return errors.New("compare service not configured")
	}

	projectID := resolveProjectID(cmd, args[0])
	comparisons, err := compareService.RefreshRisks(cmd.Context(), projectID)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	if len(comparisons) == 0 {
		cmd.Printf("%s has fewer than two snapshots; nothing to classify.\n", projectID)
		return nil
	}

	st := newStyles(cmd.OutOrStdout())
	failed := 0
	for i := range comparisons {
		c := &comparisons[i]
		cmd.Println(st.heading(fmt.Sprintf("%s → %s", c.Previous.ReportDate, c.Current.ReportDate)))
		if c.Err != nil {
			failed++
		}
		outputClassification(cmd, st, c)
	}

	cmd.Println()
	cmd.Printf("Classified %d of %d pairs.\n", len(comparisons)-failed, len(comparisons))
	return nil
}

func runRisksShow(cmd *cobra.Command, args []string) error {
	if compareService == nil {
		return errors.New("compare service not configured")
	}

	projectID := resolveProjectID(cmd, args[0])
	summaries, err := compareService.RiskSummaries(cmd.Context(), projectID)
	if err != nil {
		return fmt.Errorf("failed to load risks: %w", err)
	}

	if len(summaries) == 0 {
		cmd.Printf("No classified snapshot pairs for %s.\n", projectID)
		return nil
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.heading(fmt.Sprintf("%-10s  %-10s  %-6s  %-6s  %-6s  %-6s  %s",
		"From", "To", "Cost", "Time", "Scope", "Client", "High")))
	for _, s := range summaries {
		cmd.Printf("%-10s  %-10s  %s  %s  %s  %s  %d\n",
			s.PreviousDate, s.CurrentDate,
			st.alert(s.Levels[domain.RiskCost]),
			st.alert(s.Levels[domain.RiskTimeline]),
			st.alert(s.Levels[domain.RiskScope]),
			st.alert(s.Levels[domain.RiskClientSentiment]),
			s.HighCount)
	}
	return nil
}

func runRisksSuggest(cmd *cobra.Command, args []string) error {
	if insightService == nil {
		return errors.New("insight service not configured")
	}

	risks, err := insightService.SuggestRisks(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("suggestion failed: %w", err)
	}

	if len(risks) == 0 {
		cmd.Println("No new risks suggested.")
		return nil
	}

	cmd.Println("Suggested risks:")
	for i, r := range risks {
		cmd.Printf("  [%d] %s (impact %.1f, identified %s)\n", i+1, r.Name, r.ImpactRating, r.DateIdentified)
		if r.Description != "" {
			cmd.Printf("      %s\n", r.Description)
		}
	}
	return nil
}
