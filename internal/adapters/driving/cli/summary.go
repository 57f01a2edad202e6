package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

var (
	summaryTone      string
	summarySnapshots []string
	summaryHistory   bool
	trendsSnapshots  []string
)

var summaryCmd = &cobra.Command{
	Use:   "summary [project]",
	Short: "Write an executive summary of a project",
	Long: `Writes an executive summary over the project's snapshots with the
configured LLM. Every generated summary is kept; use --history to list them.

Tones: Formal, Friendly, Technical.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

var trendsCmd = &cobra.Command{
	Use:   "trends [project]",
	Short: "List trends across a project's snapshots",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrends,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the whole portfolio",
	Long: `Answers a free-text question over a digest of every stored snapshot:
KPIs, summaries, issues and next steps of all projects.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryTone, "tone", "t", string(domain.ToneFormal), "Formal, Friendly or Technical")
	summaryCmd.Flags().StringSliceVarP(&summarySnapshots, "snapshot", "s", nil, "snapshot IDs to cover (default all)")
	summaryCmd.Flags().BoolVar(&summaryHistory, "history", false, "list previously generated summaries")
	trendsCmd.Flags().StringSliceVarP(&trendsSnapshots, "snapshot", "s", nil, "snapshot IDs to cover (default all)")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(askCmd)
}

// parseTone matches a tone case-insensitively.
func parseTone(s string) (domain.Tone, error) {
	for _, t := range domain.AllTones() {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tone %q (want Formal, Friendly or Technical)", s)
}

func runSummary(cmd *cobra.Command, args []string) error {
	if insightService == nil {
		return errors.New("insight service not configured")
	}
	projectID := resolveProjectID(cmd, args[0])

	if summaryHistory {
		summaries, err := insightService.Summaries(cmd.Context(), projectID)
		if err != nil {
			return fmt.Errorf("failed to list summaries: %w", err)
		}
		if len(summaries) == 0 {
			cmd.Printf("No summaries generated for %s.\n", projectID)
			return nil
		}
		st := newStyles(cmd.OutOrStdout())
		for i := range summaries {
			s := &summaries[i]
			cmd.Println(st.heading(fmt.Sprintf("%s  %s  (%d snapshots)",
				s.GeneratedAt.Format("2006-01-02 15:04"), s.Tone, len(s.SnapshotIDs))))
			cmd.Println(s.Content)
			cmd.Println()
		}
		return nil
	}

	tone, err := parseTone(summaryTone)
	if err != nil {
		return err
	}

	summary, err := insightService.Summarise(cmd.Context(), projectID, summarySnapshots, tone)
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}

	cmd.Println(summary.Content)
	return nil
}

func runTrends(cmd *cobra.Command, args []string) error {
	if insightService == nil {
		return errors.New("insight service not configured")
	}

	bullets, err := insightService.Insights(cmd.Context(), resolveProjectID(cmd, args[0]), trendsSnapshots)
	if err != nil {
		return fmt.Errorf("trends failed: %w", err)
	}

	if len(bullets) == 0 {
		cmd.Println("No trends found.")
		return nil
	}
	for _, b := range bullets {
		cmd.Printf("- %s\n", b)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	if insightService == nil {
		return errors.New("insight service not configured")
	}

	answer, err := insightService.Search(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("question failed: %w", err)
	}
	cmd.Println(answer)
	return nil
}
