package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
)

var (
	snapshotProject string
	snapshotJSON    bool
	snapshotRaw     bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Ingest and inspect snapshots",
	Long: `A snapshot is the structured content of one status report: KPIs,
budget lines, schedule, issues, deliverables and risks.`,
}

var snapshotIngestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Extract snapshots from status reports",
	Long: `Extracts a snapshot from each report file and saves it.

Supported formats: .docx, .pptx, .eml, .vtt, .md, .txt and .json. JSON files are
imported as structured snapshots; the other formats are converted to text
and extracted with the configured LLM.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSnapshotIngest,
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Import structured snapshot JSON files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSnapshotImport,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list [project]",
	Short: "List the snapshots of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotList,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show [snapshot-id]",
	Short: "Show a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotShow,
}

func init() {
	for _, c := range []*cobra.Command{snapshotIngestCmd, snapshotImportCmd} {
		c.Flags().StringVarP(&snapshotProject, "project", "p", "", "project name (default: taken from the report)")
	}
	snapshotShowCmd.Flags().BoolVar(&snapshotJSON, "json", false, "output the snapshot as JSON")
	snapshotShowCmd.Flags().BoolVar(&snapshotRaw, "raw", false, "include the extracted report text")

	snapshotCmd.AddCommand(snapshotIngestCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotIngest(cmd *cobra.Command, args []string) error {
	if snapshotService == nil {
		return errors.New("snapshot service not configured")
	}
	return ingestFiles(cmd, args, snapshotService.Ingest)
}

func runSnapshotImport(cmd *cobra.Command, args []string) error {
	if snapshotService == nil {
		return errors.New("snapshot service not configured")
	}
	return ingestFiles(cmd, args, snapshotService.Import)
}

type ingestFunc func(ctx context.Context, req driving.IngestRequest) (*domain.Snapshot, error)

// ingestFiles runs fn for every path, reporting each result.
// It fails after all files were tried if any of them failed.
func ingestFiles(cmd *cobra.Command, paths []string, fn ingestFunc) error {
	failed := 0
	for _, path := range paths {
		snap, err := ingestFile(cmd.Context(), path, snapshotProject, fn)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("%s: snapshot %s for %s (%s)\n", path, snap.ID, snap.ProjectID, snap.ReportDate)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func ingestFile(ctx context.Context, path, project string, fn ingestFunc) (*domain.Snapshot, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	return fn(ctx, driving.IngestRequest{
		Filename:    filepath.Base(path),
		Content:     content,
		ProjectName: project,
	})
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	if snapshotService == nil {
		return errors.New("snapshot service not configured")
	}

	projectID := resolveProjectID(cmd, args[0])
	snapshots, err := snapshotService.List(cmd.Context(), projectID)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	if len(snapshots) == 0 {
		cmd.Printf("No snapshots for %s.\n", projectID)
		return nil
	}

	cmd.Printf("Snapshots of %s:\n", projectID)
	for i := range snapshots {
		s := &snapshots[i]
		cmd.Printf("  %s  %s  %-5s %s\n", s.ReportDate, s.ID, s.FileType, s.Filename)
	}
	return nil
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	if snapshotService == nil {
		return errors.New("snapshot service not configured")
	}

	snap, err := snapshotService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %w", err)
	}

	if !snapshotRaw {
		trimmed := *snap
		trimmed.RawText = ""
		snap = &trimmed
	}

	if snapshotJSON {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputSnapshot(cmd, snap)
	return nil
}

func outputSnapshot(cmd *cobra.Command, snap *domain.Snapshot) {
	st := newStyles(cmd.OutOrStdout())

	cmd.Println(st.heading(fmt.Sprintf("%s - %s", snap.ProjectID, snap.ReportDate)))
	cmd.Printf("ID:       %s\n", snap.ID)
	if snap.Filename != "" {
		cmd.Printf("Source:   %s (%s)\n", snap.Filename, snap.FileType)
	}
	cmd.Printf("Uploaded: %s\n", snap.UploadedAt.Format("2006-01-02 15:04"))

	if len(snap.KPIs) > 0 {
		cmd.Println()
		cmd.Println(st.heading("KPIs"))
		keys := make([]string, 0, len(snap.KPIs))
		for k := range snap.KPIs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("  %-20s %s\n", k, formatValue(snap.KPIs[k]))
		}
	}

	if snap.Summary != "" {
		cmd.Println()
		cmd.Println(st.heading("Summary"))
		cmd.Println(snap.Summary)
	}

	cmd.Println()
	cmd.Printf("Budget lines: %d  Schedule: %d  Issues: %d  Deliverables: %d  Risks: %d\n",
		len(snap.BudgetDetails), len(snap.Schedule), len(snap.Issues), len(snap.Deliverables), len(snap.Risks))

	if snap.NextSteps != "" {
		cmd.Println()
		cmd.Println(st.heading("Next steps"))
		cmd.Println(snap.NextSteps)
	}

	if snap.RawText != "" {
		cmd.Println()
		cmd.Println(st.heading("Report text"))
		cmd.Println(snap.RawText)
	}
}

// formatValue renders a KPI or field value on one line.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		return t
	case map[string]any, []any:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
