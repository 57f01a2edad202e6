package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

var (
	projectIssuer    string
	projectStart     string
	projectSummary   string
	projectContacts  []string
	projectTags      []string
	projectStatusArg string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Register projects and change their lifecycle state.`,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Register a project",
	Long: `Registers a project. Its ID is derived from the name: lower-cased,
with every character outside a-z, 0-9 and _ replaced by an underscore.
Registering an existing name updates its details.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE:  runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show [project]",
	Short: "Show project details",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectStatusCmd = &cobra.Command{
	Use:   "status [project] [active|completed|archived]",
	Short: "Change a project's status",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectStatus,
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectIssuer, "issuer", "", "organisation that issued the work")
	projectCreateCmd.Flags().StringVar(&projectStart, "start-date", "", "project start date (YYYY-MM-DD)")
	projectCreateCmd.Flags().StringVar(&projectSummary, "summary", "", "short description")
	projectCreateCmd.Flags().StringSliceVar(&projectContacts, "contact", nil, "point of contact (repeatable)")
	projectCreateCmd.Flags().StringSliceVar(&projectTags, "tag", nil, "label (repeatable)")
	projectCreateCmd.Flags().StringVar(&projectStatusArg, "status", "", "lifecycle state (default active)")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectStatusCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	project, err := projectService.Create(cmd.Context(), domain.Project{
		Name:      args[0],
		Issuer:    projectIssuer,
		StartDate: projectStart,
		Summary:   projectSummary,
		Contacts:  projectContacts,
		Tags:      projectTags,
		Status:    domain.ProjectStatus(strings.ToLower(projectStatusArg)),
	})
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	cmd.Printf("Project registered: %s (%s)\n", project.Name, project.ID)
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	projects, err := projectService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if len(projects) == 0 {
		cmd.Println("No projects registered.")
		return nil
	}

	cmd.Println("Projects:")
	for i := range projects {
		p := &projects[i]
		cmd.Printf("  %-24s %-32s %s\n", p.ID, p.Name, p.Status)
	}
	return nil
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	project, err := projectService.Get(cmd.Context(), resolveProjectID(cmd, args[0]))
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	cmd.Printf("ID:         %s\n", project.ID)
	cmd.Printf("Name:       %s\n", project.Name)
	cmd.Printf("Status:     %s\n", project.Status)
	if project.Issuer != "" {
		cmd.Printf("Issuer:     %s\n", project.Issuer)
	}
	if project.StartDate != "" {
		cmd.Printf("Start date: %s\n", project.StartDate)
	}
	if len(project.Contacts) > 0 {
		cmd.Printf("Contacts:   %s\n", strings.Join(project.Contacts, ", "))
	}
	if len(project.Tags) > 0 {
		cmd.Printf("Tags:       %s\n", strings.Join(project.Tags, ", "))
	}
	if project.Summary != "" {
		cmd.Println()
		cmd.Println(project.Summary)
	}

	if snapshotService != nil {
		snapshots, err := snapshotService.List(cmd.Context(), project.ID)
		if err == nil {
			cmd.Printf("\nSnapshots:  %d\n", len(snapshots))
		}
	}
	return nil
}

func runProjectStatus(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	id := resolveProjectID(cmd, args[0])
	status := domain.ProjectStatus(strings.ToLower(args[1]))
	if err := projectService.SetStatus(cmd.Context(), id, status); err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}

	cmd.Printf("Project %s is now %s.\n", id, status)
	return nil
}

// resolveProjectID accepts a project ID or display name. A name is mapped
// to its ID unless a project with that exact ID exists.
func resolveProjectID(cmd *cobra.Command, project string) string {
	project = strings.TrimSpace(project)
	if projectService != nil {
		if p, err := projectService.Get(cmd.Context(), project); err == nil {
			return p.ID
		}
	}
	return domain.ProjectID(project)
}
