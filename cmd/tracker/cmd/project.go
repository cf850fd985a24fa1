package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kiracore/tracker/internal/config"
	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/store"
	"github.com/kiracore/tracker/internal/ui"
)

var (
	projectKey         string
	projectName        string
	projectDescription string
	projectLead        string
	projectMembers     []string
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	Long: `Create a project. The key prefixes every issue key in the project and
must be 2-5 uppercase letters.

Examples:
  tracker project create --key ENG --name "Engine" --lead alice@example.com`,
	RunE: runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE:  runProjectList,
}

var projectUseCmd = &cobra.Command{
	Use:   "use <KEY>",
	Short: "Set the current project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectUse,
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <KEY>",
	Short: "Update a project's name, description, lead or members",
	Long: `Update a project. Only the given flags change; --member replaces the
member list. Existing issue keys keep their prefix.

Examples:
  tracker project update ENG --name "Engine Core"
  tracker project update ENG --lead bob --member bob --member carol`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectUpdate,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectUseCmd)
	projectCmd.AddCommand(projectUpdateCmd)

	projectCreateCmd.Flags().StringVarP(&projectKey, "key", "k", "", "project key, e.g. ENG")
	projectCreateCmd.Flags().StringVarP(&projectName, "name", "n", "", "project name")
	projectCreateCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "project description")
	projectCreateCmd.Flags().StringVar(&projectLead, "lead", "", "lead user (id, email or name; default current user)")
	projectCreateCmd.Flags().StringSliceVar(&projectMembers, "member", nil, "member users (repeatable)")
	projectCreateCmd.MarkFlagRequired("key")
	projectCreateCmd.MarkFlagRequired("name")

	projectUpdateCmd.Flags().StringVarP(&projectName, "name", "n", "", "new name")
	projectUpdateCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "new description")
	projectUpdateCmd.Flags().StringVar(&projectLead, "lead", "", "new lead user (id, email or name)")
	projectUpdateCmd.Flags().StringSliceVar(&projectMembers, "member", nil, "member users, replaces the list (repeatable)")
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		key := strings.ToUpper(projectKey)
		if err := config.ValidateNewProjectKey(key, w.store.Snapshot().Projects); err != nil {
			return err
		}

		lead := w.currentUser()
		if projectLead != "" {
			u, err := w.resolveUser(projectLead)
			if err != nil {
				return err
			}
			lead = u
		}

		members := []model.User{}
		if lead.ID != "" {
			members = append(members, lead)
		}
		for _, ref := range projectMembers {
			u, err := w.resolveUser(ref)
			if err != nil {
				return err
			}
			if u.ID != lead.ID {
				members = append(members, u)
			}
		}

		p := w.store.AddProject(store.ProjectDraft{
			Key:         key,
			Name:        projectName,
			Description: projectDescription,
			Lead:        lead,
			Members:     members,
		})

		if w.store.Snapshot().CurrentProject == nil {
			w.store.SetCurrentProject(p)
		}

		if jsonOutput() {
			return printJSON(p)
		}
		fmt.Println(ui.Success("Created project %s (%s)", ui.RenderBold(p.Key), p.Name))
		return nil
	})
}

func runProjectList(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		snap := w.store.Snapshot()
		if jsonOutput() {
			return printJSON(snap.Projects)
		}

		if len(snap.Projects) == 0 {
			fmt.Println(ui.RenderMuted("No projects. Create one with: tracker project create --key ENG --name \"Engine\""))
			return nil
		}

		fmt.Printf("%-3s %-6s %-28s %-18s %s\n", "", "KEY", "NAME", "LEAD", "ISSUES")
		fmt.Println(ui.RenderSeparator())
		for _, p := range snap.Projects {
			marker := ""
			if snap.CurrentProject != nil && snap.CurrentProject.ID == p.ID {
				marker = ui.RenderAccent("*")
			}
			count := 0
			for _, issue := range snap.Issues {
				if issue.ProjectID == p.ID {
					count++
				}
			}
			fmt.Printf("%-3s %-6s %-28s %-18s %d\n", marker, p.Key, ui.Truncate(p.Name, 28), ui.Truncate(valueOr(p.Lead.Name, "-"), 18), count)
		}
		return nil
	})
}

func runProjectUse(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		p, ok := w.store.ProjectByKey(strings.ToUpper(args[0]))
		if !ok {
			return fmt.Errorf("project %q not found", args[0])
		}
		w.store.SetCurrentProject(p)
		fmt.Println(ui.Success("Current project is now %s (%s)", p.Key, p.Name))
		return nil
	})
}

func runProjectUpdate(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		p, ok := w.store.ProjectByKey(strings.ToUpper(args[0]))
		if !ok {
			return fmt.Errorf("project %q not found", args[0])
		}

		var patch store.ProjectPatch
		flags := cmd.Flags()
		if flags.Changed("name") {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("project name cannot be empty")
			}
			patch.Name = &projectName
		}
		if flags.Changed("description") {
			patch.Description = &projectDescription
		}
		if flags.Changed("lead") {
			u, err := w.resolveUser(projectLead)
			if err != nil {
				return err
			}
			patch.Lead = &u
		}
		if flags.Changed("member") {
			members := []model.User{}
			for _, ref := range projectMembers {
				u, err := w.resolveUser(ref)
				if err != nil {
					return err
				}
				members = append(members, u)
			}
			patch.Members = members
		}

		w.store.UpdateProject(p.ID, patch)
		updated, _ := w.store.ProjectByKey(p.Key)
		if jsonOutput() {
			return printJSON(updated)
		}
		fmt.Println(ui.Success("Updated project %s (%s)", ui.RenderBold(updated.Key), updated.Name))
		return nil
	})
}
