package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiracore/tracker/internal/config"
	"github.com/kiracore/tracker/internal/store"
	"github.com/kiracore/tracker/internal/ui"
)

var (
	workspaceName string
	workspaceSlug string
	workspaceLogo string
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"workspaces", "ws"},
	Short:   "Manage workspaces",
}

var workspaceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ValidateSlug(workspaceSlug); err != nil {
			return err
		}
		return withWorkspace(func(w *workspace) error {
			for _, existing := range w.store.Snapshot().Workspaces {
				if existing.Slug == workspaceSlug {
					return fmt.Errorf("workspace %q already exists", workspaceSlug)
				}
			}
			ws := w.store.AddWorkspace(store.WorkspaceDraft{Name: workspaceName, Slug: workspaceSlug, Logo: workspaceLogo})
			if jsonOutput() {
				return printJSON(ws)
			}
			fmt.Println(ui.Success("Added workspace %s (%s)", ws.Name, ws.Slug))
			return nil
		})
	},
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(func(w *workspace) error {
			list := w.store.Snapshot().Workspaces
			if jsonOutput() {
				return printJSON(list)
			}
			if len(list) == 0 {
				fmt.Println(ui.RenderMuted("No workspaces."))
				return nil
			}
			for _, ws := range list {
				fmt.Printf("%-2s %-24s %s\n", ws.Logo, ws.Name, ui.RenderMuted(ws.Slug))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.AddCommand(workspaceAddCmd)
	workspaceCmd.AddCommand(workspaceListCmd)

	workspaceAddCmd.Flags().StringVarP(&workspaceName, "name", "n", "", "workspace name")
	workspaceAddCmd.Flags().StringVarP(&workspaceSlug, "slug", "s", "", "url-safe slug")
	workspaceAddCmd.Flags().StringVar(&workspaceLogo, "logo", "", "logo (emoji or URL)")
	workspaceAddCmd.MarkFlagRequired("name")
	workspaceAddCmd.MarkFlagRequired("slug")
}
