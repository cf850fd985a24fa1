package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/report"
	"github.com/kiracore/tracker/internal/ui"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Manage the issue selection used by bulk updates",
	Long: `The selection is an ordered set of issues kept between commands.
"tracker issue bulk" applies its change to every selected issue.`,
}

var selectToggleCmd = &cobra.Command{
	Use:   "toggle <key>...",
	Short: "Add or remove issues from the selection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(func(w *workspace) error {
			for _, ref := range args {
				issue, err := w.resolveIssue(ref)
				if err != nil {
					return err
				}
				w.store.ToggleIssueSelection(issue.ID)
			}
			fmt.Println(ui.Success("%d issue(s) selected", len(w.store.Selection())))
			return nil
		})
	},
}

var selectAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Select every issue matching the list filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		itype, status, priority, err := parseIssueEnums()
		if err != nil {
			return err
		}
		return withWorkspace(func(w *workspace) error {
			snap := w.store.Snapshot()
			filter := report.Filter{Search: listSearch, Status: status, Priority: priority, Type: itype, BacklogOnly: listBacklog}
			if snap.CurrentProject != nil {
				filter.ProjectID = snap.CurrentProject.ID
			}

			issues := report.FilterIssues(snap.Issues, filter)
			ids := make([]string, 0, len(issues))
			for _, issue := range issues {
				ids = append(ids, issue.ID)
			}
			w.store.SelectAll(ids)
			fmt.Println(ui.Success("%d issue(s) selected", len(ids)))
			return nil
		})
	},
}

var selectClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(func(w *workspace) error {
			w.store.ClearSelection()
			fmt.Println(ui.Success("Selection cleared"))
			return nil
		})
	},
}

var selectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the selected issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(func(w *workspace) error {
			snap := w.store.Snapshot()
			selected := []model.Issue{}
			for _, id := range snap.SelectedIssues {
				if issue, ok := w.store.Issue(id); ok {
					selected = append(selected, issue)
				}
			}

			if jsonOutput() {
				return printJSON(selected)
			}
			printIssueTable(selected, snap.SelectedIssues, time.Now())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
	selectCmd.AddCommand(selectToggleCmd)
	selectCmd.AddCommand(selectAllCmd)
	selectCmd.AddCommand(selectClearCmd)
	selectCmd.AddCommand(selectShowCmd)

	selectAllCmd.Flags().StringVarP(&listSearch, "search", "q", "", "match key or title")
	selectAllCmd.Flags().StringVar(&issueStatus, "status", "", "filter by status")
	selectAllCmd.Flags().StringVarP(&issuePriority, "priority", "p", "", "filter by priority")
	selectAllCmd.Flags().StringVarP(&issueType, "type", "t", "", "filter by type")
	selectAllCmd.Flags().BoolVar(&listBacklog, "backlog", false, "only issues without a sprint")
}
