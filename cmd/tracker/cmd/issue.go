package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiracore/tracker/internal/config"
	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/report"
	"github.com/kiracore/tracker/internal/store"
	"github.com/kiracore/tracker/internal/ui"
)

// Fields shared by issue create, update and bulk
var (
	issueTitle       string
	issueDescription string
	issueType        string
	issueStatus      string
	issuePriority    string
	issueAssignee    string
	issuePoints      int
	issueDue         string
	issueLabels      []string
	issueComponent   string
	issueVersion     string
	issueSprint      string
)

// Filters for issue list
var (
	listSearch     string
	listBacklog    bool
	listAllProject bool
	listSort       string
	listLimit      int
)

var bulkIDs []string

var issueCmd = &cobra.Command{
	Use:     "issue",
	Aliases: []string{"issues", "i"},
	Short:   "Create, inspect and change issues",
}

var issueCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create an issue in the current project",
	Long: `Create an issue. Its key is the current project key followed by the next
free number, starting at 101.

Examples:
  tracker issue create "Fix login crash" --type bug --priority critical
  tracker issue create "Dark mode" --type story --points 5 --due "next friday"
  tracker issue create "Upgrade deps" --label backend --sprint "Sprint 3"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIssueCreate,
}

var issueShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show issue details, comments and activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runIssueShow,
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update <key>",
	Short: "Change issue fields",
	Long: `Change the fields given as flags; others stay as they are.

Use --assignee none, --due none or --points -1 to clear a field.
Sprint membership is changed with "tracker sprint move".`,
	Args: cobra.ExactArgs(1),
	RunE: runIssueUpdate,
}

var issueDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete an issue",
	Args:  cobra.ExactArgs(1),
	RunE:  runIssueDelete,
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues with filters",
	Long: `List issues of the current project.

Examples:
  tracker issue list --status inprogress
  tracker issue list --assignee alice --sort updated
  tracker issue list --backlog
  tracker issue list --search login --all-projects`,
	RunE: runIssueList,
}

var issueCommentCmd = &cobra.Command{
	Use:   "comment <key> <text>",
	Short: "Comment on an issue as the current user",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runIssueComment,
}

var issueBulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Apply the same change to many issues",
	Long: `Apply field changes to every selected issue, or to the issues given with --ids.

Examples:
  tracker select toggle ENG-101 ENG-102
  tracker issue bulk --status done
  tracker issue bulk --ids ENG-103,ENG-104 --priority high`,
	RunE: runIssueBulk,
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.AddCommand(issueCreateCmd)
	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueUpdateCmd)
	issueCmd.AddCommand(issueDeleteCmd)
	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueCommentCmd)
	issueCmd.AddCommand(issueBulkCmd)

	for _, c := range []*cobra.Command{issueCreateCmd, issueUpdateCmd, issueBulkCmd} {
		addIssueFieldFlags(c)
	}
	issueCreateCmd.Flags().StringVar(&issueSprint, "sprint", "", "add to sprint (id or name)")
	issueUpdateCmd.Flags().StringVar(&issueTitle, "title", "", "new title")
	issueBulkCmd.Flags().StringSliceVar(&bulkIDs, "ids", nil, "issue keys (default: current selection)")

	issueListCmd.Flags().StringVarP(&listSearch, "search", "q", "", "match key or title")
	issueListCmd.Flags().StringVar(&issueStatus, "status", "", "filter by status")
	issueListCmd.Flags().StringVarP(&issuePriority, "priority", "p", "", "filter by priority")
	issueListCmd.Flags().StringVarP(&issueType, "type", "t", "", "filter by type")
	issueListCmd.Flags().StringVarP(&issueAssignee, "assignee", "a", "", "filter by assignee")
	issueListCmd.Flags().StringVar(&issueSprint, "sprint", "", "filter by sprint (id or name)")
	issueListCmd.Flags().BoolVar(&listBacklog, "backlog", false, "only issues without a sprint")
	issueListCmd.Flags().BoolVar(&listAllProject, "all-projects", false, "include every project")
	issueListCmd.Flags().StringVarP(&listSort, "sort", "s", "", "sort by: priority, updated, created, key (default: newest first)")
	issueListCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "max issues to show")
}

func addIssueFieldFlags(c *cobra.Command) {
	c.Flags().StringVarP(&issueDescription, "description", "d", "", "description")
	c.Flags().StringVarP(&issueType, "type", "t", "", "type (bug|task|story|epic|incident|request)")
	c.Flags().StringVar(&issueStatus, "status", "", "status (todo|inprogress|inreview|blocked|done)")
	c.Flags().StringVarP(&issuePriority, "priority", "p", "", "priority (low|medium|high|critical)")
	c.Flags().StringVarP(&issueAssignee, "assignee", "a", "", "assignee (id, email or name)")
	c.Flags().IntVar(&issuePoints, "points", 0, "story points")
	c.Flags().StringVar(&issueDue, "due", "", "due date (YYYY-MM-DD or e.g. \"next friday\")")
	c.Flags().StringSliceVarP(&issueLabels, "label", "l", nil, "labels by name (repeatable)")
	c.Flags().StringVar(&issueComponent, "component", "", "component")
	c.Flags().StringVar(&issueVersion, "version", "", "fix version")
}

func parseIssueEnums() (model.IssueType, model.IssueStatus, model.Priority, error) {
	t, s, p := model.IssueType(issueType), model.IssueStatus(issueStatus), model.Priority(issuePriority)
	if t != "" && !t.Valid() {
		return "", "", "", fmt.Errorf("unknown issue type %q", issueType)
	}
	if s != "" && !s.Valid() {
		return "", "", "", fmt.Errorf("unknown status %q", issueStatus)
	}
	if p != "" && !p.Valid() {
		return "", "", "", fmt.Errorf("unknown priority %q", issuePriority)
	}
	return t, s, p, nil
}

func runIssueCreate(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")
	if err := config.ValidateIssueTitle(title); err != nil {
		return err
	}
	itype, status, priority, err := parseIssueEnums()
	if err != nil {
		return err
	}

	return withWorkspace(func(w *workspace) error {
		if _, err := w.requireProject(); err != nil {
			return err
		}

		draft := store.IssueDraft{
			Title:       title,
			Description: issueDescription,
			Type:        itype,
			Status:      status,
			Priority:    priority,
			Component:   issueComponent,
			Version:     issueVersion,
		}

		if issueAssignee != "" {
			u, err := w.resolveUser(issueAssignee)
			if err != nil {
				return err
			}
			draft.Assignee = &u
		}
		if cmd.Flags().Changed("points") {
			draft.StoryPoints = store.Ptr(issuePoints)
		}
		if draft.DueDate, err = parseOptionalDate(issueDue, time.Now()); err != nil {
			return err
		}
		if draft.Labels, err = w.resolveLabels(issueLabels); err != nil {
			return err
		}

		var sprint *model.Sprint
		if issueSprint != "" {
			sp, err := w.resolveSprint(issueSprint)
			if err != nil {
				return err
			}
			sprint = &sp
		}

		issue := w.store.AddIssue(draft)
		if sprint != nil {
			w.store.MoveIssueToSprint(issue.ID, sprint.ID)
			issue, _ = w.store.Issue(issue.ID)
		}

		if jsonOutput() {
			return printJSON(issue)
		}
		fmt.Println(ui.Success("Created %s %s", ui.RenderBold(issue.Key), issue.Title))
		if sprint != nil {
			fmt.Printf("  in sprint %s\n", sprint.Name)
		}
		return nil
	})
}

// buildIssuePatch turns the changed field flags into a patch
func buildIssuePatch(cmd *cobra.Command, w *workspace) (store.IssuePatch, error) {
	var patch store.IssuePatch
	flags := cmd.Flags()

	itype, status, priority, err := parseIssueEnums()
	if err != nil {
		return patch, err
	}

	if flags.Changed("title") {
		if err := config.ValidateIssueTitle(issueTitle); err != nil {
			return patch, err
		}
		patch.Title = store.Ptr(issueTitle)
	}
	if flags.Changed("description") {
		patch.Description = store.Ptr(issueDescription)
	}
	if itype != "" {
		patch.Type = &itype
	}
	if status != "" {
		patch.Status = &status
	}
	if priority != "" {
		patch.Priority = &priority
	}
	if flags.Changed("assignee") {
		if strings.EqualFold(issueAssignee, "none") || issueAssignee == "" {
			patch.ClearAssignee = true
		} else {
			u, err := w.resolveUser(issueAssignee)
			if err != nil {
				return patch, err
			}
			patch.Assignee = &u
		}
	}
	if flags.Changed("points") {
		if issuePoints < 0 {
			patch.ClearStoryPoints = true
		} else {
			patch.StoryPoints = store.Ptr(issuePoints)
		}
	}
	if flags.Changed("due") {
		if strings.EqualFold(issueDue, "none") || issueDue == "" {
			patch.ClearDueDate = true
		} else {
			due, err := parseDate(issueDue, time.Now())
			if err != nil {
				return patch, err
			}
			patch.DueDate = &due
		}
	}
	if flags.Changed("label") {
		labels, err := w.resolveLabels(issueLabels)
		if err != nil {
			return patch, err
		}
		patch.Labels = labels
	}
	if flags.Changed("component") {
		patch.Component = store.Ptr(issueComponent)
	}
	if flags.Changed("version") {
		patch.Version = store.Ptr(issueVersion)
	}

	return patch, nil
}

func runIssueShow(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		issue, err := w.resolveIssue(args[0])
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(issue)
		}
		printIssue(issue, time.Now())
		return nil
	})
}

func printIssue(issue model.Issue, now time.Time) {
	fmt.Printf("\n%s  %s\n", ui.RenderBold(issue.Key), ui.RenderBold(issue.Title))
	fmt.Println(ui.RenderSeparator())
	fmt.Printf("  Type:      %s\n", issue.Type)
	fmt.Printf("  Status:    %s\n", ui.RenderStatus(issue.Status))
	fmt.Printf("  Priority:  %s\n", ui.RenderPriority(issue.Priority))

	assignee := ui.RenderMuted("unassigned")
	if issue.Assignee != nil {
		assignee = issue.Assignee.Name
	}
	fmt.Printf("  Assignee:  %s\n", assignee)
	fmt.Printf("  Reporter:  %s\n", valueOr(issue.Reporter.Name, "-"))
	fmt.Printf("  Sprint:    %s\n", valueOr(issue.Sprint, ui.RenderMuted("backlog")))

	if issue.StoryPoints != nil {
		fmt.Printf("  Points:    %d\n", *issue.StoryPoints)
	}
	if due := ui.DueLabel(issue, now); due != "" {
		fmt.Printf("  Due:       %s\n", due)
	}
	if len(issue.Labels) > 0 {
		names := make([]string, 0, len(issue.Labels))
		for _, l := range issue.Labels {
			names = append(names, renderLabel(l))
		}
		fmt.Printf("  Labels:    %s\n", strings.Join(names, " "))
	}
	if issue.Component != "" {
		fmt.Printf("  Component: %s\n", issue.Component)
	}
	if issue.Version != "" {
		fmt.Printf("  Version:   %s\n", issue.Version)
	}
	fmt.Printf("  Created:   %s\n", ui.RelativeTime(issue.CreatedAt, now))
	fmt.Printf("  Updated:   %s\n", ui.RelativeTime(issue.UpdatedAt, now))

	if issue.Description != "" {
		fmt.Printf("\n%s\n", issue.Description)
	}

	if len(issue.Comments) > 0 {
		fmt.Printf("\n%s\n", ui.RenderHeader(fmt.Sprintf("Comments (%d)", len(issue.Comments))))
		for _, c := range issue.Comments {
			fmt.Printf("  %s %s\n", ui.RenderBold(c.Author.Name), ui.RenderMuted(ui.RelativeTime(c.CreatedAt, now)))
			fmt.Printf("    %s\n", c.Content)
		}
	}

	if len(issue.Activity) > 0 {
		fmt.Printf("\n%s\n", ui.RenderHeader("Activity"))
		for _, a := range issue.Activity {
			line := fmt.Sprintf("%s %s", a.User.Name, a.Action)
			if a.Details != "" {
				line += ": " + a.Details
			}
			fmt.Printf("  %s %s\n", line, ui.RenderMuted(ui.RelativeTime(a.Timestamp, now)))
		}
	}
	fmt.Println()
}

func runIssueUpdate(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		issue, err := w.resolveIssue(args[0])
		if err != nil {
			return err
		}
		patch, err := buildIssuePatch(cmd, w)
		if err != nil {
			return err
		}

		w.store.UpdateIssue(issue.ID, patch)
		updated, _ := w.store.Issue(issue.ID)

		if jsonOutput() {
			return printJSON(updated)
		}
		fmt.Println(ui.Success("Updated %s", updated.Key))
		return nil
	})
}

func runIssueDelete(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		issue, err := w.resolveIssue(args[0])
		if err != nil {
			return err
		}
		w.store.DeleteIssue(issue.ID)
		fmt.Println(ui.Success("Deleted %s %s", issue.Key, issue.Title))
		return nil
	})
}

func runIssueList(cmd *cobra.Command, args []string) error {
	itype, status, priority, err := parseIssueEnums()
	if err != nil {
		return err
	}

	return withWorkspace(func(w *workspace) error {
		snap := w.store.Snapshot()

		filter := report.Filter{
			Search:      listSearch,
			Status:      status,
			Priority:    priority,
			Type:        itype,
			BacklogOnly: listBacklog,
		}
		if issueSprint != "" {
			sp, err := w.resolveSprint(issueSprint)
			if err != nil {
				return err
			}
			filter.SprintKeys = report.SprintFilter(sp).SprintKeys
		}
		if !listAllProject && snap.CurrentProject != nil {
			filter.ProjectID = snap.CurrentProject.ID
		}
		if issueAssignee != "" {
			u, err := w.resolveUser(issueAssignee)
			if err != nil {
				return err
			}
			filter.AssigneeID = u.ID
		}

		issues := report.FilterIssues(snap.Issues, filter)
		sortIssues(issues, listSort)
		if listLimit > 0 && len(issues) > listLimit {
			issues = issues[:listLimit]
		}

		if jsonOutput() {
			return printJSON(issues)
		}
		printIssueTable(issues, snap.SelectedIssues, time.Now())
		return nil
	})
}

func printIssueTable(issues []model.Issue, selected []string, now time.Time) {
	if len(issues) == 0 {
		fmt.Println(ui.RenderMuted("No issues match."))
		return
	}

	isSelected := make(map[string]bool, len(selected))
	for _, id := range selected {
		isSelected[id] = true
	}

	fmt.Printf("  %-9s %-40s %-11s %-9s %-14s %s\n", "KEY", "TITLE", "STATUS", "PRIORITY", "ASSIGNEE", "UPDATED")
	fmt.Println(ui.RenderSeparator())
	for _, issue := range issues {
		mark := " "
		if isSelected[issue.ID] {
			mark = ui.RenderAccent("•")
		}
		assignee := "-"
		if issue.Assignee != nil {
			assignee = issue.Assignee.Name
		}
		// pad before styling so ANSI codes don't break alignment
		fmt.Printf("%s %-9s %-40s %s %s %-14s %s\n",
			mark,
			issue.Key,
			ui.Truncate(issue.Title, 40),
			ui.RenderStatus(issue.Status)+strings.Repeat(" ", max(0, 11-len(issue.Status))),
			ui.RenderPriority(issue.Priority)+strings.Repeat(" ", max(0, 9-len(issue.Priority))),
			ui.Truncate(assignee, 14),
			ui.RenderMuted(ui.RelativeTime(issue.UpdatedAt, now)))
	}
	fmt.Printf("\n%d issue(s)\n", len(issues))
}

func runIssueComment(cmd *cobra.Command, args []string) error {
	content := strings.TrimSpace(strings.Join(args[1:], " "))
	if content == "" {
		return config.ValidationError{Field: "comment", Message: "comment is empty"}
	}

	return withWorkspace(func(w *workspace) error {
		issue, err := w.resolveIssue(args[0])
		if err != nil {
			return err
		}
		w.store.AddComment(issue.ID, content)
		fmt.Println(ui.Success("Commented on %s", issue.Key))
		return nil
	})
}

func runIssueBulk(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		ids := w.store.Selection()
		if len(bulkIDs) > 0 {
			ids = nil
			for _, ref := range bulkIDs {
				issue, err := w.resolveIssue(ref)
				if err != nil {
					return err
				}
				ids = append(ids, issue.ID)
			}
		}
		if len(ids) == 0 {
			return fmt.Errorf("nothing selected: use --ids or `tracker select toggle <key>`")
		}

		patch, err := buildIssuePatch(cmd, w)
		if err != nil {
			return err
		}

		w.store.BulkUpdateIssues(ids, patch)
		fmt.Println(ui.Success("Updated %d issue(s)", len(ids)))
		return nil
	})
}
