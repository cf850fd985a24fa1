package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/report"
	"github.com/kiracore/tracker/internal/ui"
)

var (
	boardSprint    string
	boardAssignee  string
	boardLimit     int
	boardSort      string
	boardHideDone  bool
	boardAllSprint bool
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Display the kanban board in the terminal",
	Long: `Display issues of the current project in one column per status.

By default the board shows the active sprint, or every issue when no
sprint is active. Columns over their WIP limit (settings.wip_limits)
are flagged.

Examples:
  tracker board
  tracker board --sprint "Sprint 4" --sort updated
  tracker board --assignee alice@example.com --limit 5
  tracker board --all --hide-done`,
	RunE: runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().StringVar(&boardSprint, "sprint", "", "show one sprint (name or id)")
	boardCmd.Flags().BoolVar(&boardAllSprint, "all", false, "ignore sprints and show every issue")
	boardCmd.Flags().StringVarP(&boardAssignee, "assignee", "a", "", "filter by assignee (email, name or id)")
	boardCmd.Flags().IntVarP(&boardLimit, "limit", "n", 0, "max issues per column (default settings.board_limit)")
	boardCmd.Flags().StringVarP(&boardSort, "sort", "s", "priority", "sort by: priority, updated, created, assignee, key")
	boardCmd.Flags().BoolVar(&boardHideDone, "hide-done", false, "hide the done column")
}

func runBoard(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		project, err := w.requireProject()
		if err != nil {
			return err
		}
		snap := w.store.Snapshot()

		filter := report.Filter{ProjectID: project.ID}
		scope := "all issues"
		switch {
		case boardSprint != "":
			sp, err := w.resolveSprint(boardSprint)
			if err != nil {
				return err
			}
			filter.SprintKeys = report.SprintFilter(sp).SprintKeys
			scope = sp.Name
		case !boardAllSprint:
			for _, sp := range snap.Sprints {
				if sp.Status == model.SprintActive && sp.ProjectID == project.ID {
					filter.SprintKeys = report.SprintFilter(sp).SprintKeys
					scope = sp.Name
					break
				}
			}
		}
		if boardAssignee != "" {
			u, err := w.resolveUser(boardAssignee)
			if err != nil {
				return err
			}
			filter.AssigneeID = u.ID
		}

		columns := report.Board(report.FilterIssues(snap.Issues, filter))
		limit := boardLimit
		if limit == 0 {
			limit = w.cfg.Settings.BoardLimit
		}

		if jsonOutput() {
			return printJSON(columns)
		}
		printBoard(project, scope, columns, limit, w.cfg.Settings.WIPLimits, time.Now())
		return nil
	})
}

func printBoard(project model.Project, scope string, columns []report.Column, limit int, wip map[string]int, now time.Time) {
	sortInfo := ""
	if boardSort != "priority" {
		sortInfo = ", sorted by " + boardSort
	}
	fmt.Printf("\n%s %s\n", ui.RenderHeader(project.Key+" · "+project.Name), ui.RenderMuted("("+scope+sortInfo+")"))
	fmt.Println(ui.RenderSeparator())

	total := 0
	summary := []string{}
	for _, col := range columns {
		if boardHideDone && col.Status == model.StatusDone {
			continue
		}
		count := len(col.Issues)
		total += count
		if count > 0 {
			summary = append(summary, fmt.Sprintf("%s %d", ui.RenderStatus(col.Status), count))
		}

		heading := fmt.Sprintf("● %s (%d)", strings.ToUpper(string(col.Status)), count)
		fmt.Printf("\n%s", ui.StatusStyle(col.Status).Bold(true).Render(heading))
		if wipMax, ok := wip[string(col.Status)]; ok && wipMax > 0 && count > wipMax {
			fmt.Printf(" %s", ui.RenderFail(fmt.Sprintf("WIP %d/%d", count, wipMax)))
		}
		fmt.Println()

		if count == 0 {
			fmt.Printf("  %s\n", ui.RenderMuted("(empty)"))
			continue
		}

		issues := append([]model.Issue{}, col.Issues...)
		sortIssues(issues, boardSort)
		hidden := 0
		if limit > 0 && len(issues) > limit {
			hidden = len(issues) - limit
			issues = issues[:limit]
		}
		for _, issue := range issues {
			printBoardCard(issue, now)
		}
		if hidden > 0 {
			fmt.Printf("  %s\n", ui.RenderMuted(fmt.Sprintf("… %d more", hidden)))
		}
	}

	fmt.Println()
	fmt.Println(ui.RenderSeparator())
	fmt.Printf("Total: %d issues  │  %s\n\n", total, strings.Join(summary, "  "))
}

func printBoardCard(issue model.Issue, now time.Time) {
	badge := ""
	switch issue.Priority {
	case model.PriorityCritical:
		badge = ui.RenderFail("!!") + " "
	case model.PriorityHigh:
		badge = ui.RenderWarn("!") + " "
	}

	assignee := ""
	if issue.Assignee != nil {
		assignee = " " + ui.RenderAccent("@"+issue.Assignee.Name)
	}

	age := ""
	switch boardSort {
	case "updated":
		age = " " + ui.RenderMuted(ui.RelativeTime(issue.UpdatedAt, now))
	case "created":
		age = " " + ui.RenderMuted(ui.RelativeTime(issue.CreatedAt, now))
	}

	due := ui.DueLabel(issue, now)
	if due != "" {
		due = " " + due
	}

	fmt.Printf("  %-9s %s%s%s%s%s\n", issue.Key, badge, ui.Truncate(issue.Title, 48), assignee, age, due)
}

var priorityOrder = map[model.Priority]int{
	model.PriorityCritical: 0,
	model.PriorityHigh:     1,
	model.PriorityMedium:   2,
	model.PriorityLow:      3,
}

// sortIssues orders issues in place. Unknown or empty methods sort newest
// created first.
func sortIssues(issues []model.Issue, method string) {
	switch method {
	case "priority":
		sort.SliceStable(issues, func(i, j int) bool {
			pi, pj := priorityRank(issues[i].Priority), priorityRank(issues[j].Priority)
			if pi != pj {
				return pi < pj
			}
			// oldest first within a priority
			return issues[i].CreatedAt.Before(issues[j].CreatedAt)
		})
	case "updated":
		sort.SliceStable(issues, func(i, j int) bool {
			return issues[i].UpdatedAt.After(issues[j].UpdatedAt)
		})
	case "assignee":
		// unassigned last
		sort.SliceStable(issues, func(i, j int) bool {
			ai, aj := issues[i].Assignee, issues[j].Assignee
			if ai == nil || aj == nil {
				return ai != nil && aj == nil
			}
			return ai.Name < aj.Name
		})
	case "key":
		sort.SliceStable(issues, func(i, j int) bool {
			pi, ni, _ := model.ParseIssueKey(issues[i].Key)
			pj, nj, _ := model.ParseIssueKey(issues[j].Key)
			if pi != pj {
				return pi < pj
			}
			return ni < nj
		})
	default:
		sort.SliceStable(issues, func(i, j int) bool {
			return issues[i].CreatedAt.After(issues[j].CreatedAt)
		})
	}
}

func priorityRank(p model.Priority) int {
	if r, ok := priorityOrder[p]; ok {
		return r
	}
	return len(priorityOrder)
}
