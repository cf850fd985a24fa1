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
	reportAllProjects bool
	reportAging       int
)

var reportCmd = &cobra.Command{
	Use:     "report",
	Aliases: []string{"metrics"},
	Short:   "Dashboards and progress reports",
	Long: `Reports are computed from the current project's issues.

Examples:
  tracker report dashboard
  tracker report distribution --all-projects
  tracker report velocity --format json`,
}

var reportDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Headline figures, aging issues and active sprint",
	RunE:  runReportDashboard,
}

var reportDistributionCmd = &cobra.Command{
	Use:   "distribution",
	Short: "Issues by status, type and priority",
	RunE:  runReportDistribution,
}

var reportVelocityCmd = &cobra.Command{
	Use:   "velocity",
	Short: "Committed versus completed points per sprint",
	RunE:  runReportVelocity,
}

var reportEpicsCmd = &cobra.Command{
	Use:   "epics",
	Short: "Epic progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(func(w *workspace) error {
			snap := w.store.Snapshot()
			if jsonOutput() {
				return printJSON(progressRows(snap.Epics, func(e model.Epic) (string, report.Progress) {
					return e.Key, report.EpicProgress(e, snap.Issues)
				}))
			}
			printSectionHeader("EPICS")
			printEpics(snap.Epics, snap.Issues)
			return nil
		})
	},
}

var reportReleasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "Release progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(func(w *workspace) error {
			snap := w.store.Snapshot()
			if jsonOutput() {
				return printJSON(progressRows(snap.Releases, func(r model.Release) (string, report.Progress) {
					return r.Name, report.ReleaseProgress(r, snap.Issues)
				}))
			}
			printSectionHeader("RELEASES")
			printReleases(snap.Releases, snap.Issues)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	for _, c := range []*cobra.Command{reportDashboardCmd, reportDistributionCmd, reportVelocityCmd, reportEpicsCmd, reportReleasesCmd} {
		reportCmd.AddCommand(c)
	}
	reportCmd.PersistentFlags().BoolVar(&reportAllProjects, "all-projects", false, "report on every project")
	reportDashboardCmd.Flags().IntVar(&reportAging, "aging", 5, "number of oldest open issues to list")
}

type progressRow struct {
	Name string `json:"name"`
	report.Progress
}

func progressRows[T any](items []T, fn func(T) (string, report.Progress)) []progressRow {
	rows := make([]progressRow, 0, len(items))
	for _, it := range items {
		name, p := fn(it)
		rows = append(rows, progressRow{Name: name, Progress: p})
	}
	return rows
}

// scopedIssues limits issues to the current project unless --all-projects
func scopedIssues(w *workspace) ([]model.Issue, string) {
	snap := w.store.Snapshot()
	if reportAllProjects || snap.CurrentProject == nil {
		return snap.Issues, "all projects"
	}
	return report.FilterIssues(snap.Issues, report.Filter{ProjectID: snap.CurrentProject.ID}), snap.CurrentProject.Key
}

func printSectionHeader(title string) {
	fmt.Printf("\n%s\n", ui.RenderHeader("┌─ "+title+" "+strings.Repeat("─", max(0, 56-len(title)))+"┐"))
}

func runReportDashboard(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		issues, scope := scopedIssues(w)
		now := time.Now()
		summary := report.DashboardSummary(issues, now)

		if jsonOutput() {
			return printJSON(summary)
		}

		fmt.Printf("\n%s %s\n", ui.RenderHeader("DASHBOARD"), ui.RenderMuted("("+scope+", "+now.Format("2006-01-02 15:04")+")"))
		fmt.Println(ui.RenderSeparator())

		printSectionHeader("SUMMARY")
		fmt.Printf("│ Total %s  Open %s  In progress %s\n",
			ui.RenderBold(fmt.Sprint(summary.Total)), ui.RenderBold(fmt.Sprint(summary.Open)), ui.RenderBold(fmt.Sprint(summary.InProgress)))
		blocked := fmt.Sprint(summary.Blocked)
		if summary.Blocked > 0 {
			blocked = ui.RenderFail(blocked)
		}
		overdue := fmt.Sprint(summary.Overdue)
		if summary.Overdue > 0 {
			overdue = ui.RenderWarn(overdue)
		}
		fmt.Printf("│ Blocked %s  Overdue %s  Done this week %s  Points %d\n",
			blocked, overdue, ui.RenderPass(fmt.Sprint(summary.CompletedThisWeek)), summary.StoryPoints)

		snap := w.store.Snapshot()
		for _, sp := range snap.Sprints {
			if sp.Status != model.SprintActive {
				continue
			}
			if !reportAllProjects && snap.CurrentProject != nil && sp.ProjectID != snap.CurrentProject.ID {
				continue
			}
			p := report.SprintProgress(sp, snap.Issues)
			printSectionHeader("ACTIVE SPRINT")
			fmt.Printf("│ %s  ends %s\n", ui.RenderBold(sp.Name), ui.RelativeTime(sp.EndDate, now))
			fmt.Printf("│ %s %5.1f%%  %d/%d points\n", ui.ProgressBar(p.Percent, 24), p.Percent, p.DonePoints, p.Points)
		}

		if aging := oldestOpen(issues, reportAging); len(aging) > 0 {
			printSectionHeader("AGING ISSUES (oldest first)")
			for _, issue := range aging {
				age := ui.RelativeTime(issue.CreatedAt, now)
				if now.Sub(issue.CreatedAt) > 14*24*time.Hour {
					age = ui.RenderFail(age)
				} else if now.Sub(issue.CreatedAt) > 7*24*time.Hour {
					age = ui.RenderWarn(age)
				}
				fmt.Printf("│ %-9s %-14s %-11s %s\n", issue.Key, age, issue.Status, ui.Truncate(issue.Title, 36))
			}
		}

		if warnings := dashboardWarnings(summary, report.Board(issues), w.cfg.Settings.WIPLimits); len(warnings) > 0 {
			printSectionHeader("⚠ WARNINGS")
			for _, msg := range warnings {
				fmt.Printf("│ %s\n", ui.Warning("%s", msg))
			}
		} else {
			fmt.Printf("\n%s\n", ui.Success("No bottlenecks detected"))
		}
		fmt.Println()
		return nil
	})
}

// oldestOpen returns up to n unfinished issues, oldest first
func oldestOpen(issues []model.Issue, n int) []model.Issue {
	open := []model.Issue{}
	for _, issue := range issues {
		if issue.Status != model.StatusDone {
			open = append(open, issue)
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].CreatedAt.Before(open[j].CreatedAt) })
	if n >= 0 && len(open) > n {
		open = open[:n]
	}
	return open
}

func dashboardWarnings(s report.Summary, columns []report.Column, wip map[string]int) []string {
	var out []string
	for _, col := range columns {
		if limit, ok := wip[string(col.Status)]; ok && limit > 0 && len(col.Issues) > limit {
			out = append(out, fmt.Sprintf("%s over WIP limit: %d/%d", col.Status, len(col.Issues), limit))
		}
	}
	if s.Open > 0 && s.Blocked*4 > s.Open {
		out = append(out, fmt.Sprintf("%d of %d open issues are blocked", s.Blocked, s.Open))
	}
	if s.Overdue > 0 {
		out = append(out, fmt.Sprintf("%d issue(s) past their due date", s.Overdue))
	}
	return out
}

func runReportDistribution(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		issues, scope := scopedIssues(w)
		dist := map[string][]report.Bucket{
			"status":   report.StatusDistribution(issues),
			"type":     report.TypeDistribution(issues),
			"priority": report.PriorityDistribution(issues),
		}
		if jsonOutput() {
			return printJSON(dist)
		}

		fmt.Printf("\n%s %s\n", ui.RenderHeader("DISTRIBUTION"), ui.RenderMuted("("+scope+")"))
		for _, name := range []string{"status", "type", "priority"} {
			printSectionHeader(strings.ToUpper(name))
			printBuckets(dist[name], len(issues))
		}
		fmt.Println()
		return nil
	})
}

func printBuckets(buckets []report.Bucket, total int) {
	if len(buckets) == 0 {
		fmt.Printf("│ %s\n", ui.RenderMuted("no issues"))
		return
	}
	for _, b := range buckets {
		share := 0.0
		if total > 0 {
			share = float64(b.Count) / float64(total) * 100
		}
		fmt.Printf("│ %-12s %3d %-20s %5.1f%%\n", b.Name, b.Count, strings.Repeat("█", min(b.Count, 20)), share)
	}
}

func runReportVelocity(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		snap := w.store.Snapshot()
		sprints := snap.Sprints
		if !reportAllProjects && snap.CurrentProject != nil {
			sprints = []model.Sprint{}
			for _, sp := range snap.Sprints {
				if sp.ProjectID == snap.CurrentProject.ID {
					sprints = append(sprints, sp)
				}
			}
		}
		points := report.Velocity(sprints, snap.Issues)
		if jsonOutput() {
			return printJSON(points)
		}

		printSectionHeader("VELOCITY")
		if len(points) == 0 {
			fmt.Printf("│ %s\n", ui.RenderMuted("no started sprints"))
			fmt.Println()
			return nil
		}
		sum := 0
		for _, v := range points {
			pct := 0.0
			if v.Committed > 0 {
				pct = float64(v.Completed) / float64(v.Committed) * 100
			}
			fmt.Printf("│ %-20s %3d/%-3d pts %s\n", ui.Truncate(v.Sprint, 20), v.Completed, v.Committed, ui.ProgressBar(pct, 20))
			sum += v.Completed
		}
		fmt.Printf("│ %s %.1f pts/sprint\n\n", ui.RenderBold("Average"), float64(sum)/float64(len(points)))
		return nil
	})
}
