package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiracore/tracker/internal/db"
	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/report"
	"github.com/kiracore/tracker/internal/ui"
)

var (
	cfdDays  int
	cfdForce bool
)

var cfdCmd = &cobra.Command{
	Use:   "cfd",
	Short: "Cumulative flow data",
	Long: `Record daily status counts of the current project.

Examples:
  tracker cfd snapshot          # once a day, e.g. from cron
  tracker cfd show --days 14
  tracker cfd export > flow.json`,
}

var cfdSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Record today's issue counts per status",
	RunE:  runCFDSnapshot,
}

var cfdShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display daily counts per status",
	RunE:  runCFDShow,
}

var cfdExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export flow data as JSON",
	RunE:  runCFDExport,
}

func init() {
	rootCmd.AddCommand(cfdCmd)
	cfdCmd.AddCommand(cfdSnapshotCmd)
	cfdCmd.AddCommand(cfdShowCmd)
	cfdCmd.AddCommand(cfdExportCmd)

	cfdSnapshotCmd.Flags().BoolVar(&cfdForce, "force", false, "replace today's snapshot")
	cfdShowCmd.Flags().IntVar(&cfdDays, "days", 30, "days of history")
	cfdExportCmd.Flags().IntVar(&cfdDays, "days", 30, "days of history")
}

// statusCounts counts issues for every status, zeros included
func statusCounts(issues []model.Issue) map[string]int {
	counts := make(map[string]int, len(model.AllStatuses))
	for _, st := range model.AllStatuses {
		counts[string(st)] = 0
	}
	for _, b := range report.StatusDistribution(issues) {
		counts[b.Name] = b.Count
	}
	return counts
}

func runCFDSnapshot(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		project, err := w.requireProject()
		if err != nil {
			return err
		}

		today := time.Now()
		last, err := w.db.LastCFDSnapshot(w.ctx, project.ID)
		if err != nil {
			return err
		}
		if last != nil && last.Format(dateLayout) == today.Format(dateLayout) && !cfdForce {
			fmt.Println(ui.RenderMuted(project.Key + ": already snapshotted today (use --force to replace)"))
			return nil
		}

		issues := report.FilterIssues(w.store.Snapshot().Issues, report.Filter{ProjectID: project.ID})
		counts := statusCounts(issues)
		if err := w.db.SaveCFDSnapshot(w.ctx, project.ID, today, counts); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		logger.Debug("cfd snapshot saved", "project", project.Key, "issues", len(issues))

		fmt.Println(ui.Success("%s: snapshot saved (%d issues)", project.Key, len(issues)))
		return nil
	})
}

func runCFDShow(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		project, err := w.requireProject()
		if err != nil {
			return err
		}
		data, err := w.db.CFDData(w.ctx, project.ID, cfdDays)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(data)
		}
		if len(data) == 0 {
			fmt.Println(ui.RenderMuted("No CFD data. Run 'tracker cfd snapshot' first."))
			return nil
		}

		byDate := make(map[string]map[string]int)
		var dates []string
		for _, d := range data {
			if byDate[d.Date] == nil {
				byDate[d.Date] = make(map[string]int)
				dates = append(dates, d.Date)
			}
			byDate[d.Date][d.Status] = d.Count
		}
		sort.Strings(dates)

		fmt.Printf("\n%s %s\n", ui.RenderHeader(project.Key+" · Cumulative Flow"), ui.RenderMuted(fmt.Sprintf("(%d days)", cfdDays)))
		fmt.Printf("%-10s", "DATE")
		for _, st := range model.AllStatuses {
			fmt.Printf(" %11s", strings.ToUpper(string(st)))
		}
		fmt.Printf(" %7s\n", "TOTAL")
		fmt.Println(ui.RenderSeparator())

		for _, date := range dates {
			counts := byDate[date]
			total := 0
			fmt.Printf("%-10s", date)
			for _, st := range model.AllStatuses {
				n := counts[string(st)]
				total += n
				cell := fmt.Sprintf(" %11d", n)
				if n > 0 {
					cell = ui.StatusStyle(st).Render(cell)
				}
				fmt.Print(cell)
			}
			fmt.Printf(" %7d\n", total)
		}
		fmt.Println()
		return nil
	})
}

func runCFDExport(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		project, err := w.requireProject()
		if err != nil {
			return err
		}
		data, err := w.db.CFDData(w.ctx, project.ID, cfdDays)
		if err != nil {
			return err
		}
		return printJSON(struct {
			Project string        `json:"project"`
			Days    int           `json:"days"`
			Points  []db.CFDPoint `json:"points"`
		}{project.Key, cfdDays, data})
	})
}
