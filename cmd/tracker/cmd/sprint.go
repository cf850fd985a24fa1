package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/report"
	"github.com/kiracore/tracker/internal/store"
	"github.com/kiracore/tracker/internal/ui"
)

var (
	sprintName  string
	sprintGoal  string
	sprintStart string
	sprintEnd   string
	sprintWeeks int
)

var sprintCmd = &cobra.Command{
	Use:     "sprint",
	Aliases: []string{"sprints"},
	Short:   "Plan and run sprints",
	Long: `Sprints move forward only: planned → active → completed.

Examples:
  tracker sprint create --name "Sprint 4" --goal "Ship payments" --start monday --weeks 2
  tracker sprint move ENG-104 "Sprint 4"
  tracker sprint start "Sprint 4"
  tracker sprint complete "Sprint 4"`,
}

var sprintCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a planned sprint in the current project",
	RunE:  runSprintCreate,
}

var sprintListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sprints with progress",
	RunE:  runSprintList,
}

var sprintStartCmd = &cobra.Command{
	Use:   "start <sprint>",
	Short: "Start a planned sprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionSprint(args[0], model.SprintActive)
	},
}

var sprintCompleteCmd = &cobra.Command{
	Use:   "complete <sprint>",
	Short: "Complete an active sprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionSprint(args[0], model.SprintCompleted)
	},
}

var sprintMoveCmd = &cobra.Command{
	Use:   "move <issue>... <sprint>",
	Short: "Move issues into a sprint",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSprintMove,
}

var sprintBacklogCmd = &cobra.Command{
	Use:   "backlog <issue>...",
	Short: "Move issues back to the backlog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSprintBacklog,
}

var sprintRenameCmd = &cobra.Command{
	Use:   "rename <sprint> <new name>",
	Short: "Rename a sprint; its issues follow",
	Args:  cobra.ExactArgs(2),
	RunE:  runSprintRename,
}

func init() {
	rootCmd.AddCommand(sprintCmd)
	sprintCmd.AddCommand(sprintCreateCmd)
	sprintCmd.AddCommand(sprintListCmd)
	sprintCmd.AddCommand(sprintStartCmd)
	sprintCmd.AddCommand(sprintCompleteCmd)
	sprintCmd.AddCommand(sprintMoveCmd)
	sprintCmd.AddCommand(sprintBacklogCmd)
	sprintCmd.AddCommand(sprintRenameCmd)

	sprintCreateCmd.Flags().StringVarP(&sprintName, "name", "n", "", "sprint name")
	sprintCreateCmd.Flags().StringVarP(&sprintGoal, "goal", "g", "", "sprint goal")
	sprintCreateCmd.Flags().StringVar(&sprintStart, "start", "", "start date (default today)")
	sprintCreateCmd.Flags().StringVar(&sprintEnd, "end", "", "end date (default start + --weeks)")
	sprintCreateCmd.Flags().IntVar(&sprintWeeks, "weeks", 2, "sprint length when --end is not given")
	sprintCreateCmd.MarkFlagRequired("name")
}

func runSprintCreate(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(sprintName)
	if name == "" {
		return fmt.Errorf("sprint name is required")
	}

	now := time.Now()
	start := now
	if sprintStart != "" {
		t, err := parseDate(sprintStart, now)
		if err != nil {
			return err
		}
		start = t
	}
	end := start.AddDate(0, 0, 7*sprintWeeks)
	if sprintEnd != "" {
		t, err := parseDate(sprintEnd, now)
		if err != nil {
			return err
		}
		end = t
	}
	if end.Before(start) {
		return fmt.Errorf("sprint ends before it starts")
	}

	return withWorkspace(func(w *workspace) error {
		if _, err := w.requireProject(); err != nil {
			return err
		}
		if _, err := w.resolveSprint(name); err == nil {
			return fmt.Errorf("sprint %q already exists", name)
		}

		sp := w.store.AddSprint(store.SprintDraft{Name: name, Goal: sprintGoal, StartDate: start, EndDate: end})
		if jsonOutput() {
			return printJSON(sp)
		}
		fmt.Println(ui.Success("Created %s (%s → %s)", sp.Name, sp.StartDate.Format(dateLayout), sp.EndDate.Format(dateLayout)))
		return nil
	})
}

func runSprintList(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		snap := w.store.Snapshot()
		sprints := []model.Sprint{}
		for _, sp := range snap.Sprints {
			if snap.CurrentProject == nil || sp.ProjectID == snap.CurrentProject.ID {
				sprints = append(sprints, sp)
			}
		}

		if jsonOutput() {
			return printJSON(sprints)
		}
		if len(sprints) == 0 {
			fmt.Println(ui.RenderMuted("No sprints. Create one with: tracker sprint create --name \"Sprint 1\""))
			return nil
		}

		for _, sp := range sprints {
			p := report.SprintProgress(sp, snap.Issues)
			fmt.Printf("\n%s  %s  %s\n", ui.RenderBold(sp.Name), ui.RenderSprintStatus(sp.Status),
				ui.RenderMuted(sp.StartDate.Format(dateLayout)+" → "+sp.EndDate.Format(dateLayout)))
			if sp.Goal != "" {
				fmt.Printf("  Goal: %s\n", sp.Goal)
			}
			fmt.Printf("  %s %5.1f%%  %d/%d issues done, %d/%d points\n",
				ui.ProgressBar(p.Percent, 20), p.Percent, p.Done, p.Issues, p.DonePoints, p.Points)
		}
		fmt.Println()
		return nil
	})
}

// transitionSprint checks the forward-only rule before asking the store,
// so the user sees why nothing happened.
func transitionSprint(ref string, target model.SprintStatus) error {
	return withWorkspace(func(w *workspace) error {
		sp, err := w.resolveSprint(ref)
		if err != nil {
			return err
		}
		if next, ok := sp.Status.Next(); !ok || next != target {
			return fmt.Errorf("cannot move sprint %q from %s to %s", sp.Name, sp.Status, target)
		}

		switch target {
		case model.SprintActive:
			for _, other := range w.store.Snapshot().Sprints {
				if other.Status == model.SprintActive && other.ProjectID == sp.ProjectID {
					fmt.Println(ui.Warning("%s is also active", other.Name))
				}
			}
			w.store.StartSprint(sp.ID)
			fmt.Println(ui.Success("Started %s", sp.Name))
		case model.SprintCompleted:
			w.store.CompleteSprint(sp.ID)
			p := report.SprintProgress(sp, w.store.Snapshot().Issues)
			fmt.Println(ui.Success("Completed %s: %d/%d issues, %d/%d points done", sp.Name, p.Done, p.Issues, p.DonePoints, p.Points))
			if open := p.Issues - p.Done; open > 0 {
				fmt.Println(ui.Warning("%d unfinished issue(s) remain in the sprint; move them with `tracker sprint move` or `tracker sprint backlog`", open))
			}
		}
		return nil
	})
}

func runSprintMove(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		sp, err := w.resolveSprint(args[len(args)-1])
		if err != nil {
			return err
		}
		if sp.Status == model.SprintCompleted {
			return fmt.Errorf("sprint %q is completed", sp.Name)
		}

		for _, ref := range args[:len(args)-1] {
			issue, err := w.resolveIssue(ref)
			if err != nil {
				return err
			}
			w.store.MoveIssueToSprint(issue.ID, sp.ID)
			fmt.Println(ui.Success("%s → %s", issue.Key, sp.Name))
		}
		return nil
	})
}

func runSprintBacklog(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		for _, ref := range args {
			issue, err := w.resolveIssue(ref)
			if err != nil {
				return err
			}
			w.store.MoveIssueToBacklog(issue.ID)
			fmt.Println(ui.Success("%s → backlog", issue.Key))
		}
		return nil
	})
}

func runSprintRename(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[1])
	if name == "" {
		return fmt.Errorf("sprint name is required")
	}

	return withWorkspace(func(w *workspace) error {
		sp, err := w.resolveSprint(args[0])
		if err != nil {
			return err
		}
		if other, err := w.resolveSprint(name); err == nil && other.ID != sp.ID {
			return fmt.Errorf("sprint %q already exists", name)
		}

		w.store.UpdateSprint(sp.ID, store.SprintPatch{Name: &name})
		fmt.Println(ui.Success("Renamed %s to %s (%d issue(s) follow)", sp.Name, name, len(sp.Issues)))
		return nil
	})
}
