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

var (
	epicName        string
	epicDescription string
	epicColor       string
	epicStatus      string
	epicStart       string
	epicEnd         string
	epicAdd         []string
	epicRemove      []string
)

var epicCmd = &cobra.Command{
	Use:     "epic",
	Aliases: []string{"epics"},
	Short:   "Group issues into epics",
}

var epicCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an epic in the current project",
	RunE:  runEpicCreate,
}

var epicListCmd = &cobra.Command{
	Use:   "list",
	Short: "List epics with progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(func(w *workspace) error {
			snap := w.store.Snapshot()
			if jsonOutput() {
				return printJSON(snap.Epics)
			}
			printEpics(snap.Epics, snap.Issues)
			return nil
		})
	},
}

var epicUpdateCmd = &cobra.Command{
	Use:   "update <epic>",
	Short: "Change an epic or its issues (epic key or id)",
	Long: `Change epic fields and membership.

Examples:
  tracker epic update ENG-E1 --add ENG-101,ENG-102
  tracker epic update ENG-E1 --status done`,
	Args: cobra.ExactArgs(1),
	RunE: runEpicUpdate,
}

func init() {
	rootCmd.AddCommand(epicCmd)
	epicCmd.AddCommand(epicCreateCmd)
	epicCmd.AddCommand(epicListCmd)
	epicCmd.AddCommand(epicUpdateCmd)

	for _, c := range []*cobra.Command{epicCreateCmd, epicUpdateCmd} {
		c.Flags().StringVarP(&epicName, "name", "n", "", "epic name")
		c.Flags().StringVarP(&epicDescription, "description", "d", "", "description")
		c.Flags().StringVar(&epicColor, "color", "#8b5cf6", "colour (#RRGGBB)")
		c.Flags().StringVar(&epicStatus, "status", "", "status (todo|inprogress|inreview|blocked|done)")
		c.Flags().StringVar(&epicStart, "start", "", "start date")
		c.Flags().StringVar(&epicEnd, "end", "", "end date")
		c.Flags().StringSliceVar(&epicAdd, "add", nil, "issue keys to add")
	}
	epicUpdateCmd.Flags().StringSliceVar(&epicRemove, "remove", nil, "issue keys to remove")
	epicCreateCmd.MarkFlagRequired("name")
}

// nextEpicKey numbers epics per project: ENG-E1, ENG-E2, ...
func nextEpicKey(project model.Project, epics []model.Epic) string {
	n := 0
	prefix := project.Key + "-E"
	for _, e := range epics {
		var k int
		if strings.HasPrefix(e.Key, prefix) {
			if _, err := fmt.Sscanf(e.Key[len(prefix):], "%d", &k); err == nil && k > n {
				n = k
			}
		}
	}
	return fmt.Sprintf("%s%d", prefix, n+1)
}

func runEpicCreate(cmd *cobra.Command, args []string) error {
	if err := config.ValidateColor(epicColor); err != nil {
		return err
	}
	status := model.IssueStatus(epicStatus)
	if status != "" && !status.Valid() {
		return fmt.Errorf("unknown status %q", epicStatus)
	}

	return withWorkspace(func(w *workspace) error {
		project, err := w.requireProject()
		if err != nil {
			return err
		}

		draft := store.EpicDraft{
			Key:         nextEpicKey(project, w.store.Snapshot().Epics),
			Name:        epicName,
			Description: epicDescription,
			Color:       epicColor,
			Status:      status,
		}
		if draft.StartDate, err = parseOptionalDate(epicStart, time.Now()); err != nil {
			return err
		}
		if draft.EndDate, err = parseOptionalDate(epicEnd, time.Now()); err != nil {
			return err
		}
		if draft.Issues, err = editKeyList(w, nil, epicAdd, nil); err != nil {
			return err
		}

		e := w.store.AddEpic(draft)
		if jsonOutput() {
			return printJSON(e)
		}
		fmt.Println(ui.Success("Created epic %s %s", ui.RenderBold(e.Key), e.Name))
		return nil
	})
}

func runEpicUpdate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	return withWorkspace(func(w *workspace) error {
		var epic model.Epic
		found := false
		for _, e := range w.store.Snapshot().Epics {
			if e.ID == args[0] || strings.EqualFold(e.Key, args[0]) {
				epic, found = e, true
				break
			}
		}
		if !found {
			return fmt.Errorf("epic %q not found", args[0])
		}

		var patch store.EpicPatch
		if flags.Changed("name") {
			patch.Name = &epicName
		}
		if flags.Changed("description") {
			patch.Description = &epicDescription
		}
		if flags.Changed("color") {
			if err := config.ValidateColor(epicColor); err != nil {
				return err
			}
			patch.Color = &epicColor
		}
		if flags.Changed("status") {
			status := model.IssueStatus(epicStatus)
			if !status.Valid() {
				return fmt.Errorf("unknown status %q", epicStatus)
			}
			patch.Status = &status
		}
		now := time.Now()
		if flags.Changed("start") {
			t, err := parseDate(epicStart, now)
			if err != nil {
				return err
			}
			patch.StartDate = &t
		}
		if flags.Changed("end") {
			t, err := parseDate(epicEnd, now)
			if err != nil {
				return err
			}
			patch.EndDate = &t
		}

		if len(epicAdd) > 0 || len(epicRemove) > 0 {
			keys, err := editKeyList(w, epic.Issues, epicAdd, epicRemove)
			if err != nil {
				return err
			}
			patch.Issues = keys
		}

		w.store.UpdateEpic(epic.ID, patch)
		fmt.Println(ui.Success("Updated epic %s", epic.Key))
		return nil
	})
}

// editKeyList adds and removes issue keys, keeping order and uniqueness
func editKeyList(w *workspace, keys, add, remove []string) ([]string, error) {
	out := append([]string{}, keys...)
	for _, ref := range add {
		issue, err := w.resolveIssue(ref)
		if err != nil {
			return nil, err
		}
		dup := false
		for _, k := range out {
			if k == issue.Key {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, issue.Key)
		}
	}
	for _, ref := range remove {
		key := strings.ToUpper(ref)
		for i, k := range out {
			if k == key {
				out = append(out[:i], out[i+1:]...)
				break
			}
		}
	}
	return out, nil
}

func printEpics(epics []model.Epic, issues []model.Issue) {
	if len(epics) == 0 {
		fmt.Println(ui.RenderMuted("No epics."))
		return
	}
	for _, e := range epics {
		p := report.EpicProgress(e, issues)
		fmt.Printf("%s %-8s %-30s %s %5.1f%%  %d/%d done  %s\n",
			renderLabel(model.Label{Name: "", Color: e.Color}),
			e.Key, ui.Truncate(e.Name, 30),
			ui.ProgressBar(p.Percent, 16), p.Percent, p.Done, p.Issues,
			ui.RenderStatus(e.Status))
	}
}
