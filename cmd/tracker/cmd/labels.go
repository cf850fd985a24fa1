package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kiracore/tracker/internal/config"
	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/store"
	"github.com/kiracore/tracker/internal/ui"
)

var labelColor string

var labelsCmd = &cobra.Command{
	Use:     "label",
	Aliases: []string{"labels"},
	Short:   "Manage issue labels",
}

var labelsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a label",
	Args:  cobra.ExactArgs(1),
	RunE:  runLabelsAdd,
}

var labelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List labels with usage counts",
	RunE:  runLabelsList,
}

func init() {
	rootCmd.AddCommand(labelsCmd)
	labelsCmd.AddCommand(labelsAddCmd)
	labelsCmd.AddCommand(labelsListCmd)

	labelsAddCmd.Flags().StringVar(&labelColor, "color", "#6b7280", "label colour (#RRGGBB)")
}

func runLabelsAdd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return config.ValidationError{Field: "name", Message: "name is required"}
	}
	if err := config.ValidateColor(labelColor); err != nil {
		return err
	}

	return withWorkspace(func(w *workspace) error {
		for _, l := range w.store.Snapshot().Labels {
			if strings.EqualFold(l.Name, name) {
				return fmt.Errorf("label %q already exists", name)
			}
		}
		l := w.store.AddLabel(store.LabelDraft{Name: name, Color: labelColor})
		if jsonOutput() {
			return printJSON(l)
		}
		fmt.Println(ui.Success("Added label %s", renderLabel(l)))
		return nil
	})
}

func runLabelsList(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		snap := w.store.Snapshot()
		if jsonOutput() {
			return printJSON(snap.Labels)
		}
		printLabels(snap.Labels, snap.Issues)
		return nil
	})
}

func printLabels(labels []model.Label, issues []model.Issue) {
	if len(labels) == 0 {
		fmt.Println(ui.RenderMuted("No labels."))
		return
	}

	usage := make(map[string]int)
	for _, issue := range issues {
		for _, l := range issue.Labels {
			usage[l.ID]++
		}
	}

	fmt.Printf("\nLabels (%d):\n", len(labels))
	fmt.Println(ui.RenderSeparator())
	for _, l := range labels {
		fmt.Printf("  %-30s %s  %s\n", renderLabel(l), l.Color, ui.RenderMuted(fmt.Sprintf("%d issue(s)", usage[l.ID])))
	}
}

// renderLabel draws the label name in its own colour
func renderLabel(l model.Label) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(l.Color)).Render("● " + l.Name)
}
