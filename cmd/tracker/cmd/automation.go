package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/store"
	"github.com/kiracore/tracker/internal/ui"
)

var (
	autoName       string
	autoTrigger    string
	autoConditions []string
	autoActions    []string
	autoDisabled   bool
)

var automationCmd = &cobra.Command{
	Use:     "automation",
	Aliases: []string{"auto"},
	Short:   "Store automation rules",
	Long: `Automation rules are stored descriptions; the tracker never runs them.

Conditions are written field=value, actions type[:key=value].

Examples:
  tracker automation add --name "Auto-assign bugs" --trigger issue-created \
      --if type=bug --then assign:user=alice@example.com
  tracker automation toggle "Auto-assign bugs"`,
}

var automationAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a rule to the current project",
	RunE:  runAutomationAdd,
}

var automationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(func(w *workspace) error {
			autos := w.store.Snapshot().Automations
			if jsonOutput() {
				return printJSON(autos)
			}
			if len(autos) == 0 {
				fmt.Println(ui.RenderMuted("No automation rules."))
				return nil
			}
			for _, a := range autos {
				state := ui.RenderPass("on ")
				if !a.Enabled {
					state = ui.RenderMuted("off")
				}
				fmt.Printf("%s %-30s when %s", state, ui.Truncate(a.Name, 30), a.Trigger.Type)
				for _, c := range a.Conditions {
					fmt.Printf(" if %s%s%v", c.Field, c.Operator, c.Value)
				}
				for _, act := range a.Actions {
					fmt.Printf(" then %s", act.Type)
				}
				fmt.Println()
			}
			return nil
		})
	},
}

var automationToggleCmd = &cobra.Command{
	Use:   "toggle <rule>",
	Short: "Enable or disable a rule (id or name)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(func(w *workspace) error {
			a, err := resolveAutomation(w, args[0])
			if err != nil {
				return err
			}
			w.store.ToggleAutomation(a.ID)
			state := "enabled"
			if a.Enabled {
				state = "disabled"
			}
			fmt.Println(ui.Success("%s %s", a.Name, state))
			return nil
		})
	},
}

var automationDeleteCmd = &cobra.Command{
	Use:   "delete <rule>",
	Short: "Delete a rule (id or name)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(func(w *workspace) error {
			a, err := resolveAutomation(w, args[0])
			if err != nil {
				return err
			}
			w.store.DeleteAutomation(a.ID)
			fmt.Println(ui.Success("Deleted %s", a.Name))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(automationCmd)
	automationCmd.AddCommand(automationAddCmd)
	automationCmd.AddCommand(automationListCmd)
	automationCmd.AddCommand(automationToggleCmd)
	automationCmd.AddCommand(automationDeleteCmd)

	automationAddCmd.Flags().StringVarP(&autoName, "name", "n", "", "rule name")
	automationAddCmd.Flags().StringVar(&autoTrigger, "trigger", "", "trigger (issue-created|status-changed|comment-added|scheduled)")
	automationAddCmd.Flags().StringArrayVar(&autoConditions, "if", nil, "condition field=value (repeatable)")
	automationAddCmd.Flags().StringArrayVar(&autoActions, "then", nil, "action type[:key=value,...] (repeatable)")
	automationAddCmd.Flags().BoolVar(&autoDisabled, "disabled", false, "store the rule disabled")
	automationAddCmd.MarkFlagRequired("name")
	automationAddCmd.MarkFlagRequired("trigger")
}

func resolveAutomation(w *workspace, ref string) (model.Automation, error) {
	for _, a := range w.store.Snapshot().Automations {
		if a.ID == ref || strings.EqualFold(a.Name, ref) {
			return a, nil
		}
	}
	return model.Automation{}, fmt.Errorf("automation %q not found", ref)
}

func parseCondition(s string) (model.Condition, error) {
	for _, op := range []string{"!=", "="} {
		if field, value, ok := strings.Cut(s, op); ok && field != "" {
			return model.Condition{Field: strings.TrimSpace(field), Operator: op, Value: strings.TrimSpace(value)}, nil
		}
	}
	return model.Condition{}, fmt.Errorf("condition %q: want field=value or field!=value", s)
}

func parseAction(s string) (model.Action, error) {
	name, rest, _ := strings.Cut(s, ":")
	act := model.Action{Type: model.ActionType(name)}
	if !act.Type.Valid() {
		return act, fmt.Errorf("unknown action %q", name)
	}
	if rest == "" {
		return act, nil
	}
	act.Config = map[string]any{}
	for _, kv := range strings.Split(rest, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return act, fmt.Errorf("action %q: bad option %q", s, kv)
		}
		act.Config[k] = v
	}
	return act, nil
}

func runAutomationAdd(cmd *cobra.Command, args []string) error {
	trigger := model.TriggerType(autoTrigger)
	if !trigger.Valid() {
		return fmt.Errorf("unknown trigger %q", autoTrigger)
	}
	draft := store.AutomationDraft{
		Name:    strings.TrimSpace(autoName),
		Enabled: !autoDisabled,
		Trigger: model.Trigger{Type: trigger},
	}
	if draft.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	for _, s := range autoConditions {
		c, err := parseCondition(s)
		if err != nil {
			return err
		}
		draft.Conditions = append(draft.Conditions, c)
	}
	for _, s := range autoActions {
		a, err := parseAction(s)
		if err != nil {
			return err
		}
		draft.Actions = append(draft.Actions, a)
	}

	return withWorkspace(func(w *workspace) error {
		if _, err := w.requireProject(); err != nil {
			return err
		}
		if _, err := resolveAutomation(w, draft.Name); err == nil {
			return fmt.Errorf("automation %q already exists", draft.Name)
		}
		a := w.store.AddAutomation(draft)
		if jsonOutput() {
			return printJSON(a)
		}
		fmt.Println(ui.Success("Added rule %s", a.Name))
		return nil
	})
}
