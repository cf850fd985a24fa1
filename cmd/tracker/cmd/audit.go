package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kiracore/tracker/internal/config"
	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/store"
	"github.com/kiracore/tracker/internal/ui"
)

var (
	auditSeed string
	auditFix  bool
)

var labelsAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Compare workspace labels with a seed file",
	Long: `Reports missing, extra and recoloured labels compared to the labels
of a seed file (or the built-in defaults).

Examples:
  tracker label audit
  tracker label audit --seed team.yaml --fix`,
	RunE: runLabelsAudit,
}

func init() {
	labelsCmd.AddCommand(labelsAuditCmd)
	labelsAuditCmd.Flags().StringVar(&auditSeed, "seed", "", "seed file with the expected labels")
	labelsAuditCmd.Flags().BoolVar(&auditFix, "fix", false, "add missing labels")
}

// AuditResult lists label names that differ from the expected set
type AuditResult struct {
	Missing  []string `json:"missing"`
	Extra    []string `json:"extra"`
	Modified []string `json:"modified"`
}

// Clean reports whether the workspace matches the expected labels
func (r AuditResult) Clean() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0 && len(r.Modified) == 0
}

// auditLabels compares names case-insensitively and colours exactly
func auditLabels(expected []config.SeedLabel, current []model.Label) AuditResult {
	want := make(map[string]config.SeedLabel, len(expected))
	for _, l := range expected {
		want[strings.ToLower(l.Name)] = l
	}
	have := make(map[string]model.Label, len(current))
	for _, l := range current {
		have[strings.ToLower(l.Name)] = l
	}

	var r AuditResult
	for key, exp := range want {
		actual, ok := have[key]
		switch {
		case !ok:
			r.Missing = append(r.Missing, exp.Name)
		case !strings.EqualFold(actual.Color, exp.Color):
			r.Modified = append(r.Modified, exp.Name)
		}
	}
	for key, l := range have {
		if _, ok := want[key]; !ok {
			r.Extra = append(r.Extra, l.Name)
		}
	}
	sort.Strings(r.Missing)
	sort.Strings(r.Modified)
	sort.Strings(r.Extra)
	return r
}

func runLabelsAudit(cmd *cobra.Command, args []string) error {
	seed := config.DefaultSeed()
	if auditSeed != "" {
		s, err := config.LoadSeedFromFile(auditSeed)
		if err != nil {
			return err
		}
		seed = s
	}

	return withWorkspace(func(w *workspace) error {
		result := auditLabels(seed.Labels, w.store.Snapshot().Labels)

		if auditFix {
			for _, name := range result.Missing {
				for _, l := range seed.Labels {
					if l.Name == name {
						w.store.AddLabel(store.LabelDraft{Name: l.Name, Color: l.Color})
					}
				}
			}
		}

		if jsonOutput() {
			return printJSON(result)
		}
		printAuditTable(result, auditFix)
		return nil
	})
}

func printAuditTable(r AuditResult, fixed bool) {
	if r.Clean() {
		fmt.Println(ui.Success("All labels match"))
		return
	}

	if len(r.Missing) > 0 {
		if fixed {
			fmt.Println("Added labels:")
		} else {
			fmt.Println("Missing labels:")
		}
		for _, l := range r.Missing {
			fmt.Printf("  - %s\n", l)
		}
	}
	if len(r.Modified) > 0 {
		fmt.Println("Modified labels (colour differs):")
		for _, l := range r.Modified {
			fmt.Printf("  ~ %s\n", l)
		}
	}
	if len(r.Extra) > 0 {
		fmt.Println("Extra labels (not in seed):")
		for _, l := range r.Extra {
			fmt.Printf("  + %s\n", l)
		}
	}
}
