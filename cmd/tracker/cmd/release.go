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
	releaseName        string
	releaseVersion     string
	releaseDescription string
	releaseStatus      string
	releaseDate        string
	releaseAdd         []string
	releaseRemove      []string
)

var releaseCmd = &cobra.Command{
	Use:     "release",
	Aliases: []string{"releases"},
	Short:   "Plan versioned releases",
}

var releaseCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a release in the current project",
	Long: `Create a release.

Examples:
  tracker release create --name "Spring" --version 1.2.0 --date 2026-04-30
  tracker release create --name "Hotfix" --version 1.1.1 --add ENG-120`,
	RunE: runReleaseCreate,
}

var releaseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List releases with progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(func(w *workspace) error {
			snap := w.store.Snapshot()
			if jsonOutput() {
				return printJSON(snap.Releases)
			}
			printReleases(snap.Releases, snap.Issues)
			return nil
		})
	},
}

var releaseUpdateCmd = &cobra.Command{
	Use:   "update <release>",
	Short: "Change a release (id, name or version)",
	Args:  cobra.ExactArgs(1),
	RunE:  runReleaseUpdate,
}

func init() {
	rootCmd.AddCommand(releaseCmd)
	releaseCmd.AddCommand(releaseCreateCmd)
	releaseCmd.AddCommand(releaseListCmd)
	releaseCmd.AddCommand(releaseUpdateCmd)

	for _, c := range []*cobra.Command{releaseCreateCmd, releaseUpdateCmd} {
		c.Flags().StringVarP(&releaseName, "name", "n", "", "release name")
		c.Flags().StringVar(&releaseVersion, "version", "", "version, e.g. 1.2.0")
		c.Flags().StringVarP(&releaseDescription, "description", "d", "", "description")
		c.Flags().StringVar(&releaseStatus, "status", "", "status (planned|inprogress|released)")
		c.Flags().StringVar(&releaseDate, "date", "", "release date")
		c.Flags().StringSliceVar(&releaseAdd, "add", nil, "issue keys to add")
	}
	releaseUpdateCmd.Flags().StringSliceVar(&releaseRemove, "remove", nil, "issue keys to remove")
	releaseCreateCmd.MarkFlagRequired("name")
	releaseCreateCmd.MarkFlagRequired("version")
}

func parseReleaseStatus() (model.ReleaseStatus, error) {
	status := model.ReleaseStatus(releaseStatus)
	if status != "" && !status.Valid() {
		return "", fmt.Errorf("unknown release status %q", releaseStatus)
	}
	return status, nil
}

func runReleaseCreate(cmd *cobra.Command, args []string) error {
	status, err := parseReleaseStatus()
	if err != nil {
		return err
	}

	return withWorkspace(func(w *workspace) error {
		if _, err := w.requireProject(); err != nil {
			return err
		}

		draft := store.ReleaseDraft{
			Name:        releaseName,
			Version:     releaseVersion,
			Description: releaseDescription,
			Status:      status,
		}
		if draft.ReleaseDate, err = parseOptionalDate(releaseDate, time.Now()); err != nil {
			return err
		}
		if draft.Issues, err = editKeyList(w, nil, releaseAdd, nil); err != nil {
			return err
		}

		r := w.store.AddRelease(draft)
		if jsonOutput() {
			return printJSON(r)
		}
		fmt.Println(ui.Success("Created release %s %s", r.Name, ui.RenderMuted("v"+r.Version)))
		return nil
	})
}

func runReleaseUpdate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	status, err := parseReleaseStatus()
	if err != nil {
		return err
	}

	return withWorkspace(func(w *workspace) error {
		var release model.Release
		found := false
		for _, r := range w.store.Snapshot().Releases {
			if r.ID == args[0] || strings.EqualFold(r.Name, args[0]) || r.Version == strings.TrimPrefix(args[0], "v") {
				release, found = r, true
				break
			}
		}
		if !found {
			return fmt.Errorf("release %q not found", args[0])
		}

		var patch store.ReleasePatch
		if flags.Changed("name") {
			patch.Name = &releaseName
		}
		if flags.Changed("version") {
			patch.Version = &releaseVersion
		}
		if flags.Changed("description") {
			patch.Description = &releaseDescription
		}
		if status != "" {
			patch.Status = &status
		}
		if flags.Changed("date") {
			t, err := parseDate(releaseDate, time.Now())
			if err != nil {
				return err
			}
			patch.ReleaseDate = &t
		}
		if len(releaseAdd) > 0 || len(releaseRemove) > 0 {
			keys, err := editKeyList(w, release.Issues, releaseAdd, releaseRemove)
			if err != nil {
				return err
			}
			patch.Issues = keys
		}

		w.store.UpdateRelease(release.ID, patch)
		fmt.Println(ui.Success("Updated release %s", release.Name))
		return nil
	})
}

func printReleases(releases []model.Release, issues []model.Issue) {
	if len(releases) == 0 {
		fmt.Println(ui.RenderMuted("No releases."))
		return
	}
	for _, r := range releases {
		p := report.ReleaseProgress(r, issues)
		date := "-"
		if r.ReleaseDate != nil {
			date = r.ReleaseDate.Format(dateLayout)
		}
		fmt.Printf("%-20s %-10s %-10s %-11s %s %5.1f%%  %d/%d done\n",
			ui.Truncate(r.Name, 20), "v"+r.Version, date, r.Status,
			ui.ProgressBar(p.Percent, 16), p.Percent, p.Done, p.Issues)
	}
}
