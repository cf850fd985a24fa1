package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiracore/tracker/internal/db"
	"github.com/kiracore/tracker/internal/paths"
	"github.com/kiracore/tracker/internal/ui"
)

var (
	backupPath   string
	historyLimit int
	resetConfirm bool
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management commands",
	Long: `Manage the tracker SQLite database.

The database holds every collection of the workspace, the session
(current project, user and selection) and a history of saves.

Examples:
  tracker db init                    # Initialize database
  tracker db status                  # Show database status
  tracker db backup --output b.db    # Backup database
  tracker db restore --input b.db    # Restore from backup
  tracker db export > data.json      # Export to JSON
  tracker db import < data.json      # Import from JSON`,
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.Init(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		fmt.Println(ui.Success("Database initialized at: %s", database.Path()))
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database status and statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.Init(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		stats, err := database.GetStats()
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}
		history, err := database.History(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}

		if jsonOutput() {
			return printJSON(struct {
				*db.Stats
				History []db.HistoryEntry `json:"history"`
			}{stats, history})
		}

		fmt.Println("╔════════════════════════════════════════════════════════════╗")
		fmt.Println("║                    DATABASE STATUS                         ║")
		fmt.Println("╠════════════════════════════════════════════════════════════╣")
		fmt.Printf("║  Path:           %-40s ║\n", truncatePath(stats.Path, 40))
		fmt.Printf("║  Size:           %-40s ║\n", humanize.Bytes(uint64(stats.Size)))
		fmt.Printf("║  Schema Version: %-40d ║\n", stats.SchemaVersion)
		fmt.Println("╠════════════════════════════════════════════════════════════╣")
		for _, name := range sortedKeys(stats.Collections) {
			fmt.Printf("║  %-15s %-40d ║\n", name+":", stats.Collections[name])
		}
		if len(stats.ByStatus) > 0 {
			fmt.Println("╠════════════════════════════════════════════════════════════╣")
			for _, status := range sortedKeys(stats.ByStatus) {
				fmt.Printf("║  %-15s %-40d ║\n", status+":", stats.ByStatus[status])
			}
		}
		fmt.Println("╠════════════════════════════════════════════════════════════╣")
		lastSaved := "Never"
		if !stats.LastSaved.IsZero() {
			lastSaved = fmt.Sprintf("%s (%s)", stats.LastSaved.Local().Format("2006-01-02 15:04:05"), humanize.Time(stats.LastSaved))
		}
		fmt.Printf("║  Saves:          %-40d ║\n", stats.Saves)
		fmt.Printf("║  Last Saved:     %-40s ║\n", lastSaved)
		fmt.Println("╚════════════════════════════════════════════════════════════╝")

		if len(history) > 0 {
			fmt.Println()
			fmt.Println(ui.RenderBold("Recent saves"))
			for _, h := range history {
				fmt.Printf("  %s  %3d issues  %2d sprints  %2d projects  %s\n",
					h.SavedAt.Local().Format("2006-01-02 15:04:05"), h.Issues, h.Sprints, h.Projects, ui.RenderMuted(h.ID[:8]))
			}
		}
		return nil
	},
}

var dbPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the database file path",
	Run: func(cmd *cobra.Command, args []string) {
		if p := viper.GetString("database"); p != "" {
			fmt.Println(p)
		} else {
			fmt.Println(db.DefaultDBPath())
		}
	},
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Backup the database",
	Long: `Creates a backup copy of the database.

If no output path is specified, creates a timestamped backup in
$XDG_DATA_HOME/tracker/backups/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		dest := backupPath
		if dest == "" {
			if err := paths.EnsureBackupDir(); err != nil {
				return err
			}
			dest = filepath.Join(paths.BackupDir(), fmt.Sprintf("tracker-%s.db", time.Now().Format("20060102-150405")))
		}

		if err := database.Backup(dest); err != nil {
			return fmt.Errorf("failed to backup database: %w", err)
		}

		size := "?"
		if info, err := os.Stat(dest); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		fmt.Println(ui.Success("Database backed up to: %s (%s)", dest, size))
		return nil
	},
}

var dbRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore database from backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		if backupPath == "" {
			return fmt.Errorf("backup path required: use --input")
		}
		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			return fmt.Errorf("backup file not found: %s", backupPath)
		}

		database, err := openDB()
		if err != nil {
			return err
		}
		if err := database.Restore(backupPath); err != nil {
			return fmt.Errorf("failed to restore database: %w", err)
		}

		fmt.Println(ui.Success("Database restored from: %s", backupPath))
		return nil
	},
}

var dbExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the workspace to JSON",
	Long: `Exports every collection and the session as JSON.

Output goes to stdout. Redirect to a file:
  tracker db export > workspace.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.Init(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.Export(os.Stdout); err != nil {
			return fmt.Errorf("failed to export database: %w", err)
		}
		return nil
	},
}

var dbImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the workspace with a JSON export",
	Long: `Imports an export produced by "tracker db export" from stdin:
  tracker db import < workspace.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.Init(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.Import(os.Stdin); err != nil {
			return fmt.Errorf("failed to import database: %w", err)
		}

		fmt.Fprintln(os.Stderr, ui.Success("Database imported successfully"))
		return nil
	},
}

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the database (destroys all data)",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("database")
		if path == "" {
			path = db.DefaultDBPath()
		}
		if !resetConfirm {
			return fmt.Errorf("refusing to delete %s without --yes", path)
		}

		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove %s: %w", path+suffix, err)
			}
		}

		database, err := db.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		if err := database.Init(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		fmt.Println(ui.Success("Database reset at: %s", path))
		return nil
	},
}

var dbOptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize database performance",
	Long: `Runs VACUUM and ANALYZE.

VACUUM reclaims unused space and defragments the database file.
ANALYZE updates statistics used by the query planner.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		before, _ := os.Stat(database.Path())
		if err := database.Optimize(); err != nil {
			return fmt.Errorf("optimize failed: %w", err)
		}
		after, err := os.Stat(database.Path())
		if err != nil {
			return err
		}

		if before != nil && before.Size() > after.Size() {
			fmt.Println(ui.Success("Optimization complete. Reclaimed %s", humanize.Bytes(uint64(before.Size()-after.Size()))))
		} else {
			fmt.Println(ui.Success("Optimization complete. Database was already optimized."))
		}
		fmt.Printf("  Size: %s\n", humanize.Bytes(uint64(after.Size())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)

	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbPathCmd)
	dbCmd.AddCommand(dbBackupCmd)
	dbCmd.AddCommand(dbRestoreCmd)
	dbCmd.AddCommand(dbExportCmd)
	dbCmd.AddCommand(dbImportCmd)
	dbCmd.AddCommand(dbResetCmd)
	dbCmd.AddCommand(dbOptimizeCmd)

	dbStatusCmd.Flags().IntVar(&historyLimit, "history", 5, "number of recent saves to list")
	dbBackupCmd.Flags().StringVarP(&backupPath, "output", "o", "", "backup output path")
	dbRestoreCmd.Flags().StringVarP(&backupPath, "input", "i", "", "backup input path")
	dbResetCmd.Flags().BoolVar(&resetConfirm, "yes", false, "confirm deleting all data")
}

// openDB opens the database named by --db, TRACKER_DATABASE or the config file
func openDB() (*db.DB, error) {
	database, err := db.Open(viper.GetString("database"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// truncatePath keeps the tail of long paths
func truncatePath(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen+3:]
}
