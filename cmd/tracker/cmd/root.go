package cmd

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiracore/tracker/internal/paths"
)

var (
	// Version info (set by ldflags)
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"

	// Global flags
	cfgFile string
	dbPath  string
	verbose bool

	// Shared command flags
	format string

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Terminal issue tracker",
	Long: `Tracker is a terminal issue tracker for projects, sprints, epics and releases.

The workspace lives in a local SQLite database. Every command loads it,
applies one change and saves it back.

Example:
  tracker init
  tracker project create --key ENG --name "Engine"
  tracker issue create "Fix login crash" --type bug --priority high
  tracker board`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger()
		slog.SetDefault(logger)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default .tracker.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default $XDG_DATA_HOME/tracker/tracker.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "output format (text|json)")

	// Bind flags to viper
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Search order:
		// 1. Current directory (.tracker.yaml) - workspace-specific config
		// 2. XDG config dir (config.yaml) - user default config
		viper.AddConfigPath(".")
		viper.AddConfigPath(paths.ConfigDir())
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tracker")
	}

	viper.SetEnvPrefix("TRACKER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		viper.ReadInConfig()
	}
}

// newLogger builds the stderr logger. --verbose wins over settings.log_level.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(viper.GetString("settings.log_level")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if used := viper.ConfigFileUsed(); used != "" {
		l.Debug("using config file", "path", used)
	}
	return l
}

func jsonOutput() bool {
	return format == "json"
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
