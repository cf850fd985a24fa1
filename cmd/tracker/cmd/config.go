package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kiracore/tracker/internal/config"
	"github.com/kiracore/tracker/internal/db"
	"github.com/kiracore/tracker/internal/paths"
	"github.com/kiracore/tracker/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for inspecting and validating tracker configuration files.`,
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate configuration file",
	Long: `Validate the configuration file for errors and warnings.

Examples:
  tracker config validate
  tracker config validate .tracker.yaml
  tracker config validate --config myconfig.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after flags, environment and files are merged.`,
	RunE:  runShowConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config and database locations",
	Run: func(cmd *cobra.Command, args []string) {
		used := viper.ConfigFileUsed()
		if used == "" {
			used = "(none found)"
		}
		database := viper.GetString("database")
		if database == "" {
			database = db.DefaultDBPath()
		}
		fmt.Printf("Config file:  %s\n", used)
		fmt.Printf("User config:  %s\n", paths.ConfigFilePath())
		fmt.Printf("Database:     %s\n", database)
		fmt.Printf("Backups:      %s\n", paths.BackupDir())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(validateCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(configPathCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := cfgFile
	if len(args) > 0 {
		configFile = args[0]
	}
	if configFile == "" {
		configFile = viper.ConfigFileUsed()
	}
	if configFile == "" {
		configFile = paths.ConfigFileName
	}

	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("Validating: %s\n\n", configFile)

	result := cfg.Validate()
	printValidation(result)

	fmt.Printf("Configuration summary:\n")
	fmt.Printf("  Current project: %s\n", valueOr(cfg.CurrentProject, "(none)"))
	fmt.Printf("  Current user:    %s\n", valueOr(cfg.CurrentUser, "(none)"))
	fmt.Printf("  ID style:        %s\n", valueOr(cfg.Settings.IDStyle, "random"))
	fmt.Printf("  WIP limits:      %d\n", len(cfg.Settings.WIPLimits))
	fmt.Println()

	if result.IsValid() {
		fmt.Println(ui.Success("Configuration is valid"))
		return nil
	}

	fmt.Println(ui.RenderFail(ui.IconFail + " Configuration has errors"))
	os.Exit(1)
	return nil
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if jsonOutput() {
		return printJSON(cfg)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

// printValidation prints errors in red and warnings in yellow
func printValidation(result *config.ValidationResult) {
	if len(result.Errors) > 0 {
		fmt.Println(ui.RenderFail(fmt.Sprintf("%s %d error(s):", ui.IconFail, len(result.Errors))))
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", ui.RenderFail("• "+e.Error()))
		}
		fmt.Println()
	}

	if len(result.Warnings) > 0 {
		fmt.Println(ui.RenderWarn(fmt.Sprintf("%s %d warning(s):", ui.IconWarn, len(result.Warnings))))
		for _, w := range result.Warnings {
			fmt.Printf("  %s\n", ui.RenderWarn("• "+w.Error()))
		}
		fmt.Println()
	}
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// sortedKeys returns map keys in a stable order for printing
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
