package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kiracore/tracker/internal/model"
)

// ValidationError represents a configuration or input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult holds all validation errors
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

func (r *ValidationResult) AddError(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

func (r *ValidationResult) AddWarning(field, message string) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: message})
}

func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Err returns the first error, or nil when the result is valid
func (r *ValidationResult) Err() error {
	if r.IsValid() {
		return nil
	}
	return r.Errors[0]
}

// Config represents the tracker configuration file
type Config struct {
	Version        string   `yaml:"version" json:"version" mapstructure:"version"`
	Database       string   `yaml:"database" json:"database" mapstructure:"database"`
	Workspace      string   `yaml:"workspace" json:"workspace" mapstructure:"workspace"`
	CurrentProject string   `yaml:"current_project" json:"current_project" mapstructure:"current_project"`
	CurrentUser    string   `yaml:"current_user" json:"current_user" mapstructure:"current_user"`
	Settings       Settings `yaml:"settings" json:"settings" mapstructure:"settings"`
}

// Settings holds configuration settings
type Settings struct {
	IDStyle    string         `yaml:"id_style" json:"id_style" mapstructure:"id_style"`
	LogLevel   string         `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	BoardLimit int            `yaml:"board_limit" json:"board_limit" mapstructure:"board_limit"`
	WIPLimits  map[string]int `yaml:"wip_limits" json:"wip_limits" mapstructure:"wip_limits"`
}

// Load loads configuration from viper
func Load() (*Config, error) {
	cfg := &Config{
		Settings: Settings{
			IDStyle:    "random",
			LogLevel:   "info",
			BoardLimit: 10,
		},
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a yaml file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	if c.Version == "" {
		result.AddWarning("version", "version not specified, assuming v1")
	} else if c.Version != "1" {
		result.AddWarning("version", fmt.Sprintf("unknown version %q, expected \"1\"", c.Version))
	}

	if c.CurrentProject != "" {
		if err := ValidateProjectKey(c.CurrentProject); err != nil {
			result.AddError("current_project", err.(ValidationError).Message)
		}
	}

	switch c.Settings.IDStyle {
	case "", "random", "sequence":
	default:
		result.AddError("settings.id_style", fmt.Sprintf("unknown id style %q (random|sequence)", c.Settings.IDStyle))
	}

	switch strings.ToLower(c.Settings.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		result.AddError("settings.log_level", fmt.Sprintf("unknown log level %q", c.Settings.LogLevel))
	}

	if c.Settings.BoardLimit < 0 {
		result.AddWarning("settings.board_limit", "negative board limit, columns will not be truncated")
	}

	for status, limit := range c.Settings.WIPLimits {
		if !model.IssueStatus(status).Valid() {
			result.AddError(fmt.Sprintf("settings.wip_limits.%s", status), "unknown issue status")
		}
		if limit < 1 {
			result.AddWarning(fmt.Sprintf("settings.wip_limits.%s", status), "WIP limit < 1 is not useful")
		}
	}

	return result
}

var (
	projectKeyRegex = regexp.MustCompile(`^[A-Z]{2,5}$`)
	hexColorRegex   = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	slugRegex       = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	emailRegex      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateProjectKey checks the 2-5 uppercase letter key format
func ValidateProjectKey(key string) error {
	if !projectKeyRegex.MatchString(key) {
		return ValidationError{Field: "key", Message: fmt.Sprintf("invalid project key %q (must be 2-5 uppercase letters)", key)}
	}
	return nil
}

// ValidateNewProjectKey also rejects a key already used by a project
func ValidateNewProjectKey(key string, projects []model.Project) error {
	if err := ValidateProjectKey(key); err != nil {
		return err
	}
	for _, p := range projects {
		if p.Key == key {
			return ValidationError{Field: "key", Message: fmt.Sprintf("project key %q already exists", key)}
		}
	}
	return nil
}

// ValidateIssueTitle rejects blank titles
func ValidateIssueTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	return nil
}

// ValidateColor checks a #RRGGBB colour
func ValidateColor(color string) error {
	if !hexColorRegex.MatchString(color) {
		return ValidationError{Field: "color", Message: fmt.Sprintf("invalid color %q (must be #RRGGBB)", color)}
	}
	return nil
}

// ValidateSlug checks a lowercase, hyphen separated workspace slug
func ValidateSlug(slug string) error {
	if !slugRegex.MatchString(slug) {
		return ValidationError{Field: "slug", Message: fmt.Sprintf("invalid slug %q", slug)}
	}
	return nil
}

// ValidateEmail does a shallow address check
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: fmt.Sprintf("invalid email %q", email)}
	}
	return nil
}
