package paths

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the application name used in XDG directories
	AppName = "tracker"

	// ConfigFileName is the per-directory config file looked up before the XDG one
	ConfigFileName = ".tracker.yaml"
)

// DataDir returns the XDG data directory for tracker.
// Priority: $XDG_DATA_HOME/tracker -> ~/.local/share/tracker
func DataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", AppName)
}

// ConfigDir returns the XDG config directory for tracker.
// Priority: $XDG_CONFIG_HOME/tracker -> ~/.config/tracker
func ConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", AppName)
}

// DatabasePath returns the default workspace database file.
func DatabasePath() string {
	return filepath.Join(DataDir(), "tracker.db")
}

// BackupDir returns the default backup directory.
func BackupDir() string {
	return filepath.Join(DataDir(), "backups")
}

// ConfigFilePath returns the default config file path in the XDG config dir.
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0755)
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0755)
}

// EnsureBackupDir creates the backup directory if it doesn't exist.
func EnsureBackupDir() error {
	return os.MkdirAll(BackupDir(), 0755)
}
