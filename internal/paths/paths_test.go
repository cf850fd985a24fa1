package paths

import (
	"path/filepath"
	"testing"
)

func TestXDGOverrides(t *testing.T) {
	data := t.TempDir()
	conf := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)
	t.Setenv("XDG_CONFIG_HOME", conf)

	if got, want := DatabasePath(), filepath.Join(data, "tracker", "tracker.db"); got != want {
		t.Errorf("DatabasePath() = %q, want %q", got, want)
	}
	if got, want := BackupDir(), filepath.Join(data, "tracker", "backups"); got != want {
		t.Errorf("BackupDir() = %q, want %q", got, want)
	}
	if got, want := ConfigFilePath(), filepath.Join(conf, "tracker", "config.yaml"); got != want {
		t.Errorf("ConfigFilePath() = %q, want %q", got, want)
	}
}

func TestEnsureDirs(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	for name, fn := range map[string]func() error{
		"data":   EnsureDataDir,
		"config": EnsureConfigDir,
		"backup": EnsureBackupDir,
	} {
		if err := fn(); err != nil {
			t.Errorf("Ensure %s dir: %v", name, err)
		}
	}
}
