package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	err := os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := Load(LoadInput{WorkDirOverride: dir, Env: map[string]string{}})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DataDirAbs != filepath.Join(dir, DefaultDataDir) {
		t.Errorf("data dir = %s, want default under workdir", cfg.DataDirAbs)
	}

	if cfg.DBPath != filepath.Join(dir, DefaultDataDir, DefaultDBFile) {
		t.Errorf("db path = %s", cfg.DBPath)
	}

	if cfg.Sources.Project != "" || cfg.Sources.Global != "" {
		t.Errorf("no config files should be recorded, got %+v", cfg.Sources)
	}
}

func TestLoadProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `{"data_dir": "gtd", "db_file": "store.db"}`)

	cfg, err := Load(LoadInput{WorkDirOverride: dir, Env: map[string]string{}})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DBPath != filepath.Join(dir, "gtd", "store.db") {
		t.Errorf("db path = %s", cfg.DBPath)
	}

	if cfg.Sources.Project != filepath.Join(dir, FileName) {
		t.Errorf("project source = %s", cfg.Sources.Project)
	}
}

// Config files are JSONC: comments and trailing commas are allowed.
func TestLoadJSONCComments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `{
		// where the database lives
		"data_dir": "commented",
	}`)

	cfg, err := Load(LoadInput{WorkDirOverride: dir, Env: map[string]string{}})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DataDirAbs != filepath.Join(dir, "commented") {
		t.Errorf("data dir = %s", cfg.DataDirAbs)
	}
}

func TestLoadGlobalThenProjectPrecedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := t.TempDir()

	err := os.MkdirAll(filepath.Join(xdg, "tend"), 0o750)
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	writeFile(t, filepath.Join(xdg, "tend", "config.json"),
		`{"data_dir": "from-global", "default_perspective": "Forecast"}`)
	writeFile(t, filepath.Join(dir, FileName), `{"data_dir": "from-project"}`)

	cfg, err := Load(LoadInput{
		WorkDirOverride: dir,
		Env:             map[string]string{"XDG_CONFIG_HOME": xdg},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DataDirAbs != filepath.Join(dir, "from-project") {
		t.Errorf("project config must win over global, got %s", cfg.DataDirAbs)
	}

	// Fields only the global file sets still merge through.
	if cfg.DefaultPerspective != "Forecast" {
		t.Errorf("default perspective = %s, want Forecast", cfg.DefaultPerspective)
	}
}

func TestLoadExplicitConfigMustExist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Load(LoadInput{
		WorkDirOverride: dir,
		ConfigPath:      "missing.json",
		Env:             map[string]string{},
	})
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestLoadDataDirOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `{"data_dir": "from-file"}`)

	cfg, err := Load(LoadInput{
		WorkDirOverride: dir,
		DataDirOverride: "from-cli",
		Env:             map[string]string{},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DataDirAbs != filepath.Join(dir, "from-cli") {
		t.Errorf("CLI override must win, got %s", cfg.DataDirAbs)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `{"data_dir": `)

	_, err := Load(LoadInput{WorkDirOverride: dir, Env: map[string]string{}})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
