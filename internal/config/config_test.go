package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "flowledger" {
		t.Errorf("expected Name=flowledger, got %s", cfg.Name)
	}
	if cfg.Dataset.Path != DefaultDatasetFile {
		t.Errorf("expected dataset path %s, got %s", DefaultDatasetFile, cfg.Dataset.Path)
	}
	if !cfg.Dataset.Watch {
		t.Error("expected watcher enabled by default")
	}
	if !cfg.History.Enabled {
		t.Error("expected history enabled by default")
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("expected theme=auto, got %s", cfg.UI.Theme)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("FLOWLEDGER_DATASET", "")
	t.Setenv("FLOWLEDGER_DB", "")
	t.Setenv("FLOWLEDGER_THEME", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Dataset.Path = "other.csv"
	cfg.UI.Theme = "dark"
	cfg.Logging.Debug = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Dataset.Path != "other.csv" {
		t.Errorf("expected dataset other.csv, got %s", loaded.Dataset.Path)
	}
	if loaded.UI.Theme != "dark" {
		t.Errorf("expected theme dark, got %s", loaded.UI.Theme)
	}
	if !loaded.Logging.Debug {
		t.Error("expected debug logging to survive round trip")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("FLOWLEDGER_DATASET", "")
	t.Setenv("FLOWLEDGER_DB", "")
	t.Setenv("FLOWLEDGER_THEME", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file should not fail: %v", err)
	}
	if cfg.Dataset.Path != DefaultDatasetFile {
		t.Errorf("expected defaults, got dataset %s", cfg.Dataset.Path)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FLOWLEDGER_DATASET", "/tmp/env.csv")
	t.Setenv("FLOWLEDGER_DB", "/tmp/env.db")
	t.Setenv("FLOWLEDGER_THEME", "light")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Dataset.Path != "/tmp/env.csv" {
		t.Errorf("FLOWLEDGER_DATASET override ignored: %s", cfg.Dataset.Path)
	}
	if cfg.History.Path != "/tmp/env.db" {
		t.Errorf("FLOWLEDGER_DB override ignored: %s", cfg.History.Path)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("FLOWLEDGER_THEME override ignored: %s", cfg.UI.Theme)
	}
}

func TestDebounceInterval(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.DebounceInterval(); got != 500*time.Millisecond {
		t.Errorf("default debounce = %v, want 500ms", got)
	}

	cfg.Dataset.Debounce = "2s"
	if got := cfg.DebounceInterval(); got != 2*time.Second {
		t.Errorf("debounce = %v, want 2s", got)
	}

	cfg.Dataset.Debounce = "not-a-duration"
	if got := cfg.DebounceInterval(); got != 500*time.Millisecond {
		t.Errorf("unparseable debounce should fall back to 500ms, got %v", got)
	}

	cfg.Dataset.Debounce = "-1s"
	if got := cfg.DebounceInterval(); got != 500*time.Millisecond {
		t.Errorf("non-positive debounce should fall back to 500ms, got %v", got)
	}
}

func TestFindWorkspaceRoot_PrefersMarkerDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".flowledger"), 0o755); err != nil {
		t.Fatalf("mkdir .flowledger: %v", err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	defer os.Chdir(wd)
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	got, err := FindWorkspaceRoot()
	if err != nil {
		t.Fatalf("FindWorkspaceRoot: %v", err)
	}
	// Resolve symlinks before comparing: some systems give tempdirs behind
	// symlinked paths.
	wantResolved, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != wantResolved {
		t.Errorf("FindWorkspaceRoot = %s, want %s", got, root)
	}
}

func TestPath(t *testing.T) {
	got := Path("/ws")
	want := filepath.Join("/ws", ".flowledger", "config.yaml")
	if got != want {
		t.Errorf("Path = %s, want %s", got, want)
	}
}
