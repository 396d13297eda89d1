// Package config holds the flowledger application configuration, loaded from
// .flowledger/config.yaml with environment overrides. Missing file means
// defaults; unknown values fall back rather than fail.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultDatasetFile is the dataset the utility opens when nothing else is
// configured.
const DefaultDatasetFile = "keystone-throughput-and-capacity.csv"

// Config holds all flowledger configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Dataset file and watcher
	Dataset DatasetConfig `yaml:"dataset"`

	// Operation journal
	History HistoryConfig `yaml:"history"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`
}

// DatasetConfig configures the CSV working file and its watcher.
type DatasetConfig struct {
	Path     string `yaml:"path"`
	Watch    bool   `yaml:"watch"`
	Debounce string `yaml:"debounce"`
}

// HistoryConfig configures the SQLite operation journal.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures categorized file logging. The logging package
// reads this section from disk itself to avoid an import cycle; the struct
// here is what Save writes and commands inspect.
type LoggingConfig struct {
	Debug      bool            `yaml:"debug"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme string `yaml:"theme"` // auto, light, dark
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "flowledger",
		Version: "1.0.0",

		Dataset: DatasetConfig{
			Path:     DefaultDatasetFile,
			Watch:    true,
			Debounce: "500ms",
		},

		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(".flowledger", "history.db"),
		},

		Logging: LoggingConfig{
			Debug: false,
			Level: "info",
		},

		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// Load loads configuration from a YAML file, starting from defaults. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("FLOWLEDGER_DATASET"); path != "" {
		c.Dataset.Path = path
	}
	if path := os.Getenv("FLOWLEDGER_DB"); path != "" {
		c.History.Path = path
	}
	if theme := os.Getenv("FLOWLEDGER_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// DebounceInterval returns the watcher debounce as a duration, falling back
// to 500ms when unset or unparseable.
func (c *Config) DebounceInterval() time.Duration {
	d, err := time.ParseDuration(c.Dataset.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// FindWorkspaceRoot walks up from the working directory looking for a
// .flowledger directory or the default dataset file. Falls back to the
// working directory itself.
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	originalDir := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".flowledger")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, DefaultDatasetFile)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return originalDir, nil
}

// Path returns the conventional config file location under a workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, ".flowledger", "config.yaml")
}
