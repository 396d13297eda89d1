package main

import (
	"fmt"
	"os"
	"path/filepath"

	"flowledger/cmd/flowledger/tui"
	"flowledger/internal/config"
	"flowledger/internal/dataset"
	"flowledger/internal/history"
	"flowledger/internal/logging"
	"flowledger/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose     bool
	datasetFile string
	workspace   string
	noWatch     bool
	noJournal   bool
	themeFlag   string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "flowledger",
	Short: "flowledger - pipeline throughput and capacity records",
	Long: `flowledger manages a CSV dataset of pipeline throughput and available
capacity measurements (1000 m3/d).

The working set lives in memory: load it from the dataset file, add, edit,
and delete records by number, save it back out, and aggregate either field
into Low/Medium/High category counts drawn as a horizontal bar chart.

Run without arguments to start the interactive menu. The records, chart,
and history subcommands offer the same operations headless for scripting.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "flowledger" && cmd.CalledAs() == "flowledger" {
			return nil
		}

		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(resolveWorkspace()); err != nil {
			logger.Warn("category logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive menu
		return runInteractive()
	},
}

// statusCmd shows system status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show flowledger system status",
	RunE:  showStatus,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&datasetFile, "file", "f", "", "Dataset CSV file (default: configured path)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: detected)")
	rootCmd.PersistentFlags().BoolVar(&noWatch, "no-watch", false, "Disable the dataset file watcher")
	rootCmd.PersistentFlags().BoolVar(&noJournal, "no-journal", false, "Disable the operation journal")
	rootCmd.PersistentFlags().StringVar(&themeFlag, "theme", "", "UI theme: auto, light, or dark")

	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runInteractive assembles the interactive menu configuration and hands off
// to the TUI program loop.
func runInteractive() error {
	ws := resolveWorkspace()
	cfg := loadAppConfig(ws)

	theme := cfg.UI.Theme
	if themeFlag != "" {
		theme = themeFlag
	}

	return tui.RunInteractive(tui.Config{
		Workspace:   ws,
		DatasetPath: resolveDatasetPath(ws, cfg),
		WatchFile:   cfg.Dataset.Watch && !noWatch,
		Debounce:    cfg.DebounceInterval(),
		JournalOn:   cfg.History.Enabled && !noJournal,
		JournalPath: resolveJournalPath(ws, cfg),
		Theme:       theme,
	})
}

// showStatus displays system status
func showStatus(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	cfg := loadAppConfig(ws)

	fmt.Println("flowledger System Status")
	fmt.Println("========================")
	fmt.Printf("Version: %s\n", cfg.Version)
	fmt.Println()

	fmt.Printf("✓ Workspace: %s\n", ws)

	if _, err := os.Stat(config.Path(ws)); err == nil {
		fmt.Printf("✓ Config: %s\n", config.Path(ws))
	} else {
		fmt.Println("✗ Config: not found (using defaults)")
	}

	path := resolveDatasetPath(ws, cfg)
	rows, err := dataset.Load(path)
	if err != nil {
		fmt.Printf("✗ Dataset: %s (not readable)\n", path)
	} else {
		st := store.New()
		count, rowErrs := st.Load(rows)
		if len(rowErrs) > 0 {
			fmt.Printf("✓ Dataset: %s (%d records, %d bad rows)\n", path, count, len(rowErrs))
		} else {
			fmt.Printf("✓ Dataset: %s (%d records)\n", path, count)
		}
	}

	if cfg.History.Enabled && !noJournal {
		jp := resolveJournalPath(ws, cfg)
		if _, statErr := os.Stat(jp); statErr != nil {
			fmt.Printf("✗ Journal: %s (not created yet)\n", jp)
		} else if journal, openErr := history.Open(jp); openErr != nil {
			fmt.Printf("✗ Journal: %s (%v)\n", jp, openErr)
		} else {
			count, _ := journal.CountOperations()
			journal.Close()
			fmt.Printf("✓ Journal: %s (%d operations)\n", jp, count)
		}
	} else {
		fmt.Println("✗ Journal: disabled")
	}

	fmt.Println()
	fmt.Printf("Watch:    %v\n", cfg.Dataset.Watch && !noWatch)
	fmt.Printf("Debounce: %s\n", cfg.DebounceInterval())
	fmt.Printf("Theme:    %s\n", cfg.UI.Theme)

	return nil
}

// =============================================================================
// SHARED RESOLUTION HELPERS
// =============================================================================

// resolveWorkspace honors the --workspace flag, then workspace detection.
func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	ws, err := config.FindWorkspaceRoot()
	if err != nil {
		ws, _ = os.Getwd()
	}
	return ws
}

// loadAppConfig reads the workspace config, degrading to defaults on error.
func loadAppConfig(ws string) *config.Config {
	cfg, err := config.Load(config.Path(ws))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	return cfg
}

// resolveDatasetPath picks the dataset file: the --file flag wins and is
// taken relative to the working directory; the configured path is taken
// relative to the workspace.
func resolveDatasetPath(ws string, cfg *config.Config) string {
	if datasetFile != "" {
		return datasetFile
	}
	path := cfg.Dataset.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(ws, path)
	}
	return path
}

// resolveJournalPath anchors the configured journal path in the workspace.
func resolveJournalPath(ws string, cfg *config.Config) string {
	path := cfg.History.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(ws, path)
	}
	return path
}
