// Package tui provides the interactive terminal interface for flowledger.
// This file contains the background boot sequence.
package tui

import (
	"context"
	"fmt"
	"os"
	"sync"

	"flowledger/internal/dataset"
	"flowledger/internal/history"
	"flowledger/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// performBoot initializes the backend services off the UI goroutine,
// streaming progress lines through report. The menu stays gated behind the
// boot screen until bootCompleteMsg lands. Journal and watcher trouble
// degrade to notices; the session still starts.
func performBoot(cfg Config, report func(string)) tea.Cmd {
	return func() tea.Msg {
		timer := logging.StartTimer(logging.CategoryBoot, "interactive boot")
		defer timer.StopWithInfo()

		if err := logging.Initialize(cfg.Workspace); err != nil {
			fmt.Fprintf(os.Stderr, "[boot] Warning: logging unavailable: %v\n", err)
		}

		components := &SystemComponents{}

		var mu sync.Mutex
		notice := func(format string, args ...interface{}) {
			mu.Lock()
			components.Notices = append(components.Notices, fmt.Sprintf(format, args...))
			mu.Unlock()
		}

		eg, _ := errgroup.WithContext(context.Background())

		// Journal open + session begin
		eg.Go(func() error {
			if !cfg.JournalOn {
				return nil
			}
			report("Opening operation journal...")
			journal, err := history.Open(cfg.JournalPath)
			if err != nil {
				logging.HistoryWarn("journal unavailable: %v", err)
				notice("journal unavailable: %v", err)
				return nil
			}
			sess, err := journal.Begin(cfg.DatasetPath)
			if err != nil {
				logging.HistoryWarn("journal session failed: %v", err)
				notice("journal session failed: %v", err)
				journal.Close()
				return nil
			}
			count, err := journal.CountOperations()
			if err != nil {
				count = 0
			}
			mu.Lock()
			components.Journal = journal
			components.Session = sess
			components.OpCount = count
			mu.Unlock()
			return nil
		})

		// Dataset stat. The file is not read here; loading is the user's
		// explicit first menu action, exactly as before.
		eg.Go(func() error {
			report("Checking dataset...")
			if _, err := os.Stat(cfg.DatasetPath); err == nil {
				mu.Lock()
				components.DatasetFound = true
				mu.Unlock()
			}
			return nil
		})

		if err := eg.Wait(); err != nil {
			return bootCompleteMsg{components: components, err: err}
		}

		// Watcher starts last so its first signal cannot race the boot
		// handoff.
		if cfg.WatchFile {
			w, err := dataset.NewWatcher(cfg.DatasetPath, cfg.Debounce)
			if err != nil {
				notice("watcher unavailable: %v", err)
			} else {
				ctx, cancel := context.WithCancel(context.Background())
				if err := w.Start(ctx); err != nil {
					cancel()
					notice("watcher failed to start: %v", err)
				} else {
					components.Watcher = w
					components.WatchCancel = cancel
				}
			}
		}

		logging.Boot("interactive session ready (dataset: %s, found: %v, journal: %v)",
			cfg.DatasetPath, components.DatasetFound, components.Journal != nil)
		return bootCompleteMsg{components: components}
	}
}
