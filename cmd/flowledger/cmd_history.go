// Package main implements the history CLI command for flowledger.
// This file lists the operation journal.
package main

import (
	"fmt"
	"os"
	"strconv"

	"flowledger/cmd/flowledger/ui"
	"flowledger/internal/history"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var historyLimit int

// historyCmd lists journaled operations
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled record operations",
	Long: `Shows the most recent operations from the journal, newest first.

Every load, add, edit, delete, and save lands here, whether it came from
the interactive menu or from the records subcommands.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum operations to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	cfg := loadAppConfig(ws)

	if !cfg.History.Enabled || noJournal {
		fmt.Println("Journal disabled.")
		return nil
	}

	path := resolveJournalPath(ws, cfg)
	if _, err := os.Stat(path); err != nil {
		fmt.Println("No operations journaled yet.")
		return nil
	}

	journal, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	entries, err := journal.Recent(historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No operations journaled yet.")
		return nil
	}
	logger.Debug("journal read", zap.Int("entries", len(entries)))

	table := ui.NewSimpleTable("Operation Journal",
		[]string{"Time", "Op", "Pos", "Dataset", "Session"})
	table.AlignRight(2)
	for _, e := range entries {
		pos := "-"
		if e.Position > 0 {
			pos = strconv.Itoa(e.Position)
		}
		table.AddRow(
			e.At.Local().Format("2006-01-02 15:04:05"),
			e.Op,
			pos,
			e.DatasetPath,
			shortID(e.SessionID),
		)
	}
	fmt.Println(table.View(ui.DefaultStyles()))

	total, err := journal.CountOperations()
	if err == nil {
		fmt.Printf("Total: %d operations\n", total)
	}
	return nil
}

// shortID trims a session UUID for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
