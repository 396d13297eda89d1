// Package main implements record CLI commands for flowledger.
// This file handles the headless list/show/add/edit/delete operations, each
// one a full load-mutate-save round trip against the dataset file.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"flowledger/cmd/flowledger/ui"
	"flowledger/internal/config"
	"flowledger/internal/dataset"
	"flowledger/internal/history"
	"flowledger/internal/record"
	"flowledger/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// RECORD COMMANDS
// =============================================================================

// recordsCmd manages dataset records
var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage pipeline records without the interactive menu",
	Long: `List and mutate the dataset records headless.

Subcommands:
  list    - List all records
  show    - Show one record by number
  add     - Append a record
  edit    - Overwrite both fields of one record
  delete  - Remove one record by number

Mutations write the dataset back immediately and are journaled.`,
	RunE: runRecordsList,
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all records",
	RunE:  runRecordsList,
}

var recordsShowCmd = &cobra.Command{
	Use:   "show <number>",
	Short: "Show one record by number",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsShow,
}

var recordsAddCmd = &cobra.Command{
	Use:   "add <throughput> <available-capacity>",
	Short: "Append a record (both quantities in 1000 m3/d)",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordsAdd,
}

var recordsEditCmd = &cobra.Command{
	Use:   "edit <number> <throughput> <available-capacity>",
	Short: "Overwrite both fields of one record",
	Args:  cobra.ExactArgs(3),
	RunE:  runRecordsEdit,
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete <number>",
	Short: "Remove one record by number",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsDelete,
}

func init() {
	recordsCmd.AddCommand(recordsListCmd, recordsShowCmd, recordsAddCmd, recordsEditCmd, recordsDeleteCmd)
	rootCmd.AddCommand(recordsCmd)
}

func runRecordsList(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	cfg := loadAppConfig(ws)
	path := resolveDatasetPath(ws, cfg)

	st, err := loadWorkingSet(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No records loaded.")
			return nil
		}
		return err
	}
	if st.Len() == 0 {
		fmt.Println("No records loaded.")
		return nil
	}

	table := ui.NewSimpleTable("Pipeline Throughput and Capacity Records",
		[]string{"#", dataset.HeaderThroughput, dataset.HeaderAvailableCapacity, "Display"})
	table.AlignRight(0, 1, 2)
	for _, e := range st.All() {
		display := "plain"
		if e.Record.Formatted() {
			display = "formatted"
		}
		table.AddRow(strconv.Itoa(e.Position), e.Record.Throughput, e.Record.AvailableCapacity, display)
	}

	fmt.Println(table.View(ui.DefaultStyles()))
	fmt.Printf("Total: %d records\n", st.Len())
	return nil
}

func runRecordsShow(cmd *cobra.Command, args []string) error {
	pos, err := parsePosition(args[0])
	if err != nil {
		return err
	}

	ws := resolveWorkspace()
	cfg := loadAppConfig(ws)

	st, err := loadWorkingSet(resolveDatasetPath(ws, cfg))
	if err != nil {
		return err
	}
	r, err := st.Read(pos)
	if err != nil {
		return err
	}

	fmt.Println(r.String())
	return nil
}

func runRecordsAdd(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	cfg := loadAppConfig(ws)
	path := resolveDatasetPath(ws, cfg)

	st, err := loadWorkingSet(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		// A missing dataset starts an empty working set; saving creates it.
		st = store.New()
	}

	r, err := st.Append(args[0], args[1])
	if err != nil {
		return err
	}
	logger.Info("record appended",
		zap.Int("position", st.Len()),
		zap.String("throughput", r.Throughput),
		zap.String("available_capacity", r.AvailableCapacity))
	fmt.Println("Record added successfully.")

	if err := saveWorkingSet(path, st); err != nil {
		return err
	}
	journalMutation(ws, cfg, path, history.OpAppend, st.Len(), nil, &r)
	return nil
}

func runRecordsEdit(cmd *cobra.Command, args []string) error {
	pos, err := parsePosition(args[0])
	if err != nil {
		return err
	}

	ws := resolveWorkspace()
	cfg := loadAppConfig(ws)
	path := resolveDatasetPath(ws, cfg)

	st, err := loadWorkingSet(path)
	if err != nil {
		return err
	}
	before, err := st.Read(pos)
	if err != nil {
		return err
	}
	r, err := st.Update(pos, args[1], args[2])
	if err != nil {
		return err
	}

	logger.Info("record updated", zap.Int("position", pos))
	switch {
	case r.Formatted() && !before.Formatted():
		fmt.Println("Record updated and converted to formatted display.")
	case !r.Formatted() && before.Formatted():
		fmt.Println("Record updated and converted to plain display.")
	default:
		fmt.Println("Record updated successfully.")
	}

	if err := saveWorkingSet(path, st); err != nil {
		return err
	}
	journalMutation(ws, cfg, path, history.OpUpdate, pos, &before, &r)
	return nil
}

func runRecordsDelete(cmd *cobra.Command, args []string) error {
	pos, err := parsePosition(args[0])
	if err != nil {
		return err
	}

	ws := resolveWorkspace()
	cfg := loadAppConfig(ws)
	path := resolveDatasetPath(ws, cfg)

	st, err := loadWorkingSet(path)
	if err != nil {
		return err
	}
	removed, err := st.Delete(pos)
	if err != nil {
		return err
	}

	logger.Info("record deleted", zap.Int("position", pos))
	fmt.Println("Record deleted successfully.")

	if err := saveWorkingSet(path, st); err != nil {
		return err
	}
	journalMutation(ws, cfg, path, history.OpDelete, pos, &removed, nil)
	return nil
}

// =============================================================================
// SHARED DATASET HELPERS
// =============================================================================

// loadWorkingSet reads the dataset into a fresh store. Skipped rows warn on
// stderr and the load continues, same as the interactive loader.
func loadWorkingSet(path string) (*store.Store, error) {
	rows, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}

	st := store.New()
	count, rowErrs := st.Load(rows)
	for _, re := range rowErrs {
		fmt.Fprintf(os.Stderr, "Warning: skipped %v\n", re)
	}
	logger.Debug("working set loaded",
		zap.String("path", path),
		zap.Int("records", count),
		zap.Int("skipped", len(rowErrs)))
	return st, nil
}

// saveWorkingSet writes the store back to the dataset file.
func saveWorkingSet(path string, st *store.Store) error {
	count, err := dataset.Save(path, st.Records())
	if err != nil {
		return err
	}
	logger.Debug("dataset saved", zap.String("path", path), zap.Int("records", count))
	fmt.Printf("Data saved to %s successfully.\n", path)
	return nil
}

// parsePosition parses a 1-based record number argument.
func parsePosition(arg string) (int, error) {
	pos, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid record number %q", arg)
	}
	return pos, nil
}

// journalMutation best-effort records a mutation and the save that followed
// it. Journal trouble degrades to a warning; the mutation already happened.
func journalMutation(ws string, cfg *config.Config, datasetPath, op string, position int, before, after *record.Record) {
	if !cfg.History.Enabled || noJournal {
		return
	}

	journal, err := history.Open(resolveJournalPath(ws, cfg))
	if err != nil {
		logger.Warn("journal unavailable", zap.Error(err))
		return
	}
	defer journal.Close()

	sess, err := journal.Begin(datasetPath)
	if err != nil {
		logger.Warn("journal session failed", zap.Error(err))
		return
	}
	if err := sess.Record(op, position, before, after); err != nil {
		logger.Warn("journal write failed", zap.Error(err))
		return
	}
	if err := sess.Record(history.OpSave, 0, nil, nil); err != nil {
		logger.Warn("journal write failed", zap.Error(err))
	}
}
