// Package tui provides the interactive terminal interface for flowledger.
// This file contains the tea commands that do work off the UI goroutine.
// Store mutations never happen here: commands carry rows and snapshots so
// the working set keeps its single owner in Update.
package tui

import (
	"flowledger/internal/aggregate"
	"flowledger/internal/dataset"
	"flowledger/internal/logging"
	"flowledger/internal/record"

	tea "github.com/charmbracelet/bubbletea"
)

// loadDataset reads the CSV off the UI goroutine. Row validation and the
// working-set swap happen back in Update on rowsLoadedMsg.
func loadDataset(path string) tea.Cmd {
	return func() tea.Msg {
		rows, err := dataset.Load(path)
		if err != nil {
			return errorMsg(err)
		}
		return rowsLoadedMsg{path: path, rows: rows}
	}
}

// saveDataset writes the record snapshot to path.
func saveDataset(path string, records []record.Record) tea.Cmd {
	return func() tea.Msg {
		count, err := dataset.Save(path, records)
		if err != nil {
			return errorMsg(err)
		}
		return datasetSavedMsg{path: path, count: count}
	}
}

// buildChart aggregates the record snapshot into bucket counts. A non-empty
// notice travels along to be shown with the chart (invalid field choice
// fallback).
func buildChart(records []record.Record, field aggregate.Field, notice string) tea.Cmd {
	return func() tea.Msg {
		buckets, err := aggregate.Aggregate(records, field)
		if err != nil {
			return errorMsg(err)
		}
		logging.Aggregate("%s: low=%d medium=%d high=%d (%d records)",
			field, buckets.Low, buckets.Medium, buckets.High, buckets.Total())
		return chartReadyMsg{field: field, buckets: buckets, notice: notice}
	}
}

// journalOp appends one operation row to the journal. Journal trouble
// degrades to a logged warning; the mutation it describes has already
// happened.
func (m Model) journalOp(op string, position int, before, after *record.Record) tea.Cmd {
	sess := m.session
	if sess == nil {
		return nil
	}
	return func() tea.Msg {
		if err := sess.Record(op, position, before, after); err != nil {
			logging.HistoryWarn("journal write failed: %v", err)
			return nil
		}
		return journaledMsg{op: op}
	}
}

// waitForDatasetChange re-arms the watcher bridge; each settled external
// change becomes one datasetChangedMsg.
func (m Model) waitForDatasetChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.watcher.Changes()
	return func() tea.Msg {
		return datasetChangedMsg(<-ch)
	}
}
