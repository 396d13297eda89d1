// Package tui provides the interactive terminal interface for flowledger.
// This file contains the Update loop and the prompt flow state machine.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"flowledger/internal/aggregate"
	"flowledger/internal/history"
	"flowledger/internal/logging"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts the status listener and the background boot sequence
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.waitForStatus(),
		performBoot(m.cfg, m.ReportStatus),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 0 && msg.Height > 0 {
			m.menu.SetSize(msg.Width-4, msg.Height-9)
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - 8
			if msg.Width > 12 {
				m.input.Width = msg.Width - 12
			}
		}
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.isBooting || m.isWorking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case statusMsg:
		if msg != "" {
			m.status = string(msg)
		}
		return m, m.waitForStatus()

	case bootCompleteMsg:
		return m.handleBootComplete(msg)

	case rowsLoadedMsg:
		return m.handleRowsLoaded(msg)

	case datasetSavedMsg:
		m.isWorking = false
		m.dirty = false
		m.rememberDataset(msg.path)
		m.setStatus(fmt.Sprintf("Data saved to %s successfully.", msg.path))
		return m, m.journalOp(history.OpSave, 0, nil, nil)

	case datasetChangedMsg:
		m.reloadPending = true
		m.setStatus(fmt.Sprintf("Dataset changed on disk (%s). Press r at the menu to reload.", msg.Op))
		return m, m.waitForDatasetChange()

	case chartReadyMsg:
		m.isWorking = false
		m.chartField = msg.field
		m.chartBuckets = msg.buckets
		m.viewMode = ChartView
		if msg.notice != "" {
			m.setStatus(msg.notice)
		} else {
			m.setStatus(fmt.Sprintf("Aggregated %d records by %s.", msg.buckets.Total(), msg.field.Label()))
		}
		return m, nil

	case journaledMsg:
		m.opCount++
		return m, nil

	case errorMsg:
		m.isWorking = false
		m.lastErr = msg
		logging.UIError("%v", error(msg))
		return m, nil
	}

	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keybindings
	switch msg.Type {
	case tea.KeyCtrlC:
		m.performShutdown()
		return m, tea.Quit

	case tea.KeyEsc:
		if m.inputMode != InputModeNone {
			m = m.cancelPrompt()
			return m, nil
		}
		switch m.viewMode {
		case DetailView:
			m.viewMode = RecordsView
			m.viewport.SetContent(m.renderRecordsTable())
			return m, nil
		case RecordsView, ChartView, HelpView:
			m.viewMode = MenuView
			return m, nil
		}
		m.performShutdown()
		return m, tea.Quit
	}

	if m.isBooting {
		return m, nil
	}

	// Prompt handling
	if m.inputMode != InputModeNone {
		if msg.Type == tea.KeyEnter {
			return m.handlePromptSubmit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch m.viewMode {
	case MenuView:
		return m.handleMenuKey(msg)

	case RecordsView:
		if msg.String() == "d" {
			m = m.beginPrompt(actionDetail, InputModePosition,
				fmt.Sprintf("Enter record number to view (1 to %d): ", m.records.Len()), "")
			return m, textinput.Blink
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case DetailView:
		if msg.String() == "q" {
			m.viewMode = RecordsView
			m.viewport.SetContent(m.renderRecordsTable())
		}
		return m, nil

	case ChartView:
		if msg.String() == "q" {
			m.viewMode = MenuView
		}
		return m, nil

	case HelpView:
		if msg.String() == "q" {
			m.viewMode = MenuView
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if item, ok := m.menu.SelectedItem().(menuItem); ok {
			return m.dispatchAction(item.action)
		}
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8":
		idx := int(msg.String()[0] - '1')
		m.menu.Select(idx)
		return m.dispatchAction(action(idx))

	case "9", "0":
		m.setStatus("Invalid choice, try again.")
		return m, nil

	case "r":
		if m.reloadPending {
			return m.startLoad()
		}
		return m, nil

	case "?":
		m.viewport.SetContent(m.renderHelp())
		m.viewport.GotoTop()
		m.viewMode = HelpView
		return m, nil
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

// dispatchAction runs one menu operation, mirroring the original menu's
// guard messages for record-dependent actions on an empty working set.
func (m Model) dispatchAction(a action) (tea.Model, tea.Cmd) {
	if m.isWorking {
		return m, nil
	}

	switch a {
	case actionLoad:
		return m.startLoad()

	case actionDisplay:
		if m.records.Len() == 0 {
			m.setStatus("No records loaded.")
			return m, nil
		}
		m.viewport.SetContent(m.renderRecordsTable())
		m.viewport.GotoTop()
		m.viewMode = RecordsView
		return m, nil

	case actionAdd:
		m = m.beginPrompt(actionAdd, InputModeThroughput, "Enter throughput (1000 m3/d): ", "")
		return m, textinput.Blink

	case actionEdit:
		if m.records.Len() == 0 {
			m.setStatus("No records loaded.")
			return m, nil
		}
		m = m.beginPrompt(actionEdit, InputModePosition,
			fmt.Sprintf("Enter record number to edit (1 to %d): ", m.records.Len()), "")
		return m, textinput.Blink

	case actionDelete:
		if m.records.Len() == 0 {
			m.setStatus("No records loaded.")
			return m, nil
		}
		m = m.beginPrompt(actionDelete, InputModePosition,
			fmt.Sprintf("Enter record number to delete (1 to %d): ", m.records.Len()), "")
		return m, textinput.Blink

	case actionSave:
		m = m.beginPrompt(actionSave, InputModeSavePath, "Enter the name of the output file: ", m.savePathSuggestion())
		return m, textinput.Blink

	case actionChart:
		if m.records.Len() == 0 {
			m.setStatus("No data loaded. Please load data before generating a chart.")
			return m, nil
		}
		m = m.beginPrompt(actionChart, InputModeChartField,
			"Choose the field to visualize:\n1. Available Capacity\n2. Throughput\nEnter your choice (1 or 2): ", "")
		return m, textinput.Blink

	case actionExit:
		m.performShutdown()
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) startLoad() (tea.Model, tea.Cmd) {
	m.isWorking = true
	m.reloadPending = false
	m.setStatus(fmt.Sprintf("Loading %s...", m.cfg.DatasetPath))
	return m, tea.Batch(m.spinner.Tick, loadDataset(m.cfg.DatasetPath))
}

// =============================================================================
// PROMPT FLOWS
// =============================================================================

// beginPrompt arms the input for one prompt step.
func (m Model) beginPrompt(a action, mode InputMode, label, placeholder string) Model {
	m.pendingAction = a
	m.inputMode = mode
	m.promptLabel = label
	m.input.SetValue("")
	m.input.Placeholder = placeholder
	m.input.Focus()
	return m
}

// endPrompt clears prompt state and returns focus to the active view.
func (m Model) endPrompt() Model {
	m.inputMode = InputModeNone
	m.promptLabel = ""
	m.pendingThroughput = ""
	m.input.SetValue("")
	m.input.Placeholder = ""
	m.input.Blur()
	return m
}

// cancelPrompt abandons the current flow without touching the working set.
func (m Model) cancelPrompt() Model {
	m = m.endPrompt()
	m.setStatus("Cancelled.")
	return m
}

func (m Model) handlePromptSubmit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())

	switch m.inputMode {
	case InputModePosition:
		return m.handlePositionSubmit(value)

	case InputModeThroughput:
		m.pendingThroughput = value
		label := "Enter available capacity (1000 m3/d): "
		if m.pendingAction == actionEdit {
			label = fmt.Sprintf("Enter new available capacity (current: %s): ", m.pendingCurrent.AvailableCapacity)
		}
		m.inputMode = InputModeCapacity
		m.promptLabel = label
		m.input.SetValue("")
		return m, textinput.Blink

	case InputModeCapacity:
		return m.applyRecordValues(value)

	case InputModeSavePath:
		path := value
		if path == "" {
			path = m.savePathSuggestion()
		}
		m = m.endPrompt()
		m.isWorking = true
		m.setStatus(fmt.Sprintf("Saving to %s...", path))
		return m, tea.Batch(m.spinner.Tick, saveDataset(path, m.records.Records()))

	case InputModeChartField:
		m = m.endPrompt()
		var field aggregate.Field
		var notice string
		switch value {
		case "1":
			field = aggregate.FieldAvailableCapacity
		case "2":
			field = aggregate.FieldThroughput
		default:
			field = aggregate.FieldAvailableCapacity
			notice = "Invalid choice. Defaulting to Available Capacity."
		}
		m.isWorking = true
		return m, tea.Batch(m.spinner.Tick, buildChart(m.records.Records(), field, notice))
	}

	return m.endPrompt(), nil
}

// handlePositionSubmit resolves the record number step of the edit, delete,
// and detail flows. Bounds are checked before any value prompt, as before.
func (m Model) handlePositionSubmit(value string) (tea.Model, tea.Cmd) {
	pos, err := strconv.Atoi(value)
	if err != nil {
		m = m.endPrompt()
		m.setStatus("Invalid record number.")
		return m, nil
	}
	current, err := m.records.Read(pos)
	if err != nil {
		m = m.endPrompt()
		m.setStatus("Invalid record number.")
		logging.UIDebug("position rejected: %v", err)
		return m, nil
	}

	m.pendingPosition = pos
	m.pendingCurrent = current

	switch m.pendingAction {
	case actionEdit:
		m.inputMode = InputModeThroughput
		m.promptLabel = fmt.Sprintf("Enter new throughput (current: %s): ", current.Throughput)
		m.input.SetValue("")
		return m, textinput.Blink

	case actionDelete:
		removed, err := m.records.Delete(pos)
		m = m.endPrompt()
		if err != nil {
			m.lastErr = err
			return m, nil
		}
		m.dirty = true
		m.setStatus("Record deleted successfully.")
		logging.Store("deleted record %d", pos)
		before := removed
		return m, m.journalOp(history.OpDelete, pos, &before, nil)

	case actionDetail:
		m = m.endPrompt()
		m.detailPos = pos
		m.detailRecord = current
		m.viewMode = DetailView
		return m, nil
	}

	return m.endPrompt(), nil
}

// applyRecordValues finishes the add and edit flows once both fields are in.
func (m Model) applyRecordValues(capacity string) (tea.Model, tea.Cmd) {
	throughput := m.pendingThroughput
	a := m.pendingAction
	pos := m.pendingPosition
	before := m.pendingCurrent
	m = m.endPrompt()

	switch a {
	case actionAdd:
		r, err := m.records.Append(throughput, capacity)
		if err != nil {
			m.lastErr = err
			return m, nil
		}
		m.dirty = true
		m.setStatus("Record added successfully.")
		logging.Store("appended record %d", m.records.Len())
		after := r
		return m, m.journalOp(history.OpAppend, m.records.Len(), nil, &after)

	case actionEdit:
		r, err := m.records.Update(pos, throughput, capacity)
		if err != nil {
			m.lastErr = err
			return m, nil
		}
		m.dirty = true
		switch {
		case r.Formatted() && !before.Formatted():
			m.setStatus("Record updated and converted to formatted display.")
		case !r.Formatted() && before.Formatted():
			m.setStatus("Record updated and converted to plain display.")
		default:
			m.setStatus("Record updated successfully.")
		}
		logging.Store("updated record %d", pos)
		after := r
		return m, m.journalOp(history.OpUpdate, pos, &before, &after)
	}

	return m, nil
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleBootComplete(msg bootCompleteMsg) (tea.Model, tea.Cmd) {
	m.isBooting = false

	if msg.err != nil {
		m.lastErr = msg.err
		return m, nil
	}

	if c := msg.components; c != nil {
		m.journal = c.Journal
		m.session = c.Session
		m.watcher = c.Watcher
		m.watchCancel = c.WatchCancel
		m.opCount = c.OpCount

		switch {
		case len(c.Notices) > 0:
			m.setStatus(strings.Join(c.Notices, "; "))
		case c.DatasetFound:
			m.setStatus(fmt.Sprintf("Found %s. Choose Load Data from CSV to begin.", m.cfg.DatasetPath))
		default:
			m.setStatus(fmt.Sprintf("Dataset %s not found. Add records or point --file at a CSV.", m.cfg.DatasetPath))
		}
	}

	logging.UI("menu ready")
	return m, m.waitForDatasetChange()
}

func (m Model) handleRowsLoaded(msg rowsLoadedMsg) (tea.Model, tea.Cmd) {
	m.isWorking = false
	m.reloadPending = false

	count, rowErrs := m.records.Load(msg.rows)
	m.rowErrors = rowErrs
	m.dirty = false
	m.lastErr = nil

	if len(rowErrs) > 0 {
		for _, re := range rowErrs {
			logging.DatasetWarn("skipped %v", re)
		}
		m.setStatus(fmt.Sprintf("Loaded %d records from %s (%d skipped).", count, msg.path, len(rowErrs)))
	} else {
		m.setStatus(fmt.Sprintf("Loaded %d records from %s.", count, msg.path))
	}
	logging.Store("working set replaced: %d records", count)

	return m, m.journalOp(history.OpLoad, 0, nil, nil)
}

// setStatus replaces the status line and clears any shown error.
func (m *Model) setStatus(status string) {
	m.status = status
	m.lastErr = nil
}
