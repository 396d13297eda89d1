// Package tui provides the interactive terminal interface for flowledger.
// The interface is split across multiple files:
//   - model.go: types, Model, construction, shutdown (this file)
//   - boot.go: background initialization
//   - commands.go: tea commands for dataset, journal, and chart work
//   - update.go: Init, Update loop, prompt flows
//   - view.go: rendering functions
//   - help.go: help page content
package tui

import (
	"context"
	"sync"

	"flowledger/cmd/flowledger/config"
	"flowledger/cmd/flowledger/ui"
	"flowledger/internal/aggregate"
	"flowledger/internal/dataset"
	"flowledger/internal/history"
	"flowledger/internal/logging"
	"flowledger/internal/record"
	"flowledger/internal/store"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds configuration for launching the interactive session.
type Config struct {
	// Workspace is the directory whose .flowledger/ holds config, logs,
	// and the journal.
	Workspace string

	// DatasetPath is the CSV working file.
	DatasetPath string

	// WatchFile enables the external-change watcher on the dataset file.
	WatchFile bool

	// Debounce is the watcher settle window.
	Debounce time.Duration

	// JournalOn enables the sqlite operation journal at JournalPath.
	JournalOn   bool
	JournalPath string

	// Theme is "light", "dark", or "auto".
	Theme string
}

// ViewMode determines which screen is active
type ViewMode int

const (
	MenuView ViewMode = iota
	RecordsView
	DetailView
	ChartView
	HelpView
)

// InputMode represents the current prompt state. Multi-step flows (add,
// edit) advance through input modes on Enter; Esc abandons the flow.
type InputMode int

const (
	InputModeNone       InputMode = iota
	InputModePosition             // record number for edit/delete/detail
	InputModeThroughput           // throughput value
	InputModeCapacity             // available capacity value
	InputModeSavePath             // output file name
	InputModeChartField           // chart field choice (1 or 2)
)

// action identifies one menu operation.
type action int

const (
	actionLoad action = iota
	actionDisplay
	actionAdd
	actionEdit
	actionDelete
	actionSave
	actionChart
	actionExit
	actionDetail // single-record detail, reached from the records view
)

// menuItem is a list item for the main menu
type menuItem struct {
	action action
	title  string
	desc   string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// menuItems returns the eight menu actions in their fixed order.
func menuItems() []list.Item {
	return []list.Item{
		menuItem{action: actionLoad, title: "Load Data from CSV", desc: "Replace the working set with the dataset file"},
		menuItem{action: actionDisplay, title: "Display Records", desc: "List all records in the working set"},
		menuItem{action: actionAdd, title: "Add New Record", desc: "Append a throughput/capacity pair"},
		menuItem{action: actionEdit, title: "Edit a Record", desc: "Overwrite both fields of one record"},
		menuItem{action: actionDelete, title: "Delete a Record", desc: "Remove one record by number"},
		menuItem{action: actionSave, title: "Save Data to New CSV", desc: "Write the working set to a file"},
		menuItem{action: actionChart, title: "Plot Horizontal Bar Chart", desc: "Bucket a field into Low/Medium/High counts"},
		menuItem{action: actionExit, title: "Exit", desc: "Quit the program"},
	}
}

// =============================================================================
// CORE TYPES
// =============================================================================

// Model is the main model for the interactive session
type Model struct {
	// UI components
	menu     list.Model
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   ui.Styles
	renderer *glamour.TermRenderer

	viewMode  ViewMode
	inputMode InputMode

	// Prompt flow state
	pendingAction     action
	pendingPosition   int
	pendingCurrent    record.Record // record under edit, for current-value prompts
	pendingThroughput string
	promptLabel       string

	// State
	width     int
	height    int
	ready     bool
	isBooting bool
	isWorking bool
	status    string
	lastErr   error

	// Working set
	records   *store.Store
	dirty     bool // unsaved mutations since the last load or save
	rowErrors []store.RowError

	// Detail view
	detailPos    int
	detailRecord record.Record

	// Chart view
	chartField   aggregate.Field
	chartBuckets aggregate.BucketSet

	// Backend
	cfg           Config
	prefs         config.Config
	journal       *history.Store
	session       *history.Session
	watcher       *dataset.Watcher
	watchCancel   context.CancelFunc
	opCount       int
	reloadPending bool

	// Status tracking
	statusChan chan string

	// Shutdown coordination
	shutdownOnce sync.Once // Ensures Shutdown() is only called once
}

// NewModel builds the interactive model. Heavy initialization (journal,
// watcher) happens later in performBoot; everything here is cheap and
// synchronous.
func NewModel(cfg Config) Model {
	prefs, _ := config.Load()

	styles := resolveStyles(cfg.Theme, prefs.Theme)

	ti := textinput.New()
	ti.Prompt = "| "
	ti.CharLimit = 256
	ti.Width = 60
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	var renderer *glamour.TermRenderer
	if styles.Theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}

	l := list.New(menuItems(), list.NewDefaultDelegate(), 0, 0)
	l.Title = "Main Menu"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = lipgloss.NewStyle().Bold(true).Foreground(styles.Theme.Accent)

	return Model{
		menu:       l,
		input:      ti,
		viewport:   vp,
		spinner:    sp,
		styles:     styles,
		renderer:   renderer,
		viewMode:   MenuView,
		inputMode:  InputModeNone,
		isBooting:  true,
		records:    store.New(),
		cfg:        cfg,
		prefs:      prefs,
		statusChan: make(chan string, 8),
	}
}

// resolveStyles picks the theme: an explicit config value wins, then the
// saved preference, then terminal detection.
func resolveStyles(theme, prefTheme string) ui.Styles {
	if theme == "" || theme == "auto" {
		theme = prefTheme
	}
	switch theme {
	case "dark":
		return ui.NewStyles(ui.DarkTheme())
	case "light":
		return ui.NewStyles(ui.LightTheme())
	default:
		return ui.DefaultStyles()
	}
}

// savePathSuggestion is the placeholder and empty-submit default for the save
// prompt: the last output file the user chose, else the working dataset.
func (m Model) savePathSuggestion() string {
	if m.prefs.LastDataset != "" {
		return m.prefs.LastDataset
	}
	return m.cfg.DatasetPath
}

// rememberDataset stores an explicitly chosen output path in user preferences
// so later save prompts can suggest it. The configured dataset path needs no
// remembering, and preference trouble never interrupts the session.
func (m *Model) rememberDataset(path string) {
	if path == "" || path == m.cfg.DatasetPath || path == m.prefs.LastDataset {
		return
	}
	m.prefs.LastDataset = path
	if err := config.Save(m.prefs); err != nil {
		logging.UIDebug("saving preferences: %v", err)
	}
}

// =============================================================================
// SHUTDOWN
// =============================================================================

// Shutdown stops the watcher, closes the journal, and flushes logs.
// Safe to call multiple times - only executes once.
// MUST be called before tea.Quit to prevent goroutine leaks.
func (m *Model) Shutdown() {
	m.shutdownOnce.Do(func() {
		if m.watchCancel != nil {
			m.watchCancel()
		}
		if m.watcher != nil {
			m.watcher.Stop()
		}

		// Close status channel to unblock waitForStatus
		// Set to nil after close to prevent sends on closed channel
		if m.statusChan != nil {
			close(m.statusChan)
			m.statusChan = nil
		}

		if m.journal != nil {
			m.journal.Close()
		}

		logging.Session("interactive session ended")
		logging.CloseAll()
	})
}

// IsReady returns true once boot has finished and menu actions can run.
func (m *Model) IsReady() bool {
	return !m.isBooting
}

// performShutdown is a value-receiver wrapper for Shutdown() that can be
// called from Update(). It uses a local copy to call the pointer method.
func (m Model) performShutdown() {
	// This is safe because Shutdown uses sync.Once internally
	modelPtr := &m
	modelPtr.Shutdown()
}

// statusMsg represents a status update from a background process
type statusMsg string

// waitForStatus listens for status updates
func (m Model) waitForStatus() tea.Cmd {
	return func() tea.Msg {
		return statusMsg(<-m.statusChan)
	}
}

// ReportStatus sends a non-blocking status update
func (m Model) ReportStatus(msg string) {
	if m.statusChan != nil {
		select {
		case m.statusChan <- msg:
		default:
			// Channel full, drop update to prevent blocking
		}
	}
}

// =============================================================================
// MESSAGES
// =============================================================================

// Messages for tea updates
type (
	errorMsg error

	// Boot
	bootCompleteMsg struct {
		components *SystemComponents
		err        error
	}

	// Dataset I/O
	rowsLoadedMsg struct {
		path string
		rows []store.Row
	}
	datasetSavedMsg struct {
		path  string
		count int
	}
	datasetChangedMsg dataset.Change

	// Chart
	chartReadyMsg struct {
		field   aggregate.Field
		buckets aggregate.BucketSet
		notice  string
	}

	// Journal
	journaledMsg struct{ op string }
)

// SystemComponents holds the backend services initialized during boot
type SystemComponents struct {
	Journal      *history.Store
	Session      *history.Session
	Watcher      *dataset.Watcher
	WatchCancel  context.CancelFunc
	DatasetFound bool
	OpCount      int
	Notices      []string
}

// RunInteractive starts the interactive session
func RunInteractive(cfg Config) error {
	model := NewModel(cfg)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
