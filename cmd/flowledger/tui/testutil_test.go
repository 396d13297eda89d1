// Package tui provides tests for the interactive terminal interface.
// This file contains shared test fixtures and helpers.
package tui

import (
	"os"
	"testing"

	"flowledger/cmd/flowledger/ui"
	"flowledger/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// TestModelOption customizes a test model.
type TestModelOption func(*Model)

// NewTestModel builds a model with safe defaults for Update tests: booted,
// sized, journal and watcher off. Options mutate from there.
func NewTestModel(opts ...TestModelOption) Model {
	ti := textinput.New()
	ti.Prompt = "| "
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(76, 16)

	l := list.New(menuItems(), list.NewDefaultDelegate(), 76, 16)
	l.Title = "Main Menu"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	m := Model{
		menu:     l,
		input:    ti,
		viewport: vp,
		spinner:  sp,
		styles:   ui.NewStyles(ui.LightTheme()),
		viewMode: MenuView,
		records:  store.New(),
		cfg: Config{
			Workspace:   "/tmp/test-workspace",
			DatasetPath: "keystone-throughput-and-capacity.csv",
		},
		statusChan: make(chan string, 10),
		ready:      true,
		width:      80,
		height:     24,
	}

	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// WithBooting sets the boot gate.
func WithBooting(booting bool) TestModelOption {
	return func(m *Model) {
		m.isBooting = booting
	}
}

// WithViewMode sets the view mode.
func WithViewMode(mode ViewMode) TestModelOption {
	return func(m *Model) {
		m.viewMode = mode
	}
}

// WithRecords seeds the working set with throughput/capacity pairs.
func WithRecords(pairs ...[2]string) TestModelOption {
	return func(m *Model) {
		for _, p := range pairs {
			if _, err := m.records.Append(p[0], p[1]); err != nil {
				panic(err)
			}
		}
	}
}

// WithDataset points the model at a dataset path.
func WithDataset(path string) TestModelOption {
	return func(m *Model) {
		m.cfg.DatasetPath = path
	}
}

// chdirTemp moves the test into a fresh directory so the project-local
// .flowledger preference dir resolves there. Not parallel: cwd is global.
func chdirTemp(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd error: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir error: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
	return dir
}

// keyMsg builds the tea.KeyMsg for a key name or rune sequence.
func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// updateModel runs one message through Update and re-asserts the Model type.
func updateModel(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	newModel, cmd := m.Update(msg)
	result, ok := newModel.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", newModel)
	}
	return result, cmd
}

// submitInput types a value into the active prompt and presses Enter.
func submitInput(t *testing.T, m Model, value string) (Model, tea.Cmd) {
	t.Helper()
	if m.inputMode == InputModeNone {
		t.Fatal("no prompt active")
	}
	m.input.SetValue(value)
	return updateModel(t, m, keyMsg("enter"))
}

// runCmds executes a command tree, flattening batches, and returns the
// produced messages. Never call it on commands that block (waitForStatus,
// the watcher bridge).
func runCmds(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmds(t, c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}
