// Package tui provides tests for view rendering. These assert on substrings
// of the rendered frames; styling detail is left to the ui package tests.
package tui

import (
	"strings"
	"testing"

	"flowledger/internal/aggregate"
	"flowledger/internal/history"
	"flowledger/internal/record"

	tea "github.com/charmbracelet/bubbletea"
)

func TestView_BeforeFirstWindowSize(t *testing.T) {
	t.Parallel()
	m := NewTestModel()
	m.ready = false

	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q", got)
	}
}

func TestView_BootScreen(t *testing.T) {
	t.Parallel()
	m := NewTestModel(WithBooting(true))
	m.status = "Opening operation journal..."

	view := m.View()

	if !strings.Contains(view, "flowledger") {
		t.Error("boot screen missing program name")
	}
	if !strings.Contains(view, "Starting up...") {
		t.Error("boot screen missing startup line")
	}
	if !strings.Contains(view, "Opening operation journal...") {
		t.Error("boot screen missing boot progress status")
	}
}

func TestView_MenuListsAllActions(t *testing.T) {
	t.Parallel()
	m := NewTestModel()
	m, _ = updateModel(t, m, tea.WindowSizeMsg{Width: 100, Height: 60})

	view := m.View()

	for _, title := range []string{
		"Load Data from CSV",
		"Display Records",
		"Add New Record",
		"Edit a Record",
		"Delete a Record",
		"Save Data to New CSV",
		"Plot Horizontal Bar Chart",
		"Exit",
	} {
		if !strings.Contains(view, title) {
			t.Errorf("menu missing %q", title)
		}
	}
	if !strings.Contains(view, "Main Menu") {
		t.Error("menu missing its title")
	}
	if !strings.Contains(view, "Ready") {
		t.Error("header missing idle indicator")
	}
}

func TestView_WorkingIndicator(t *testing.T) {
	t.Parallel()
	m := NewTestModel()
	m.isWorking = true
	m.status = "Loading pipeline.csv..."

	view := m.View()

	if !strings.Contains(view, "Loading pipeline.csv...") {
		t.Error("header missing the working status")
	}
	if strings.Contains(view, "Ready") {
		t.Error("header should not show Ready while working")
	}
}

func TestView_RecordsTable(t *testing.T) {
	t.Parallel()
	m := NewTestModel(WithRecords([2]string{"10", "5"}, [2]string{"55", "20"}))

	m, _ = updateModel(t, m, keyMsg("2"))
	view := m.View()

	if !strings.Contains(view, "Pipeline Throughput and Capacity Records") {
		t.Error("records view missing table title")
	}
	if !strings.Contains(view, "plain") || !strings.Contains(view, "formatted") {
		t.Error("records view missing display variants")
	}
	if !strings.Contains(view, "55") {
		t.Error("records view missing record values")
	}
}

func TestView_Detail(t *testing.T) {
	t.Parallel()
	r, err := record.New("55", "20")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	m := NewTestModel(WithViewMode(DetailView))
	m.detailPos = 2
	m.detailRecord = r

	view := m.View()

	if !strings.Contains(view, "Record 2") {
		t.Error("detail view missing record heading")
	}
	if !strings.Contains(view, "Formatted Pipeline Record") {
		t.Error("detail view missing the formatted rendering")
	}
}

func TestView_Chart(t *testing.T) {
	t.Parallel()
	m := NewTestModel(WithViewMode(ChartView))
	m.chartField = aggregate.FieldAvailableCapacity
	m.chartBuckets = aggregate.BucketSet{Low: 1, Medium: 1, High: 1}

	view := m.View()

	if !strings.Contains(view, "Aggregated Horizontal Bar Chart: Available Capacity") {
		t.Error("chart view missing title")
	}
	if !strings.Contains(view, "Number of Records (total: 3)") {
		t.Error("chart view missing x-axis label")
	}
	for _, label := range []string{"Low (0-20)", "Medium (20-50)", "High (50+)"} {
		if !strings.Contains(view, label) {
			t.Errorf("chart view missing bucket %q", label)
		}
	}
}

func TestView_PromptArea(t *testing.T) {
	t.Parallel()
	m := NewTestModel()

	m, _ = updateModel(t, m, keyMsg("3"))
	view := m.View()

	if !strings.Contains(view, "Enter throughput (1000 m3/d):") {
		t.Error("prompt area missing its label")
	}
	if !strings.Contains(view, "enter confirm  esc cancel") {
		t.Error("footer missing prompt hints")
	}
}

func TestView_FooterCounts(t *testing.T) {
	t.Parallel()
	m := NewTestModel(WithRecords([2]string{"10", "5"}, [2]string{"20", "6"}))
	m.dirty = true
	m.session = &history.Session{ID: "test"}
	m.opCount = 5

	view := m.View()

	if !strings.Contains(view, "2 records (unsaved)") {
		t.Error("footer missing unsaved record count")
	}
	if !strings.Contains(view, "5 ops journaled") {
		t.Error("footer missing journal count")
	}
}

func TestView_FooterReloadHint(t *testing.T) {
	t.Parallel()
	m := NewTestModel()
	m.reloadPending = true

	if !strings.Contains(m.View(), "r reload") {
		t.Error("footer missing reload hint")
	}
}

func TestView_Help(t *testing.T) {
	t.Parallel()
	m := NewTestModel()

	m, _ = updateModel(t, m, keyMsg("?"))
	view := m.View()

	if m.viewMode != HelpView {
		t.Fatalf("viewMode = %d, want HelpView", m.viewMode)
	}
	if !strings.Contains(view, "Load Data from CSV") {
		t.Error("help missing menu action documentation")
	}
}

func TestSafeRenderMarkdown_NilRendererFallsBack(t *testing.T) {
	t.Parallel()
	m := NewTestModel()

	content := "# Heading\n\nbody text"
	if got := m.safeRenderMarkdown(content); got != content {
		t.Errorf("safeRenderMarkdown = %q, want untouched content", got)
	}
}
