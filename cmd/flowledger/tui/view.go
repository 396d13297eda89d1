// Package tui provides the interactive terminal interface for flowledger.
// This file contains view rendering functions.
package tui

import (
	"fmt"
	"strconv"

	"flowledger/cmd/flowledger/ui"
	"flowledger/internal/dataset"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.isBooting {
		return m.renderBootScreen()
	}

	header := m.renderHeader()

	var content string
	switch m.viewMode {
	case RecordsView, HelpView:
		content = m.viewport.View()
	case DetailView:
		content = m.renderDetail()
	case ChartView:
		content = m.renderChart()
	default:
		content = m.menu.View()
	}
	body := m.styles.Content.Render(content)

	sections := []string{header, body}
	if m.inputMode != InputModeNone {
		sections = append(sections, m.renderInputArea())
	}
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderBootScreen() string {
	title := m.styles.Title.Render("flowledger")
	line := lipgloss.JoinHorizontal(lipgloss.Center,
		m.spinner.View(), " ", m.styles.Body.Render("Starting up..."))
	status := ""
	if m.status != "" {
		status = m.styles.Muted.Render(m.status)
	}
	workspace := m.styles.Muted.Render(m.cfg.Workspace)

	return m.styles.Content.Render(
		lipgloss.JoinVertical(lipgloss.Left, title, line, status, workspace))
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" flowledger ")
	version := m.styles.Badge.Render("v1.0")

	var status string
	if m.isWorking {
		msg := m.status
		if msg == "" {
			msg = "Working..."
		}
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Badge.Render(msg))
	} else {
		status = m.styles.Success.Render("Ready")
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		version,
		"  ",
		status,
	)

	dataset := m.styles.Muted.Render(fmt.Sprintf(" %s", m.cfg.DatasetPath))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		dataset,
		m.styles.RenderDivider(m.width),
	)
}

func (m Model) renderFooter() string {
	var statusLine string
	switch {
	case m.lastErr != nil:
		statusLine = m.styles.Error.Render(m.lastErr.Error())
	case m.status != "" && !m.isWorking:
		statusLine = m.styles.Info.Render(m.status)
	}

	counts := fmt.Sprintf("%d records", m.records.Len())
	if m.dirty {
		counts += " (unsaved)"
	}
	if m.session != nil {
		counts += fmt.Sprintf("  %d ops journaled", m.opCount)
	}

	var hints string
	switch {
	case m.inputMode != InputModeNone:
		hints = "enter confirm  esc cancel"
	case m.viewMode == RecordsView:
		hints = "up/down scroll  d detail  esc menu"
	case m.viewMode == DetailView:
		hints = "esc back"
	case m.viewMode == ChartView, m.viewMode == HelpView:
		hints = "esc menu"
	default:
		hints = "up/down select  enter run  1-8 quick pick  ? help  esc quit"
		if m.reloadPending {
			hints = "r reload  " + hints
		}
	}

	footerLine := counts + "    " + hints

	if statusLine != "" {
		return lipgloss.JoinVertical(lipgloss.Left, statusLine, m.styles.Footer.Render(footerLine))
	}
	return m.styles.Footer.Render(footerLine)
}

func (m Model) renderInputArea() string {
	label := m.styles.Prompt.Render(m.promptLabel)

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)

	return lipgloss.JoinVertical(lipgloss.Left, label, inputStyle.Render(m.input.View()))
}

// renderRecordsTable builds the listing shown in the records view.
func (m Model) renderRecordsTable() string {
	table := ui.NewSimpleTable("Pipeline Throughput and Capacity Records",
		[]string{"#", dataset.HeaderThroughput, dataset.HeaderAvailableCapacity, "Display"})
	table.AlignRight(0, 1, 2)

	for _, entry := range m.records.All() {
		display := "plain"
		if entry.Record.Formatted() {
			display = "formatted"
		}
		table.AddRow(strconv.Itoa(entry.Position), entry.Record.Throughput, entry.Record.AvailableCapacity, display)
	}

	return table.View(m.styles)
}

// renderDetail shows one record in its derived display variant.
func (m Model) renderDetail() string {
	title := m.styles.Title.Render(fmt.Sprintf("Record %d", m.detailPos))
	return lipgloss.JoinVertical(lipgloss.Left, title, m.styles.Card.Render(m.detailRecord.String()))
}

func (m Model) renderChart() string {
	chart := ui.NewBarChart(
		fmt.Sprintf("Aggregated Horizontal Bar Chart: %s", m.chartField.Label()),
		"Number of Records",
		"Categories",
	)

	colors := []lipgloss.Color{ui.ChartLow, ui.ChartMedium, ui.ChartHigh}
	for i, b := range m.chartBuckets.Buckets() {
		chart.AddBar(b.Label, b.Count, colors[i%len(colors)])
	}

	return chart.View(m.styles)
}

// safeRenderMarkdown renders markdown with panic recovery
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			// If glamour panics, return plain text
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}
