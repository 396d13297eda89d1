package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const defaultBarWidth = 40

// Bar is one category row in a BarChart.
type Bar struct {
	Label string
	Count int
	Color lipgloss.Color
}

// BarChart renders per-category counts as horizontal bars. Bars are scaled
// against the largest count; a non-zero count always paints at least one cell.
type BarChart struct {
	Title  string
	XLabel string
	YLabel string
	Bars   []Bar
	Width  int // max bar width in cells
}

// NewBarChart creates a new BarChart with the given title and axis labels.
func NewBarChart(title, xLabel, yLabel string) *BarChart {
	return &BarChart{
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
		Bars:   make([]Bar, 0),
		Width:  defaultBarWidth,
	}
}

// AddBar appends a category row.
func (c *BarChart) AddBar(label string, count int, color lipgloss.Color) {
	c.Bars = append(c.Bars, Bar{Label: label, Count: count, Color: color})
}

// View renders the chart using the provided styles.
func (c *BarChart) View(styles Styles) string {
	if len(c.Bars) == 0 {
		return ""
	}

	width := c.Width
	if width <= 0 {
		width = defaultBarWidth
	}

	var sb strings.Builder

	if c.Title != "" {
		sb.WriteString(styles.Title.Render(c.Title))
		sb.WriteString("\n")
	}
	if c.YLabel != "" {
		sb.WriteString(styles.Subtitle.Render(c.YLabel))
		sb.WriteString("\n")
	}

	labelWidth := 0
	maxCount := 0
	total := 0
	for _, b := range c.Bars {
		if w := lipgloss.Width(b.Label); w > labelWidth {
			labelWidth = w
		}
		if b.Count > maxCount {
			maxCount = b.Count
		}
		total += b.Count
	}

	labelStyle := styles.Body.Width(labelWidth + 2)
	axisStyle := styles.Muted

	for _, b := range c.Bars {
		cells := 0
		if maxCount > 0 {
			cells = b.Count * width / maxCount
		}
		if b.Count > 0 && cells == 0 {
			cells = 1
		}

		barStyle := lipgloss.NewStyle().Foreground(b.Color)
		sb.WriteString(labelStyle.Render(b.Label))
		sb.WriteString(axisStyle.Render("│"))
		sb.WriteString(barStyle.Render(strings.Repeat("█", cells)))
		sb.WriteString(fmt.Sprintf(" %d", b.Count))
		sb.WriteString("\n")
	}

	// Baseline and x-axis label
	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	sb.WriteString(axisStyle.Render("└" + strings.Repeat("─", width)))
	sb.WriteString("\n")
	if c.XLabel != "" {
		sb.WriteString(strings.Repeat(" ", labelWidth+3))
		sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%s (total: %d)", c.XLabel, total)))
		sb.WriteString("\n")
	}

	return sb.String()
}
