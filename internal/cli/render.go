package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorBorder = lipgloss.Color("#3A3A3A")
	ColorText   = lipgloss.Color("#F5F5F5")
	ColorMuted  = lipgloss.Color("#8A8A8A")
	ColorAccent = lipgloss.Color("#1E88E5")
	ColorGreen  = lipgloss.Color("#43A047")
	ColorOrange = lipgloss.Color("#FB8C00")
	ColorRed    = lipgloss.Color("#E53935")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorText)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	borderStyle = lipgloss.NewStyle().Foreground(ColorBorder)
)

// Table is a bordered text table for drivefinctl output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders title centred in a rounded box.
func RenderTitle(title string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(48).
		Align(lipgloss.Center).
		Padding(0, 1)
	return box.Render(titleStyle.Render(title))
}

// RenderTable lays out t with columns sized to their widest cell.
func RenderTable(t Table) string {
	cols := len(t.Headers)
	if cols == 0 && len(t.Rows) > 0 {
		cols = len(t.Rows[0])
	}
	if cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	rule := func(left, mid, right string) {
		parts := make([]string, cols)
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		b.WriteString(borderStyle.Render(left+strings.Join(parts, mid)+right) + "\n")
	}
	line := func(cells []string, style lipgloss.Style) {
		sep := borderStyle.Render("│")
		b.WriteString(sep)
		for i := 0; i < cols; i++ {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			b.WriteString(" " + style.Render(cell) + pad + " " + sep)
		}
		b.WriteString("\n")
	}

	rule("┌", "┬", "┐")
	if len(t.Headers) > 0 {
		line(t.Headers, headerStyle)
		rule("├", "┼", "┤")
	}
	for _, row := range t.Rows {
		line(row, lipgloss.NewStyle())
	}
	rule("└", "┴", "┘")
	return b.String()
}

// RenderKV renders label/value pairs with the labels right-aligned.
func RenderKV(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p[0]))
	}
	var b strings.Builder
	for _, p := range pairs {
		label := strings.Repeat(" ", width-lipgloss.Width(p[0])) + p[0]
		b.WriteString("  " + mutedStyle.Render(label) + "  " + p[1] + "\n")
	}
	return b.String()
}

// ProgressBar draws pct (0-100) as a bar of width cells, coloured by how
// far along it is.
func ProgressBar(pct float64, width int) string {
	pct = min(max(pct, 0), 100)
	filled := int(pct / 100 * float64(width))
	color := ColorRed
	switch {
	case pct >= 100:
		color = ColorGreen
	case pct >= 50:
		color = ColorAccent
	case pct >= 25:
		color = ColorOrange
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}
