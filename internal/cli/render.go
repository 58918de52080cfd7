package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/theme"
)

// Table represents a bordered text table for CLI output. Cells may carry
// lipgloss styling; widths are measured without escape sequences.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a title bar in a rounded box.
func RenderTitle(title string) string {
	return theme.BorderStyle.
		Padding(0, 1).
		Render(theme.ColumnHeaderStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. A row holding
// the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			continue
		}
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	dim := theme.DimStyle.Render

	if t.Title != "" {
		b.WriteString(theme.HeaderStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dim(left))
		for i, w := range widths {
			b.WriteString(dim(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dim(mid))
			}
		}
		b.WriteString(dim(right))
		b.WriteString("\n")
	}

	row := func(cells []string, style func(...string) string) {
		b.WriteString(dim("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(" ")
			b.WriteString(style(cell))
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+1))
			if i < numCols-1 {
				b.WriteString(dim("│"))
			}
		}
		b.WriteString(dim("│"))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		row(t.Headers, theme.ColumnHeaderStyle.Render)
		rule("├", "┼", "┤")
	}
	for _, r := range t.Rows {
		if isSeparator(r) {
			rule("├", "┼", "┤")
			continue
		}
		row(r, plain)
	}
	rule("╰", "┴", "╯")

	return b.String()
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == "---"
}

func plain(s ...string) string {
	return strings.Join(s, " ")
}
