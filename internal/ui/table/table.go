// Package table renders aligned CLI tables with the theme styles.
package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"calmtrace/internal/ui/theme"
)

const gap = "  "

type Table struct {
	headers []string
	rows    [][]string
	styles  map[int]func(string) lipgloss.Style
}

func New(headers ...string) *Table {
	return &Table{headers: headers, styles: map[int]func(string) lipgloss.Style{}}
}

// Row appends a row; missing cells render empty and extra cells are dropped.
func (t *Table) Row(cells ...string) *Table {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
	return t
}

// StyleColumn picks a style per cell value in column col.
func (t *Table) StyleColumn(col int, fn func(string) lipgloss.Style) *Table {
	t.styles[col] = fn
	return t
}

func (t *Table) Render() string {
	if len(t.rows) == 0 {
		return theme.Muted.Render("no rows") + "\n"
	}
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(t.line(t.headers, widths, func(int, string) lipgloss.Style { return theme.Header }))
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	b.WriteString(theme.Rule.Render(strings.Join(rule, gap)) + "\n")
	for _, row := range t.rows {
		b.WriteString(t.line(row, widths, func(col int, cell string) lipgloss.Style {
			if fn, ok := t.styles[col]; ok {
				return fn(cell)
			}
			return theme.Cell
		}))
	}
	return b.String()
}

func (t *Table) line(cells []string, widths []int, style func(int, string) lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		parts[i] = style(i, cell).Render(cell) + pad
	}
	return strings.TrimRight(strings.Join(parts, gap), " ") + "\n"
}
