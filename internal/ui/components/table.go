package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/wselearn/wse/internal/ui/theme"
)

// Table renders fixed rows under a header. Columns share the width
// evenly; overflowing cells are cut with an ellipsis.
type Table struct {
	Headers  []string
	Rows     [][]string
	Selected int // -1 for no selection
	Width    int
}

// View renders the table.
func (t Table) View() string {
	if len(t.Headers) == 0 {
		return ""
	}
	colWidth := max((t.Width-2)/len(t.Headers), 4)

	var b strings.Builder
	b.WriteString("  " + t.row(t.Headers, colWidth, theme.TableHeader) + "\n")
	b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.Border).
		Render(strings.Repeat("─", colWidth*len(t.Headers))) + "\n")
	for i, r := range t.Rows {
		if i == t.Selected {
			b.WriteString(theme.Selected.Render("▸ ") + t.row(r, colWidth, theme.Selected) + "\n")
			continue
		}
		b.WriteString("  " + t.row(r, colWidth, theme.TableRow) + "\n")
	}
	return b.String()
}

func (t Table) row(cells []string, colWidth int, style lipgloss.Style) string {
	parts := make([]string, len(t.Headers))
	for i := range t.Headers {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = style.Width(colWidth).MaxWidth(colWidth).Render(Truncate(cell, colWidth-1))
	}
	return strings.Join(parts, "")
}

// Truncate shortens s to at most width cells, marking the cut with "…".
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
