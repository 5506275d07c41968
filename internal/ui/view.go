package ui

import (
	"fmt"
	"strings"

	runewidth "github.com/mattn/go-runewidth"
	"github.com/charmbracelet/lipgloss"
)

var cursorStyle = lipgloss.NewStyle().Reverse(true)

// View renders the full selector screen: two header lines, the checkbox
// grid, and a footer status line. It reads state only; the layout cache is
// the one piece of derived state it may fill in.
func (s *Selector) View() string {
	l := s.grid()
	s.ensureVisible(l)

	var b strings.Builder
	s.renderHeader(&b)
	s.renderGrid(&b, l)
	s.renderFooter(&b)
	return b.String()
}

func (s *Selector) renderHeader(b *strings.Builder) {
	b.WriteString(s.theme.Title.Render("Select templates"))
	b.WriteString("  ")
	b.WriteString(s.theme.Hint.Render("Space=toggle  Enter=confirm  Esc=cancel  Ctrl+A=all  Ctrl+U=clear"))
	b.WriteByte('\n')

	filterText := "Filter: showing all templates"
	if q := s.input.Value(); q != "" {
		filterText = "Filter: " + q
	}
	if s.searching {
		filterText += " _"
	}
	b.WriteString(s.theme.FilterLine.Render(filterText))
	b.WriteString(s.theme.Hint.Render("  (/ to focus, type to filter, Delete clears)"))
	b.WriteByte('\n')
}

func (s *Selector) renderGrid(b *strings.Builder, l gridLayout) {
	if len(s.filtered) == 0 {
		b.WriteString(s.theme.Hint.Render("No templates match the current filter."))
		b.WriteString(strings.Repeat("\n", l.visibleRows))
		return
	}

	for row := 0; row < l.visibleRows; row++ {
		for col := 0; col < l.columns; col++ {
			pos := s.offset + row*l.columns + col
			if pos >= len(s.filtered) {
				break
			}
			b.WriteString(s.renderCell(pos, l))
		}
		b.WriteByte('\n')
	}
}

// renderCell paints one grid slot: a colored checkbox (inverted under the
// cursor) followed by the item name padded to the column width.
func (s *Selector) renderCell(pos int, l gridLayout) string {
	idx := s.filtered[pos]
	isSelected := s.selected[idx]

	checkbox := "[ ]"
	boxStyle := s.theme.CheckboxOff
	if isSelected {
		checkbox = "[x]"
		boxStyle = s.theme.CheckboxOn
	}
	box := boxStyle.Render(checkbox)
	if pos == s.cursor {
		box = cursorStyle.Inherit(boxStyle).Render(checkbox)
	}

	nameStyle := s.theme.ItemOff
	if isSelected {
		nameStyle = s.theme.ItemOn
	}
	name := nameStyle.Render(runewidth.FillRight(s.items[idx], l.columnWidth-4))

	return box + " " + name
}

func (s *Selector) renderFooter(b *strings.Builder) {
	b.WriteByte('\n')
	status := fmt.Sprintf(
		"Selected %d/%d · Showing %d/%d · Use arrows or hjkl to move, PgUp/PgDn to scroll",
		len(s.selected), len(s.items), len(s.filtered), len(s.items),
	)
	b.WriteString(s.theme.Footer.Render(status))
}
