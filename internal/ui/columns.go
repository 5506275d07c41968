package ui

import (
	"errors"
	"fmt"
	"io"
	"syscall"

	runewidth "github.com/mattn/go-runewidth"
)

// ColumnLayout describes the non-interactive columnar listing used by the
// list command.
type ColumnLayout struct {
	Columns     int
	ColumnWidth int
	Rows        int
}

// CalculateColumnLayout packs items into as many columns as termWidth
// allows, two cells of breathing room per column.
func CalculateColumnLayout(items []string, termWidth int) ColumnLayout {
	if termWidth <= 0 {
		termWidth = 80
	}
	columnWidth := 0
	for _, item := range items {
		if w := runewidth.StringWidth(item); w > columnWidth {
			columnWidth = w
		}
	}
	columnWidth += 2

	columns := termWidth / columnWidth
	if columns < 1 {
		columns = 1
	}
	rows := (len(items) + columns - 1) / columns

	return ColumnLayout{Columns: columns, ColumnWidth: columnWidth, Rows: rows}
}

// PrintColumns writes items in row-major columns with alternating colors.
// A closed downstream pipe ends the listing silently; the caller sees no
// error.
func PrintColumns(w io.Writer, items []string, layout ColumnLayout, theme Theme) error {
	for row := 0; row < layout.Rows; row++ {
		for col := 0; col < layout.Columns; col++ {
			idx := row*layout.Columns + col
			if idx >= len(items) {
				break
			}

			style := theme.ListAlt1
			if idx%2 == 1 {
				style = theme.ListAlt2
			}
			cell := style.Render(runewidth.FillRight(items[idx], layout.ColumnWidth))
			if _, err := fmt.Fprint(w, cell); err != nil {
				if isClosedPipe(err) {
					return nil
				}
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			if isClosedPipe(err) {
				return nil
			}
			return err
		}
	}
	return nil
}

// PrintSuccess writes a green checkmark line.
func PrintSuccess(w io.Writer, theme Theme, format string, args ...any) {
	fmt.Fprintln(w, theme.Success.Render("✓ "+fmt.Sprintf(format, args...)))
}

func isClosedPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}
