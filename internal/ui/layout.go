package ui

import (
	runewidth "github.com/mattn/go-runewidth"
)

// gridLayout is the cached geometry of the selector grid. It is derived from
// the terminal size and the widest currently-filtered item, so it must be
// recomputed after a resize or a filter change.
type gridLayout struct {
	columns     int
	columnWidth int
	visibleRows int
}

// pageSize is the number of grid cells one viewport page holds.
func (l gridLayout) pageSize() int {
	cols := l.columns
	if cols < 1 {
		cols = 1
	}
	return cols * l.visibleRows
}

// computeLayout fits the filtered items into the given terminal size.
// Column width reserves 4 cells per item for the checkbox and padding. Two
// header lines, one separator and the footer are reserved vertically, plus
// one safety row.
func computeLayout(width, height int, items []string, filtered []int) gridLayout {
	maxItemWidth := 0
	for _, idx := range filtered {
		if w := runewidth.StringWidth(items[idx]); w > maxItemWidth {
			maxItemWidth = w
		}
	}
	columnWidth := maxItemWidth + 4

	usable := width - 2
	if usable < 0 {
		usable = 0
	}
	columns := usable / columnWidth
	if columns < 1 {
		columns = 1
	}
	// Never more columns than items; an empty view still gets one column.
	if n := len(filtered); columns > n {
		columns = n
	}
	if columns < 1 {
		columns = 1
	}

	visibleRows := height - 5
	if visibleRows < 1 {
		visibleRows = 1
	}

	return gridLayout{
		columns:     columns,
		columnWidth: columnWidth,
		visibleRows: visibleRows,
	}
}
