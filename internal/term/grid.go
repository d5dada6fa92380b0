// Package term renders the sheet on a terminal with tcell and turns
// keystrokes into document operations. It is the render consumer and the
// edit-intake collaborator of the document store.
package term

import (
	"fmt"
	"strconv"
)

// ColumnLabel converts a zero-based column index to its spreadsheet letter
// form: 0 -> A, 25 -> Z, 26 -> AA.
func ColumnLabel(col int) string {
	if col < 0 {
		return ""
	}
	label := ""
	for col >= 0 {
		label = string(rune('A'+col%26)) + label
		col = col/26 - 1
	}
	return label
}

// CellName is the user-facing name of a position, e.g. B7 for (1, 6).
func CellName(col, row int) string {
	return fmt.Sprintf("%s%d", ColumnLabel(col), row+1)
}

// FormatCell fits a value into width characters: truncated with a trailing
// marker when too long, padded with spaces when short.
func FormatCell(value string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) > width {
		if width == 1 {
			return "…"
		}
		return string(runes[:width-1]) + "…"
	}
	for len(runes) < width {
		runes = append(runes, ' ')
	}
	return string(runes)
}

// gutterWidth is the width of the row-number gutter for a viewport whose last
// visible row is lastRow (zero-based).
func gutterWidth(lastRow int) int {
	if lastRow < 0 {
		lastRow = 0
	}
	w := len(strconv.Itoa(lastRow + 1))
	if w < 2 {
		w = 2
	}
	return w + 1 // trailing space before the grid
}

// visibleCols reports how many columns fit after the gutter.
func visibleCols(screenWidth, gutter, colWidth int) int {
	if colWidth <= 0 {
		return 0
	}
	n := (screenWidth - gutter) / colWidth
	if n < 0 {
		n = 0
	}
	return n
}
