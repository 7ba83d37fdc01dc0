package table

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

const (
	separator = "  "
	ellipsis  = "…"
)

// Column fixes the width and alignment of one rendered column. A zero Width
// sizes the column to its widest cell.
type Column struct {
	Width int
	Align Alignment
}

// Format returns the rows padded according to the widest entry in each column.
func Format(rows [][]string, alignments []Alignment) []string {
	cols := make([]Column, len(alignments))
	for i, a := range alignments {
		cols[i].Align = a
	}
	return Layout(rows, cols)
}

// Widths returns the widest cell of each column, measured in terminal cells.
func Widths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for c, cell := range row {
			for len(widths) <= c {
				widths = append(widths, 0)
			}
			if w := CellWidth(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	return widths
}

// Layout pads every row to the column widths, truncating cells wider than a
// fixed Width with an ellipsis.
func Layout(rows [][]string, cols []Column) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := Widths(rows)
	for c := range widths {
		if c < len(cols) && cols[c].Width > 0 {
			widths[c] = cols[c].Width
		}
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for c, cell := range row {
			if c > 0 {
				b.WriteString(separator)
			}
			if CellWidth(cell) > widths[c] {
				cell = Truncate(cell, widths[c])
			}
			pad := widths[c] - CellWidth(cell)
			if c < len(cols) && cols[c].Align == AlignRight {
				writeSpaces(&b, pad)
				b.WriteString(cell)
			} else {
				b.WriteString(cell)
				writeSpaces(&b, pad)
			}
		}
		out[i] = b.String()
	}
	return out
}

// Offsets returns the starting cell of each column for the given widths.
func Offsets(widths []int) []int {
	offsets := make([]int, len(widths))
	x := 0
	for i, w := range widths {
		offsets[i] = x
		x += w + len(separator)
	}
	return offsets
}

// CellWidth measures text in terminal cells, ignoring ANSI sequences.
func CellWidth(text string) int {
	return ansi.StringWidth(text)
}

// Truncate shortens text to width cells, ending with an ellipsis.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if CellWidth(text) <= width {
		return text
	}
	if width == 1 {
		return ellipsis
	}
	return truncate.StringWithTail(text, uint(width), ellipsis)
}

func writeSpaces(b *strings.Builder, count int) {
	if count <= 0 {
		return
	}
	b.WriteString(strings.Repeat(" ", count))
}
