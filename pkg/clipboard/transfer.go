// Package clipboard moves grid selections to and from rectangular text
// blocks: rows separated by newlines, fields separated by a single tab.
package clipboard

import (
	"math"
	"strconv"
	"strings"

	"github.com/tosih/motor-curve-tool/pkg/grid"
)

// Serialize renders cells as the text block covering their bounding
// rectangle. Cells inside the rectangle that are not selected become empty
// fields.
func Serialize(g *grid.Grid, cells []grid.CellPosition) string {
	bounds, ok := grid.BoundsOf(cells)
	if !ok {
		return ""
	}
	selected := make(map[grid.CellPosition]bool, len(cells))
	for _, p := range cells {
		selected[p] = true
	}

	lines := make([]string, 0, bounds.Rows())
	fields := make([]string, bounds.Columns())
	for r := bounds.Top; r <= bounds.Bottom; r++ {
		for c := bounds.Left; c <= bounds.Right; c++ {
			fields[c-bounds.Left] = ""
			if selected[grid.Cell(r, c)] {
				fields[c-bounds.Left] = g.Text(r, c)
			}
		}
		lines = append(lines, strings.Join(fields, "\t"))
	}
	return strings.Join(lines, "\n")
}

// Block is parsed clipboard text.
type Block struct {
	Rows    [][]string
	Columns int
}

// Parse splits text into lines on CR, LF or CRLF, dropping empty lines, and
// each line into tab-separated fields.
func Parse(text string) Block {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var b Block
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		b.Rows = append(b.Rows, fields)
		b.Columns = max(b.Columns, len(fields))
	}
	return b
}

// Scalar returns the value of a block holding exactly one numeric field.
func (b Block) Scalar() (float64, bool) {
	if len(b.Rows) != 1 || len(b.Rows[0]) != 1 {
		return 0, false
	}
	return parseNumber(b.Rows[0][0])
}

// Fits reports whether the block fits inside g when its first field lands on
// topLeft.
func (b Block) Fits(g *grid.Grid, topLeft grid.CellPosition) bool {
	if topLeft.Row < 0 || topLeft.Column < 0 {
		return false
	}
	return topLeft.Row+len(b.Rows) <= g.RowCount() && topLeft.Column+b.Columns <= g.ColumnCount()
}

// parseNumber accepts finite numbers only; "Inf" and "NaN" cannot be saved.
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ApplyAtTopLeft writes the block in text into g starting at topLeft. It
// returns false without writing anything when the block does not fit.
// Axis columns, locked curves and unparsable fields are skipped. w decides
// whether writes go straight to the curves or through the undo stack.
func ApplyAtTopLeft(g *grid.Grid, w Writer, topLeft grid.CellPosition, text string) (bool, error) {
	return applyBlock(g, w, topLeft, Parse(text))
}

func applyBlock(g *grid.Grid, w Writer, topLeft grid.CellPosition, b Block) (bool, error) {
	if len(b.Rows) == 0 || !b.Fits(g, topLeft) {
		return false, nil
	}
	for i, fields := range b.Rows {
		for j, field := range fields {
			r, c := topLeft.Row+i, topLeft.Column+j
			if g.ReadOnly(c) {
				continue
			}
			v, ok := parseNumber(field)
			if !ok {
				continue
			}
			w.SetTorque(g, r, c, v)
		}
	}
	return true, w.Flush()
}

// ApplyToSelection pastes text onto a selection. A single numeric field is
// written to every selected cell; anything else is pasted as a block at the
// selection's top-left corner.
func ApplyToSelection(g *grid.Grid, w Writer, cells []grid.CellPosition, text string) (bool, error) {
	bounds, ok := grid.BoundsOf(cells)
	if !ok {
		return false, nil
	}
	b := Parse(text)
	v, scalar := b.Scalar()
	if !scalar {
		return applyBlock(g, w, grid.Cell(bounds.Top, bounds.Left), b)
	}
	for _, p := range cells {
		if g.ReadOnly(p.Column) {
			continue
		}
		w.SetTorque(g, p.Row, p.Column, v)
	}
	return true, w.Flush()
}
