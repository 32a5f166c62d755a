package grid

import (
	"maps"
	"slices"

	"github.com/tosih/motor-curve-tool/pkg/coordinator"
)

// Rect is an inclusive cell rectangle.
type Rect struct {
	Top, Left, Bottom, Right int
}

// RectOf spans a and b inclusively.
func RectOf(a, b CellPosition) Rect {
	return Rect{
		Top:    min(a.Row, b.Row),
		Left:   min(a.Column, b.Column),
		Bottom: max(a.Row, b.Row),
		Right:  max(a.Column, b.Column),
	}
}

// Cells lists the rectangle's cells row-major.
func (r Rect) Cells() []CellPosition {
	var out []CellPosition
	for row := r.Top; row <= r.Bottom; row++ {
		for col := r.Left; col <= r.Right; col++ {
			out = append(out, Cell(row, col))
		}
	}
	return out
}

// Rows is the rectangle's height.
func (r Rect) Rows() int { return r.Bottom - r.Top + 1 }

// Columns is the rectangle's width.
func (r Rect) Columns() int { return r.Right - r.Left + 1 }

// BoundsOf returns the bounding rectangle of cells; ok is false when cells is
// empty.
func BoundsOf(cells []CellPosition) (r Rect, ok bool) {
	if len(cells) == 0 {
		return Rect{}, false
	}
	r = RectOf(cells[0], cells[0])
	for _, c := range cells[1:] {
		r.Top = min(r.Top, c.Row)
		r.Bottom = max(r.Bottom, c.Row)
		r.Left = min(r.Left, c.Column)
		r.Right = max(r.Right, c.Column)
	}
	return r, true
}

// Selection is the set of selected cells of a Grid plus the anchor used as
// the pivot of range operations.
//
// Every operation that changes the selection notifies OnChange observers once
// and, when a coordinator is attached, publishes the logical selection.
type Selection struct {
	grid      *Grid
	cells     map[CellPosition]struct{}
	anchor    CellPosition
	hasAnchor bool
	observers []func()

	coord   *coordinator.Coordinator
	cancel  func()
	syncing bool
}

// NewSelection returns an empty selection over g.
func NewSelection(g *Grid) *Selection {
	return &Selection{grid: g, cells: make(map[CellPosition]struct{})}
}

// OnChange registers fn to run after every selection change.
func (s *Selection) OnChange(fn func()) {
	s.observers = append(s.observers, fn)
}

// Cells returns the selected cells sorted row-major.
func (s *Selection) Cells() []CellPosition {
	out := slices.Collect(maps.Keys(s.cells))
	slices.SortFunc(out, CellPosition.Compare)
	return out
}

// Len is the number of selected cells.
func (s *Selection) Len() int { return len(s.cells) }

// Contains reports whether (r, c) is selected.
func (s *Selection) Contains(r, c int) bool {
	_, ok := s.cells[Cell(r, c)]
	return ok
}

// Anchor returns the anchor cell if one is set.
func (s *Selection) Anchor() (CellPosition, bool) {
	return s.anchor, s.hasAnchor
}

// Bounds returns the bounding rectangle of the selection.
func (s *Selection) Bounds() (Rect, bool) {
	return BoundsOf(s.Cells())
}

// SelectCell selects exactly (r, c) and anchors there. Cells outside the
// grid are ignored.
func (s *Selection) SelectCell(r, c int) {
	if !s.grid.Contains(r, c) {
		return
	}
	p := Cell(r, c)
	s.replace([]CellPosition{p}, &p)
}

// ToggleCell removes (r, c) if selected, keeping the anchor; otherwise adds it
// and anchors there. Cells outside the grid are ignored.
func (s *Selection) ToggleCell(r, c int) {
	if !s.grid.Contains(r, c) {
		return
	}
	p := Cell(r, c)
	if _, ok := s.cells[p]; ok {
		delete(s.cells, p)
		s.changed()
		return
	}
	s.cells[p] = struct{}{}
	s.anchor, s.hasAnchor = p, true
	s.changed()
}

// SelectRange selects the rectangle between the anchor and (r, c), leaving
// the anchor in place. (r, c) is clamped to the grid. Without an anchor it
// behaves like SelectCell.
func (s *Selection) SelectRange(r, c int) {
	to, ok := s.clampCell(Cell(r, c))
	if !ok {
		return
	}
	if !s.hasAnchor {
		s.SelectCell(to.Row, to.Column)
		return
	}
	anchor := s.anchor
	s.replace(RectOf(anchor, to).Cells(), &anchor)
}

// AddToSelection adds (r, c) if absent and anchors there. Selecting an
// already selected cell, or one outside the grid, changes nothing.
func (s *Selection) AddToSelection(r, c int) {
	if !s.grid.Contains(r, c) {
		return
	}
	p := Cell(r, c)
	if _, ok := s.cells[p]; ok {
		return
	}
	s.cells[p] = struct{}{}
	s.anchor, s.hasAnchor = p, true
	s.changed()
}

// SelectRectangularRange selects the rectangle between a and b and anchors at
// a. Both corners are clamped to the grid.
func (s *Selection) SelectRectangularRange(a, b CellPosition) {
	a, ok := s.clampCell(a)
	if !ok {
		return
	}
	b, _ = s.clampCell(b)
	s.replace(RectOf(a, b).Cells(), &a)
}

// ExtendSelection grows the selection's bounding rectangle by one row or
// column in the direction of the non-zero delta. Growing past a grid edge,
// an empty selection, or a delta with both or neither component set is a
// no-op. Existing cells are never removed.
func (s *Selection) ExtendSelection(rowDelta, colDelta int) {
	s.extend(rowDelta, colDelta, false)
}

// ExtendSelectionToEnd is ExtendSelection growing all the way to the grid
// edge in one call.
func (s *Selection) ExtendSelectionToEnd(rowDelta, colDelta int) {
	s.extend(rowDelta, colDelta, true)
}

func (s *Selection) extend(rowDelta, colDelta int, toEnd bool) {
	if (rowDelta == 0) == (colDelta == 0) {
		return
	}
	bounds, ok := s.Bounds()
	if !ok {
		return
	}
	lastRow, lastCol := s.grid.RowCount()-1, s.grid.ColumnCount()-1
	next := bounds
	step := func(edge, dir, limit int) int {
		if toEnd {
			return limit
		}
		return edge + dir
	}
	switch {
	case rowDelta < 0 && bounds.Top > 0:
		next.Top = step(bounds.Top, -1, 0)
	case rowDelta > 0 && bounds.Bottom < lastRow:
		next.Bottom = step(bounds.Bottom, 1, lastRow)
	case colDelta < 0 && bounds.Left > 0:
		next.Left = step(bounds.Left, -1, 0)
	case colDelta > 0 && bounds.Right < lastCol:
		next.Right = step(bounds.Right, 1, lastCol)
	default:
		return
	}
	for _, p := range next.Cells() {
		s.cells[p] = struct{}{}
	}
	s.changed()
}

// MoveSelection collapses the selection to the single cell offset from the
// anchor (or the first selected cell) by the delta, clamped to the grid. An
// empty selection moves to (0, 0) instead.
func (s *Selection) MoveSelection(rowDelta, colDelta int) {
	rows, cols := s.grid.RowCount(), s.grid.ColumnCount()
	if rows == 0 || cols == 0 {
		return
	}
	if len(s.cells) == 0 {
		s.SelectCell(0, 0)
		return
	}
	pivot := s.anchor
	if !s.hasAnchor {
		pivot = s.Cells()[0]
	}
	r := clamp(pivot.Row+rowDelta, 0, rows-1)
	c := clamp(pivot.Column+colDelta, 0, cols-1)
	s.SelectCell(r, c)
}

// ClearSelection empties the selection and drops the anchor.
func (s *Selection) ClearSelection() {
	if len(s.cells) == 0 && !s.hasAnchor {
		return
	}
	clear(s.cells)
	s.hasAnchor = false
	s.changed()
}

// SelectAll selects every torque cell and anchors at the first one.
func (s *Selection) SelectAll() {
	rows, cols := s.grid.RowCount(), s.grid.ColumnCount()
	if rows == 0 || cols <= FirstCurveColumn {
		s.ClearSelection()
		return
	}
	s.SelectRectangularRange(Cell(0, FirstCurveColumn), Cell(rows-1, cols-1))
}

// Prune removes cells that fell outside the grid after it shrank.
func (s *Selection) Prune() {
	removed := false
	for p := range s.cells {
		if !s.grid.Contains(p.Row, p.Column) {
			delete(s.cells, p)
			removed = true
		}
	}
	if s.hasAnchor && !s.grid.Contains(s.anchor.Row, s.anchor.Column) {
		s.hasAnchor = false
		removed = true
	}
	if removed {
		s.changed()
	}
}

func (s *Selection) replace(cells []CellPosition, anchor *CellPosition) {
	clear(s.cells)
	for _, p := range cells {
		s.cells[p] = struct{}{}
	}
	s.hasAnchor = anchor != nil
	if anchor != nil {
		s.anchor = *anchor
	}
	s.changed()
}

func (s *Selection) changed() {
	s.publish()
	for _, fn := range s.observers {
		fn()
	}
}

// clampCell pins p inside the grid; ok is false when the grid has no cells.
func (s *Selection) clampCell(p CellPosition) (CellPosition, bool) {
	rows, cols := s.grid.RowCount(), s.grid.ColumnCount()
	if rows == 0 || cols == 0 {
		return p, false
	}
	return Cell(clamp(p.Row, 0, rows-1), clamp(p.Column, 0, cols-1)), true
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
