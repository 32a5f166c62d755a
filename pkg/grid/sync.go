package grid

import (
	"maps"
	"slices"

	"github.com/tosih/motor-curve-tool/pkg/coordinator"
)

// Attach binds the selection to coord in both directions. Grid changes are
// published as (curve, index) pairs; coordinator changes made by other views
// rebuild the cell selection. Attaching replaces any earlier binding.
func (s *Selection) Attach(coord *coordinator.Coordinator) {
	s.Detach()
	s.coord = coord
	s.cancel = coord.Subscribe(s.receive)
}

// Detach removes the coordinator binding.
func (s *Selection) Detach() {
	if s.cancel != nil {
		s.cancel()
	}
	s.coord, s.cancel = nil, nil
}

// Points maps the selected torque cells to logical points, row-major.
// Axis columns and unmapped cells are dropped.
func (s *Selection) Points() []coordinator.Point {
	var out []coordinator.Point
	for _, p := range s.Cells() {
		curve := s.grid.CurveForColumn(p.Column)
		if curve == nil || !curve.InRange(p.Row) {
			continue
		}
		out = append(out, coordinator.Point{Curve: curve, Index: p.Row})
	}
	return out
}

func (s *Selection) publish() {
	if s.coord == nil || s.syncing {
		return
	}
	s.syncing = true
	defer func() { s.syncing = false }()
	s.coord.SetSelection(s.Points())
}

func (s *Selection) receive(points []coordinator.Point) {
	if s.syncing {
		return
	}
	s.syncing = true
	defer func() { s.syncing = false }()

	s.cells, s.anchor, s.hasAnchor = s.cellsFor(points)
	for _, fn := range s.observers {
		fn()
	}
}

// cellsFor maps points to their current cells; the anchor is the first
// mapped point.
func (s *Selection) cellsFor(points []coordinator.Point) (map[CellPosition]struct{}, CellPosition, bool) {
	cells := make(map[CellPosition]struct{}, len(points))
	var anchor CellPosition
	hasAnchor := false
	for _, pt := range points {
		col := s.grid.ColumnForCurve(pt.Curve)
		if col < 0 || !pt.Curve.InRange(pt.Index) {
			continue
		}
		p := Cell(pt.Index, col)
		cells[p] = struct{}{}
		if !hasAnchor {
			anchor, hasAnchor = p, true
		}
	}
	return cells, anchor, hasAnchor
}

// Resync rebuilds the curve cells from the attached coordinator after the
// grid's curve list changed, so a selected point keeps its curve when the
// columns shift. Axis cells are kept while they are inside the grid.
// Observers are notified only when the cells move. Without a coordinator
// Resync only prunes.
func (s *Selection) Resync() {
	if s.coord == nil {
		s.Prune()
		return
	}
	cells, anchor, hasAnchor := s.cellsFor(s.coord.Selection())
	for p := range s.cells {
		if p.Column < FirstCurveColumn && s.grid.Contains(p.Row, p.Column) {
			cells[p] = struct{}{}
		}
	}
	if _, ok := cells[s.anchor]; ok && s.hasAnchor {
		anchor, hasAnchor = s.anchor, true
	} else if !hasAnchor && len(cells) > 0 {
		anchor, hasAnchor = slices.MinFunc(slices.Collect(maps.Keys(cells)), CellPosition.Compare), true
	}
	if maps.Equal(cells, s.cells) && hasAnchor == s.hasAnchor && (!hasAnchor || anchor == s.anchor) {
		return
	}
	s.cells, s.anchor, s.hasAnchor = cells, anchor, hasAnchor
	for _, fn := range s.observers {
		fn()
	}
}
