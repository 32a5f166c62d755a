// Package grid projects one voltage's curves onto a row/column table and
// tracks the cell selection over it.
//
// Column 0 is the percent axis and column 1 the rpm axis; both are read only.
// Column 2+i is the torque of curve i. Row r is point index r.
package grid

import (
	"fmt"
	"math"
	"strconv"

	"github.com/tosih/motor-curve-tool/pkg/models"
)

const (
	PercentColumn = 0
	RPMColumn     = 1
	// FirstCurveColumn is the column of the first curve.
	FirstCurveColumn = 2
)

// DefaultEpsilon is the smallest torque change that counts as an edit.
const DefaultEpsilon = 1e-6

// CellPosition addresses one grid cell.
type CellPosition struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Cell is shorthand for CellPosition{r, c}.
func Cell(r, c int) CellPosition { return CellPosition{Row: r, Column: c} }

// Less orders cells row-major.
func (p CellPosition) Less(o CellPosition) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Column < o.Column
}

// Compare is Less as a three-way comparison for slices.SortFunc.
func (p CellPosition) Compare(o CellPosition) int {
	switch {
	case p.Less(o):
		return -1
	case o.Less(p):
		return 1
	}
	return 0
}

func (p CellPosition) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Column)
}

// Grid is a read-through view of a voltage. It holds no copies of curve data,
// so row and column counts always reflect the voltage's current shape.
type Grid struct {
	voltage *models.Voltage
	// Epsilon is the tolerance used by CanWrite to suppress no-op writes.
	Epsilon float64
}

// New returns a grid over v. v may be nil.
func New(v *models.Voltage) *Grid {
	return &Grid{voltage: v, Epsilon: DefaultEpsilon}
}

// Voltage returns the projected voltage, possibly nil.
func (g *Grid) Voltage() *models.Voltage { return g.voltage }

// SetVoltage switches the projected voltage.
func (g *Grid) SetVoltage(v *models.Voltage) { g.voltage = v }

// RowCount is the number of points on the voltage's axis.
func (g *Grid) RowCount() int {
	if g.voltage == nil {
		return 0
	}
	return g.voltage.PointCount()
}

// ColumnCount is 2 plus the number of curves, or 0 without a voltage.
func (g *Grid) ColumnCount() int {
	if g.voltage == nil {
		return 0
	}
	return FirstCurveColumn + len(g.voltage.Curves)
}

// Contains reports whether (r, c) lies inside the grid.
func (g *Grid) Contains(r, c int) bool {
	return r >= 0 && r < g.RowCount() && c >= 0 && c < g.ColumnCount()
}

// CurveForColumn maps a column to its curve, or nil for axis and unknown
// columns.
func (g *Grid) CurveForColumn(c int) *models.Curve {
	if g.voltage == nil {
		return nil
	}
	i := c - FirstCurveColumn
	if i < 0 || i >= len(g.voltage.Curves) {
		return nil
	}
	return g.voltage.Curves[i]
}

// ColumnForCurve maps a curve to its current column, or -1.
func (g *Grid) ColumnForCurve(curve *models.Curve) int {
	if g.voltage == nil {
		return -1
	}
	i := g.voltage.IndexOf(curve)
	if i < 0 {
		return -1
	}
	return FirstCurveColumn + i
}

// Percent returns the percent of row r.
func (g *Grid) Percent(r int) (int, bool) {
	axis := g.axis()
	if r < 0 || r >= len(axis) {
		return 0, false
	}
	return axis[r].Percent, true
}

// RPM returns the rpm of row r.
func (g *Grid) RPM(r int) (float64, bool) {
	axis := g.axis()
	if r < 0 || r >= len(axis) {
		return 0, false
	}
	return axis[r].RPM, true
}

func (g *Grid) axis() []models.DataPoint {
	if g.voltage == nil {
		return nil
	}
	return g.voltage.Axis()
}

// Torque returns the torque at (r, c) for curve columns.
func (g *Grid) Torque(r, c int) (float64, bool) {
	curve := g.CurveForColumn(c)
	if curve == nil || r >= g.RowCount() || !curve.InRange(r) {
		return 0, false
	}
	return curve.Points[r].Torque, true
}

// Value returns the numeric content of any cell.
func (g *Grid) Value(r, c int) (float64, bool) {
	switch c {
	case PercentColumn:
		p, ok := g.Percent(r)
		return float64(p), ok
	case RPMColumn:
		return g.RPM(r)
	}
	return g.Torque(r, c)
}

// Text formats a cell the way it is copied: percent as an integer, rpm
// rounded, torque with two decimals. Missing cells are "".
func (g *Grid) Text(r, c int) string {
	switch c {
	case PercentColumn:
		if p, ok := g.Percent(r); ok {
			return strconv.Itoa(p)
		}
	case RPMColumn:
		if rpm, ok := g.RPM(r); ok {
			return strconv.FormatFloat(math.Round(rpm), 'f', 0, 64)
		}
	default:
		if t, ok := g.Torque(r, c); ok {
			return strconv.FormatFloat(t, 'f', 2, 64)
		}
	}
	return ""
}

// ReadOnly reports whether column c can never be written: the axis columns,
// unmapped columns and locked curves.
func (g *Grid) ReadOnly(c int) bool {
	curve := g.CurveForColumn(c)
	return curve == nil || curve.Locked
}

// CanWrite applies the cell-write gating rule: the cell is a torque cell of an
// unlocked curve inside the grid and value differs from the current torque by
// more than Epsilon.
func (g *Grid) CanWrite(r, c int, value float64) bool {
	if r < 0 || r >= g.RowCount() || c < FirstCurveColumn {
		return false
	}
	curve := g.CurveForColumn(c)
	if curve == nil || curve.Locked || !curve.InRange(r) {
		return false
	}
	return math.Abs(curve.Points[r].Torque-value) > g.Epsilon
}

// SetTorque writes value directly when CanWrite allows it and reports
// whether a write happened.
func (g *Grid) SetTorque(r, c int, value float64) bool {
	if !g.CanWrite(r, c, value) {
		return false
	}
	g.CurveForColumn(c).Points[r].Torque = value
	return true
}

// Header returns the column titles.
func (g *Grid) Header() []string {
	out := make([]string, g.ColumnCount())
	if len(out) == 0 {
		return out
	}
	out[PercentColumn] = "%"
	out[RPMColumn] = "RPM"
	for i, curve := range g.voltage.Curves {
		out[FirstCurveColumn+i] = curve.Name
	}
	return out
}
