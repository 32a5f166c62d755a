package commands

import (
	"fmt"

	"github.com/tosih/motor-curve-tool/pkg/grid"
	"github.com/tosih/motor-curve-tool/pkg/models"
)

// Target is one torque write of an Override.
type Target struct {
	Curve *models.Curve
	Index int
	Old   float64
	New   float64
}

// Override writes many torque values as a single undo step. Targets whose
// index has gone out of range are skipped in both directions.
type Override struct {
	label   string
	targets []Target
}

// NewOverride groups targets under label. Callers filter locked curves and
// no-op writes before building the command.
func NewOverride(label string, targets []Target) *Override {
	return &Override{label: label, targets: targets}
}

// Targets returns the writes carried by the command.
func (c *Override) Targets() []Target { return c.targets }

func (c *Override) Execute() error {
	for _, t := range c.targets {
		if t.Curve.InRange(t.Index) {
			t.Curve.Points[t.Index].Torque = t.New
		}
	}
	return nil
}

func (c *Override) Undo() error {
	for i := len(c.targets) - 1; i >= 0; i-- {
		t := c.targets[i]
		if t.Curve.InRange(t.Index) {
			t.Curve.Points[t.Index].Torque = t.Old
		}
	}
	return nil
}

func (c *Override) Describe() string {
	if c.label != "" {
		return c.label
	}
	return fmt.Sprintf("Set %d cells", len(c.targets))
}

// BuildOverride collects the writable cells of cells whose value would change
// under value(r, c) and returns nil when none survive. The value function
// receives the current torque and returns the new one.
func BuildOverride(g *grid.Grid, label string, cells []grid.CellPosition, value func(old float64) float64) *Override {
	var targets []Target
	seen := make(map[grid.CellPosition]bool)
	for _, cell := range cells {
		if seen[cell] {
			continue
		}
		seen[cell] = true
		old, ok := g.Torque(cell.Row, cell.Column)
		if !ok {
			continue
		}
		next := value(old)
		if !g.CanWrite(cell.Row, cell.Column, next) {
			continue
		}
		targets = append(targets, Target{
			Curve: g.CurveForColumn(cell.Column),
			Index: cell.Row,
			Old:   old,
			New:   next,
		})
	}
	if len(targets) == 0 {
		return nil
	}
	return NewOverride(label, targets)
}

// Constant returns a value function that ignores the old value.
func Constant(v float64) func(float64) float64 {
	return func(float64) float64 { return v }
}

// Scale returns a value function multiplying the old value by factor.
func Scale(factor float64) func(float64) float64 {
	return func(old float64) float64 { return old * factor }
}
