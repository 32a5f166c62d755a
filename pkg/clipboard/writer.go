package clipboard

import (
	"math"

	"github.com/tosih/motor-curve-tool/pkg/commands"
	"github.com/tosih/motor-curve-tool/pkg/grid"
	"github.com/tosih/motor-curve-tool/pkg/undo"
)

// Writer receives the torque writes of one paste.
type Writer interface {
	// SetTorque records a write; the grid's gating rule decides whether it
	// counts.
	SetTorque(g *grid.Grid, r, c int, value float64)
	// Flush completes the operation.
	Flush() error
	// Changed reports whether any write happened.
	Changed() bool
}

// DirectWriter mutates curves immediately, without undo history.
type DirectWriter struct {
	writes int
}

func (w *DirectWriter) SetTorque(g *grid.Grid, r, c int, value float64) {
	if g.SetTorque(r, c, value) {
		w.writes++
	}
}

func (w *DirectWriter) Flush() error  { return nil }
func (w *DirectWriter) Changed() bool { return w.writes > 0 }

// Writes is the number of cells changed.
func (w *DirectWriter) Writes() int { return w.writes }

// UndoWriter collects writes into one commands.Override pushed on Flush, so
// a whole paste is a single undo step.
type UndoWriter struct {
	push    func(undo.Command) error
	label   string
	targets []commands.Target
	index   map[grid.CellPosition]int
	epsilon float64
	pushed  bool
}

// NewUndoWriter pushes through s.
func NewUndoWriter(s *undo.Stack, label string) *UndoWriter {
	return NewUndoWriterFunc(s.PushAndExecute, label)
}

// NewUndoWriterFunc pushes through push, e.g. an undo.Checkpoint.
func NewUndoWriterFunc(push func(undo.Command) error, label string) *UndoWriter {
	return &UndoWriter{push: push, label: label, index: make(map[grid.CellPosition]int)}
}

func (w *UndoWriter) SetTorque(g *grid.Grid, r, c int, value float64) {
	p := grid.Cell(r, c)
	if i, ok := w.index[p]; ok {
		w.targets[i].New = value
		return
	}
	if !g.CanWrite(r, c, value) {
		return
	}
	w.epsilon = g.Epsilon
	old, _ := g.Torque(r, c)
	w.index[p] = len(w.targets)
	w.targets = append(w.targets, commands.Target{
		Curve: g.CurveForColumn(c),
		Index: r,
		Old:   old,
		New:   value,
	})
}

// Flush pushes the collected writes. Cells written back to their old value
// are dropped, and nothing is pushed when no cell changes.
func (w *UndoWriter) Flush() error {
	if w.pushed {
		return nil
	}
	var targets []commands.Target
	for _, t := range w.targets {
		if math.Abs(t.New-t.Old) > w.epsilon {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return nil
	}
	if err := w.push(commands.NewOverride(w.label, targets)); err != nil {
		return err
	}
	w.pushed = true
	return nil
}

func (w *UndoWriter) Changed() bool { return w.pushed }
