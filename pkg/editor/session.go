package editor

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/tosih/motor-curve-tool/pkg/clipboard"
	"github.com/tosih/motor-curve-tool/pkg/commands"
	"github.com/tosih/motor-curve-tool/pkg/coordinator"
	"github.com/tosih/motor-curve-tool/pkg/export"
	"github.com/tosih/motor-curve-tool/pkg/grid"
	"github.com/tosih/motor-curve-tool/pkg/models"
	"github.com/tosih/motor-curve-tool/pkg/undo"
)

var (
	ErrNoVoltage      = errors.New("no voltage selected")
	ErrNoSelection    = errors.New("no cells selected")
	ErrPasteDoesntFit = errors.New("clipboard block does not fit the grid at that position")
)

// Options configures a Session.
type Options struct {
	// Epsilon overrides grid.DefaultEpsilon when positive.
	Epsilon float64
	// Backup writes a timestamped copy of the file before each save.
	Backup bool
	// Headless writes edits directly without undo history.
	Headless bool
	// Logger receives debug traces of every edit. Defaults to
	// pterm.DefaultLogger.
	Logger *pterm.Logger
	// Clipboard overrides the platform clipboard.
	Clipboard *clipboard.System
}

// Session is one open motor file with its editing state: the active
// voltage's grid, the cell selection, the shared logical selection and the
// undo history.
//
// A Session performs no locking. Callers serialise access.
type Session struct {
	Motor *models.Motor
	Path  string

	Grid        *grid.Grid
	Selection   *grid.Selection
	Coordinator *coordinator.Coordinator
	// Stack is nil for headless sessions.
	Stack *undo.Stack

	drive      *models.Drive
	checkpoint undo.Checkpoint
	directDirt bool
	opts       Options
	log        *pterm.Logger
	clip       *clipboard.System

	dataObservers []func()
}

// NewSession opens m for editing and activates its first voltage.
func NewSession(m *models.Motor, path string, opts Options) *Session {
	s := &Session{
		Motor:       m,
		Path:        path,
		Grid:        grid.New(nil),
		Coordinator: coordinator.New(),
		opts:        opts,
		log:         opts.Logger,
		clip:        opts.Clipboard,
	}
	if s.log == nil {
		s.log = &pterm.DefaultLogger
	}
	if s.clip == nil {
		s.clip = clipboard.NewSystem()
	}
	if opts.Epsilon > 0 {
		s.Grid.Epsilon = opts.Epsilon
	}
	s.Selection = grid.NewSelection(s.Grid)
	s.Selection.Attach(s.Coordinator)
	if !opts.Headless {
		s.Stack = undo.NewStack()
		s.checkpoint.Mark(s.Stack)
	}
	if len(m.Drives) > 0 && len(m.Drives[0].Voltages) > 0 {
		s.SelectVoltage(0, 0)
	}
	return s
}

// OnDataChanged registers fn to run after every change to curve data.
func (s *Session) OnDataChanged(fn func()) {
	s.dataObservers = append(s.dataObservers, fn)
}

// OnSelectionChanged registers fn to run after every selection change.
func (s *Session) OnSelectionChanged(fn func()) {
	s.Selection.OnChange(fn)
}

// OnStackChanged registers fn to run after every undo history change.
func (s *Session) OnStackChanged(fn func()) {
	if s.Stack != nil {
		s.Stack.OnChange(fn)
	}
}

// Drive returns the active drive.
func (s *Session) Drive() *models.Drive { return s.drive }

// Voltage returns the active voltage.
func (s *Session) Voltage() *models.Voltage { return s.Grid.Voltage() }

// SelectVoltage activates a voltage by drive and voltage index and clears the
// selection.
func (s *Session) SelectVoltage(driveIdx, voltageIdx int) error {
	if driveIdx < 0 || driveIdx >= len(s.Motor.Drives) {
		return fmt.Errorf("drive %d of %d: %w", driveIdx, len(s.Motor.Drives), ErrNoVoltage)
	}
	d := s.Motor.Drives[driveIdx]
	if voltageIdx < 0 || voltageIdx >= len(d.Voltages) {
		return fmt.Errorf("voltage %d of %d: %w", voltageIdx, len(d.Voltages), ErrNoVoltage)
	}
	s.drive = d
	s.Grid.SetVoltage(d.Voltages[voltageIdx])
	s.Selection.ClearSelection()
	s.Coordinator.ClearSelection()
	s.log.Debug("voltage selected", s.log.Args("drive", d.Name, "voltage", d.Voltages[voltageIdx].Value))
	return nil
}

// SelectPoints replaces the shared selection. The grid selection follows
// through the coordinator.
func (s *Session) SelectPoints(points []coordinator.Point) {
	s.Coordinator.SetSelection(points)
}

// Dirty reports unsaved changes.
func (s *Session) Dirty() bool {
	if s.Stack == nil {
		return s.directDirt
	}
	return s.checkpoint.Dirty(s.Stack)
}

// dataChanged drops logical points whose curve left the grid, then rebuilds
// the cells from the remaining points since curve columns may have shifted.
func (s *Session) dataChanged() {
	s.Coordinator.Prune(func(p coordinator.Point) bool {
		return s.Grid.ColumnForCurve(p.Curve) >= 0 && p.Curve.InRange(p.Index)
	})
	s.Selection.Resync()
	for _, fn := range s.dataObservers {
		fn()
	}
}

// execute runs cmd through the undo history, or directly when headless.
func (s *Session) execute(cmd undo.Command) error {
	var err error
	if s.Stack == nil {
		err = cmd.Execute()
		if err == nil {
			s.directDirt = true
		}
	} else {
		err = s.checkpoint.Push(s.Stack, cmd)
	}
	if err != nil {
		s.log.Warn("edit failed", s.log.Args("edit", cmd.Describe(), "error", err))
		return err
	}
	s.log.Debug("edit applied", s.log.Args("edit", cmd.Describe()))
	s.dataChanged()
	return nil
}

func (s *Session) writer(label string) clipboard.Writer {
	if s.Stack == nil {
		return &clipboard.DirectWriter{}
	}
	return clipboard.NewUndoWriterFunc(func(cmd undo.Command) error {
		return s.checkpoint.Push(s.Stack, cmd)
	}, label)
}

func (s *Session) finishWrite(w clipboard.Writer, label string, err error) (bool, error) {
	if err != nil {
		s.log.Warn("edit failed", s.log.Args("edit", label, "error", err))
		return false, err
	}
	if !w.Changed() {
		return false, nil
	}
	if s.Stack == nil {
		s.directDirt = true
	}
	s.log.Debug("edit applied", s.log.Args("edit", label))
	s.dataChanged()
	return true, nil
}

func (s *Session) override(label string, cells []grid.CellPosition, value func(float64) float64) (bool, error) {
	if s.Voltage() == nil {
		return false, ErrNoVoltage
	}
	if len(cells) == 0 {
		return false, ErrNoSelection
	}
	cmd := commands.BuildOverride(s.Grid, label, cells, value)
	if cmd == nil {
		return false, nil
	}
	if err := s.execute(cmd); err != nil {
		return false, err
	}
	return true, nil
}

// SetCell writes one torque cell. It reports false when the gating rule
// refuses the write.
func (s *Session) SetCell(r, c int, value float64) (bool, error) {
	curve := s.Grid.CurveForColumn(c)
	p, ok := s.Grid.Percent(r)
	if curve == nil || !ok {
		return false, nil
	}
	label := fmt.Sprintf("Set %s at %d%% to %.2f", curve.Name, p, value)
	return s.override(label, []grid.CellPosition{grid.Cell(r, c)}, commands.Constant(value))
}

// ApplyValue writes value into every selected cell as one undo step.
func (s *Session) ApplyValue(value float64) (bool, error) {
	return s.override(fmt.Sprintf("Set selection to %.2f", value), s.Selection.Cells(), commands.Constant(value))
}

// ScaleSelection multiplies every selected torque by factor as one undo step.
func (s *Session) ScaleSelection(factor float64) (bool, error) {
	return s.override(fmt.Sprintf("Scale selection by %.3f", factor), s.Selection.Cells(), commands.Scale(factor))
}

// ClearSelectionValues sets every selected torque to zero.
func (s *Session) ClearSelectionValues() (bool, error) {
	return s.override("Clear selection", s.Selection.Cells(), commands.Constant(0))
}

// DragPoint moves one point's torque, as a chart drag does. The rpm is kept.
func (s *Session) DragPoint(curve *models.Curve, index int, torque float64) error {
	if s.Grid.ColumnForCurve(curve) < 0 {
		return fmt.Errorf("%q: %w", curve.Name, commands.ErrCurveDetached)
	}
	if curve.Locked {
		return nil
	}
	if !curve.InRange(index) {
		return fmt.Errorf("%s[%d]: %w", curve.Name, index, commands.ErrIndexOutOfRange)
	}
	return s.execute(commands.NewPointEdit(curve, index, curve.Points[index].RPM, torque))
}

// Copy serialises the selection.
func (s *Session) Copy() string {
	return clipboard.Serialize(s.Grid, s.Selection.Cells())
}

// Paste applies text to the selection: a single number fills every selected
// cell, a block lands on the selection's top-left cell.
func (s *Session) Paste(text string) (bool, error) {
	if s.Voltage() == nil {
		return false, ErrNoVoltage
	}
	cells := s.Selection.Cells()
	if len(cells) == 0 {
		return false, ErrNoSelection
	}
	w := s.writer("Paste")
	fits, err := clipboard.ApplyToSelection(s.Grid, w, cells, text)
	if err == nil && !fits {
		return false, ErrPasteDoesntFit
	}
	return s.finishWrite(w, "Paste", err)
}

// PasteAt applies text as a block whose first field lands on topLeft.
func (s *Session) PasteAt(topLeft grid.CellPosition, text string) (bool, error) {
	if s.Voltage() == nil {
		return false, ErrNoVoltage
	}
	w := s.writer("Paste")
	fits, err := clipboard.ApplyAtTopLeft(s.Grid, w, topLeft, text)
	if err == nil && !fits {
		return false, ErrPasteDoesntFit
	}
	return s.finishWrite(w, "Paste", err)
}

// CopyToSystem places the serialised selection on the platform clipboard.
func (s *Session) CopyToSystem() (string, error) {
	text := s.Copy()
	if text == "" {
		return "", ErrNoSelection
	}
	return text, s.clip.Copy(text)
}

// PasteFromSystem pastes the platform clipboard onto the selection.
func (s *Session) PasteFromSystem() (bool, error) {
	text, err := s.clip.Paste()
	if err != nil {
		return false, err
	}
	return s.Paste(text)
}

// Undo reverts the last edit.
func (s *Session) Undo() error {
	if s.Stack == nil || !s.Stack.CanUndo() {
		return nil
	}
	label := s.Stack.NextUndo()
	if err := s.Stack.Undo(); err != nil {
		return fmt.Errorf("undo %s: %w", label, err)
	}
	s.log.Debug("undo", s.log.Args("edit", label))
	s.dataChanged()
	return nil
}

// Redo re-applies the last undone edit.
func (s *Session) Redo() error {
	if s.Stack == nil || !s.Stack.CanRedo() {
		return nil
	}
	label := s.Stack.NextRedo()
	if err := s.Stack.Redo(); err != nil {
		return fmt.Errorf("redo %s: %w", label, err)
	}
	s.log.Debug("redo", s.log.Args("edit", label))
	s.dataChanged()
	return nil
}

// RenameCurve renames a curve of the active voltage.
func (s *Session) RenameCurve(c *models.Curve, name string) error {
	if s.Voltage() == nil {
		return ErrNoVoltage
	}
	return s.execute(commands.Rename(s.Voltage(), c, name))
}

// SetCurveLocked locks or unlocks a curve of the active voltage.
func (s *Session) SetCurveLocked(c *models.Curve, locked bool) error {
	if s.Voltage() == nil {
		return ErrNoVoltage
	}
	if c.Locked == locked {
		return nil
	}
	return s.execute(commands.Lock(s.Voltage(), c, locked))
}

// AddCurve appends a curve to the active voltage.
func (s *Session) AddCurve(name string) (*models.Curve, error) {
	if s.Voltage() == nil {
		return nil, ErrNoVoltage
	}
	cmd := commands.NewAddCurve(s.Voltage(), name)
	if err := s.execute(cmd); err != nil {
		return nil, err
	}
	return cmd.Curve(), nil
}

// RemoveCurve deletes a curve from the active voltage.
func (s *Session) RemoveCurve(c *models.Curve) error {
	if s.Voltage() == nil {
		return ErrNoVoltage
	}
	return s.execute(commands.NewRemoveCurve(s.Voltage(), c))
}

// SetProperty changes a scalar field of the motor, active drive or active
// voltage, chosen by the field.
func (s *Session) SetProperty(f models.Field, v models.Value) error {
	var holder models.PropertyHolder = s.Motor
	switch {
	case f >= models.VoltageValue:
		if s.Voltage() == nil {
			return ErrNoVoltage
		}
		holder = s.Voltage()
	case f >= models.DriveName:
		if s.drive == nil {
			return ErrNoVoltage
		}
		holder = s.drive
	}
	if cur, err := holder.Property(f); err == nil && cur == v {
		return nil
	}
	return s.execute(commands.NewProperty(holder, f, v))
}

// Save writes the motor back to Path.
func (s *Session) Save() error {
	return s.SaveAs(s.Path)
}

// SaveAs writes the motor to path, making it the session's file.
func (s *Session) SaveAs(path string) error {
	if s.opts.Backup && path == s.Path {
		if backup, err := CreateBackup(path); err == nil {
			s.log.Info("backup created", s.log.Args("path", backup))
		} else if !errors.Is(err, errNoOriginal) {
			return fmt.Errorf("backup: %w", err)
		}
	}
	if err := export.WriteMotor(path, s.Motor); err != nil {
		return err
	}
	s.Path = path
	if s.Stack != nil {
		s.checkpoint.Mark(s.Stack)
	}
	s.directDirt = false
	s.log.Info("motor saved", s.log.Args("path", path))
	return nil
}
