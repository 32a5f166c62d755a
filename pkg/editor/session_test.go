package editor

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pterm/pterm"

	"github.com/tosih/motor-curve-tool/pkg/clipboard"
	"github.com/tosih/motor-curve-tool/pkg/commands"
	"github.com/tosih/motor-curve-tool/pkg/coordinator"
	"github.com/tosih/motor-curve-tool/pkg/grid"
	"github.com/tosih/motor-curve-tool/pkg/models"
	"github.com/tosih/motor-curve-tool/pkg/reader"
)

// testMotor has one drive with 48V and 24V, each holding "Peak" and a
// locked "Continuous" curve over 101 points. Torque of curve k at row r is
// k*100 + r.
func testMotor() *models.Motor {
	m := &models.Motor{Name: "M1", Manufacturer: "Acme", MaxSpeed: 5000}
	d := &models.Drive{Name: "D1"}
	for _, volts := range []float64{48, 24} {
		v := &models.Voltage{Value: volts, MaxSpeed: 100 * volts}
		axis := models.NewVoltageAxis(v.MaxSpeed, models.MaxPoints)
		for k, name := range []string{"Peak", "Continuous"} {
			c := models.NewCurve(name, axis)
			for r := range c.Points {
				c.Points[r].Torque = float64(k*100 + r)
			}
			v.Curves = append(v.Curves, c)
		}
		v.Curves[1].Locked = true
		d.Voltages = append(d.Voltages, v)
	}
	m.Drives = []*models.Drive{d}
	return m
}

type fakeClipboard struct{ text string }

func (f *fakeClipboard) system() *clipboard.System {
	return &clipboard.System{
		Read:  func() (string, error) { return f.text, nil },
		Write: func(s string) error { f.text = s; return nil },
	}
}

func newTestSession(t *testing.T, opts Options) (*Session, *fakeClipboard) {
	t.Helper()
	clip := &fakeClipboard{}
	opts.Clipboard = clip.system()
	opts.Logger = pterm.DefaultLogger.WithWriter(io.Discard)
	return NewSession(testMotor(), filepath.Join(t.TempDir(), "motor.json"), opts), clip
}

func torques(c *models.Curve) []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.Torque
	}
	return out
}

func TestNewSessionActivatesFirstVoltage(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	if s.Voltage() == nil || s.Voltage().Value != 48 {
		t.Fatalf("active voltage = %+v", s.Voltage())
	}
	if s.Grid.RowCount() != 101 || s.Grid.ColumnCount() != 4 {
		t.Errorf("grid %dx%d", s.Grid.RowCount(), s.Grid.ColumnCount())
	}
	if s.Dirty() {
		t.Error("fresh session dirty")
	}
	if s.Grid.Epsilon != grid.DefaultEpsilon {
		t.Errorf("epsilon = %v", s.Grid.Epsilon)
	}
}

func TestSelectVoltage(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	s.Selection.SelectCell(3, 2)
	if err := s.SelectVoltage(0, 1); err != nil {
		t.Fatal(err)
	}
	if s.Voltage().Value != 24 || s.Selection.Len() != 0 || s.Coordinator.Len() != 0 {
		t.Errorf("voltage=%v selection=%d coordinator=%d", s.Voltage().Value, s.Selection.Len(), s.Coordinator.Len())
	}
	for _, idx := range [][2]int{{1, 0}, {0, 2}, {-1, 0}} {
		if err := s.SelectVoltage(idx[0], idx[1]); !errors.Is(err, ErrNoVoltage) {
			t.Errorf("SelectVoltage(%v) = %v", idx, err)
		}
	}
}

func TestApplyValueUndoRedo(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	peak, cont := s.Voltage().Curves[0], s.Voltage().Curves[1]
	before := torques(peak)

	s.Selection.SelectRectangularRange(grid.Cell(0, 2), grid.Cell(2, 3))
	changed, err := s.ApplyValue(7.5)
	if !changed || err != nil {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
	for r := 0; r <= 2; r++ {
		if peak.Points[r].Torque != 7.5 {
			t.Errorf("Peak[%d] = %v", r, peak.Points[r].Torque)
		}
		if cont.Points[r].Torque != float64(100+r) {
			t.Errorf("locked Continuous[%d] written", r)
		}
	}
	if s.Stack.UndoDepth() != 1 || !s.Dirty() {
		t.Errorf("depth=%d dirty=%v", s.Stack.UndoDepth(), s.Dirty())
	}

	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, torques(peak)); diff != "" {
		t.Errorf("undo (-want +got):\n%s", diff)
	}
	if s.Dirty() {
		t.Error("dirty after undoing back to the saved state")
	}

	if err := s.Redo(); err != nil {
		t.Fatal(err)
	}
	if peak.Points[1].Torque != 7.5 {
		t.Error("redo did not re-apply")
	}
}

func TestApplyValueWithoutSelection(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	if _, err := s.ApplyValue(1); !errors.Is(err, ErrNoSelection) {
		t.Errorf("got %v, want ErrNoSelection", err)
	}
}

func TestApplyValueSameValueIsNoOp(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	s.Selection.SelectCell(4, 2)
	changed, err := s.ApplyValue(4)
	if changed || err != nil || s.Stack.UndoDepth() != 0 {
		t.Errorf("changed=%v err=%v depth=%d", changed, err, s.Stack.UndoDepth())
	}
}

func TestScaleAndClear(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	peak := s.Voltage().Curves[0]
	s.Selection.SelectRectangularRange(grid.Cell(10, 2), grid.Cell(11, 2))
	if _, err := s.ScaleSelection(2); err != nil {
		t.Fatal(err)
	}
	if peak.Points[10].Torque != 20 || peak.Points[11].Torque != 22 {
		t.Errorf("scaled = %v, %v", peak.Points[10].Torque, peak.Points[11].Torque)
	}
	if _, err := s.ClearSelectionValues(); err != nil {
		t.Fatal(err)
	}
	if peak.Points[10].Torque != 0 {
		t.Error("clear left a value")
	}
	if got := s.Stack.History(); len(got) != 2 {
		t.Errorf("history = %v", got)
	}
}

func TestSetCell(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	changed, err := s.SetCell(5, 2, 42)
	if !changed || err != nil {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
	if s.Stack.NextUndo() != "Set Peak at 5% to 42.00" {
		t.Errorf("label = %q", s.Stack.NextUndo())
	}
	for _, c := range []grid.CellPosition{grid.Cell(5, 0), grid.Cell(5, 1), grid.Cell(5, 3), grid.Cell(101, 2), grid.Cell(0, 9)} {
		if changed, _ := s.SetCell(c.Row, c.Column, 1); changed {
			t.Errorf("SetCell(%v) wrote", c)
		}
	}
}

func TestPasteScalarBroadcast(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	s.Selection.SelectRectangularRange(grid.Cell(0, 2), grid.Cell(100, 3))
	changed, err := s.Paste("7.5\n")
	if !changed || err != nil {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
	for _, p := range s.Voltage().Curves[0].Points {
		if p.Torque != 7.5 {
			t.Fatalf("Peak %d%% = %v", p.Percent, p.Torque)
		}
	}
	if s.Voltage().Curves[1].Points[50].Torque != 150 {
		t.Error("locked curve written")
	}
	if s.Stack.UndoDepth() != 1 {
		t.Errorf("broadcast took %d undo steps", s.Stack.UndoDepth())
	}
	s.Undo()
	if s.Voltage().Curves[0].Points[50].Torque != 50 {
		t.Error("single undo did not restore all cells")
	}
}

func TestPasteBlockRejectedWhenItDoesNotFit(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	before := torques(s.Voltage().Curves[0])
	if _, err := s.PasteAt(grid.Cell(100, 3), "1.11\t2.22\n3.33\t4.44"); !errors.Is(err, ErrPasteDoesntFit) {
		t.Errorf("got %v, want ErrPasteDoesntFit", err)
	}
	s.Selection.SelectCell(100, 2)
	if _, err := s.Paste("1\t2\n3\t4"); !errors.Is(err, ErrPasteDoesntFit) {
		t.Errorf("got %v, want ErrPasteDoesntFit", err)
	}
	if diff := cmp.Diff(before, torques(s.Voltage().Curves[0])); diff != "" {
		t.Errorf("rejected paste wrote (-want +got):\n%s", diff)
	}
	if s.Stack.UndoDepth() != 0 {
		t.Error("rejected paste pushed a command")
	}
}

func TestCopyPasteThroughSystemClipboard(t *testing.T) {
	s, clip := newTestSession(t, Options{})
	s.Voltage().Curves[1].Locked = false
	s.Selection.SelectRectangularRange(grid.Cell(1, 2), grid.Cell(2, 3))
	text, err := s.CopyToSystem()
	if err != nil {
		t.Fatal(err)
	}
	if want := "1.00\t101.00\n2.00\t102.00"; text != want || clip.text != want {
		t.Errorf("copied %q, clipboard %q", text, clip.text)
	}

	s.Selection.SelectCell(50, 2)
	changed, err := s.PasteFromSystem()
	if !changed || err != nil {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
	peak, cont := s.Voltage().Curves[0], s.Voltage().Curves[1]
	got := []float64{peak.Points[50].Torque, cont.Points[50].Torque, peak.Points[51].Torque, cont.Points[51].Torque}
	if diff := cmp.Diff([]float64{1, 101, 2, 102}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	s.Selection.ClearSelection()
	if _, err := s.CopyToSystem(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("empty copy: %v", err)
	}
}

func TestCurveLifecycle(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	boost, err := s.AddCurve("Boost")
	if err != nil {
		t.Fatal(err)
	}
	if s.Grid.ColumnCount() != 5 || len(boost.Points) != 101 {
		t.Fatalf("columns=%d points=%d", s.Grid.ColumnCount(), len(boost.Points))
	}
	if _, err := s.AddCurve("Boost"); !errors.Is(err, models.ErrDuplicateName) {
		t.Errorf("duplicate add: %v", err)
	}

	s.Selection.SelectCell(10, 4)
	if err := s.RemoveCurve(boost); err != nil {
		t.Fatal(err)
	}
	if s.Selection.Len() != 0 || s.Coordinator.Len() != 0 {
		t.Errorf("selection not pruned: %v", s.Selection.Cells())
	}

	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if s.Grid.CurveForColumn(4) != boost {
		t.Error("undo did not restore the same curve")
	}
}

func TestSelectionFollowsCurveWhenColumnsShift(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	peak, cont := s.Voltage().Curves[0], s.Voltage().Curves[1]
	cont.Locked = false

	if err := s.RemoveCurve(peak); err != nil {
		t.Fatal(err)
	}
	s.Selection.SelectCell(5, 2)
	if got := s.Grid.CurveForColumn(2); got != cont {
		t.Fatalf("column 2 holds %v after remove", got)
	}

	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]grid.CellPosition{grid.Cell(5, 3)}, s.Selection.Cells()); diff != "" {
		t.Errorf("cells after undo (-want +got):\n%s", diff)
	}
	want := []coordinator.Point{{Curve: cont, Index: 5}}
	if diff := cmp.Diff(want, s.Coordinator.Selection()); diff != "" {
		t.Errorf("points after undo (-want +got):\n%s", diff)
	}

	if _, err := s.ApplyValue(999); err != nil {
		t.Fatal(err)
	}
	if peak.Points[5].Torque != 5 || cont.Points[5].Torque != 999 {
		t.Errorf("Peak[5]=%v Continuous[5]=%v", peak.Points[5].Torque, cont.Points[5].Torque)
	}

	if s.Stack.CanRedo() {
		t.Error("new edit kept the redo history")
	}
}

func TestRenameAndLock(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	peak := s.Voltage().Curves[0]
	if err := s.RenameCurve(peak, "Continuous"); !errors.Is(err, models.ErrDuplicateName) {
		t.Errorf("rename to existing name: %v", err)
	}
	if err := s.RenameCurve(peak, "Burst"); err != nil || peak.Name != "Burst" {
		t.Fatalf("rename: %v, name %q", err, peak.Name)
	}
	if err := s.SetCurveLocked(peak, true); err != nil || !peak.Locked {
		t.Fatalf("lock: %v", err)
	}
	if err := s.SetCurveLocked(peak, true); err != nil || s.Stack.UndoDepth() != 2 {
		t.Errorf("locking a locked curve pushed: depth %d", s.Stack.UndoDepth())
	}
	if changed, _ := s.SetCell(0, 2, 9); changed {
		t.Error("locked curve accepted a write")
	}
	s.Undo()
	s.Undo()
	if peak.Name != "Peak" || peak.Locked {
		t.Errorf("after undo: %+v", peak)
	}
}

func TestSetProperty(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	if err := s.SetProperty(models.VoltageMaxSpeed, models.NumberValue(6000)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetProperty(models.MotorName, models.TextValue("M2")); err != nil {
		t.Fatal(err)
	}
	if err := s.SetProperty(models.DriveName, models.TextValue("D2")); err != nil {
		t.Fatal(err)
	}
	if s.Voltage().MaxSpeed != 6000 || s.Motor.Name != "M2" || s.Drive().Name != "D2" {
		t.Errorf("properties not set: %v %q %q", s.Voltage().MaxSpeed, s.Motor.Name, s.Drive().Name)
	}
	if err := s.SetProperty(models.MotorName, models.NumberValue(1)); err == nil {
		t.Error("wrong kind accepted")
	}
	for s.Stack.CanUndo() {
		s.Undo()
	}
	if s.Voltage().MaxSpeed != 4800 || s.Motor.Name != "M1" || s.Drive().Name != "D1" {
		t.Error("undo did not restore properties")
	}
}

func TestDragPoint(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	peak, cont := s.Voltage().Curves[0], s.Voltage().Curves[1]
	rpm := peak.Points[20].RPM
	if err := s.DragPoint(peak, 20, 3); err != nil {
		t.Fatal(err)
	}
	if peak.Points[20].Torque != 3 || peak.Points[20].RPM != rpm {
		t.Errorf("point = %+v", peak.Points[20])
	}
	if err := s.DragPoint(cont, 20, 3); err != nil || cont.Points[20].Torque != 120 {
		t.Error("locked curve dragged")
	}
	if err := s.DragPoint(peak, 101, 3); !errors.Is(err, commands.ErrIndexOutOfRange) {
		t.Errorf("out of range: %v", err)
	}
	other := s.Motor.Drives[0].Voltages[1].Curves[0]
	if err := s.DragPoint(other, 0, 3); !errors.Is(err, commands.ErrCurveDetached) {
		t.Errorf("other voltage: %v", err)
	}
}

func TestSelectPointsDrivesGrid(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	peak := s.Voltage().Curves[0]
	other := s.Motor.Drives[0].Voltages[1].Curves[0]
	s.SelectPoints([]coordinator.Point{{Curve: peak, Index: 7}, {Curve: other, Index: 1}})
	if diff := cmp.Diff([]grid.CellPosition{grid.Cell(7, 2)}, s.Selection.Cells()); diff != "" {
		t.Errorf("grid selection (-want +got):\n%s", diff)
	}
	changed, err := s.ApplyValue(70)
	if !changed || err != nil || peak.Points[7].Torque != 70 {
		t.Errorf("changed=%v err=%v torque=%v", changed, err, peak.Points[7].Torque)
	}
}

func TestEvents(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	var data, selection, stack int
	s.OnDataChanged(func() { data++ })
	s.OnSelectionChanged(func() { selection++ })
	s.OnStackChanged(func() { stack++ })

	s.Selection.SelectCell(0, 2)
	s.ApplyValue(9)
	s.Undo()
	if data != 2 || selection != 1 || stack != 2 {
		t.Errorf("data=%d selection=%d stack=%d", data, selection, stack)
	}
}

func TestHeadless(t *testing.T) {
	s, _ := newTestSession(t, Options{Headless: true})
	if s.Stack != nil {
		t.Fatal("headless session has a stack")
	}
	s.Selection.SelectCell(0, 2)
	changed, err := s.Paste("3.5")
	if !changed || err != nil {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
	if s.Voltage().Curves[0].Points[0].Torque != 3.5 || !s.Dirty() {
		t.Error("direct write missing")
	}
	if err := s.Undo(); err != nil || s.Voltage().Curves[0].Points[0].Torque != 3.5 {
		t.Error("headless undo changed data")
	}
}

func TestSave(t *testing.T) {
	s, _ := newTestSession(t, Options{Backup: true})
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	s.Selection.SelectCell(0, 2)
	s.ApplyValue(12.5)
	if !s.Dirty() {
		t.Fatal("edit not dirty")
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Error("dirty after save")
	}

	m, err := reader.ReadMotor(s.Path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Drives[0].Voltages[0].Curves[0].Points[0].Torque != 12.5 {
		t.Error("saved file missing edit")
	}
	backups, _ := filepath.Glob(s.Path + ".backup_*")
	if len(backups) != 1 {
		t.Errorf("backups = %v", backups)
	}

	s.Undo()
	if !s.Dirty() {
		t.Error("undo past the save point not dirty")
	}
}

func TestCreateBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.json")
	if _, err := CreateBackup(path); !errors.Is(err, errNoOriginal) {
		t.Errorf("missing file: %v", err)
	}
	os.WriteFile(path, []byte("{}"), 0644)
	backup, err := CreateBackup(path)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(backup)
	if string(data) != "{}" {
		t.Errorf("backup content %q", data)
	}
}
