// Package editor holds the editing session of a motor file and its
// interactive terminal front end.
package editor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/tosih/motor-curve-tool/pkg/coordinator"
	"github.com/tosih/motor-curve-tool/pkg/grid"
	"github.com/tosih/motor-curve-tool/pkg/models"
	"github.com/tosih/motor-curve-tool/pkg/renderer"
	"github.com/tosih/motor-curve-tool/pkg/scanner"
)

var errNoOriginal = errors.New("nothing to back up")

// CreateBackup creates a timestamped backup of the file
func CreateBackup(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return "", errNoOriginal
	}
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405")
	backupName := filename + ".backup_" + timestamp
	if err := os.WriteFile(backupName, data, 0644); err != nil {
		return "", err
	}
	return backupName, nil
}

const (
	optShowGrid    = "Show Grid"
	optShowChart   = "Show Chart"
	optVoltage     = "Select Voltage"
	optSelectCells = "Select Cells"
	optSelectAll   = "Select All"
	optScan        = "Select Suspicious Points"
	optSetValue    = "Set Selection Value"
	optScale       = "Scale Selection"
	optClear       = "Clear Selection Values"
	optCopy        = "Copy Selection"
	optPaste       = "Paste"
	optRename      = "Rename Curve"
	optLock        = "Lock/Unlock Curve"
	optAddCurve    = "Add Curve"
	optRemoveCurve = "Remove Curve"
	optProperty    = "Edit Property"
	optUndo        = "Undo"
	optRedo        = "Redo"
	optHistory     = "History"
	optSave        = "Save"
	optExit        = "Exit"
)

// Interactive runs the menu loop over s until the user exits.
func Interactive(s *Session, chartHeight int) {
	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgDarkGray)).
		WithTextStyle(pterm.NewStyle(pterm.FgLightWhite)).
		Println("Motor Curve Editor - " + s.Path)

	chart := renderer.NewChartView(s.Grid, s.Coordinator, chartHeight)
	defer chart.Close()

	options := []string{
		optShowGrid, optShowChart, optVoltage, optSelectCells, optSelectAll, optScan,
		optSetValue, optScale, optClear, optCopy, optPaste,
		optRename, optLock, optAddCurve, optRemoveCurve, optProperty,
		optUndo, optRedo, optHistory, optSave, optExit,
	}

	for {
		title := fmt.Sprintf("%s | %d cell(s) selected", s.status(), s.Selection.Len())
		selected, err := pterm.DefaultInteractiveSelect.
			WithOptions(options).
			WithMaxHeight(12).
			Show(title)
		if err != nil {
			pterm.Error.Printf("Menu failed: %v\n", err)
			return
		}
		if selected == optExit {
			if s.Dirty() {
				ok, _ := pterm.DefaultInteractiveConfirm.Show("Discard unsaved changes?")
				if !ok {
					continue
				}
			}
			pterm.Info.Println("Exiting edit mode.")
			return
		}
		if selected == optShowChart {
			pterm.DefaultBox.WithTitle("Torque").WithTitleTopLeft().Println(chart.Render())
			continue
		}
		if err := s.runOption(selected); err != nil {
			pterm.Error.Println(err)
		}
	}
}

func (s *Session) status() string {
	v := s.Voltage()
	if v == nil {
		return "no voltage"
	}
	text := fmt.Sprintf("%s %gV", s.drive.Name, v.Value)
	if s.Dirty() {
		text += " (modified)"
	}
	return text
}

func (s *Session) runOption(option string) error {
	switch option {
	case optShowGrid:
		renderer.RenderGrid(s.Grid, s.Selection, renderer.Options{Mode: renderer.ModeValues, Every: 10})
	case optVoltage:
		return s.promptVoltage()
	case optSelectCells:
		return s.promptSelectCells()
	case optSelectAll:
		s.Selection.SelectAll()
	case optScan:
		if s.Voltage() == nil {
			return ErrNoVoltage
		}
		findings := scanner.ScanVoltage(s.Voltage(), s.Motor.RatedPeakTorque)
		scanner.DisplayFindings(findings)
		points := make([]coordinator.Point, len(findings))
		for i, f := range findings {
			points[i] = coordinator.Point{Curve: f.Curve, Index: f.Index}
		}
		s.SelectPoints(points)
	case optSetValue:
		value, err := promptFloat("Enter torque value")
		if err != nil {
			return err
		}
		return report(s.ApplyValue(value))
	case optScale:
		factor, err := promptFloat("Enter multiplier (e.g., 1.1 for +10%, 0.9 for -10%)")
		if err != nil {
			return err
		}
		if factor < 0 || factor > 10 {
			return fmt.Errorf("multiplier out of range (0-10): %g", factor)
		}
		return report(s.ScaleSelection(factor))
	case optClear:
		return report(s.ClearSelectionValues())
	case optCopy:
		text, err := s.CopyToSystem()
		if err != nil {
			return err
		}
		pterm.Success.Printf("Copied %d line(s)\n", strings.Count(text, "\n")+1)
	case optPaste:
		return report(s.PasteFromSystem())
	case optRename:
		c, err := s.promptCurve()
		if err != nil {
			return err
		}
		name, _ := pterm.DefaultInteractiveTextInput.WithDefaultValue(c.Name).Show("New name")
		return s.RenameCurve(c, strings.TrimSpace(name))
	case optLock:
		c, err := s.promptCurve()
		if err != nil {
			return err
		}
		if err := s.SetCurveLocked(c, !c.Locked); err != nil {
			return err
		}
		pterm.Success.Printf("%s locked: %v\n", c.Name, c.Locked)
	case optAddCurve:
		name, _ := pterm.DefaultInteractiveTextInput.Show("Curve name")
		c, err := s.AddCurve(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		pterm.Success.Printf("Added %s with %d points\n", c.Name, len(c.Points))
	case optRemoveCurve:
		c, err := s.promptCurve()
		if err != nil {
			return err
		}
		ok, _ := pterm.DefaultInteractiveConfirm.Show(fmt.Sprintf("Remove %s?", c.Name))
		if ok {
			return s.RemoveCurve(c)
		}
	case optProperty:
		return s.promptProperty()
	case optUndo:
		if s.Stack == nil || !s.Stack.CanUndo() {
			pterm.Info.Println("Nothing to undo")
			return nil
		}
		pterm.Info.Printf("Undo: %s\n", s.Stack.NextUndo())
		return s.Undo()
	case optRedo:
		if s.Stack == nil || !s.Stack.CanRedo() {
			pterm.Info.Println("Nothing to redo")
			return nil
		}
		pterm.Info.Printf("Redo: %s\n", s.Stack.NextRedo())
		return s.Redo()
	case optHistory:
		var history []string
		if s.Stack != nil {
			history = s.Stack.History()
		}
		if len(history) == 0 {
			pterm.Info.Println("No edits yet")
			return nil
		}
		items := make([]pterm.BulletListItem, 0, len(history))
		for _, h := range history {
			items = append(items, pterm.BulletListItem{Level: 0, Text: h})
		}
		pterm.DefaultBulletList.WithItems(items).Render()
	case optSave:
		return s.Save()
	}
	return nil
}

func report(changed bool, err error) error {
	if err != nil {
		return err
	}
	if changed {
		pterm.Success.Println("Cells updated")
	} else {
		pterm.Info.Println("No cells changed")
	}
	return nil
}

func promptFloat(prompt string) (float64, error) {
	text, _ := pterm.DefaultInteractiveTextInput.Show(prompt)
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", text)
	}
	return v, nil
}

func (s *Session) promptVoltage() error {
	var labels []string
	var index [][2]int
	for d, drive := range s.Motor.Drives {
		for i, v := range drive.Voltages {
			labels = append(labels, fmt.Sprintf("%s / %gV", drive.Name, v.Value))
			index = append(index, [2]int{d, i})
		}
	}
	if len(labels) == 0 {
		return ErrNoVoltage
	}
	choice, _ := pterm.DefaultInteractiveSelect.WithOptions(labels).Show("Select voltage:")
	for i, l := range labels {
		if l == choice {
			return s.SelectVoltage(index[i][0], index[i][1])
		}
	}
	return nil
}

// promptSelectCells reads a rectangle as "row,col row,col".
func (s *Session) promptSelectCells() error {
	text, _ := pterm.DefaultInteractiveTextInput.Show(
		fmt.Sprintf("Enter corners as row,col row,col (rows 0-%d, columns 0-%d)", s.Grid.RowCount()-1, s.Grid.ColumnCount()-1))
	fields := strings.Fields(text)
	if len(fields) == 1 {
		fields = append(fields, fields[0])
	}
	if len(fields) != 2 {
		return fmt.Errorf("expected two corners, got %q", text)
	}
	var corners [2]grid.CellPosition
	for i, f := range fields {
		if _, err := fmt.Sscanf(f, "%d,%d", &corners[i].Row, &corners[i].Column); err != nil {
			return fmt.Errorf("invalid corner %q", f)
		}
		if !s.Grid.Contains(corners[i].Row, corners[i].Column) {
			return fmt.Errorf("corner %v outside the grid", corners[i])
		}
	}
	s.Selection.SelectRectangularRange(corners[0], corners[1])
	return nil
}

func (s *Session) promptCurve() (*models.Curve, error) {
	v := s.Voltage()
	if v == nil {
		return nil, ErrNoVoltage
	}
	if len(v.Curves) == 0 {
		return nil, errors.New("voltage has no curves")
	}
	names := make([]string, len(v.Curves))
	for i, c := range v.Curves {
		names[i] = c.Name
	}
	choice, _ := pterm.DefaultInteractiveSelect.WithOptions(names).Show("Select curve:")
	if c := v.CurveByName(choice); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("unknown curve %q", choice)
}

func (s *Session) promptProperty() error {
	names := make([]string, len(models.Fields))
	for i, info := range models.Fields {
		names[i] = info.Name
	}
	choice, _ := pterm.DefaultInteractiveSelect.WithOptions(names).WithMaxHeight(10).Show("Select property:")
	for _, info := range models.Fields {
		if info.Name != choice {
			continue
		}
		prompt := info.Name
		if info.Unit != "" {
			prompt += " (" + info.Unit + ")"
		}
		text, _ := pterm.DefaultInteractiveTextInput.Show(prompt)
		v, err := models.ParseValue(info.Field, strings.TrimSpace(text))
		if err != nil {
			return err
		}
		return s.SetProperty(info.Field, v)
	}
	return nil
}
