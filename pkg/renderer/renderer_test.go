package renderer

import (
	"strings"
	"testing"

	"github.com/pterm/pterm"

	"github.com/tosih/motor-curve-tool/pkg/coordinator"
	"github.com/tosih/motor-curve-tool/pkg/grid"
	"github.com/tosih/motor-curve-tool/pkg/models"
)

func init() {
	pterm.DisableStyling()
}

func testVoltage() *models.Voltage {
	v := &models.Voltage{Value: 48, MaxSpeed: 1000}
	axis := models.NewVoltageAxis(v.MaxSpeed, 11)
	for k, name := range []string{"Peak", "Continuous"} {
		c := models.NewCurve(name, axis)
		for r := range c.Points {
			c.Points[r].Torque = float64(k*10 + r)
		}
		v.Curves = append(v.Curves, c)
	}
	return v
}

func TestTorqueRange(t *testing.T) {
	lo, hi := TorqueRange(testVoltage())
	if lo != 0 || hi != 20 {
		t.Errorf("range = %v..%v, want 0..20", lo, hi)
	}
	lo, hi = TorqueRange(&models.Voltage{})
	if lo != 0 || hi != 0 {
		t.Errorf("empty range = %v..%v", lo, hi)
	}
}

func TestBuildGridString(t *testing.T) {
	v := testVoltage()
	v.Curves[1].Locked = true
	g := grid.New(v)
	out := BuildGridString(g, nil, Options{Mode: ModeValues, Every: 5})

	for _, want := range []string{"RPM", "Peak", "Continuous*", "1000", "20.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// header, separator, rows 0, 5 and 10, then the locked footnote
	if lines := strings.Count(out, "\n"); lines != 6 {
		t.Errorf("got %d newlines:\n%s", lines, out)
	}
	if BuildGridString(grid.New(nil), nil, Options{}) != "" {
		t.Error("nil voltage rendered")
	}
}

func TestBuildGridStringKeepsSelectedRows(t *testing.T) {
	g := grid.New(testVoltage())
	sel := grid.NewSelection(g)
	sel.SelectCell(3, 2)
	out := BuildGridString(g, sel, Options{Every: 5})
	if !strings.Contains(out, "3.00") {
		t.Errorf("selected row 3 skipped:\n%s", out)
	}
}

func TestChartViewFollowsCoordinator(t *testing.T) {
	v := testVoltage()
	g := grid.New(v)
	coord := coordinator.New()
	sel := grid.NewSelection(g)
	sel.Attach(coord)
	chart := NewChartView(g, coord, 5)
	defer chart.Close()

	sel.SelectCell(4, 3)
	if !chart.Highlighted(v.Curves[1], 4) {
		t.Error("grid selection not highlighted in chart")
	}

	chart.Click(v.Curves[0], 7, false)
	if !sel.Contains(7, 2) || sel.Contains(4, 3) {
		t.Errorf("chart click not mirrored in grid: %v", sel.Cells())
	}
	chart.Click(v.Curves[0], 8, true)
	if sel.Len() != 2 {
		t.Errorf("additive click: %v", sel.Cells())
	}

	out := chart.Render()
	if strings.Count(out, "●") != 2 {
		t.Errorf("want 2 highlighted points:\n%s", out)
	}
	if !strings.Contains(out, "20.00") || !strings.Contains(out, "Continuous") {
		t.Errorf("missing scale or legend:\n%s", out)
	}

	chart.Close()
	coord.ClearSelection()
	if !chart.Highlighted(v.Curves[0], 7) {
		t.Error("closed chart still following")
	}
}

func TestChartViewHiddenCurve(t *testing.T) {
	v := testVoltage()
	v.Curves[1].Visible = false
	chart := NewChartView(grid.New(v), coordinator.New(), 4)
	if strings.Contains(chart.Render(), "Continuous") {
		t.Error("hidden curve in legend")
	}
}
