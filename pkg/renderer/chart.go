package renderer

import (
	"fmt"
	"math"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tosih/motor-curve-tool/pkg/coordinator"
	"github.com/tosih/motor-curve-tool/pkg/grid"
	"github.com/tosih/motor-curve-tool/pkg/models"
)

var curveColors = []pterm.Color{pterm.FgGreen, pterm.FgCyan, pterm.FgYellow, pterm.FgMagenta, pterm.FgBlue}

// ChartView draws the curves of a grid's voltage as a text plot and follows
// the shared point selection.
type ChartView struct {
	grid   *grid.Grid
	coord  *coordinator.Coordinator
	cancel func()

	// Height is the number of plot rows.
	Height int

	highlighted map[coordinator.Point]bool
}

// NewChartView subscribes a chart to coord.
func NewChartView(g *grid.Grid, coord *coordinator.Coordinator, height int) *ChartView {
	v := &ChartView{grid: g, coord: coord, Height: max(height, 2), highlighted: map[coordinator.Point]bool{}}
	v.cancel = coord.Subscribe(v.receive)
	v.receive(coord.Selection())
	return v
}

// Close stops following the selection.
func (v *ChartView) Close() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

func (v *ChartView) receive(points []coordinator.Point) {
	clear(v.highlighted)
	for _, p := range points {
		v.highlighted[p] = true
	}
}

// Highlighted reports whether the chart marks point index of curve.
func (v *ChartView) Highlighted(curve *models.Curve, index int) bool {
	return v.highlighted[coordinator.Point{Curve: curve, Index: index}]
}

// Click selects a point the way a chart click does: additive toggles the
// point, otherwise it replaces the selection.
func (v *ChartView) Click(curve *models.Curve, index int, additive bool) {
	p := coordinator.Point{Curve: curve, Index: index}
	if additive {
		v.coord.ToggleSelection(p)
		return
	}
	v.coord.SetSelection([]coordinator.Point{p})
}

// Render plots every visible curve, one text column per point. Highlighted
// points are drawn as ● in red.
func (v *ChartView) Render() string {
	volt := v.grid.Voltage()
	if volt == nil || volt.PointCount() == 0 {
		return ""
	}
	lo, hi := TorqueRange(volt)
	width := volt.PointCount()

	cells := make([][]string, v.Height)
	for row := range cells {
		cells[row] = make([]string, width)
		for col := range cells[row] {
			cells[row][col] = " "
		}
	}

	for k, c := range volt.Curves {
		if !c.Visible {
			continue
		}
		color := curveColors[k%len(curveColors)]
		for i, p := range c.Points {
			row := v.rowFor(p.Torque, lo, hi)
			if v.Highlighted(c, i) {
				cells[row][i] = pterm.FgRed.Sprint("●")
			} else if cells[row][i] == " " {
				cells[row][i] = color.Sprint("•")
			}
		}
	}

	var out strings.Builder
	for row := range cells {
		label := "        "
		switch row {
		case 0:
			label = fmt.Sprintf("%8.2f", hi)
		case v.Height - 1:
			label = fmt.Sprintf("%8.2f", lo)
		}
		out.WriteString(label + " ┤" + strings.Join(cells[row], "") + "\n")
	}
	out.WriteString(strings.Repeat(" ", 9) + "└" + strings.Repeat("─", width) + "\n")

	var legend []string
	for k, c := range volt.Curves {
		if c.Visible {
			legend = append(legend, curveColors[k%len(curveColors)].Sprint("• "+c.Name))
		}
	}
	out.WriteString(strings.Repeat(" ", 10) + strings.Join(legend, "  "))
	return out.String()
}

// rowFor maps a torque onto a plot row, 0 being the top.
func (v *ChartView) rowFor(torque, lo, hi float64) int {
	if hi == lo {
		return v.Height - 1
	}
	n := (torque - lo) / (hi - lo)
	return v.Height - 1 - int(math.Round(n*float64(v.Height-1)))
}
