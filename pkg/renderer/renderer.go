package renderer

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"gonum.org/v1/gonum/floats"

	"github.com/tosih/motor-curve-tool/pkg/grid"
	"github.com/tosih/motor-curve-tool/pkg/models"
)

// Display modes for torque cells.
const (
	ModeValues  = "values"
	ModeHeatmap = "heatmap"
	ModeSymbols = "symbols"
)

// Options controls grid rendering.
type Options struct {
	Mode string
	// Every prints only every n-th row, plus the last row and selected rows.
	Every int
}

var (
	selectedStyle = pterm.NewStyle(pterm.BgLightBlue, pterm.FgBlack)
	lockedStyle   = pterm.NewStyle(pterm.FgGray)
	axisStyle     = pterm.NewStyle(pterm.FgLightWhite)
)

// TorqueRange returns the smallest and largest torque over every curve of v.
func TorqueRange(v *models.Voltage) (lo, hi float64) {
	var all []float64
	for _, c := range v.Curves {
		for _, p := range c.Points {
			all = append(all, p.Torque)
		}
	}
	if len(all) == 0 {
		return 0, 0
	}
	return floats.Min(all), floats.Max(all)
}

// RenderGrid prints the active voltage as a boxed table.
func RenderGrid(g *grid.Grid, sel *grid.Selection, opts Options) {
	v := g.Voltage()
	if v == nil {
		pterm.Warning.Println("No voltage selected")
		return
	}
	lo, hi := TorqueRange(v)
	title := fmt.Sprintf("%gV | %d rows | %d curve(s) | Torque %.2f-%.2f", v.Value, g.RowCount(), len(v.Curves), lo, hi)
	pterm.DefaultBox.WithTitle(title).WithTitleTopLeft().Println(BuildGridString(g, sel, opts))
}

// BuildGridString formats the grid. Selected cells are highlighted and
// locked curves are greyed out.
func BuildGridString(g *grid.Grid, sel *grid.Selection, opts Options) string {
	var result strings.Builder
	v := g.Voltage()
	if v == nil {
		return ""
	}
	lo, hi := TorqueRange(v)
	every := max(opts.Every, 1)

	header := g.Header()
	result.WriteString(axisStyle.Sprintf("%5s %7s |", header[grid.PercentColumn], header[grid.RPMColumn]))
	for c := grid.FirstCurveColumn; c < len(header); c++ {
		name := header[c]
		if g.ReadOnly(c) {
			name += "*"
		}
		result.WriteString(fmt.Sprintf(" %12s", truncate(name, 12)))
	}
	result.WriteString("\n")
	result.WriteString(strings.Repeat("-", 15) + "|" + strings.Repeat("-", 13*(len(header)-grid.FirstCurveColumn)) + "\n")

	for r := 0; r < g.RowCount(); r++ {
		if r%every != 0 && r != g.RowCount()-1 && !rowSelected(sel, g, r) {
			continue
		}
		result.WriteString(cell(sel, r, grid.PercentColumn, fmt.Sprintf("%5s", g.Text(r, grid.PercentColumn)), nil))
		result.WriteString(" ")
		result.WriteString(cell(sel, r, grid.RPMColumn, fmt.Sprintf("%7s", g.Text(r, grid.RPMColumn)), nil))
		result.WriteString(" |")
		for c := grid.FirstCurveColumn; c < g.ColumnCount(); c++ {
			result.WriteString(" ")
			text := fmt.Sprintf("%12s", g.Text(r, c))
			value, _ := g.Torque(r, c)
			var style *pterm.Style
			switch {
			case g.ReadOnly(c):
				style = lockedStyle
			case opts.Mode == ModeHeatmap:
				text = "    " + heatmapBlock(value, lo, hi) + "      "
			case opts.Mode == ModeSymbols:
				sym := symbolFor(value, lo, hi)
				text = "        " + strings.Repeat(sym, 4)
			default:
				style = colorStyle(value, lo, hi)
			}
			result.WriteString(cell(sel, r, c, text, style))
		}
		result.WriteString("\n")
	}

	switch opts.Mode {
	case ModeHeatmap:
		result.WriteString("\n" + heatmapLegend())
	case ModeSymbols:
		result.WriteString("\nLegend: ")
		result.WriteString(pterm.FgCyan.Sprint("░") + " Low  ")
		result.WriteString(pterm.FgGreen.Sprint("▒") + " Med  ")
		result.WriteString(pterm.FgYellow.Sprint("▓") + " High  ")
		result.WriteString(pterm.FgRed.Sprint("█") + " Max")
	}
	if len(v.Curves) > 0 {
		result.WriteString("\n* locked")
	}
	return result.String()
}

func cell(sel *grid.Selection, r, c int, text string, style *pterm.Style) string {
	if sel != nil && sel.Contains(r, c) {
		return selectedStyle.Sprint(text)
	}
	if style != nil {
		return style.Sprint(text)
	}
	return text
}

func rowSelected(sel *grid.Selection, g *grid.Grid, r int) bool {
	if sel == nil {
		return false
	}
	for c := 0; c < g.ColumnCount(); c++ {
		if sel.Contains(r, c) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

func normalize(value, lo, hi float64) (float64, bool) {
	if hi == lo {
		return 0, false
	}
	return (value - lo) / (hi - lo), true
}

func heatmapBlock(value, lo, hi float64) string {
	n, ok := normalize(value, lo, hi)
	if !ok {
		return pterm.BgGray.Sprint("  ")
	}
	switch {
	case n < 0.2:
		return pterm.NewStyle(pterm.BgBlue, pterm.FgWhite).Sprint("▄▄")
	case n < 0.4:
		return pterm.NewStyle(pterm.BgCyan, pterm.FgBlack).Sprint("▄▄")
	case n < 0.6:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgBlack).Sprint("▄▄")
	case n < 0.8:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack).Sprint("▄▄")
	default:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Sprint("▄▄")
	}
}

func heatmapLegend() string {
	var result strings.Builder
	result.WriteString("Heatmap: ")
	result.WriteString(pterm.NewStyle(pterm.BgBlue, pterm.FgWhite).Sprint("▄▄") + " Very Low  ")
	result.WriteString(pterm.NewStyle(pterm.BgCyan, pterm.FgBlack).Sprint("▄▄") + " Low  ")
	result.WriteString(pterm.NewStyle(pterm.BgGreen, pterm.FgBlack).Sprint("▄▄") + " Medium  ")
	result.WriteString(pterm.NewStyle(pterm.BgYellow, pterm.FgBlack).Sprint("▄▄") + " High  ")
	result.WriteString(pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Sprint("▄▄") + " Very High")
	return result.String()
}

func symbolFor(value, lo, hi float64) string {
	n, ok := normalize(value, lo, hi)
	if !ok {
		return pterm.FgGray.Sprint("·")
	}
	switch {
	case n < 0.25:
		return pterm.FgCyan.Sprint("░")
	case n < 0.5:
		return pterm.FgGreen.Sprint("▒")
	case n < 0.75:
		return pterm.FgYellow.Sprint("▓")
	default:
		return pterm.FgRed.Sprint("█")
	}
}

func colorStyle(value, lo, hi float64) *pterm.Style {
	n, ok := normalize(value, lo, hi)
	if !ok {
		return pterm.NewStyle(pterm.FgGray)
	}
	switch {
	case n < 0.25:
		return pterm.NewStyle(pterm.FgCyan)
	case n < 0.5:
		return pterm.NewStyle(pterm.FgGreen)
	case n < 0.75:
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgRed)
	}
}

// ListVoltages prints every drive/voltage pair of m in a table.
func ListVoltages(m *models.Motor) {
	pterm.DefaultHeader.WithFullWidth().Println(fmt.Sprintf("%s %s", m.Manufacturer, m.Name))

	data := [][]string{
		{"#", "Drive", "Voltage", "Max Speed", "Peak Torque", "Curves", "Points"},
	}
	for d, drive := range m.Drives {
		for i, v := range drive.Voltages {
			names := make([]string, 0, len(v.Curves))
			for _, c := range v.Curves {
				names = append(names, c.Name)
			}
			data = append(data, []string{
				fmt.Sprintf("%d.%d", d, i),
				drive.Name,
				fmt.Sprintf("%gV", v.Value),
				fmt.Sprintf("%g", v.MaxSpeed),
				fmt.Sprintf("%.2f", v.PeakTorque),
				strings.Join(names, ", "),
				fmt.Sprintf("%d", v.PointCount()),
			})
		}
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// ShowProperties prints the scalar fields that belong to h.
func ShowProperties(h models.PropertyHolder) {
	data := [][]string{{"Field", "Value"}}
	for _, info := range models.Fields {
		v, err := h.Property(info.Field)
		if err != nil {
			continue
		}
		data = append(data, []string{info.Name, v.Format(info.Field)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
