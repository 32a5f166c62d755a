// Package scanner looks for implausible torque points in motor curves.
package scanner

import (
	"fmt"
	"math"

	"github.com/pterm/pterm"
	"gonum.org/v1/gonum/stat"

	"github.com/tosih/motor-curve-tool/pkg/models"
)

// Kinds of finding.
const (
	KindNegative = "negative"
	KindAboveMax = "above rated peak"
	KindSpike    = "spike"
)

// SpikeSigma is how many standard deviations a step between neighbouring
// points must exceed to count as a spike.
const SpikeSigma = 4.0

// Finding is one suspicious point.
type Finding struct {
	Drive   string
	Voltage float64
	Curve   *models.Curve
	Index   int
	Kind    string
	Detail  string
}

// ScanMotor scans every curve of every voltage of m.
func ScanMotor(m *models.Motor) []Finding {
	var out []Finding
	for _, d := range m.Drives {
		for _, v := range d.Voltages {
			for _, f := range ScanVoltage(v, m.RatedPeakTorque) {
				f.Drive = d.Name
				out = append(out, f)
			}
		}
	}
	return out
}

// ScanVoltage scans the curves of v. ratedPeak of zero disables the upper
// bound check.
func ScanVoltage(v *models.Voltage, ratedPeak float64) []Finding {
	var out []Finding
	for _, c := range v.Curves {
		for _, f := range scanCurve(c, ratedPeak) {
			f.Voltage = v.Value
			out = append(out, f)
		}
	}
	return out
}

func scanCurve(c *models.Curve, ratedPeak float64) []Finding {
	var out []Finding
	add := func(i int, kind, detail string) {
		out = append(out, Finding{Curve: c, Index: i, Kind: kind, Detail: detail})
	}
	for i, p := range c.Points {
		if p.Torque < 0 {
			add(i, KindNegative, fmt.Sprintf("%.2f Nm", p.Torque))
		} else if ratedPeak > 0 && p.Torque > ratedPeak {
			add(i, KindAboveMax, fmt.Sprintf("%.2f > %.2f Nm", p.Torque, ratedPeak))
		}
	}

	// A spike is a point whose steps to both neighbours are large and of
	// opposite sign.
	if len(c.Points) < 4 {
		return out
	}
	steps := make([]float64, len(c.Points)-1)
	for i := range steps {
		steps[i] = c.Points[i+1].Torque - c.Points[i].Torque
	}
	mean, std := stat.MeanStdDev(steps, nil)
	if std == 0 {
		return out
	}
	limit := SpikeSigma * std
	for i := 1; i < len(c.Points)-1; i++ {
		in, outStep := steps[i-1]-mean, steps[i]-mean
		if math.Abs(in) > limit && math.Abs(outStep) > limit && math.Signbit(in) != math.Signbit(outStep) {
			add(i, KindSpike, fmt.Sprintf("step %+.2f then %+.2f Nm", steps[i-1], steps[i]))
		}
	}
	return out
}

// DisplayFindings prints findings as a table
func DisplayFindings(findings []Finding) {
	if len(findings) == 0 {
		pterm.Success.Println("No suspicious points found")
		return
	}

	tableData := pterm.TableData{
		{"Drive", "Voltage", "Curve", "Point", "RPM", "Kind", "Detail"},
	}
	for _, f := range findings {
		p := f.Curve.Points[f.Index]
		tableData = append(tableData, []string{
			f.Drive,
			fmt.Sprintf("%gV", f.Voltage),
			f.Curve.Name,
			fmt.Sprintf("%d%%", p.Percent),
			fmt.Sprintf("%.0f", p.RPM),
			f.Kind,
			f.Detail,
		})
	}

	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
	pterm.Warning.Printf("Found %d suspicious point(s)\n", len(findings))
}
