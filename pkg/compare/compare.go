package compare

import (
	"fmt"
	"math"
	"strings"

	"github.com/pterm/pterm"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tosih/motor-curve-tool/pkg/models"
	"github.com/tosih/motor-curve-tool/pkg/reader"
)

// CurveDiff is the torque difference of one curve present in both files.
type CurveDiff struct {
	Drive   string  `json:"drive"`
	Voltage float64 `json:"voltage"`
	Curve   string  `json:"curve"`
	// Diff is second minus first, per point.
	Diff []float64 `json:"diff"`

	Changed     int     `json:"changed"`
	MeanChange  float64 `json:"meanChange"`
	MaxIncrease float64 `json:"maxIncrease"`
	MaxDecrease float64 `json:"maxDecrease"`
}

// Missing names a drive, voltage or curve found in only one file.
type Missing struct {
	What string `json:"what"`
	// InFirst is true when only the first file has it.
	InFirst bool `json:"inFirst"`
}

// Result holds every difference between two motors.
type Result struct {
	Curves  []CurveDiff `json:"curves"`
	Missing []Missing   `json:"missing"`
	// Misaligned lists curves whose point counts differ.
	Misaligned []string `json:"misaligned"`
}

// Motors compares every drive, voltage and curve of a with b. Drives and
// curves match by name, voltages by value.
func Motors(a, b *models.Motor) Result {
	var res Result
	for _, da := range a.Drives {
		db := findDrive(b, da.Name)
		if db == nil {
			res.Missing = append(res.Missing, Missing{What: "drive " + da.Name, InFirst: true})
			continue
		}
		for _, va := range da.Voltages {
			vb := findVoltage(db, va.Value)
			if vb == nil {
				res.Missing = append(res.Missing, Missing{What: fmt.Sprintf("%s %gV", da.Name, va.Value), InFirst: true})
				continue
			}
			voltages(&res, da.Name, va, vb)
		}
		for _, vb := range db.Voltages {
			if findVoltage(da, vb.Value) == nil {
				res.Missing = append(res.Missing, Missing{What: fmt.Sprintf("%s %gV", db.Name, vb.Value)})
			}
		}
	}
	for _, db := range b.Drives {
		if findDrive(a, db.Name) == nil {
			res.Missing = append(res.Missing, Missing{What: "drive " + db.Name})
		}
	}
	return res
}

func voltages(res *Result, drive string, a, b *models.Voltage) {
	for _, ca := range a.Curves {
		label := fmt.Sprintf("%s %gV %s", drive, a.Value, ca.Name)
		cb := b.CurveByName(ca.Name)
		if cb == nil {
			res.Missing = append(res.Missing, Missing{What: label, InFirst: true})
			continue
		}
		d, ok := Curves(ca, cb)
		if !ok {
			res.Misaligned = append(res.Misaligned, label)
			continue
		}
		d.Drive, d.Voltage = drive, a.Value
		res.Curves = append(res.Curves, d)
	}
	for _, cb := range b.Curves {
		if a.CurveByName(cb.Name) == nil {
			res.Missing = append(res.Missing, Missing{What: fmt.Sprintf("%s %gV %s", drive, b.Value, cb.Name)})
		}
	}
}

// Curves diffs two curves point by point; ok is false when their lengths
// differ.
func Curves(a, b *models.Curve) (d CurveDiff, ok bool) {
	if len(a.Points) != len(b.Points) {
		return CurveDiff{}, false
	}
	d.Curve = a.Name
	first := torques(a)
	d.Diff = torques(b)
	floats.Sub(d.Diff, first)

	var changed []float64
	for _, v := range d.Diff {
		if v != 0 {
			changed = append(changed, v)
		}
	}
	d.Changed = len(changed)
	if d.Changed > 0 {
		d.MeanChange = stat.Mean(changed, nil)
		d.MaxIncrease = math.Max(floats.Max(changed), 0)
		d.MaxDecrease = math.Min(floats.Min(changed), 0)
	}
	return d, true
}

func torques(c *models.Curve) []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.Torque
	}
	return out
}

func findDrive(m *models.Motor, name string) *models.Drive {
	for _, d := range m.Drives {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func findVoltage(d *models.Drive, value float64) *models.Voltage {
	for _, v := range d.Voltages {
		if v.Value == value {
			return v
		}
	}
	return nil
}

// CompareFiles compares the curves of two motor files
func CompareFiles(file1, file2 string) error {
	pterm.DefaultHeader.WithFullWidth().Println("Motor Curve Comparison")

	a, err := reader.ReadMotor(file1)
	if err != nil {
		return fmt.Errorf("%s: %w", file1, err)
	}
	b, err := reader.ReadMotor(file2)
	if err != nil {
		return fmt.Errorf("%s: %w", file2, err)
	}

	res := Motors(a, b)
	for _, m := range res.Missing {
		if m.InFirst {
			pterm.Warning.Printf("Only in %s: %s\n", file1, m.What)
		} else {
			pterm.Warning.Printf("Only in %s: %s\n", file2, m.What)
		}
	}
	for _, label := range res.Misaligned {
		pterm.Warning.Printf("Point counts differ, skipped: %s\n", label)
	}
	for _, d := range res.Curves {
		pterm.Println()
		pterm.DefaultSection.Printf("Comparing: %s %gV %s\n", d.Drive, d.Voltage, d.Curve)
		displayComparison(d)
	}
	return nil
}

func displayComparison(d CurveDiff) {
	if d.Changed == 0 {
		pterm.Success.Println("Identical")
		return
	}
	pterm.Info.Printf("Changed points: %d / %d (%.1f%%)\n",
		d.Changed, len(d.Diff), float64(d.Changed)/float64(len(d.Diff))*100)
	pterm.Info.Printf("Average change: %.2f Nm\n", d.MeanChange)
	pterm.Info.Printf("Max increase: %.2f Nm\n", d.MaxIncrease)
	pterm.Info.Printf("Max decrease: %.2f Nm\n", d.MaxDecrease)

	pterm.Println("\nDifference (File2 - File1), 0% to 100%:")
	pterm.DefaultBox.Println(visualizeDifferences(d.Diff))
}

func visualizeDifferences(diff []float64) string {
	var result strings.Builder
	maxAbs := 0.0
	for _, v := range diff {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	for _, v := range diff {
		result.WriteString(diffSymbol(v, maxAbs))
	}

	result.WriteString("\n\nLegend: ")
	result.WriteString(pterm.FgBlue.Sprint("▼") + " Large Decrease  ")
	result.WriteString(pterm.FgCyan.Sprint("▽") + " Small Decrease  ")
	result.WriteString(pterm.FgGray.Sprint("·") + " No Change  ")
	result.WriteString(pterm.FgYellow.Sprint("△") + " Small Increase  ")
	result.WriteString(pterm.FgRed.Sprint("▲") + " Large Increase")
	return result.String()
}

func diffSymbol(val, maxAbs float64) string {
	if val == 0 || maxAbs == 0 {
		return pterm.FgGray.Sprint("·")
	}
	n := val / maxAbs
	switch {
	case n < -0.5:
		return pterm.FgBlue.Sprint("▼")
	case n < -0.1:
		return pterm.FgCyan.Sprint("▽")
	case n > 0.5:
		return pterm.FgRed.Sprint("▲")
	case n > 0.1:
		return pterm.FgYellow.Sprint("△")
	}
	return pterm.FgGray.Sprint("·")
}
