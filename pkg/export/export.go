package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/tosih/motor-curve-tool/pkg/models"
	"github.com/tosih/motor-curve-tool/pkg/reader"
)

// Encode serialises a motor in the given format.
func Encode(m *models.Motor, format reader.Format) ([]byte, error) {
	if format == reader.YAML {
		return yaml.Marshal(m)
	}
	return json.MarshalIndent(m, "", "  ")
}

// WriteMotor saves a motor, picking the format from the extension. The file
// is written to a temporary name first and renamed into place.
func WriteMotor(filename string, m *models.Motor) error {
	format, err := reader.FormatOf(filename)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid motor: %w", err)
	}
	data, err := Encode(m, format)
	if err != nil {
		return err
	}
	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filename)
}

// ExportVoltagesToCSV writes one CSV file per voltage of every drive.
func ExportVoltagesToCSV(m *models.Motor, exportPath string) error {
	if err := os.MkdirAll(exportPath, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	spinner, _ := pterm.DefaultSpinner.Start("Exporting curves to CSV...")
	count := 0
	for _, d := range m.Drives {
		for _, v := range d.Voltages {
			name := fmt.Sprintf("%s_%gv.csv", strings.ReplaceAll(strings.ToLower(d.Name), " ", "_"), v.Value)
			if err := VoltageToCSVFile(v, filepath.Join(exportPath, name)); err != nil {
				spinner.Warning(fmt.Sprintf("Failed to export %s %gV: %v", d.Name, v.Value, err))
				continue
			}
			count++
		}
	}
	spinner.Success(fmt.Sprintf("%d voltage(s) exported to %s", count, exportPath))
	return nil
}

// VoltageToCSVFile writes one voltage's grid to filename.
func VoltageToCSVFile(v *models.Voltage, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := VoltageToCSV(v, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// VoltageToCSV writes the percent/rpm axis and every curve's torque as CSV
// with a header row.
func VoltageToCSV(v *models.Voltage, w io.Writer) error {
	writer := csv.NewWriter(w)

	header := []string{"Percent", "RPM"}
	for _, c := range v.Curves {
		header = append(header, c.Name)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i, p := range v.Axis() {
		row := []string{strconv.Itoa(p.Percent), strconv.FormatFloat(p.RPM, 'f', 0, 64)}
		for _, c := range v.Curves {
			cell := ""
			if c.InRange(i) {
				cell = strconv.FormatFloat(c.Points[i].Torque, 'f', 2, 64)
			}
			row = append(row, cell)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
