package reader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tosih/motor-curve-tool/pkg/models"
)

const motorJSON = `{
  "motorName": "M-100",
  "maxSpeed": 5000,
  "drives": [{
    "name": "D1",
    "voltages": [{
      "voltage": 208,
      "maxSpeed": 5000,
      "series": [
        {"name": "Peak", "locked": false, "data": [{"percent": 0, "rpm": 0, "torque": 10}, {"percent": 100, "rpm": 5000, "torque": 4}]},
        {"name": "Continuous", "locked": true, "data": [{"percent": 0, "rpm": 0, "torque": 6}, {"percent": 100, "rpm": 5000, "torque": 2}]}
      ]
    }]
  }]
}`

func TestReadMotorJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	os.WriteFile(path, []byte(motorJSON), 0644)

	m, err := ReadMotor(path)
	if err != nil {
		t.Fatal(err)
	}
	v := m.Drives[0].Voltages[0]
	if len(v.Curves) != 2 || !v.Curves[1].Locked || v.Curves[0].Points[1].Torque != 4 {
		t.Errorf("unexpected voltage %+v", v)
	}
	if !v.Curves[0].Visible {
		t.Error("curves should load visible")
	}
}

func TestReadMotorYAML(t *testing.T) {
	data := `
motorName: M-200
drives:
  - name: D1
    voltages:
      - voltage: 48
        series:
          - name: Peak
            data:
              - {percent: 0, rpm: 0, torque: 1.5}
`
	m, err := Decode([]byte(data), YAML)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Drives[0].Voltages[0].Curves[0].Points[0].Torque; got != 1.5 {
		t.Errorf("torque = %v", got)
	}
}

func TestDecodeRejectsMisalignedAxis(t *testing.T) {
	data := `{"drives": [{"name": "D", "voltages": [{"series": [
		{"name": "A", "data": [{"percent": 0, "rpm": 0}]},
		{"name": "B", "data": [{"percent": 5, "rpm": 0}]}
	]}]}]}`
	_, err := Decode([]byte(data), JSON)
	if !errors.Is(err, models.ErrAxisMismatch) {
		t.Errorf("got %v, want ErrAxisMismatch", err)
	}
}

func TestFormatOf(t *testing.T) {
	if f, err := FormatOf("x.YML"); err != nil || f != YAML {
		t.Errorf("FormatOf(x.YML) = %v, %v", f, err)
	}
	if _, err := FormatOf("x.bin"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("got %v, want ErrUnknownFormat", err)
	}
}
