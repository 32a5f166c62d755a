package models

import (
	"errors"
	"fmt"
)

// MaxPoints is the largest number of points a curve may hold (0..100 %).
const MaxPoints = 101

var (
	ErrEmptyName     = errors.New("curve name is empty")
	ErrDuplicateName = errors.New("curve name already used in this voltage")
	ErrAxisMismatch  = errors.New("curves do not share the same percent/rpm axis")
)

// DataPoint is one sample of a torque curve. Identity is positional.
type DataPoint struct {
	Percent int     `json:"percent" yaml:"percent"`
	RPM     float64 `json:"rpm" yaml:"rpm"`
	Torque  float64 `json:"torque" yaml:"torque"`
}

// Curve is a named series of torque values over the voltage's axis.
type Curve struct {
	Name    string      `json:"name" yaml:"name"`
	Locked  bool        `json:"locked" yaml:"locked"`
	Visible bool        `json:"-" yaml:"-"`
	Points  []DataPoint `json:"data" yaml:"data"`
}

// NewCurve returns a visible, unlocked curve with a copy of the given axis.
func NewCurve(name string, axis []DataPoint) *Curve {
	points := make([]DataPoint, len(axis))
	for i, p := range axis {
		points[i] = DataPoint{Percent: p.Percent, RPM: p.RPM}
	}
	return &Curve{Name: name, Visible: true, Points: points}
}

// InRange reports whether index addresses an existing point.
func (c *Curve) InRange(index int) bool {
	return index >= 0 && index < len(c.Points)
}

// Voltage is one operating voltage of a drive. It exclusively owns its curves.
type Voltage struct {
	Value            float64  `json:"voltage" yaml:"voltage"`
	Power            float64  `json:"power" yaml:"power"`
	MaxSpeed         float64  `json:"maxSpeed" yaml:"maxSpeed"`
	PeakTorque       float64  `json:"ratedPeakTorque" yaml:"ratedPeakTorque"`
	ContinuousTorque float64  `json:"ratedContinuousTorque" yaml:"ratedContinuousTorque"`
	ContinuousAmps   float64  `json:"continuousAmperage" yaml:"continuousAmperage"`
	PeakAmps         float64  `json:"peakAmperage" yaml:"peakAmperage"`
	Curves           []*Curve `json:"series" yaml:"series"`
}

// Axis returns the shared percent/rpm axis, taken from the first curve.
func (v *Voltage) Axis() []DataPoint {
	if len(v.Curves) == 0 {
		return nil
	}
	return v.Curves[0].Points
}

// PointCount is the number of points on the shared axis.
func (v *Voltage) PointCount() int {
	return len(v.Axis())
}

// IndexOf returns the display position of c, or -1 if v does not own it.
func (v *Voltage) IndexOf(c *Curve) int {
	for i, curve := range v.Curves {
		if curve == c {
			return i
		}
	}
	return -1
}

// CurveByName looks up a curve by exact name.
func (v *Voltage) CurveByName(name string) *Curve {
	for _, c := range v.Curves {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// CheckName validates a prospective name for exclude (nil for a new curve).
func (v *Voltage) CheckName(name string, exclude *Curve) error {
	if name == "" {
		return ErrEmptyName
	}
	if other := v.CurveByName(name); other != nil && other != exclude {
		return fmt.Errorf("%q: %w", name, ErrDuplicateName)
	}
	return nil
}

// AddCurve appends an unlocked curve aligned with the existing axis. A voltage
// without curves gets the default 0..100 % axis up to MaxSpeed.
func (v *Voltage) AddCurve(name string) (*Curve, error) {
	if err := v.CheckName(name, nil); err != nil {
		return nil, err
	}
	axis := v.Axis()
	if axis == nil {
		axis = NewVoltageAxis(v.MaxSpeed, MaxPoints)
	}
	c := NewCurve(name, axis)
	v.Curves = append(v.Curves, c)
	return c, nil
}

// NewVoltageAxis builds an evenly spaced percent axis of n points with rpm
// proportional to maxSpeed.
func NewVoltageAxis(maxSpeed float64, n int) []DataPoint {
	if n <= 0 {
		return nil
	}
	if n > MaxPoints {
		n = MaxPoints
	}
	axis := make([]DataPoint, n)
	for i := range axis {
		pct := 0
		if n > 1 {
			pct = i * 100 / (n - 1)
		}
		axis[i] = DataPoint{Percent: pct, RPM: maxSpeed * float64(pct) / 100}
	}
	return axis
}

// Validate checks every structural rule of the voltage and reports all
// violations at once.
func (v *Voltage) Validate() error {
	var errs []error
	seen := make(map[string]bool)
	axis := v.Axis()
	if len(axis) > MaxPoints {
		errs = append(errs, fmt.Errorf("%d points exceeds maximum of %d", len(axis), MaxPoints))
	}
	for i, p := range axis {
		if p.Percent < 0 || p.RPM < 0 {
			errs = append(errs, fmt.Errorf("point %d: negative percent or rpm", i))
		}
		if i > 0 && p.Percent < axis[i-1].Percent {
			errs = append(errs, fmt.Errorf("point %d: percent %d decreases from %d", i, p.Percent, axis[i-1].Percent))
		}
	}
	for _, c := range v.Curves {
		if c.Name == "" {
			errs = append(errs, ErrEmptyName)
		} else if seen[c.Name] {
			errs = append(errs, fmt.Errorf("%q: %w", c.Name, ErrDuplicateName))
		}
		seen[c.Name] = true

		if len(c.Points) != len(axis) {
			errs = append(errs, fmt.Errorf("curve %q has %d points, want %d: %w", c.Name, len(c.Points), len(axis), ErrAxisMismatch))
			continue
		}
		for i, p := range c.Points {
			if p.Percent != axis[i].Percent || p.RPM != axis[i].RPM {
				errs = append(errs, fmt.Errorf("curve %q point %d: %w", c.Name, i, ErrAxisMismatch))
				break
			}
		}
	}
	return errors.Join(errs...)
}

// Drive is a motor drive with one configuration per supply voltage.
type Drive struct {
	Name         string     `json:"name" yaml:"name"`
	Manufacturer string     `json:"manufacturer" yaml:"manufacturer"`
	PartNumber   string     `json:"partNumber" yaml:"partNumber"`
	Voltages     []*Voltage `json:"voltages" yaml:"voltages"`
}

// Motor is the root of a torque-curve document.
type Motor struct {
	Name                  string   `json:"motorName" yaml:"motorName"`
	Manufacturer          string   `json:"manufacturer" yaml:"manufacturer"`
	PartNumber            string   `json:"partNumber" yaml:"partNumber"`
	MaxSpeed              float64  `json:"maxSpeed" yaml:"maxSpeed"`
	RatedPeakTorque       float64  `json:"ratedPeakTorque" yaml:"ratedPeakTorque"`
	RatedContinuousTorque float64  `json:"ratedContinuousTorque" yaml:"ratedContinuousTorque"`
	Power                 float64  `json:"power" yaml:"power"`
	Drives                []*Drive `json:"drives" yaml:"drives"`
}

// Validate runs Voltage.Validate on every voltage of every drive.
func (m *Motor) Validate() error {
	var errs []error
	for _, d := range m.Drives {
		for _, v := range d.Voltages {
			if err := v.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("drive %q %gV: %w", d.Name, v.Value, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ShowAll marks every curve visible; Visible is not persisted.
func (m *Motor) ShowAll() {
	for _, d := range m.Drives {
		for _, v := range d.Voltages {
			for _, c := range v.Curves {
				c.Visible = true
			}
		}
	}
}
