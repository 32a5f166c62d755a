package models

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrUnknownField = errors.New("field does not belong to this object")
	ErrFieldKind    = errors.New("value kind does not match field")
)

// Field identifies one scalar property of a motor, drive or voltage.
type Field int

const (
	MotorName Field = iota
	MotorManufacturer
	MotorPartNumber
	MotorMaxSpeed
	MotorRatedPeakTorque
	MotorRatedContinuousTorque
	MotorPower

	DriveName
	DriveManufacturer
	DrivePartNumber

	VoltageValue
	VoltagePower
	VoltageMaxSpeed
	VoltagePeakTorque
	VoltageContinuousTorque
	VoltageContinuousAmps
	VoltagePeakAmps
)

// Kind is the value type a Field carries.
type Kind int

const (
	KindText Kind = iota
	KindNumber
)

// FieldInfo describes a Field for menus and listings.
type FieldInfo struct {
	Field Field
	Name  string
	Kind  Kind
	Unit  string
}

// Fields lists every scalar property in display order.
var Fields = []FieldInfo{
	{MotorName, "Motor Name", KindText, ""},
	{MotorManufacturer, "Motor Manufacturer", KindText, ""},
	{MotorPartNumber, "Motor Part Number", KindText, ""},
	{MotorMaxSpeed, "Motor Max Speed", KindNumber, "RPM"},
	{MotorRatedPeakTorque, "Rated Peak Torque", KindNumber, "Nm"},
	{MotorRatedContinuousTorque, "Rated Continuous Torque", KindNumber, "Nm"},
	{MotorPower, "Motor Power", KindNumber, "W"},
	{DriveName, "Drive Name", KindText, ""},
	{DriveManufacturer, "Drive Manufacturer", KindText, ""},
	{DrivePartNumber, "Drive Part Number", KindText, ""},
	{VoltageValue, "Voltage", KindNumber, "V"},
	{VoltagePower, "Power", KindNumber, "W"},
	{VoltageMaxSpeed, "Max Speed", KindNumber, "RPM"},
	{VoltagePeakTorque, "Peak Torque", KindNumber, "Nm"},
	{VoltageContinuousTorque, "Continuous Torque", KindNumber, "Nm"},
	{VoltageContinuousAmps, "Continuous Current", KindNumber, "A"},
	{VoltagePeakAmps, "Peak Current", KindNumber, "A"},
}

// Info returns the descriptor for f.
func (f Field) Info() FieldInfo {
	for _, info := range Fields {
		if info.Field == f {
			return info
		}
	}
	return FieldInfo{Field: f, Name: fmt.Sprintf("Field(%d)", int(f))}
}

func (f Field) String() string { return f.Info().Name }

// Kind returns whether f holds text or a number.
func (f Field) Kind() Kind { return f.Info().Kind }

// Value is a scalar property value. Only the member matching the field's
// Kind is meaningful.
type Value struct {
	Text   string
	Number float64
}

// TextValue wraps s as a Value.
func TextValue(s string) Value { return Value{Text: s} }

// NumberValue wraps n as a Value.
func NumberValue(n float64) Value { return Value{Number: n} }

// ParseValue converts user input into a Value of f's kind.
func ParseValue(f Field, s string) (Value, error) {
	if f.Kind() == KindText {
		return TextValue(s), nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", f, err)
	}
	return NumberValue(n), nil
}

// Format renders v according to f's kind.
func (v Value) Format(f Field) string {
	if f.Kind() == KindText {
		return v.Text
	}
	return strconv.FormatFloat(v.Number, 'f', -1, 64)
}

// PropertyHolder is implemented by objects with scalar Fields.
type PropertyHolder interface {
	Property(f Field) (Value, error)
	SetProperty(f Field, v Value) error
}

func text(p *string) func() Value { return func() Value { return TextValue(*p) } }
func number(p *float64) func() Value { return func() Value { return NumberValue(*p) } }
func setText(p *string) func(Value) { return func(v Value) { *p = v.Text } }
func setNumber(p *float64) func(Value) { return func(v Value) { *p = v.Number } }

type accessor struct {
	get func() Value
	set func(Value)
}

func textField(p *string) accessor { return accessor{text(p), setText(p)} }
func numberField(p *float64) accessor { return accessor{number(p), setNumber(p)} }

func (m *Motor) accessor(f Field) (accessor, bool) {
	switch f {
	case MotorName:
		return textField(&m.Name), true
	case MotorManufacturer:
		return textField(&m.Manufacturer), true
	case MotorPartNumber:
		return textField(&m.PartNumber), true
	case MotorMaxSpeed:
		return numberField(&m.MaxSpeed), true
	case MotorRatedPeakTorque:
		return numberField(&m.RatedPeakTorque), true
	case MotorRatedContinuousTorque:
		return numberField(&m.RatedContinuousTorque), true
	case MotorPower:
		return numberField(&m.Power), true
	}
	return accessor{}, false
}

func (d *Drive) accessor(f Field) (accessor, bool) {
	switch f {
	case DriveName:
		return textField(&d.Name), true
	case DriveManufacturer:
		return textField(&d.Manufacturer), true
	case DrivePartNumber:
		return textField(&d.PartNumber), true
	}
	return accessor{}, false
}

func (v *Voltage) accessor(f Field) (accessor, bool) {
	switch f {
	case VoltageValue:
		return numberField(&v.Value), true
	case VoltagePower:
		return numberField(&v.Power), true
	case VoltageMaxSpeed:
		return numberField(&v.MaxSpeed), true
	case VoltagePeakTorque:
		return numberField(&v.PeakTorque), true
	case VoltageContinuousTorque:
		return numberField(&v.ContinuousTorque), true
	case VoltageContinuousAmps:
		return numberField(&v.ContinuousAmps), true
	case VoltagePeakAmps:
		return numberField(&v.PeakAmps), true
	}
	return accessor{}, false
}

func get(a accessor, ok bool, f Field) (Value, error) {
	if !ok {
		return Value{}, fmt.Errorf("%s: %w", f, ErrUnknownField)
	}
	return a.get(), nil
}

func set(a accessor, ok bool, f Field, v Value) error {
	if !ok {
		return fmt.Errorf("%s: %w", f, ErrUnknownField)
	}
	if (f.Kind() == KindNumber && v.Text != "") || (f.Kind() == KindText && v.Number != 0) {
		return fmt.Errorf("%s: %w", f, ErrFieldKind)
	}
	a.set(v)
	return nil
}

func (m *Motor) Property(f Field) (Value, error) {
	a, ok := m.accessor(f)
	return get(a, ok, f)
}

func (m *Motor) SetProperty(f Field, v Value) error {
	a, ok := m.accessor(f)
	return set(a, ok, f, v)
}

func (d *Drive) Property(f Field) (Value, error) {
	a, ok := d.accessor(f)
	return get(a, ok, f)
}

func (d *Drive) SetProperty(f Field, v Value) error {
	a, ok := d.accessor(f)
	return set(a, ok, f, v)
}

func (v *Voltage) Property(f Field) (Value, error) {
	a, ok := v.accessor(f)
	return get(a, ok, f)
}

func (v *Voltage) SetProperty(f Field, val Value) error {
	a, ok := v.accessor(f)
	return set(a, ok, f, val)
}
