package commands

import (
	"fmt"
	"slices"

	"github.com/tosih/motor-curve-tool/pkg/models"
)

// AddCurve appends a new curve to a voltage. Redo re-inserts the same curve
// so later commands holding it stay valid.
type AddCurve struct {
	voltage *models.Voltage
	name    string
	curve   *models.Curve
}

func NewAddCurve(v *models.Voltage, name string) *AddCurve {
	return &AddCurve{voltage: v, name: name}
}

// Curve is the curve created by the first Execute.
func (c *AddCurve) Curve() *models.Curve { return c.curve }

func (c *AddCurve) Execute() error {
	if c.curve == nil {
		curve, err := c.voltage.AddCurve(c.name)
		if err != nil {
			return err
		}
		c.curve = curve
		return nil
	}
	if err := c.voltage.CheckName(c.curve.Name, nil); err != nil {
		return err
	}
	c.voltage.Curves = append(c.voltage.Curves, c.curve)
	return nil
}

func (c *AddCurve) Undo() error {
	i := c.voltage.IndexOf(c.curve)
	if i < 0 {
		return fmt.Errorf("%q: %w", c.name, ErrCurveDetached)
	}
	c.voltage.Curves = slices.Delete(c.voltage.Curves, i, i+1)
	return nil
}

func (c *AddCurve) Describe() string {
	return fmt.Sprintf("Add curve %s", c.name)
}

// RemoveCurve deletes a curve; undo puts it back at its former position.
type RemoveCurve struct {
	voltage *models.Voltage
	curve   *models.Curve
	index   int
}

func NewRemoveCurve(v *models.Voltage, curve *models.Curve) *RemoveCurve {
	return &RemoveCurve{voltage: v, curve: curve, index: -1}
}

func (c *RemoveCurve) Execute() error {
	i := c.voltage.IndexOf(c.curve)
	if i < 0 {
		return fmt.Errorf("%q: %w", c.curve.Name, ErrCurveDetached)
	}
	c.index = i
	c.voltage.Curves = slices.Delete(c.voltage.Curves, i, i+1)
	return nil
}

func (c *RemoveCurve) Undo() error {
	if c.index < 0 || c.index > len(c.voltage.Curves) {
		return fmt.Errorf("%q at %d: %w", c.curve.Name, c.index, ErrIndexOutOfRange)
	}
	c.voltage.Curves = slices.Insert(c.voltage.Curves, c.index, c.curve)
	return nil
}

func (c *RemoveCurve) Describe() string {
	return fmt.Sprintf("Remove curve %s", c.curve.Name)
}
