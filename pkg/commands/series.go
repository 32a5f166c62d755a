package commands

import (
	"fmt"

	"github.com/tosih/motor-curve-tool/pkg/models"
)

// Series renames and/or locks a curve.
type Series struct {
	voltage   *models.Voltage
	curve     *models.Curve
	newName   *string
	newLocked *bool

	oldName   string
	oldLocked bool
}

// NewSeries returns a command applying whichever of name and locked is
// non-nil.
func NewSeries(v *models.Voltage, c *models.Curve, name *string, locked *bool) *Series {
	return &Series{
		voltage:   v,
		curve:     c,
		newName:   name,
		newLocked: locked,
		oldName:   c.Name,
		oldLocked: c.Locked,
	}
}

// Rename is NewSeries with only a new name.
func Rename(v *models.Voltage, c *models.Curve, name string) *Series {
	return NewSeries(v, c, &name, nil)
}

// Lock is NewSeries with only a new locked flag.
func Lock(v *models.Voltage, c *models.Curve, locked bool) *Series {
	return NewSeries(v, c, nil, &locked)
}

func (c *Series) attached() error {
	if c.voltage.IndexOf(c.curve) < 0 {
		return fmt.Errorf("%q: %w", c.curve.Name, ErrCurveDetached)
	}
	return nil
}

func (c *Series) Execute() error {
	if err := c.attached(); err != nil {
		return err
	}
	if c.newName != nil {
		if err := c.voltage.CheckName(*c.newName, c.curve); err != nil {
			return err
		}
		c.curve.Name = *c.newName
	}
	if c.newLocked != nil {
		c.curve.Locked = *c.newLocked
	}
	return nil
}

func (c *Series) Undo() error {
	if err := c.attached(); err != nil {
		return err
	}
	if c.newName != nil {
		c.curve.Name = c.oldName
	}
	c.curve.Locked = c.oldLocked
	return nil
}

func (c *Series) Describe() string {
	switch {
	case c.newName != nil && c.newLocked != nil, c.newName == nil && c.newLocked == nil:
		return fmt.Sprintf("Update curve %s", c.oldName)
	case c.newName != nil:
		return fmt.Sprintf("Rename %s to %s", c.oldName, *c.newName)
	case *c.newLocked:
		return fmt.Sprintf("Lock %s", c.oldName)
	}
	return fmt.Sprintf("Unlock %s", c.oldName)
}
