package commands

import (
	"fmt"

	"github.com/tosih/motor-curve-tool/pkg/models"
)

// Property sets one scalar field of a motor, drive or voltage. The old value
// is read on the first Execute.
type Property struct {
	holder   models.PropertyHolder
	field    models.Field
	value    models.Value
	old      models.Value
	captured bool
}

// NewProperty returns a command setting field of holder to value.
func NewProperty(holder models.PropertyHolder, field models.Field, value models.Value) *Property {
	return &Property{holder: holder, field: field, value: value}
}

func (c *Property) Execute() error {
	if !c.captured {
		old, err := c.holder.Property(c.field)
		if err != nil {
			return err
		}
		c.old = old
		c.captured = true
	}
	return c.holder.SetProperty(c.field, c.value)
}

func (c *Property) Undo() error {
	return c.holder.SetProperty(c.field, c.old)
}

func (c *Property) Describe() string {
	return fmt.Sprintf("Set %s to %s", c.field, c.value.Format(c.field))
}
