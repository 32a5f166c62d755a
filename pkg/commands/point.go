// Package commands holds the reversible edits applied to a motor document
// through an undo.Stack.
package commands

import (
	"errors"
	"fmt"

	"github.com/tosih/motor-curve-tool/pkg/models"
)

var (
	ErrIndexOutOfRange = errors.New("point index out of range")
	ErrCurveDetached   = errors.New("curve no longer belongs to its voltage")
)

// PointEdit overwrites the rpm and torque of one point.
type PointEdit struct {
	curve  *models.Curve
	index  int
	rpm    float64
	torque float64

	oldRPM    float64
	oldTorque float64
}

// NewPointEdit returns a command setting curve.Points[index] to rpm/torque.
func NewPointEdit(curve *models.Curve, index int, rpm, torque float64) *PointEdit {
	return &PointEdit{curve: curve, index: index, rpm: rpm, torque: torque}
}

func (c *PointEdit) check() error {
	if !c.curve.InRange(c.index) {
		return fmt.Errorf("%s[%d] of %d: %w", c.curve.Name, c.index, len(c.curve.Points), ErrIndexOutOfRange)
	}
	return nil
}

// Execute saves the current values and writes the new ones.
func (c *PointEdit) Execute() error {
	if err := c.check(); err != nil {
		return err
	}
	p := &c.curve.Points[c.index]
	c.oldRPM, c.oldTorque = p.RPM, p.Torque
	p.RPM, p.Torque = c.rpm, c.torque
	return nil
}

// Undo restores the values saved by Execute.
func (c *PointEdit) Undo() error {
	if err := c.check(); err != nil {
		return err
	}
	p := &c.curve.Points[c.index]
	p.RPM, p.Torque = c.oldRPM, c.oldTorque
	return nil
}

func (c *PointEdit) Describe() string {
	return fmt.Sprintf("Edit %s point %d", c.curve.Name, c.index)
}
