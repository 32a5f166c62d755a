// Package coordinator shares one logical point selection between views.
//
// The selection is a set of (curve, point index) pairs, independent of any
// grid column layout, so a chart and a grid can both drive and display it.
package coordinator

import (
	"github.com/tosih/motor-curve-tool/pkg/models"
)

// Point is a logical selection entry.
type Point struct {
	Curve *models.Curve
	Index int
}

type subscriber struct {
	id int
	fn func([]Point)
}

// Coordinator owns the authoritative logical selection.
type Coordinator struct {
	points []Point
	set    map[Point]bool
	subs   []subscriber
	nextID int
}

func New() *Coordinator {
	return &Coordinator{set: make(map[Point]bool)}
}

// Subscribe registers fn for selection changes. The returned function
// removes the subscription.
func (c *Coordinator) Subscribe(fn func([]Point)) (cancel func()) {
	id := c.nextID
	c.nextID++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Coordinator) notify() {
	subs := append([]subscriber(nil), c.subs...)
	for _, s := range subs {
		s.fn(c.Selection())
	}
}

// Selection returns the selected points in insertion order.
func (c *Coordinator) Selection() []Point {
	return append([]Point(nil), c.points...)
}

// Len is the number of selected points.
func (c *Coordinator) Len() int { return len(c.points) }

// Contains reports whether p is selected.
func (c *Coordinator) Contains(p Point) bool { return c.set[p] }

// SetSelection replaces the selection and always notifies.
func (c *Coordinator) SetSelection(points []Point) {
	c.points = c.points[:0]
	clear(c.set)
	for _, p := range points {
		c.add(p)
	}
	c.notify()
}

// AddToSelection adds points not yet selected and notifies only when
// something was added.
func (c *Coordinator) AddToSelection(points []Point) {
	changed := false
	for _, p := range points {
		if c.add(p) {
			changed = true
		}
	}
	if changed {
		c.notify()
	}
}

// ToggleSelection flips p and always notifies.
func (c *Coordinator) ToggleSelection(p Point) {
	if c.set[p] {
		c.remove(p)
	} else {
		c.add(p)
	}
	c.notify()
}

// ClearSelection empties the selection, notifying only if it was non-empty.
func (c *Coordinator) ClearSelection() {
	if len(c.points) == 0 {
		return
	}
	c.points = c.points[:0]
	clear(c.set)
	c.notify()
}

// Prune drops the points keep rejects and notifies when anything was removed.
func (c *Coordinator) Prune(keep func(Point) bool) {
	kept := c.points[:0]
	for _, p := range c.points {
		if keep(p) {
			kept = append(kept, p)
		} else {
			delete(c.set, p)
		}
	}
	removed := len(kept) != len(c.points)
	for i := len(kept); i < len(c.points); i++ {
		c.points[i] = Point{}
	}
	c.points = kept
	if removed {
		c.notify()
	}
}

func (c *Coordinator) add(p Point) bool {
	if c.set[p] {
		return false
	}
	c.set[p] = true
	c.points = append(c.points, p)
	return true
}

func (c *Coordinator) remove(p Point) {
	delete(c.set, p)
	for i, q := range c.points {
		if q == p {
			c.points = append(c.points[:i], c.points[i+1:]...)
			return
		}
	}
}
