// Package draw reconstructs the shared canvas from the ordered stream of
// pointer motion events and undo actions.
package draw

import (
	"github.com/mayurg/scribblearena/internal/message"
)

type Point struct {
	X float32
	Y float32
}

// PathSegment is one stroke: the points traced between a pointer-down and
// the pointer-up that finalized it.
type PathSegment struct {
	Color     int
	Thickness float32
	Points    []Point
}

// Canvas holds the ordered stack of finalized strokes plus the stroke
// currently in progress. It is not safe for concurrent use; the session
// mutates it from its single dispatch goroutine only.
type Canvas struct {
	segments []PathSegment
	active   *PathSegment
}

func NewCanvas() *Canvas {
	return &Canvas{}
}

// Apply feeds one motion event into the canvas. A DOWN while a stroke is
// still open finalizes the open stroke first so no points are lost.
func (c *Canvas) Apply(d message.DrawData) {
	switch d.MotionEvent {
	case message.MotionDown:
		c.FinalizeActive()
		c.active = &PathSegment{
			Color:     d.Color,
			Thickness: d.Thickness,
			Points:    []Point{{X: d.FromX, Y: d.FromY}, {X: d.ToX, Y: d.ToY}},
		}
	case message.MotionMove:
		if c.active == nil {
			// MOVE without a preceding DOWN, start a stroke from its origin.
			c.active = &PathSegment{
				Color:     d.Color,
				Thickness: d.Thickness,
				Points:    []Point{{X: d.FromX, Y: d.FromY}},
			}
		}
		c.active.Points = append(c.active.Points, Point{X: d.ToX, Y: d.ToY})
	case message.MotionUp:
		if c.active != nil {
			c.active.Points = append(c.active.Points, Point{X: d.ToX, Y: d.ToY})
		}
		c.FinalizeActive()
	}
}

// ApplyAction executes a DrawAction. Unknown actions are ignored.
func (c *Canvas) ApplyAction(a message.DrawAction) {
	if a.Action == message.ActionUndo {
		c.Undo()
	}
}

// Undo pops the most recently finalized stroke. An in-progress stroke is not
// affected; undo only ever targets completed strokes.
func (c *Canvas) Undo() bool {
	if len(c.segments) == 0 {
		return false
	}
	c.segments = c.segments[:len(c.segments)-1]
	return true
}

// FinalizeActive pushes an in-progress stroke onto the stack. Called on UP
// and forced on phase transitions so a stroke cut off by the round timer is
// not lost.
func (c *Canvas) FinalizeActive() {
	if c.active == nil {
		return
	}
	c.segments = append(c.segments, *c.active)
	c.active = nil
}

// Reset discards all strokes, finalized and in progress.
func (c *Canvas) Reset() {
	c.segments = nil
	c.active = nil
}

// Replay rebuilds the canvas from a catch-up sequence. The canvas is cleared
// first and the entries are applied in order; ordering matters because undo
// targets whatever was finalized last. Entries other than DrawData and
// DrawAction are ignored.
func (c *Canvas) Replay(entries []message.Message) {
	c.Reset()
	for _, entry := range entries {
		switch m := entry.(type) {
		case message.DrawData:
			c.Apply(m)
		case message.DrawAction:
			c.ApplyAction(m)
		}
	}
}

// Segments returns a copy of the finalized stroke stack, oldest first.
func (c *Canvas) Segments() []PathSegment {
	out := make([]PathSegment, len(c.segments))
	copy(out, c.segments)
	return out
}

// Active returns the in-progress stroke, or nil.
func (c *Canvas) Active() *PathSegment {
	if c.active == nil {
		return nil
	}
	cp := *c.active
	cp.Points = append([]Point(nil), c.active.Points...)
	return &cp
}
