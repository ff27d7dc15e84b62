package draw

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mayurg/scribblearena/internal/message"
)

func drawEvent(motion int, fromX, fromY, toX, toY float32) message.DrawData {
	return message.DrawData{
		RoomName:    "den",
		Color:       1,
		Thickness:   12,
		FromX:       fromX,
		FromY:       fromY,
		ToX:         toX,
		ToY:         toY,
		MotionEvent: motion,
	}
}

func TestCanvas_StrokeLifecycle(t *testing.T) {
	c := NewCanvas()

	c.Apply(drawEvent(message.MotionDown, 0, 0, 0, 0))
	assert.Empty(t, c.Segments())
	assert.NotNil(t, c.Active())

	c.Apply(drawEvent(message.MotionMove, 0, 0, 5, 5))
	c.Apply(drawEvent(message.MotionUp, 5, 5, 10, 10))

	segments := c.Segments()
	assert.Len(t, segments, 1)
	assert.Nil(t, c.Active())
	assert.Equal(t, Point{X: 10, Y: 10}, segments[0].Points[len(segments[0].Points)-1])
}

func TestCanvas_UndoPopsMostRecent(t *testing.T) {
	c := NewCanvas()
	for i := 0; i < 2; i++ {
		c.Apply(drawEvent(message.MotionDown, 0, 0, 0, 0))
		c.Apply(drawEvent(message.MotionUp, 0, 0, 1, 1))
	}
	assert.Len(t, c.Segments(), 2)

	assert.True(t, c.Undo())
	assert.Len(t, c.Segments(), 1)
	assert.True(t, c.Undo())
	assert.False(t, c.Undo())
	assert.Empty(t, c.Segments())
}

func TestCanvas_DownWhileActiveFinalizesFirst(t *testing.T) {
	c := NewCanvas()
	c.Apply(drawEvent(message.MotionDown, 0, 0, 0, 0))
	c.Apply(drawEvent(message.MotionMove, 0, 0, 5, 5))

	// Second DOWN without an UP in between: the open stroke must survive.
	c.Apply(drawEvent(message.MotionDown, 20, 20, 20, 20))
	assert.Len(t, c.Segments(), 1)
	assert.NotNil(t, c.Active())
}

func TestCanvas_MoveWithoutDownStartsStroke(t *testing.T) {
	c := NewCanvas()
	c.Apply(drawEvent(message.MotionMove, 2, 2, 3, 3))
	assert.NotNil(t, c.Active())

	c.FinalizeActive()
	assert.Len(t, c.Segments(), 1)
}

func TestCanvas_ForceFinalize(t *testing.T) {
	c := NewCanvas()
	c.Apply(drawEvent(message.MotionDown, 0, 0, 0, 0))
	c.Apply(drawEvent(message.MotionMove, 0, 0, 5, 5))

	c.FinalizeActive()
	assert.Nil(t, c.Active())
	assert.Len(t, c.Segments(), 1)

	// Idempotent with nothing in progress.
	c.FinalizeActive()
	assert.Len(t, c.Segments(), 1)
}

func TestCanvas_ReplayFinalizeThenUndoCancelsOut(t *testing.T) {
	c := NewCanvas()
	c.Replay([]message.Message{
		drawEvent(message.MotionDown, 0, 0, 0, 0),
		drawEvent(message.MotionMove, 0, 0, 5, 5),
		drawEvent(message.MotionUp, 5, 5, 5, 5),
		message.DrawAction{Action: message.ActionUndo},
	})
	assert.Empty(t, c.Segments())
	assert.Nil(t, c.Active())
}

func TestCanvas_ReplayOrderDependence(t *testing.T) {
	c := NewCanvas()
	c.Replay([]message.Message{
		drawEvent(message.MotionDown, 0, 0, 0, 0),
		drawEvent(message.MotionUp, 0, 0, 1, 1),
		drawEvent(message.MotionDown, 2, 2, 2, 2),
		drawEvent(message.MotionUp, 2, 2, 3, 3),
		message.DrawAction{Action: message.ActionUndo},
	})

	// Only the second stroke was undone.
	segments := c.Segments()
	assert.Len(t, segments, 1)
	assert.Equal(t, Point{X: 0, Y: 0}, segments[0].Points[0])
}

func TestCanvas_ReplayClearsPreviousState(t *testing.T) {
	c := NewCanvas()
	c.Apply(drawEvent(message.MotionDown, 9, 9, 9, 9))
	c.Apply(drawEvent(message.MotionUp, 9, 9, 9, 9))

	c.Replay([]message.Message{
		drawEvent(message.MotionDown, 0, 0, 0, 0),
		drawEvent(message.MotionUp, 0, 0, 1, 1),
	})
	assert.Len(t, c.Segments(), 1)
	assert.Equal(t, Point{X: 0, Y: 0}, c.Segments()[0].Points[0])
}
