package game

import (
	"sync"
	"time"
)

// DefaultTick is the countdown emission interval. The server only syncs time
// on its own schedule; the local timer fills the gaps for a smooth display.
const DefaultTick = 100 * time.Millisecond

// Countdown emits a decreasing remaining-time sequence (milliseconds, down
// to zero inclusive) at a fixed tick interval on its own goroutine.
type Countdown struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// newCountdown starts a countdown from total milliseconds. emit is called on
// the countdown goroutine for each tick.
func newCountdown(total int64, tick time.Duration, emit func(remaining int64)) *Countdown {
	c := &Countdown{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		remaining := total
		for remaining >= 0 {
			select {
			case <-c.stop:
				return
			default:
			}
			emit(remaining)
			remaining -= tick.Milliseconds()
			select {
			case <-c.stop:
				return
			case <-ticker.C:
			}
		}
	}()
	return c
}

// Cancel stops the countdown and waits for its goroutine to exit, so once
// Cancel returns no further emissions can fire. Safe to call repeatedly.
// Must not be called from the emit callback.
func (c *Countdown) Cancel() {
	c.once.Do(func() { close(c.stop) })
	<-c.done
}
