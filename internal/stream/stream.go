// Package stream provides single-concern state sources: one publisher, any
// number of channel subscribers, with the latest value replayed on
// subscribe.
package stream

import (
	"sync"

	"github.com/google/uuid"
)

// Buffer per subscriber channel. When a slow subscriber falls this far
// behind, the oldest buffered value is dropped so the publisher never
// blocks; only the latest state matters to UI consumers.
const subscriberBuffer = 16

// Source is a hot stream of values of one concern (phase, roster, chat,
// canvas, lifecycle events). The zero value is not usable; call New.
type Source[T any] struct {
	mu        sync.Mutex
	subs      map[uuid.UUID]chan T
	latest    T
	hasLatest bool
	closed    bool
}

func New[T any]() *Source[T] {
	return &Source[T]{subs: make(map[uuid.UUID]chan T)}
}

// Publish delivers v to every subscriber and records it as the latest value.
// It never blocks: a full subscriber buffer loses its oldest entry first.
func (s *Source[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.latest = v
	s.hasLatest = true

	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

// Subscribe registers a new subscriber and returns its channel together with
// an unsubscribe func. If a value was already published, the channel starts
// with it so late subscribers see current state immediately.
func (s *Source[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	if s.hasLatest {
		ch <- s.latest
	}

	id := uuid.New()
	s.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
		})
	}
	return ch, unsubscribe
}

// Latest reports the most recently published value, if any.
func (s *Source[T]) Latest() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasLatest
}

// Close shuts the source down. All subscriber channels are closed and
// further publishes are dropped.
func (s *Source[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
