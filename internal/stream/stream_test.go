package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource_DeliversToSubscribers(t *testing.T) {
	s := New[int]()
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.Publish(1)
	s.Publish(2)

	assert.Equal(t, 1, <-ch)
	assert.Equal(t, 2, <-ch)
}

func TestSource_ReplaysLatestOnSubscribe(t *testing.T) {
	s := New[string]()
	s.Publish("old")
	s.Publish("current")

	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()
	assert.Equal(t, "current", <-ch)
}

func TestSource_Latest(t *testing.T) {
	s := New[int]()
	_, ok := s.Latest()
	assert.False(t, ok)

	s.Publish(7)
	v, ok := s.Latest()
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestSource_UnsubscribeClosesChannel(t *testing.T) {
	s := New[int]()
	ch, unsubscribe := s.Subscribe()
	unsubscribe()
	unsubscribe() // idempotent

	_, open := <-ch
	assert.False(t, open)

	s.Publish(1) // no subscriber, must not panic
}

func TestSource_SlowSubscriberDropsOldest(t *testing.T) {
	s := New[int]()
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	for i := 0; i < subscriberBuffer+5; i++ {
		s.Publish(i)
	}

	// The first values were shed; the newest survives at the tail.
	last := -1
	for len(ch) > 0 {
		last = <-ch
	}
	assert.Equal(t, subscriberBuffer+4, last)
	assert.Greater(t, last, subscriberBuffer-1)
}

func TestSource_CloseEndsAllSubscribers(t *testing.T) {
	s := New[int]()
	ch1, _ := s.Subscribe()
	ch2, _ := s.Subscribe()

	s.Close()
	_, open := <-ch1
	assert.False(t, open)
	_, open = <-ch2
	assert.False(t, open)

	s.Publish(1) // dropped after close, must not panic

	ch3, unsubscribe := s.Subscribe()
	defer unsubscribe()
	_, open = <-ch3
	assert.False(t, open, "subscribing to a closed source yields a closed channel")
}
