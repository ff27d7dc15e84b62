package diff

import "sync"

// Result pairs a snapshot with the edit script leading to it from the
// previous snapshot.
type Result[T any] struct {
	Items []T
	Edits []Edit[T]
}

// Worker computes diffs off the message-receive path. Snapshots submitted
// to it are diffed against their predecessor on a single goroutine, so
// results are published strictly in submission order and a stale diff can
// never land after a newer one.
type Worker[T any] struct {
	jobs   chan []T
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

// NewWorker starts the diff goroutine. publish is called once per submitted
// snapshot, in order, from that goroutine.
func NewWorker[T any](key func(T) string, equal func(a, b T) bool, publish func(Result[T])) *Worker[T] {
	w := &Worker[T]{
		jobs: make(chan []T, 64),
		done: make(chan struct{}),
	}
	go func() {
		defer close(w.done)
		var prev []T
		for items := range w.jobs {
			edits := Diff(prev, items, key, equal)
			publish(Result[T]{Items: items, Edits: edits})
			prev = items
		}
	}()
	return w
}

// Submit queues a snapshot for diffing. The slice must not be mutated after
// submission. Submitting after Close is a no-op.
func (w *Worker[T]) Submit(items []T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.jobs <- items
}

// Close stops the worker after the pending queue drains and waits for the
// final publish to finish.
func (w *Worker[T]) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()
	<-w.done
}
