// Package uiloop marshals work onto the UI thread. Any goroutine may Post;
// the UI thread's message loop calls Drain once per iteration.
package uiloop

import (
	"sync"

	"go.uber.org/zap"
)

// Queue is a thread-safe FIFO of functions owned by one draining thread.
type Queue struct {
	mu     sync.Mutex
	items  []func()
	wake   func()
	closed bool
	log    *zap.Logger
}

// New creates a queue. wake, if non-nil, is called after each Post so a
// blocked message loop notices the work; it must not block.
func New(log *zap.Logger, wake func()) *Queue {
	return &Queue{
		wake: wake,
		log:  log.Named("uiloop"),
	}
}

// SetWaker replaces the wake function. The UI thread installs it once its
// message window exists.
func (q *Queue) SetWaker(wake func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.wake = wake
}

// Post appends fn. It reports false, dropping fn, once the queue is closed.
func (q *Queue) Post(fn func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, fn)
	wake := q.wake
	q.mu.Unlock()

	if wake != nil {
		wake()
	}
	return true
}

// Drain runs the functions queued before the call, in order. Functions
// posted while draining wait for the next Drain. A panicking item is logged
// and skipped. Drain returns the number of items run.
func (q *Queue) Drain() int {
	q.mu.Lock()
	batch := q.items
	q.items = nil
	q.mu.Unlock()

	for _, fn := range batch {
		q.run(fn)
	}
	return len(batch)
}

// Len returns the number of waiting items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close rejects further posts. Items already queued can still be drained.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

func (q *Queue) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("ui work item panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	fn()
}
