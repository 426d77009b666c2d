// Package debounce coalesces rapid successive values into a single call
// carrying the latest value.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds the most recent value and calls its handler with it once
// the delay has elapsed without a newer Push
type Debouncer[T any] struct {
	delay   time.Duration
	handler func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	waiting bool
	seq     uint64
	stopped bool
}

// New creates a debouncer calling handler after delay
func New[T any](delay time.Duration, handler func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, handler: handler}
}

// Push replaces the pending value and restarts the delay
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending = v
	d.waiting = true
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// fire runs the handler unless a later Push or Flush superseded seq
func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || !d.waiting {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()

	d.handler(v)
}

// take clears the pending value. Caller holds mu.
func (d *Debouncer[T]) take() T {
	v := d.pending
	var zero T
	d.pending = zero
	d.waiting = false
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return v
}

// Flush calls the handler immediately with the pending value, if any, on
// the calling goroutine. It reports whether a value was pending.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.waiting {
		d.mu.Unlock()
		return false
	}
	v := d.take()
	d.mu.Unlock()

	d.handler(v)
	return true
}

// Cancel discards the pending value without calling the handler
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.take()
}

// Stop cancels the pending value; later pushes are ignored
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.take()
	d.stopped = true
}

// Pending reports whether a value is waiting for the delay to elapse
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.waiting
}
