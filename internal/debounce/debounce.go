// Package debounce delays a callback until its input has been quiet for a
// fixed interval.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used for search input.
const DefaultDelay = 300 * time.Millisecond

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock schedules on the runtime timer.
var RealClock Clock = realClock{}

// Debouncer fires fn with the most recent value once no new value has
// arrived for the delay. Every Trigger cancels the pending call.
type Debouncer[T any] struct {
	delay time.Duration
	clock Clock
	fn    func(T)

	mu      sync.Mutex
	timer   Timer
	seq     uint64
	pending bool
	last    T
}

// New returns a Debouncer. A zero delay uses DefaultDelay; a nil clock uses
// RealClock.
func New[T any](delay time.Duration, clock Clock, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if clock == nil {
		clock = RealClock
	}
	return &Debouncer[T]{delay: delay, clock: clock, fn: fn}
}

// Trigger records v and restarts the quiet period.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.last = v
	d.pending = true
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(seq) })
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	// A timer that lost the race with Stop or a newer Trigger is stale.
	if seq != d.seq || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.last
	d.pending = false
	d.timer = nil
	d.mu.Unlock()
	d.fn(v)
}

// Flush runs the pending call now, if any.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	seq := d.seq
	d.mu.Unlock()
	d.fire(seq)
}

// Stop cancels the pending call.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.seq++
}

// Pending reports whether a call is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
