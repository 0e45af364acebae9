// Package clock provides the fixed-period tick source that paces the
// simulation loop.
package clock

import "time"

// Clock counts fixed periods elapsed since construction. It never resets and
// never skips a period: a caller polling after a stall receives one tick per
// call until it has caught up.
//
// A Clock is owned by a single goroutine and is not safe for concurrent use.
type Clock struct {
	start  time.Time
	period time.Duration
	next   int64
	now    func() time.Time
}

// New creates a Clock with the given period, starting now.
//
// Precondition: period > 0.
// Postcondition: the first tick is due once more than one period has elapsed.
func New(period time.Duration) *Clock {
	return NewWithSource(period, time.Now)
}

// NewWithSource creates a Clock reading the time from now.
//
// Precondition: period > 0; now must be non-nil and monotonic.
func NewWithSource(period time.Duration, now func() time.Time) *Clock {
	if period <= 0 {
		panic("clock: period must be positive")
	}
	return &Clock{
		start:  now(),
		period: period,
		next:   1,
		now:    now,
	}
}

// Tick reports whether another period has elapsed since the last counted one.
//
// Postcondition: returns true at most once per elapsed period.
func (c *Clock) Tick() bool {
	if c.now().Sub(c.start) > c.period*time.Duration(c.next) {
		c.next++
		return true
	}
	return false
}

// Pending drains every elapsed period and returns how many there were.
func (c *Clock) Pending() int {
	n := 0
	for c.Tick() {
		n++
	}
	return n
}

// Ticks returns the number of periods counted so far.
func (c *Clock) Ticks() int64 {
	return c.next - 1
}

// Period returns the clock period.
func (c *Clock) Period() time.Duration {
	return c.period
}
