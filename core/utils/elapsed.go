package utils

import "time"

// Clock returns the current time; tests swap it for a fake.
type Clock func() time.Time

// Elapsed is a monotonic stopwatch.
type Elapsed struct {
	now  Clock
	last time.Time
}

// NewElapsed starts a stopwatch at the current time. A nil clock means time.Now.
func NewElapsed(now Clock) *Elapsed {
	if now == nil {
		now = time.Now
	}
	return &Elapsed{now: now, last: now()}
}

// Elapsed returns the time since the last Update (or creation).
func (e *Elapsed) Elapsed() time.Duration {
	return e.now().Sub(e.last)
}

// Update restarts the stopwatch.
func (e *Elapsed) Update() {
	e.last = e.now()
}
