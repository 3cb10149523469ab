package service

import (
	"sync"
	"time"
)

// MonotonicClock issues UTC timestamps that strictly increase, even when the
// wall clock stalls or steps back. Timestamps are truncated to microseconds,
// the precision Postgres stores.
type MonotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewMonotonicClock wraps now; a nil now uses time.Now.
func NewMonotonicClock(now func() time.Time) *MonotonicClock {
	if now == nil {
		now = time.Now
	}
	return &MonotonicClock{now: now}
}

// Now returns a timestamp later than every timestamp returned before.
func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
