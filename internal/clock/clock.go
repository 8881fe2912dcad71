// Package clock provides the time sources used to stamp server timestamps.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Monotonic is a wall clock that never repeats or goes backwards at
// microsecond resolution (the resolution timestamps are stored at).
//
// If the wall clock stalls or steps back, Now returns the previous value plus
// one microsecond. Safe for concurrent use.
type Monotonic struct {
	last atomic.Int64
	wall func() time.Time
}

// NewMonotonic creates a monotonic clock over time.Now.
func NewMonotonic() *Monotonic {
	return &Monotonic{wall: time.Now}
}

// Now returns the next strictly increasing timestamp.
func (c *Monotonic) Now() time.Time {
	for {
		prev := c.last.Load()
		next := c.wall().UnixMicro()
		if next <= prev {
			next = prev + 1
		}
		if c.last.CompareAndSwap(prev, next) {
			return time.UnixMicro(next).UTC()
		}
	}
}
