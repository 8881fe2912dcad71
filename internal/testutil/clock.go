package testutil

import (
	"sync"
	"time"
)

// Epoch is the instant DeterministicClock counts from.
var Epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is a thread-safe clock for tests that advances by one
// second on every call to Now.
//
// The first call to Now returns Epoch+1s. Reset rewinds the clock so the same
// scenario produces identical timestamps when rerun.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a new deterministic clock starting at Epoch.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{seq: 0}
}

// Now advances the clock and returns the new instant.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return At(c.seq)
}

// Current returns the number of ticks so far without advancing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}

// At returns the instant of tick n, i.e. Epoch + n seconds.
func At(n int64) time.Time {
	return Epoch.Add(time.Duration(n) * time.Second)
}
