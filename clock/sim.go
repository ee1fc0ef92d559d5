package clock

import "sync/atomic"

// SimClock is a deterministic Clock for tests.
//
// Every call to Now advances the counter by step units after reading it, so
// a poll loop that reads the clock once per iteration expires after a fixed
// number of iterations regardless of wall time.
type SimClock struct {
	now            atomic.Uint32
	unitsPerSecond uint32
	step           uint32
	reads          atomic.Uint64
}

var _ Clock = (*SimClock)(nil)

// NewSimClock creates a SimClock. unitsPerSecond must be positive; a zero
// step freezes the clock unless Advance is called.
func NewSimClock(unitsPerSecond, step uint32) *SimClock {
	if unitsPerSecond == 0 {
		unitsPerSecond = 1
	}

	return &SimClock{unitsPerSecond: unitsPerSecond, step: step}
}

// Now implements Clock.
func (c *SimClock) Now() uint32 {
	c.reads.Add(1)
	return c.now.Add(c.step) - c.step
}

// Expired implements Clock.
func (c *SimClock) Expired(start uint32, seconds int) bool {
	return c.Now()-start >= uint32(seconds)*c.unitsPerSecond
}

// Advance moves the clock forward by n units.
func (c *SimClock) Advance(n uint32) {
	c.now.Add(n)
}

// Reads returns how many times Now has been called.
func (c *SimClock) Reads() uint64 {
	return c.reads.Load()
}

// UnitsPerSecond returns the configured resolution.
func (c *SimClock) UnitsPerSecond() uint32 {
	return c.unitsPerSecond
}
