package clock

import (
	"sync"
	"time"
)

// Clock is a monotonic counter with a whole-second expiry test.
//
// Now returns the counter in backend-native units. Expired reports whether at
// least seconds have elapsed since start, where start is a value previously
// returned by Now.
type Clock interface {
	Now() uint32
	Expired(start uint32, seconds int) bool
}

// TickSource is a free-running 16-bit tick counter.
type TickSource interface {
	Ticks() uint16
}

// TickFunc adapts a function to TickSource.
type TickFunc func() uint16

// Ticks implements TickSource.
func (f TickFunc) Ticks() uint16 { return f() }

// SecondsSource is a counter that changes value once per second. The value
// itself is opaque: it may wrap or be BCD encoded.
type SecondsSource interface {
	Seconds() uint8
}

// SecondsFunc adapts a function to SecondsSource.
type SecondsFunc func() uint8

// Seconds implements SecondsSource.
func (f SecondsFunc) Seconds() uint8 { return f() }

// TickShift converts seconds to ticks: 1<<9 = 512 ticks, close enough to the
// 500 two-millisecond ticks in a second.
const TickShift = 9

// TickClock is a Clock backed by a TickSource.
type TickClock struct {
	mu    sync.Mutex
	src   TickSource
	last  uint16
	total uint32
}

var _ Clock = (*TickClock)(nil)

// NewTickClock returns a Clock reading src.
func NewTickClock(src TickSource) *TickClock {
	return &TickClock{src: src, last: src.Ticks()}
}

// Now returns the number of ticks observed since construction. 16-bit
// counter wrap is absorbed by accumulating deltas.
func (c *TickClock) Now() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.src.Ticks()
	c.total += uint32(cur - c.last)
	c.last = cur

	return c.total
}

// Expired implements Clock. The conversion from seconds is approximate.
func (c *TickClock) Expired(start uint32, seconds int) bool {
	return c.Now()-start >= uint32(seconds)<<TickShift
}

// SecondsClock is a Clock backed by a SecondsSource.
type SecondsClock struct {
	mu          sync.Mutex
	src         SecondsSource
	last        uint8
	transitions uint32
}

var _ Clock = (*SecondsClock)(nil)

// NewSecondsClock returns a Clock reading src.
func NewSecondsClock(src SecondsSource) *SecondsClock {
	return &SecondsClock{src: src, last: src.Seconds()}
}

// Now returns the number of counter changes observed since construction.
//
// Only changes are counted, not differences, so the first second of any wait
// may be partial.
func (c *SecondsClock) Now() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur := c.src.Seconds(); cur != c.last {
		c.last = cur
		c.transitions++
	}

	return c.transitions
}

// Expired implements Clock.
func (c *SecondsClock) Expired(start uint32, seconds int) bool {
	return c.Now()-start >= uint32(seconds)
}

// TickPeriod is the tick length of SystemTicks.
const TickPeriod = 2 * time.Millisecond

// SystemTicks returns a TickSource counting TickPeriod ticks of the Go
// monotonic clock.
func SystemTicks() TickSource {
	epoch := time.Now()
	return TickFunc(func() uint16 {
		return uint16(time.Since(epoch) / TickPeriod)
	})
}

// SystemSeconds returns a SecondsSource reporting the wall-clock second
// (0-59), the same shape as an operating system seconds register.
func SystemSeconds() SecondsSource {
	return SecondsFunc(func() uint8 {
		return uint8(time.Now().Second())
	})
}
