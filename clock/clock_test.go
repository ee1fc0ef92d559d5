package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicks struct{ v uint16 }

func (f *fakeTicks) Ticks() uint16 { return f.v }

type fakeSeconds struct{ v uint8 }

func (f *fakeSeconds) Seconds() uint8 { return f.v }

func TestTickClock_ExpiresAfterShiftedTicks(t *testing.T) {
	src := &fakeTicks{v: 100}
	c := NewTickClock(src)

	start := c.Now()
	assert.Equal(t, uint32(0), start)

	src.v += 511
	assert.False(t, c.Expired(start, 1))

	src.v++
	assert.True(t, c.Expired(start, 1))
	assert.False(t, c.Expired(start, 2))
}

func TestTickClock_CounterWrap(t *testing.T) {
	src := &fakeTicks{v: 0xFFF0}
	c := NewTickClock(src)
	start := c.Now()

	src.v = 0x0010 // wrapped, 0x20 ticks later
	assert.Equal(t, start+0x20, c.Now())

	// Multiple wraps observed in steps keep accumulating.
	for range 4 {
		src.v += 0x4000
		c.Now()
	}
	assert.Equal(t, start+0x20+0x10000, c.Now())
	assert.True(t, c.Expired(start, 5))
}

func TestSecondsClock_CountsTransitions(t *testing.T) {
	src := &fakeSeconds{v: 0x59} // BCD 59
	c := NewSecondsClock(src)
	start := c.Now()

	assert.False(t, c.Expired(start, 1))

	src.v = 0x00 // BCD wrap to 00
	assert.True(t, c.Expired(start, 1))
	assert.False(t, c.Expired(start, 2))

	// Reading repeatedly without a change does not advance.
	for range 10 {
		c.Now()
	}
	assert.False(t, c.Expired(start, 2))

	src.v = 0x01
	assert.True(t, c.Expired(start, 2))
}

func TestSimClock_Deterministic(t *testing.T) {
	c := NewSimClock(10, 1)
	start := c.Now()
	assert.Equal(t, uint32(0), start)

	polls := 0
	for !c.Expired(start, 2) {
		polls++
		require.Less(t, polls, 100)
	}
	// Expired reads the clock once per call: values 1..20.
	assert.Equal(t, 19, polls)
	assert.Equal(t, uint64(21), c.Reads())
}

func TestSimClock_Advance(t *testing.T) {
	c := NewSimClock(1, 0)
	start := c.Now()
	assert.False(t, c.Expired(start, 3))

	c.Advance(3)
	assert.True(t, c.Expired(start, 3))
	assert.Equal(t, uint32(1), c.UnitsPerSecond())
}

func TestSystemSources(t *testing.T) {
	ticks := NewTickClock(SystemTicks())
	start := ticks.Now()
	assert.False(t, ticks.Expired(start, 1))

	secs := NewSecondsClock(SystemSeconds())
	assert.False(t, secs.Expired(secs.Now(), 2))
}
