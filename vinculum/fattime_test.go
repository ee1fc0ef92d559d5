package vinculum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPackFATTime(t *testing.T) {
	date, tm := PackFATTime(time.Date(2020, time.March, 4, 5, 6, 8, 0, time.UTC))
	assert.Equal(t, uint16(0x5064), date)
	assert.Equal(t, uint16(0x28C4), tm)

	date, tm = PackFATTime(time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, uint16(0x0021), date)
	assert.Zero(t, tm)

	date, _ = PackFATTime(time.Date(2200, time.June, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, uint16(127), date>>9)
}

func TestTimestampToken(t *testing.T) {
	tok := TimestampToken(time.Date(2020, time.March, 4, 5, 6, 8, 0, time.UTC))
	assert.Equal(t, " 0x506428C4", tok)
}

func TestDirTimestamp_In(t *testing.T) {
	want := time.Date(2020, time.March, 4, 5, 6, 8, 0, time.UTC)
	date, tm := PackFATTime(want)

	got := DirTimestamp{Date: date, Time: tm}.In(time.UTC)
	assert.Equal(t, want, got)

	assert.True(t, DirTimestamp{}.In(time.UTC).IsZero())
}
