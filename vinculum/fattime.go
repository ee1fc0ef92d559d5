package vinculum

import (
	"fmt"
	"time"
)

const fatEpochYear = 1980

// PackFATTime packs t into FAT date and time words. Years outside
// 1980-2107 are clamped.
func PackFATTime(t time.Time) (date, tm uint16) {
	year := t.Year()
	switch {
	case year < fatEpochYear:
		return 1<<5 | 1, 0 // 1980-01-01 00:00:00
	case year > fatEpochYear+127:
		year = fatEpochYear + 127
	}

	date = uint16(year-fatEpochYear)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
	tm = uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)

	return date, tm
}

// TimestampToken formats the date/time argument appended to "opw <name>":
// a space and the 32-bit value date<<16|time in hex.
func TimestampToken(t time.Time) string {
	date, tm := PackFATTime(t)
	return fmt.Sprintf(" 0x%08X", uint32(date)<<16|uint32(tm))
}

// In converts the raw words to a time in loc. A zero date yields the zero
// time.
func (d DirTimestamp) In(loc *time.Location) time.Time {
	if d.Date == 0 {
		return time.Time{}
	}

	return time.Date(
		fatEpochYear+int(d.Date>>9),
		time.Month(d.Date>>5&0x0F),
		int(d.Date&0x1F),
		int(d.Time>>11),
		int(d.Time>>5&0x3F),
		int(d.Time&0x1F)*2,
		0, loc,
	)
}
