package vinculum

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Field widths of directory responses, in bytes.
const (
	dirSizeBytes = 4
	dirtBytes    = 10
	dirtTimeOff  = 6
	dirtDateOff  = 8
)

// DecodeHexPairs decodes n ASCII-hex byte pairs from s, in the order they
// appear. Spaces and '$' prefixes between pairs are skipped, so
// "00004241" and "$00 $00 $42 $41" decode identically. Text after the n-th
// pair is ignored.
func DecodeHexPairs(s string, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	i := 0

	for len(out) < n {
		for i < len(s) && (s[i] == ' ' || s[i] == '$') {
			i++
		}
		if i+2 > len(s) {
			return out, fmt.Errorf("%w: %d of %d hex pairs in %q", ErrProtocolMismatch, len(out), n, s)
		}

		hi, okHi := hexNibble(s[i])
		lo, okLo := hexNibble(s[i+1])
		if !okHi || !okLo {
			return out, fmt.Errorf("%w: bad hex pair %q in %q", ErrProtocolMismatch, s[i:i+2], s)
		}
		out = append(out, hi<<4|lo)
		i += 2
	}

	return out, nil
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// splitEntry separates "<name> <fields>" at the first space.
func splitEntry(line string) (name, fields string) {
	name, fields, _ = strings.Cut(line, " ")
	return name, fields
}

// decodeFileSize overlays the four transport bytes on a 32-bit word, low
// address first, exactly as the monitor's host CPUs did. Bytes are never
// reordered.
func decodeFileSize(fields string) (uint32, error) {
	b, err := DecodeHexPairs(fields, dirSizeBytes)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

// DirTimestamp holds the raw modification words of a directory entry.
type DirTimestamp struct {
	// Date is the FAT packed date: bits 15-9 year since 1980, 8-5 month,
	// 4-0 day.
	Date uint16
	// Time is the FAT packed time: bits 15-11 hour, 10-5 minute, 4-0
	// seconds/2.
	Time uint16
}

// decodeDirTimestamp keeps the last four of ten bytes: the first word is the
// time, the second the date. The leading six bytes are other dates and are
// discarded.
func decodeDirTimestamp(fields string) (DirTimestamp, error) {
	b, err := DecodeHexPairs(fields, dirtBytes)
	if err != nil {
		return DirTimestamp{}, err
	}

	return DirTimestamp{
		Time: binary.LittleEndian.Uint16(b[dirtTimeOff:]),
		Date: binary.LittleEndian.Uint16(b[dirtDateOff:]),
	}, nil
}
