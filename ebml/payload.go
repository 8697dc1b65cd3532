package ebml

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Epoch is the origin of EBML dates.
var Epoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// DecodeUint decodes a big-endian unsigned integer payload of 0 to 8 bytes.
func DecodeUint(b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, fmt.Errorf("unsigned integer of %d bytes (max 8)", len(b))
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// DecodeInt decodes a big-endian two's complement payload of 0 to 8 bytes.
func DecodeInt(b []byte) (int64, error) {
	if len(b) > 8 {
		return 0, fmt.Errorf("signed integer of %d bytes (max 8)", len(b))
	}
	var v int64
	if len(b) > 0 && b[0]&0x80 != 0 {
		v = -1
	}
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v, nil
}

// DecodeFloat decodes an IEEE-754 payload of 0, 4 or 8 bytes.
func DecodeFloat(b []byte) (float64, error) {
	switch len(b) {
	case 0:
		return 0, nil
	case 4:
		v, _ := DecodeUint(b) //nolint:errcheck // length checked
		return float64(math.Float32frombits(uint32(v))), nil
	case 8:
		v, _ := DecodeUint(b) //nolint:errcheck // length checked
		return math.Float64frombits(v), nil
	default:
		return 0, fmt.Errorf("float of %d bytes (must be 4 or 8)", len(b))
	}
}

// DecodeString decodes a Latin-1 payload. The string ends at the first NUL.
func DecodeString(b []byte) string {
	b = cutNUL(b)
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// DecodeUTF8 decodes a UTF-8 payload. The string ends at the first NUL and
// invalid sequences are replaced with U+FFFD.
func DecodeUTF8(b []byte) string {
	b = cutNUL(b)
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// DecodeDate decodes a date payload: nanoseconds since Epoch as a signed
// 8-byte integer. An empty payload is Epoch itself.
func DecodeDate(b []byte) (time.Time, error) {
	switch len(b) {
	case 0:
		return Epoch, nil
	case 8:
		v, _ := DecodeInt(b) //nolint:errcheck // length checked
		return Epoch.Add(time.Duration(v)), nil
	default:
		return time.Time{}, fmt.Errorf("date of %d bytes (must be 8)", len(b))
	}
}

func cutNUL(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}

// Criterion narrows SeekElement to elements whose content matches.
//
// If ID is the ID of the element being sought, Match is applied to that
// element's own payload. Otherwise the element must have a direct child with
// ID whose payload satisfies Match. A nil Match only requires the child to
// exist.
type Criterion struct {
	ID    uint64
	Match func(payload []byte) bool
}

// UintEquals matches an unsigned integer payload equal to want.
//
// Example:
//
//	// The TrackEntry of track 2.
//	size, err := r.SeekElement(ebml.IDTrackEntry, ebml.UintEquals(ebml.IDTrackNumber, 2))
func UintEquals(id, want uint64) Criterion {
	return Criterion{ID: id, Match: func(p []byte) bool {
		v, err := DecodeUint(p)
		return err == nil && v == want
	}}
}

// StringEquals matches a string payload equal to want.
func StringEquals(id uint64, want string) Criterion {
	return Criterion{ID: id, Match: func(p []byte) bool {
		return DecodeUTF8(p) == want
	}}
}

// BytesEquals matches a binary payload equal to want.
func BytesEquals(id uint64, want []byte) Criterion {
	want = bytes.Clone(want)
	return Criterion{ID: id, Match: func(p []byte) bool {
		return bytes.Equal(p, want)
	}}
}
