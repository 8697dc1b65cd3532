// Package ebml reads and writes EBML, the binary container format used by
// Matroska and WebM.
//
// An EBML document is a tree of elements. Each element is an ID, a size and
// a payload of that many bytes, where both the ID and the size are vints:
// variable-length integers whose leading zero bits declare their own width.
//
// The Reader never builds the tree. It scans siblings inside a container one
// at a time and keeps only the offsets it was asked for, which keeps memory
// flat even for multi-gigabyte files.
package ebml

import (
	"errors"
	"fmt"
)

// UnknownSize is returned for a size vint with every data bit set, which
// EBML reserves for elements of unknown length (typically a live-streamed
// Segment or Cluster).
const UnknownSize int64 = -1

// MaxWidth is the widest vint EBML allows.
const MaxWidth = 8

// MaxValue is the largest value a vint can carry.
const MaxValue = 1<<(7*MaxWidth) - 1

// ErrValueTooLarge is returned when a value does not fit in a vint.
var ErrValueTooLarge = errors.New("value does not fit in a vint")

// widthMarkers holds the marker bit of the first byte for each width.
var widthMarkers = [MaxWidth]byte{0x80, 0x40, 0x20, 0x10, 0x08, 0x04, 0x02, 0x01}

// VintWidth returns the width declared by the first byte of a vint, or 0 if
// the byte carries no marker bit.
func VintWidth(first byte) int {
	for i, m := range widthMarkers {
		if first&m != 0 {
			return i + 1
		}
	}
	return 0
}

// EncodeVint encodes value as a vint. With optimize the smallest width that
// holds the value is used, otherwise the full 8 bytes.
//
// Note that the all-ones pattern of a width reads back as UnknownSize. Use
// EncodeSize for element sizes.
//
// Example:
//
//	b, _ := ebml.EncodeVint(127, true) // []byte{0xFF}
//	b, _ = ebml.EncodeVint(128, true)  // []byte{0x40, 0x80}
func EncodeVint(value uint64, optimize bool) ([]byte, error) {
	if value > MaxValue {
		return nil, fmt.Errorf("encode %d: %w", value, ErrValueTooLarge)
	}
	width := MaxWidth
	if optimize {
		width = 1
		for value >= 1<<(7*width) {
			width++
		}
	}
	return putVint(value, width), nil
}

// EncodeSize encodes an element size with the smallest width whose
// unknown-size pattern differs from size. UnknownSize encodes as the 8-byte
// unknown-size pattern.
func EncodeSize(size int64) ([]byte, error) {
	if size == UnknownSize {
		return putVint(MaxValue, MaxWidth), nil
	}
	if size < 0 || size >= MaxValue {
		return nil, fmt.Errorf("encode size %d: %w", size, ErrValueTooLarge)
	}
	width := 1
	for uint64(size) >= 1<<(7*width)-1 {
		width++
	}
	return putVint(uint64(size), width), nil
}

// EncodeSizeWidth encodes size using exactly width bytes, as needed when a
// size is patched in place.
func EncodeSizeWidth(size int64, width int) ([]byte, error) {
	if width < 1 || width > MaxWidth {
		return nil, fmt.Errorf("invalid vint width %d", width)
	}
	if size < 0 || uint64(size) >= 1<<(7*width)-1 {
		return nil, fmt.Errorf("encode size %d in %d bytes: %w", size, width, ErrValueTooLarge)
	}
	return putVint(uint64(size), width), nil
}

// putVint serializes value big-endian in width bytes with the width marker set.
func putVint(value uint64, width int) []byte {
	value |= 1 << (7 * width)
	b := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(value)
		value >>= 8
	}
	return b
}

// DecodeVint decodes the vint at the start of b and returns its value and
// width. With raw the marker bit is kept, which is how element IDs are
// compared. Without raw, a vint whose data bits are all set decodes to
// UnknownSize.
func DecodeVint(b []byte, raw bool) (value int64, width int, err error) {
	if len(b) == 0 {
		return 0, 0, errors.New("decode vint: empty input")
	}
	width = VintWidth(b[0])
	if width == 0 {
		return 0, 0, errors.New("decode vint: no width marker in first byte")
	}
	if len(b) < width {
		return 0, 0, fmt.Errorf("decode vint: need %d bytes, have %d", width, len(b))
	}
	return decodeWidth(b[:width], raw), width, nil
}

// decodeWidth decodes a vint whose width has already been checked.
func decodeWidth(b []byte, raw bool) int64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	if raw {
		return int64(v)
	}
	data := uint64(1)<<(7*len(b)) - 1
	v &= data
	if v == data {
		return UnknownSize
	}
	return int64(v)
}

// idWidth returns the number of bytes a raw element ID occupies.
func idWidth(id uint64) int {
	width := 1
	for width < MaxWidth && id >= 1<<(8*width) {
		width++
	}
	return width
}
