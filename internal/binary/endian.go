package binary

import (
	"errors"
	"fmt"
	"io"
)

// Endianness represents byte order for multi-byte values.
type Endianness int

const (
	// BigEndian uses big-endian byte order.
	// Used by: EBML/Matroska, MP4 atoms, ID3v2.
	BigEndian Endianness = iota

	// LittleEndian uses little-endian byte order.
	// Used by: RIFF/WAV chunks, FLAC Vorbis comments.
	LittleEndian
)

// Integer is the set of fixed-width integers the readers and writers handle.
type Integer interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64
}

// sizeOf returns the encoded width of T in bytes.
func sizeOf[T Integer]() int {
	var zero T
	switch any(zero).(type) {
	case int8, uint8:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32:
		return 4
	default:
		return 8
	}
}

// ReadBE reads a big-endian value of type T at the cursor.
//
// Example:
//
//	size, err := binary.ReadBE[uint32](br)
func ReadBE[T Integer](br *BufferedReader) (T, error) {
	return ReadEndian[T](br, BigEndian)
}

// ReadLE reads a little-endian value of type T at the cursor.
//
// Example:
//
//	chunkSize, err := binary.ReadLE[uint32](br)
func ReadLE[T Integer](br *BufferedReader) (T, error) {
	return ReadEndian[T](br, LittleEndian)
}

// ReadEndian reads a value of type T at the cursor with the given byte order
// and advances past it. Signed types are sign-extended.
//
// The bytes are made resident first, so consecutive small reads share one
// underlying I/O call.
func ReadEndian[T Integer](br *BufferedReader, endian Endianness) (T, error) {
	n := sizeOf[T]()
	pos := br.Position()

	b, err := br.peek(n)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("read %d-byte integer at offset %d: %w", n, pos, err)
		}
		return 0, err
	}

	var v uint64
	if endian == LittleEndian {
		for i := n - 1; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
	} else {
		for i := 0; i < n; i++ {
			v = v<<8 | uint64(b[i])
		}
	}
	br.cursor += n

	return T(v), nil
}
