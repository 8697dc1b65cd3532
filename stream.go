package tagsplice

import (
	"io"

	"github.com/simonhull/tagsplice/internal/binary"
)

// Stream is a seekable byte sequence that can be read, written and resized.
// *os.File satisfies it.
type Stream = binary.Stream

// MemoryStream is an in-memory Stream, handy for building tags in memory
// and for tests.
type MemoryStream = binary.MemoryStream

// NewMemoryStream returns a MemoryStream holding a copy of data.
func NewMemoryStream(data []byte) *MemoryStream {
	return binary.NewMemoryStream(data)
}

// BufferedReader is a seekable reader that keeps a window of the underlying
// stream in memory. It can stand in for the stream anywhere an
// io.ReadSeeker is expected, including the ebml package.
type BufferedReader = binary.BufferedReader

// NewBufferedReader wraps rs, starting at its current position. A
// non-positive bufSize selects a 4 KiB window.
//
// Example:
//
//	br, err := tagsplice.NewBufferedReader(f, 0)
//	if err != nil {
//		return err
//	}
//	r, err := ebml.NewReader(br, -1, f.Name())
func NewBufferedReader(rs io.ReadSeeker, bufSize int) (*BufferedReader, error) {
	return binary.NewBufferedReader(rs, bufSize)
}

// Integer is the set of fixed-width integers ReadBE and ReadLE decode.
type Integer = binary.Integer

// ReadBE reads a big-endian value of type T at the cursor of br. The bytes
// are made resident first, so runs of small reads share one call on the
// underlying stream. Signed types are sign-extended.
//
// Example:
//
//	br, err := tagsplice.NewBufferedReader(f, 0)
//	if err != nil {
//		return err
//	}
//	boxSize, err := tagsplice.ReadBE[uint32](br)
func ReadBE[T Integer](br *BufferedReader) (T, error) {
	return binary.ReadBE[T](br)
}

// ReadLE reads a little-endian value of type T at the cursor of br.
func ReadLE[T Integer](br *BufferedReader) (T, error) {
	return binary.ReadLE[T](br)
}
