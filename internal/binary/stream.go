// Package binary provides the stream primitives the splice engine and the
// EBML codec are built on: capability checks over seekable streams,
// positioned block I/O, a buffered random-access reader and an in-memory
// stream.
package binary

import (
	"fmt"
	"io"

	"github.com/simonhull/tagsplice/internal/types"
)

// Truncater is implemented by streams whose length can be changed.
// Truncating to a larger size extends the stream with zero bytes.
type Truncater interface {
	Truncate(size int64) error
}

// Stream is a seekable byte sequence that can be read, written and resized.
// *os.File and *MemoryStream satisfy it.
type Stream interface {
	io.ReadWriteSeeker
	Truncater
}

// AsStream checks that rws can also change its length.
//
// Returns UnsupportedStreamError otherwise. Callers run this before touching
// the stream so capability failures never leave partial edits behind.
func AsStream(rws io.ReadWriteSeeker) (Stream, error) {
	if rws == nil {
		return nil, &types.UnsupportedStreamError{Capability: "reading", Type: "<nil>"}
	}
	s, ok := rws.(Stream)
	if !ok {
		return nil, &types.UnsupportedStreamError{
			Capability: "length changes (Truncate)",
			Type:       fmt.Sprintf("%T", rws),
		}
	}
	return s, nil
}

// Size returns the stream length, restoring the current position afterwards.
func Size(s io.Seeker) (int64, error) {
	pos, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("query position: %w", err)
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("seek to end: %w", err)
	}
	if _, err := s.Seek(pos, io.SeekStart); err != nil {
		return 0, fmt.Errorf("restore position: %w", err)
	}
	return end, nil
}

// ReadAt fills b from offset off. A short read is an error.
//
// Streams implementing io.ReaderAt are read without moving their cursor;
// others are positioned with Seek first.
func ReadAt(s io.ReadSeeker, b []byte, off int64) error {
	var (
		n   int
		err error
	)
	if ra, ok := s.(io.ReaderAt); ok {
		n, err = ra.ReadAt(b, off)
		if err == io.EOF && n == len(b) {
			err = nil
		}
	} else {
		if _, err = s.Seek(off, io.SeekStart); err != nil {
			return fmt.Errorf("seek to %d: %w", off, err)
		}
		n, err = io.ReadFull(s, b)
	}
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("short read at offset %d: got %d bytes, expected %d: %w",
				off, n, len(b), io.ErrUnexpectedEOF)
		}
		return fmt.Errorf("read %d bytes at offset %d: %w", len(b), off, err)
	}
	return nil
}

// WriteAt writes all of b at offset off.
func WriteAt(s io.WriteSeeker, b []byte, off int64) error {
	var (
		n   int
		err error
	)
	if wa, ok := s.(io.WriterAt); ok {
		n, err = wa.WriteAt(b, off)
	} else {
		if _, err = s.Seek(off, io.SeekStart); err != nil {
			return fmt.Errorf("seek to %d: %w", off, err)
		}
		n, err = s.Write(b)
	}
	if err != nil {
		return fmt.Errorf("write %d bytes at offset %d: %w", len(b), off, err)
	}
	if n < len(b) {
		return fmt.Errorf("short write at offset %d: wrote %d bytes, expected %d: %w",
			off, n, len(b), io.ErrShortWrite)
	}
	return nil
}
