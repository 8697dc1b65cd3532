package binary

import (
	"errors"
	"fmt"
	"io"
)

// DefaultBufferSize is the window size used when NewBufferedReader is given
// a non-positive size.
const DefaultBufferSize = 4096

// BufferedReader is a seekable read cursor over an io.ReadSeeker that keeps a
// window of the stream in memory to cut down on underlying I/O calls.
//
// Seeks that land inside the window only move the cursor. Reads larger than
// the window bypass it and go straight to the stream. Fixed-width reads
// (see ReadEndian) refill the window by keeping the unread tail and fetching
// only the missing bytes.
//
// A BufferedReader is not safe for concurrent use, and the underlying stream
// must not be read or repositioned by anyone else while it is in use.
type BufferedReader struct {
	rs  io.ReadSeeker
	buf []byte

	// bufOffset is the absolute stream offset of buf[0]. The underlying
	// stream is always positioned at bufOffset+size.
	bufOffset int64
	size      int
	cursor    int
}

// NewBufferedReader returns a reader positioned at the current offset of rs.
func NewBufferedReader(rs io.ReadSeeker, bufSize int) (*BufferedReader, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("query stream position: %w", err)
	}
	return &BufferedReader{
		rs:        rs,
		buf:       make([]byte, bufSize),
		bufOffset: pos,
	}, nil
}

// Buffered returns rs itself if it is already a BufferedReader, otherwise a
// new one over rs with the given window size.
func Buffered(rs io.ReadSeeker, bufSize int) (*BufferedReader, error) {
	if br, ok := rs.(*BufferedReader); ok {
		return br, nil
	}
	return NewBufferedReader(rs, bufSize)
}

// Position returns the logical read position.
func (br *BufferedReader) Position() int64 {
	return br.bufOffset + int64(br.cursor)
}

// Buffered returns the number of bytes that can be read without I/O.
func (br *BufferedReader) Buffered() int {
	return br.size - br.cursor
}

// Read implements io.Reader.
//
// Requests satisfied by the window cost no I/O. Requests whose remainder is
// at least as large as the window drain it and read the rest directly into p,
// leaving the window empty at the new position.
func (br *BufferedReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	avail := br.size - br.cursor
	if len(p) <= avail {
		copy(p, br.buf[br.cursor:br.cursor+len(p)])
		br.cursor += len(p)
		return len(p), nil
	}

	if len(p)-avail >= len(br.buf) {
		return br.readDirect(p)
	}

	if err := br.prepareBuffer(min(len(p), len(br.buf))); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, err
	}
	n := copy(p, br.buf[br.cursor:br.size])
	br.cursor += n
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// readDirect drains the window into p and reads the remainder from the stream.
func (br *BufferedReader) readDirect(p []byte) (int, error) {
	n := copy(p, br.buf[br.cursor:br.size])
	m, err := io.ReadFull(br.rs, p[n:])

	// The stream now sits just past the bytes handed out; start an empty
	// window there.
	br.bufOffset += int64(br.size + m)
	br.size = 0
	br.cursor = 0

	switch {
	case err == nil:
		return n + m, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		if n+m == 0 {
			return 0, io.EOF
		}
		return n + m, nil
	default:
		return n + m, fmt.Errorf("read at offset %d: %w", br.bufOffset, err)
	}
}

// ReadFull reads exactly len(p) bytes. Hitting the end of the stream first
// is an error wrapping io.ErrUnexpectedEOF.
func (br *BufferedReader) ReadFull(p []byte) error {
	start := br.Position()
	n, err := io.ReadFull(br, p)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("short read at offset %d: got %d bytes, expected %d: %w",
				start, n, len(p), io.ErrUnexpectedEOF)
		}
		return err
	}
	return nil
}

// ReadByte implements io.ByteReader.
func (br *BufferedReader) ReadByte() (byte, error) {
	if err := br.prepareBuffer(1); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, io.EOF
		}
		return 0, err
	}
	b := br.buf[br.cursor]
	br.cursor++
	return b, nil
}

// Seek implements io.Seeker.
//
// A destination inside the window only moves the cursor. Anything else
// repositions the stream and refills the window there.
func (br *BufferedReader) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = br.Position() + offset
	case io.SeekEnd:
		end, err := br.rs.Seek(offset, io.SeekEnd)
		if err != nil {
			return br.Position(), fmt.Errorf("seek from end: %w", err)
		}
		return end, br.refill(end)
	default:
		return br.Position(), fmt.Errorf("seek: invalid whence %d", whence)
	}

	if target < 0 {
		return br.Position(), fmt.Errorf("seek to %d: %w", target, ErrNegativePosition)
	}

	if target >= br.bufOffset && target <= br.bufOffset+int64(br.size) {
		br.cursor = int(target - br.bufOffset)
		return target, nil
	}

	if _, err := br.rs.Seek(target, io.SeekStart); err != nil {
		return br.Position(), fmt.Errorf("seek to %d: %w", target, err)
	}
	return target, br.refill(target)
}

// refill discards the window and fills it from target, where the stream is
// already positioned. Reaching the end of the stream is not an error.
func (br *BufferedReader) refill(target int64) error {
	br.bufOffset = target
	br.size = 0
	br.cursor = 0

	m, err := io.ReadFull(br.rs, br.buf)
	br.size = m
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("fill buffer at offset %d: %w", target, err)
	}
	return nil
}

// prepareBuffer makes sure n bytes are resident at the cursor.
//
// The unread tail is moved to the front of the window and only the missing
// bytes are requested from the stream. Returns an error wrapping
// io.ErrUnexpectedEOF if the stream ends first; whatever was read stays
// resident.
func (br *BufferedReader) prepareBuffer(n int) error {
	if br.size-br.cursor >= n {
		return nil
	}

	if n > len(br.buf) {
		grown := make([]byte, n)
		br.size = copy(grown, br.buf[br.cursor:br.size])
		br.buf = grown
	} else {
		br.size = copy(br.buf, br.buf[br.cursor:br.size])
	}
	br.bufOffset += int64(br.cursor)
	br.cursor = 0

	m, err := io.ReadAtLeast(br.rs, br.buf[br.size:], n-br.size)
	br.size += m
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("need %d bytes at offset %d, stream has %d: %w",
				n, br.bufOffset, br.size, io.ErrUnexpectedEOF)
		}
		return fmt.Errorf("fill buffer at offset %d: %w", br.bufOffset+int64(br.size), err)
	}
	return nil
}

// peek returns the n resident bytes at the cursor without consuming them.
func (br *BufferedReader) peek(n int) ([]byte, error) {
	if err := br.prepareBuffer(n); err != nil {
		return nil, err
	}
	return br.buf[br.cursor : br.cursor+n], nil
}
