package binary

import (
	"errors"
	"io"
)

// ErrNegativePosition is returned when a seek or positioned access targets an
// offset before the start of the stream.
var ErrNegativePosition = errors.New("negative stream position")

// MemoryStream is a growable in-memory Stream.
//
// Writes past the end extend the stream, leaving any gap zero-filled, like a
// sparse file. The zero value is an empty stream ready to use.
type MemoryStream struct {
	buf []byte
	pos int64
}

// NewMemoryStream returns a stream holding a copy of data, positioned at 0.
func NewMemoryStream(data []byte) *MemoryStream {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &MemoryStream{buf: buf}
}

// Bytes returns the stream content. The slice aliases the stream until the
// next write or truncate.
func (m *MemoryStream) Bytes() []byte {
	return m.buf
}

// Len returns the stream length.
func (m *MemoryStream) Len() int64 {
	return int64(len(m.buf))
}

// Read implements io.Reader.
func (m *MemoryStream) Read(p []byte) (int, error) {
	n, err := m.ReadAt(p, m.pos)
	m.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// ReadAt implements io.ReaderAt.
func (m *MemoryStream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrNegativePosition
	}
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Write implements io.Writer.
func (m *MemoryStream) Write(p []byte) (int, error) {
	n, err := m.WriteAt(p, m.pos)
	m.pos += int64(n)
	return n, err
}

// WriteAt implements io.WriterAt.
func (m *MemoryStream) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrNegativePosition
	}
	if end := off + int64(len(p)); end > int64(len(m.buf)) {
		m.grow(end)
	}
	return copy(m.buf[off:], p), nil
}

// Seek implements io.Seeker. Seeking past the end is allowed.
func (m *MemoryStream) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.pos + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, ErrNegativePosition
	}
	m.pos = abs
	return abs, nil
}

// Truncate changes the stream length. Growing appends zero bytes.
func (m *MemoryStream) Truncate(size int64) error {
	if size < 0 {
		return ErrNegativePosition
	}
	if size <= int64(len(m.buf)) {
		m.buf = m.buf[:size]
		return nil
	}
	m.grow(size)
	return nil
}

func (m *MemoryStream) grow(size int64) {
	if size <= int64(cap(m.buf)) {
		old := len(m.buf)
		m.buf = m.buf[:size]
		clear(m.buf[old:])
		return
	}
	buf := make([]byte, size, size+size/4)
	copy(buf, m.buf)
	m.buf = buf
}
