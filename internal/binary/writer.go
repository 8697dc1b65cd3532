package binary

import (
	"io"
)

// SafeWriter wraps io.Writer with position tracking.
type SafeWriter struct {
	w      io.Writer
	offset int64
}

// NewSafeWriter creates a new SafeWriter.
func NewSafeWriter(w io.Writer) *SafeWriter {
	return &SafeWriter{
		w:      w,
		offset: 0,
	}
}

// Offset returns the current position (number of bytes written).
func (sw *SafeWriter) Offset() int64 {
	return sw.offset
}

// WriteBytes writes raw bytes to the underlying writer.
// A short write without an error from the writer reports io.ErrShortWrite.
func (sw *SafeWriter) WriteBytes(b []byte) error {
	n, err := sw.w.Write(b)
	sw.offset += int64(n)
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	return err
}

// WriteString writes a string as bytes to the underlying writer.
func (sw *SafeWriter) WriteString(s string) error {
	return sw.WriteBytes([]byte(s))
}

// WriteZeroes writes n zero bytes.
func (sw *SafeWriter) WriteZeroes(n int) error {
	var zeroes [512]byte
	for n > 0 {
		chunk := min(n, len(zeroes))
		if err := sw.WriteBytes(zeroes[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Write writes a value of type T in big-endian byte order.
func Write[T Integer](sw *SafeWriter, val T) error {
	return WriteEndian(sw, val, BigEndian)
}

// WriteLE writes a value of type T in little-endian byte order.
func WriteLE[T Integer](sw *SafeWriter, val T) error {
	return WriteEndian(sw, val, LittleEndian)
}

// WriteEndian writes a value of type T with the given byte order.
func WriteEndian[T Integer](sw *SafeWriter, val T, endian Endianness) error {
	var buf [8]byte
	n := sizeOf[T]()
	v := uint64(val)

	if endian == LittleEndian {
		for i := 0; i < n; i++ {
			buf[i] = byte(v >> (8 * i))
		}
	} else {
		for i := 0; i < n; i++ {
			buf[n-1-i] = byte(v >> (8 * i))
		}
	}

	return sw.WriteBytes(buf[:n])
}
