package ebml

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/simonhull/tagsplice/internal/binary"
)

// Writer writes EBML elements.
//
// Example:
//
//	var buf bytes.Buffer
//	w := ebml.NewWriter(&buf)
//	err := w.WriteMaster(ebml.IDSimpleTag, func(w *ebml.Writer) error {
//		if err := w.WriteString(ebml.IDTagName, "TITLE"); err != nil {
//			return err
//		}
//		return w.WriteString(ebml.IDTagString, "Intro")
//	})
type Writer struct {
	sw *binary.SafeWriter
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{sw: binary.NewSafeWriter(w)}
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int64 {
	return w.sw.Offset()
}

// WriteID writes a raw element ID. The ID's width must agree with its
// marker bit.
func (w *Writer) WriteID(id uint64) error {
	width := idWidth(id)
	if VintWidth(byte(id>>(8*(width-1)))) != width {
		return fmt.Errorf("invalid element ID 0x%X", id)
	}
	return w.writeUint(id, width)
}

// WriteSize writes an element size using the smallest width.
func (w *Writer) WriteSize(size int64) error {
	b, err := EncodeSize(size)
	if err != nil {
		return err
	}
	return w.sw.WriteBytes(b)
}

func (w *Writer) writeHeader(id uint64, size int64) error {
	if err := w.WriteID(id); err != nil {
		return err
	}
	return w.WriteSize(size)
}

// writeUint writes the low width bytes of v big-endian.
func (w *Writer) writeUint(v uint64, width int) error {
	var b [8]byte
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return w.sw.WriteBytes(b[:width])
}

// WriteUint writes an unsigned integer element in as few bytes as possible.
func (w *Writer) WriteUint(id, v uint64) error {
	width := 1
	for width < 8 && v >= 1<<(8*width) {
		width++
	}
	if err := w.writeHeader(id, int64(width)); err != nil {
		return err
	}
	return w.writeUint(v, width)
}

// WriteInt writes a signed integer element in as few bytes as possible.
func (w *Writer) WriteInt(id uint64, v int64) error {
	width := 1
	for width < 8 && (v < -(1<<(8*width-1)) || v >= 1<<(8*width-1)) {
		width++
	}
	if err := w.writeHeader(id, int64(width)); err != nil {
		return err
	}
	return w.writeUint(uint64(v), width)
}

// WriteFloat writes an 8-byte float element.
func (w *Writer) WriteFloat(id uint64, v float64) error {
	if err := w.writeHeader(id, 8); err != nil {
		return err
	}
	return binary.Write(w.sw, math.Float64bits(v))
}

// WriteString writes a string element.
func (w *Writer) WriteString(id uint64, s string) error {
	if err := w.writeHeader(id, int64(len(s))); err != nil {
		return err
	}
	return w.sw.WriteString(s)
}

// WriteBytes writes a binary element.
func (w *Writer) WriteBytes(id uint64, b []byte) error {
	if err := w.writeHeader(id, int64(len(b))); err != nil {
		return err
	}
	return w.sw.WriteBytes(b)
}

// WriteDate writes a date element.
func (w *Writer) WriteDate(id uint64, t time.Time) error {
	if err := w.writeHeader(id, 8); err != nil {
		return err
	}
	return binary.Write(w.sw, int64(t.Sub(Epoch)))
}

// WriteMaster writes a master element whose children are written by fn.
// The children are buffered to learn the payload size.
func (w *Writer) WriteMaster(id uint64, fn func(*Writer) error) error {
	var buf bytes.Buffer
	if err := fn(NewWriter(&buf)); err != nil {
		return fmt.Errorf("element 0x%X: %w", id, err)
	}
	return w.WriteBytes(id, buf.Bytes())
}

// WriteVoid writes a Void element occupying exactly total bytes, header
// included. Void elements pad the space left behind when an element shrinks.
func (w *Writer) WriteVoid(total int64) error {
	for width := 1; width <= MaxWidth; width++ {
		payload := total - 1 - int64(width)
		if payload < 0 {
			break
		}
		size, err := EncodeSizeWidth(payload, width)
		if err != nil {
			continue
		}
		if err := w.sw.WriteBytes([]byte{byte(IDVoid)}); err != nil {
			return err
		}
		if err := w.sw.WriteBytes(size); err != nil {
			return err
		}
		return w.sw.WriteZeroes(int(payload))
	}
	return fmt.Errorf("cannot write a Void element of %d bytes", total)
}
