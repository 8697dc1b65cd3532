package ebml

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/simonhull/tagsplice/internal/binary"
	"github.com/simonhull/tagsplice/internal/types"
)

// ErrElementNotFound is returned when a container holds no matching element.
var ErrElementNotFound = errors.New("element not found")

// ErrNotAtSize is returned by a checked Reader when a container scan starts
// anywhere but right after an element ID.
var ErrNotAtSize = errors.New("cursor is not on a size vint")

// Element is the header of one element.
type Element struct {
	ID         uint64 // Raw ID, marker bit kept
	Offset     int64  // Position of the ID
	DataOffset int64  // Position of the payload
	Size       int64  // Payload size, or UnknownSize
}

// HeaderSize returns the encoded size of the ID and size vints.
func (e Element) HeaderSize() int64 {
	return e.DataOffset - e.Offset
}

// SizeOffset returns the position of the size vint, where SeekElement and
// SeekElements expect the cursor when scanning this element's children.
func (e Element) SizeOffset() int64 {
	return e.Offset + int64(idWidth(e.ID))
}

// End returns the offset just past the payload. An element of unknown size
// extends to limit, the end of its parent.
func (e Element) End(limit int64) int64 {
	if e.Size == UnknownSize {
		return limit
	}
	return e.DataOffset + e.Size
}

// Reader reads EBML elements from a seekable stream.
//
// Every read goes straight to the stream at its current position; wrap a file
// in a tagsplice.BufferedReader to avoid a system call per vint. A Reader is
// not safe for concurrent use.
type Reader struct {
	rs      io.ReadSeeker
	size    int64
	name    string
	scratch [MaxWidth]byte
	sizes   map[int64]struct{} // Offsets following a decoded ID; nil unless checked
}

// NewReader returns a Reader over rs. If size is negative it is taken from
// the stream. name only appears in error messages.
func NewReader(rs io.ReadSeeker, size int64, name string) (*Reader, error) {
	if size < 0 {
		s, err := binary.Size(rs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		size = s
	}
	return &Reader{rs: rs, size: size, name: name}, nil
}

// SetChecked turns cursor checking on or off. A checked Reader remembers where
// every ID it decodes ends, and SeekElement, FindElement and SeekElements fail
// with ErrNotAtSize unless the cursor is at one of those offsets. Containers
// whose ID was never read through this Reader cannot be scanned while checked.
func (r *Reader) SetChecked(on bool) {
	if !on {
		r.sizes = nil
		return
	}
	if r.sizes == nil {
		r.sizes = make(map[int64]struct{})
	}
}

// Size returns the size of the stream.
func (r *Reader) Size() int64 {
	return r.size
}

// Position returns the current offset in the stream.
func (r *Reader) Position() (int64, error) {
	pos, err := r.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("%s: query position: %w", r.name, err)
	}
	return pos, nil
}

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(offset int64) error {
	if _, err := r.rs.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("%s: seek to %d: %w", r.name, offset, err)
	}
	return nil
}

// ReadVint reads a vint at the cursor. With raw the marker bit is kept (for
// element IDs); otherwise an all-ones vint yields UnknownSize.
func (r *Reader) ReadVint(raw bool) (int64, error) {
	pos, err := r.Position()
	if err != nil {
		return 0, err
	}
	if err := r.readFull(r.scratch[:1], pos, "vint"); err != nil {
		return 0, err
	}
	width := VintWidth(r.scratch[0])
	if width == 0 {
		return 0, r.corrupted(pos, "vint without width marker (first byte 0x00)")
	}
	if width > 1 {
		if err := r.readFull(r.scratch[1:width], pos+1, "vint"); err != nil {
			return 0, err
		}
	}
	return decodeWidth(r.scratch[:width], raw), nil
}

// ReadID reads an element ID at the cursor.
func (r *Reader) ReadID() (uint64, error) {
	v, err := r.ReadVint(true)
	if err != nil || r.sizes == nil {
		return uint64(v), err
	}
	pos, err := r.Position()
	if err != nil {
		return 0, err
	}
	r.sizes[pos] = struct{}{}
	return uint64(v), nil
}

// ReadSize reads an element size at the cursor. A size reaching past the end
// of the stream is reported as corruption.
func (r *Reader) ReadSize() (int64, error) {
	pos, err := r.Position()
	if err != nil {
		return 0, err
	}
	size, err := r.ReadVint(false)
	if err != nil || size == UnknownSize {
		return size, err
	}
	data, err := r.Position()
	if err != nil {
		return 0, err
	}
	if size > r.size-data {
		return 0, r.corrupted(pos, fmt.Sprintf("element size %d exceeds the %d bytes left in the stream",
			size, r.size-data))
	}
	return size, nil
}

// ReadElement reads the element header at the cursor, leaving the cursor at
// the start of its payload.
func (r *Reader) ReadElement() (Element, error) {
	return r.readHeader(r.size)
}

// readHeader reads an element header that must fit before end.
func (r *Reader) readHeader(end int64) (Element, error) {
	var e Element
	var err error
	if e.Offset, err = r.Position(); err != nil {
		return e, err
	}
	if e.ID, err = r.ReadID(); err != nil {
		return e, err
	}
	if e.Size, err = r.ReadSize(); err != nil {
		return e, err
	}
	if e.DataOffset, err = r.Position(); err != nil {
		return e, err
	}
	if e.Size != UnknownSize && e.DataOffset+e.Size > end {
		return e, r.corrupted(e.Offset, fmt.Sprintf("element 0x%X of %d bytes overruns its container ending at %d",
			e.ID, e.Size, end))
	}
	return e, nil
}

// SeekElement finds a child of the container whose size vint is at the
// cursor. The first child with the given ID that satisfies every criterion
// wins: the cursor is left at its payload and its payload size is returned.
//
// Children that do not match are skipped without reading their payload. If
// nothing matches, the error wraps ErrElementNotFound and the cursor is left
// at the end of the container.
//
// Example:
//
//	// Cursor is just past the Tracks ID; find the entry for track 2.
//	size, err := r.SeekElement(ebml.IDTrackEntry, ebml.UintEquals(ebml.IDTrackNumber, 2))
func (r *Reader) SeekElement(id uint64, criteria ...Criterion) (int64, error) {
	e, err := r.FindElement(id, criteria...)
	if err != nil {
		return 0, err
	}
	return e.Size, nil
}

// FindElement is SeekElement returning the whole header of the match. Seek
// to its SizeOffset to search the match's own children.
//
// Example:
//
//	// Cursor is just past the Segment ID.
//	tags, err := r.FindElement(ebml.IDTags)
//	if err != nil {
//		return err
//	}
//	if err := r.Seek(tags.SizeOffset()); err != nil {
//		return err
//	}
//	offsets, err := r.SeekElements(ebml.IDTag)
func (r *Reader) FindElement(id uint64, criteria ...Criterion) (Element, error) {
	end, err := r.enter()
	if err != nil {
		return Element{}, err
	}
	return r.scan(end, id, criteria)
}

// SeekElements returns the payload offsets of every child of the container
// that matches, in stream order. The cursor is put back where it was, before
// the container's size vint.
func (r *Reader) SeekElements(id uint64, criteria ...Criterion) ([]int64, error) {
	start, err := r.Position()
	if err != nil {
		return nil, err
	}
	end, err := r.enter()
	if err != nil {
		return nil, err
	}

	var offsets []int64
	for {
		e, err := r.scan(end, id, criteria)
		if errors.Is(err, ErrElementNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		offsets = append(offsets, e.DataOffset)
		if e.Size == UnknownSize {
			break
		}
		if err := r.Seek(e.End(end)); err != nil {
			return nil, err
		}
	}
	return offsets, r.Seek(start)
}

// enter reads the container size at the cursor and returns the container end.
func (r *Reader) enter() (int64, error) {
	if r.sizes != nil {
		pos, err := r.Position()
		if err != nil {
			return 0, err
		}
		if _, ok := r.sizes[pos]; !ok {
			return 0, fmt.Errorf("%s: container scan at offset %d: %w", r.name, pos, ErrNotAtSize)
		}
	}
	size, err := r.ReadSize()
	if err != nil {
		return 0, err
	}
	start, err := r.Position()
	if err != nil {
		return 0, err
	}
	if size == UnknownSize {
		return r.size, nil
	}
	return start + size, nil
}

// scan looks for a matching sibling between the cursor and end.
func (r *Reader) scan(end int64, id uint64, criteria []Criterion) (Element, error) {
	for {
		pos, err := r.Position()
		if err != nil {
			return Element{}, err
		}
		if pos >= end {
			return Element{}, fmt.Errorf("%s: element 0x%X before offset %d: %w", r.name, id, end, ErrElementNotFound)
		}

		e, err := r.readHeader(end)
		if err != nil {
			return Element{}, err
		}
		if e.ID == id {
			ok, err := r.matches(e, end, criteria)
			if err != nil {
				return Element{}, err
			}
			if ok {
				return e, nil
			}
		}

		if e.Size == UnknownSize {
			return Element{}, r.corrupted(e.Offset, fmt.Sprintf("cannot skip element 0x%X of unknown size", e.ID))
		}
		if err := r.Seek(e.End(end)); err != nil {
			return Element{}, err
		}
	}
}

// matches checks every criterion against e. The cursor is at e's payload on
// entry and on return.
func (r *Reader) matches(e Element, end int64, criteria []Criterion) (bool, error) {
	for _, c := range criteria {
		ok, err := r.satisfies(e, end, c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// satisfies checks one criterion and restores the cursor whatever the outcome.
func (r *Reader) satisfies(e Element, end int64, c Criterion) (ok bool, err error) {
	pos, err := r.Position()
	if err != nil {
		return false, err
	}
	defer func() {
		if serr := r.Seek(pos); serr != nil && err == nil {
			ok, err = false, serr
		}
	}()

	if c.ID == e.ID {
		if c.Match == nil {
			return true, nil
		}
		if e.Size == UnknownSize {
			return false, nil
		}
		if err := r.Seek(e.DataOffset); err != nil {
			return false, err
		}
		payload, err := r.ReadPayload(e.Size)
		if err != nil {
			return false, err
		}
		return c.Match(payload), nil
	}

	if err := r.Seek(e.DataOffset); err != nil {
		return false, err
	}
	_, err = r.scan(e.End(end), c.ID, []Criterion{c})
	if errors.Is(err, ErrElementNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ReadPayload reads size bytes at the cursor.
func (r *Reader) ReadPayload(size int64) ([]byte, error) {
	pos, err := r.Position()
	if err != nil {
		return nil, err
	}
	if size < 0 || size > r.size-pos {
		return nil, &types.OutOfBoundsError{
			Path:   r.name,
			What:   "element payload",
			Offset: pos,
			Length: size,
			Size:   r.size,
		}
	}
	b := make([]byte, size)
	if err := r.readFull(b, pos, "element payload"); err != nil {
		return nil, err
	}
	return b, nil
}

// Skip moves the cursor size bytes forward.
func (r *Reader) Skip(size int64) error {
	if size == UnknownSize {
		pos, err := r.Position()
		if err != nil {
			return err
		}
		return r.corrupted(pos, "cannot skip an element of unknown size")
	}
	if _, err := r.rs.Seek(size, io.SeekCurrent); err != nil {
		return fmt.Errorf("%s: skip %d bytes: %w", r.name, size, err)
	}
	return nil
}

// readSized reads a size vint and the payload it announces.
func (r *Reader) readSized() ([]byte, int64, error) {
	pos, err := r.Position()
	if err != nil {
		return nil, 0, err
	}
	size, err := r.ReadSize()
	if err != nil {
		return nil, pos, err
	}
	if size == UnknownSize {
		return nil, pos, r.corrupted(pos, "value element of unknown size")
	}
	if size == 0 {
		return nil, pos, nil
	}
	b, err := r.ReadPayload(size)
	return b, pos, err
}

// ReadUint reads a size vint and an unsigned integer payload.
func (r *Reader) ReadUint() (uint64, error) {
	b, pos, err := r.readSized()
	if err != nil {
		return 0, err
	}
	v, err := DecodeUint(b)
	if err != nil {
		return 0, r.corrupted(pos, err.Error())
	}
	return v, nil
}

// ReadInt reads a size vint and a signed integer payload.
func (r *Reader) ReadInt() (int64, error) {
	b, pos, err := r.readSized()
	if err != nil {
		return 0, err
	}
	v, err := DecodeInt(b)
	if err != nil {
		return 0, r.corrupted(pos, err.Error())
	}
	return v, nil
}

// ReadFloat reads a size vint and a 4 or 8 byte float payload.
func (r *Reader) ReadFloat() (float64, error) {
	b, pos, err := r.readSized()
	if err != nil {
		return 0, err
	}
	v, err := DecodeFloat(b)
	if err != nil {
		return 0, r.corrupted(pos, err.Error())
	}
	return v, nil
}

// ReadString reads a size vint and a Latin-1 string payload.
func (r *Reader) ReadString() (string, error) {
	b, _, err := r.readSized()
	if err != nil {
		return "", err
	}
	return DecodeString(b), nil
}

// ReadUTF8 reads a size vint and a UTF-8 string payload.
func (r *Reader) ReadUTF8() (string, error) {
	b, _, err := r.readSized()
	if err != nil {
		return "", err
	}
	return DecodeUTF8(b), nil
}

// ReadBytes reads a size vint and a binary payload.
func (r *Reader) ReadBytes() ([]byte, error) {
	b, _, err := r.readSized()
	if err != nil {
		return nil, err
	}
	if b == nil {
		return []byte{}, nil
	}
	return b, nil
}

// ReadDate reads a size vint and a date payload.
func (r *Reader) ReadDate() (time.Time, error) {
	b, pos, err := r.readSized()
	if err != nil {
		return time.Time{}, err
	}
	v, err := DecodeDate(b)
	if err != nil {
		return time.Time{}, r.corrupted(pos, err.Error())
	}
	return v, nil
}

// readFull fills b from the stream, which is at pos.
func (r *Reader) readFull(b []byte, pos int64, what string) error {
	if _, err := io.ReadFull(r.rs, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return &types.OutOfBoundsError{
				Path:   r.name,
				What:   what,
				Offset: pos,
				Length: int64(len(b)),
				Size:   r.size,
			}
		}
		return fmt.Errorf("%s: read %s at offset %d: %w", r.name, what, pos, err)
	}
	return nil
}

func (r *Reader) corrupted(offset int64, reason string) error {
	return &types.CorruptedFileError{
		Path:   r.name,
		Offset: offset,
		Reason: reason,
	}
}
