package ebml

import (
	"errors"
	"fmt"
)

// SkipChildren can be returned by a WalkFunc to step over the children of a
// master element.
var SkipChildren = errors.New("skip children") //nolint:revive,staticcheck // Mirrors filepath.SkipDir

// WalkFunc is called for each element visited by Walk, with the cursor at
// the element's payload. It may read the payload; Walk repositions the
// cursor afterwards.
type WalkFunc func(r *Reader, e Element, depth int) error

// Walk visits the elements between the cursor and end depth-first, descending
// into every master element (see IsMaster). A negative end means the end of
// the stream. The cursor must be at an element ID.
//
// A master of unknown size is taken to extend to the end of its parent.
//
// Example:
//
//	err := r.Walk(-1, func(r *ebml.Reader, e ebml.Element, depth int) error {
//		fmt.Printf("%*s0x%X (%d bytes)\n", depth*2, "", e.ID, e.Size)
//		if e.ID == ebml.IDCluster {
//			return ebml.SkipChildren
//		}
//		return nil
//	})
func (r *Reader) Walk(end int64, fn WalkFunc) error {
	if end < 0 || end > r.size {
		end = r.size
	}
	return r.walk(end, 0, fn)
}

func (r *Reader) walk(end int64, depth int, fn WalkFunc) error {
	for {
		pos, err := r.Position()
		if err != nil {
			return err
		}
		if pos >= end {
			return nil
		}

		e, err := r.readHeader(end)
		if err != nil {
			return err
		}

		err = fn(r, e, depth)
		switch {
		case errors.Is(err, SkipChildren):
		case err != nil:
			return err
		case IsMaster(e.ID):
			if err := r.Seek(e.DataOffset); err != nil {
				return err
			}
			if err := r.walk(e.End(end), depth+1, fn); err != nil {
				return fmt.Errorf("in element 0x%X at offset %d: %w", e.ID, e.Offset, err)
			}
		}

		if e.Size == UnknownSize && !IsMaster(e.ID) {
			return r.corrupted(e.Offset, fmt.Sprintf("cannot skip element 0x%X of unknown size", e.ID))
		}
		if err := r.Seek(e.End(end)); err != nil {
			return err
		}
	}
}
