// Package matroska finds the Tags element of Matroska and WebM files.
//
// Only the region is located here. Resizing it shifts every later element,
// so a caller that grows or shrinks Tags must also patch the Segment size
// and any SeekHead or Cues entry that points past it.
package matroska

import (
	"errors"
	"io"

	"github.com/simonhull/tagsplice/ebml"
	"github.com/simonhull/tagsplice/internal/binary"
	"github.com/simonhull/tagsplice/internal/registry"
	"github.com/simonhull/tagsplice/internal/types"
)

func init() {
	registry.Register(types.FormatMatroska, &locator{})
}

// errFound stops the walk once Tags has been seen.
var errFound = errors.New("found")

// locator implements registry.Locator for Matroska files.
type locator struct{}

// Locate returns the first top-level Tags element of the first Segment. A
// file without one yields an empty region at the end of the Segment, where
// muxers append Tags.
func (l *locator) Locate(rs io.ReadSeeker, size int64, path string) (types.Region, error) {
	br, err := binary.Buffered(rs, 0)
	if err != nil {
		return types.Region{}, err
	}
	r, err := ebml.NewReader(br, size, path)
	if err != nil {
		return types.Region{}, err
	}
	if err := r.Seek(0); err != nil {
		return types.Region{}, err
	}

	var (
		tags       ebml.Element
		segment    ebml.Element
		sawHeader  bool
		sawSegment bool
	)
	err = r.Walk(-1, func(r *ebml.Reader, e ebml.Element, depth int) error {
		if depth == 0 {
			switch {
			case e.ID == ebml.IDEBML:
				sawHeader = true
			case e.ID == ebml.IDSegment && !sawSegment:
				sawSegment = true
				segment = e
				return nil
			}
			return ebml.SkipChildren
		}
		if e.ID == ebml.IDTags {
			tags = e
			return errFound
		}
		return ebml.SkipChildren
	})

	switch {
	case errors.Is(err, errFound):
		return types.Region{Offset: tags.Offset, Length: tags.End(segment.End(size)) - tags.Offset}, nil
	case err != nil:
		return types.Region{}, err
	case !sawHeader:
		return types.Region{}, &types.CorruptedFileError{Path: path, Reason: "missing EBML header"}
	case !sawSegment:
		return types.Region{}, &types.CorruptedFileError{Path: path, Reason: "missing Segment element"}
	}
	return types.Region{Offset: segment.End(size)}, nil
}
