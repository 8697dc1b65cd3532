package tagsplice

import (
	"context"
	"fmt"
	"io"

	"github.com/simonhull/tagsplice/internal/binary"
	"github.com/simonhull/tagsplice/internal/splice"
	"github.com/simonhull/tagsplice/internal/types"
)

// Request describes one resize of a region inside a stream.
//
// A positive Delta inserts Delta bytes at EditOffset. A negative Delta
// removes -Delta bytes ending at EditOffset. FillZeroes zeroes the gap
// opened by an insert.
type Request struct {
	EditOffset int64
	Delta      int64
	FillZeroes bool
}

// Lengthen inserts delta bytes at offset, shifting every following byte
// towards the end of the stream. Bytes before offset are never touched.
//
// With fillZeroes the opened gap is zeroed; otherwise its content is
// unspecified and the caller is expected to overwrite it. On success the
// stream is positioned at offset, ready to write the new bytes.
//
// The stream must support Truncate (like *os.File) or UnsupportedStreamError
// is returned before anything is modified. If the splice fails, the stream is
// restored to its original content and length; only a RollbackError means
// the restore failed too.
//
// Example:
//
//	f, err := os.OpenFile("song.mp3", os.O_RDWR, 0)
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//	// Grow the 1 KiB tag at the start of the file to 4 KiB.
//	if err := tagsplice.Lengthen(f, 1024, 3072, true); err != nil {
//		return err
//	}
func Lengthen(rws io.ReadWriteSeeker, offset, delta int64, fillZeroes bool, opts ...Option) error {
	return LengthenContext(context.Background(), rws, offset, delta, fillZeroes, opts...)
}

// LengthenContext is Lengthen with cancellation. The context is checked
// between transfer slices; a cancelled splice is rolled back and returns an
// error wrapping ctx.Err().
func LengthenContext(ctx context.Context, rws io.ReadWriteSeeker, offset, delta int64, fillZeroes bool, opts ...Option) error {
	m, err := newMover(rws, opts)
	if err != nil {
		return err
	}
	return m.Lengthen(ctx, offset, delta, fillZeroes)
}

// Shorten removes the delta bytes that end at offset, shifting every
// following byte towards the start of the stream and truncating it by delta.
// Bytes before offset-delta are never touched.
//
// On success the stream is positioned at offset-delta.
//
// Example:
//
//	// Lengthen followed by Shorten restores the original stream.
//	_ = tagsplice.Lengthen(f, 5, 3, true)
//	_ = tagsplice.Shorten(f, 8, 3)
func Shorten(rws io.ReadWriteSeeker, offset, delta int64, opts ...Option) error {
	return ShortenContext(context.Background(), rws, offset, delta, opts...)
}

// ShortenContext is Shorten with cancellation.
func ShortenContext(ctx context.Context, rws io.ReadWriteSeeker, offset, delta int64, opts ...Option) error {
	m, err := newMover(rws, opts)
	if err != nil {
		return err
	}
	return m.Shorten(ctx, offset, delta)
}

// CopyWithin copies length bytes from offsetFrom to offsetTo inside the
// stream. The ranges may overlap; the traversal order is picked so that no
// source byte is overwritten before it has been copied. A destination that
// reaches past the end extends the stream.
//
// On success the stream is positioned just past the destination range.
func CopyWithin(ctx context.Context, rws io.ReadWriteSeeker, offsetFrom, offsetTo, length int64, opts ...Option) error {
	m, err := newMover(rws, opts)
	if err != nil {
		return err
	}
	return m.CopyWithin(ctx, offsetFrom, offsetTo, length)
}

// Apply performs one Request.
func Apply(ctx context.Context, rws io.ReadWriteSeeker, req Request, opts ...Option) error {
	m, err := newMover(rws, opts)
	if err != nil {
		return err
	}
	return apply(ctx, m, req)
}

func apply(ctx context.Context, m *splice.Mover, req Request) error {
	if req.Delta < 0 {
		return m.Shorten(ctx, req.EditOffset, -req.Delta)
	}
	return m.Lengthen(ctx, req.EditOffset, req.Delta, req.FillZeroes)
}

// Replace swaps the oldLen bytes at offset for data, resizing the region in
// place when the lengths differ. This is the usual way to write back a tag
// whose encoded size changed.
//
// On success the stream is positioned just past the written data. On failure
// the original bytes and length are restored.
//
// Example:
//
//	// Overwrite a 200-byte tag at the start of the file with a 350-byte one.
//	err := tagsplice.Replace(ctx, f, 0, 200, newTag)
func Replace(ctx context.Context, rws io.ReadWriteSeeker, offset, oldLen int64, data []byte, opts ...Option) error {
	s, err := binary.AsStream(rws)
	if err != nil {
		return err
	}
	size, err := binary.Size(s)
	if err != nil {
		return err
	}
	if offset < 0 || oldLen < 0 || offset+oldLen > size {
		return &types.InvalidRangeError{Offset: offset, Delta: int64(len(data)) - oldLen, Size: size,
			Reason: fmt.Sprintf("replaced range of %d bytes does not fit the stream", oldLen)}
	}

	old := make([]byte, oldLen)
	if err := binary.ReadAt(s, old, offset); err != nil {
		return fmt.Errorf("save replaced range: %w", err)
	}

	cfg := applyOptions(opts).config()
	m := splice.NewMover(s, cfg)
	if err := resize(ctx, m, offset, oldLen, int64(len(data))); err != nil {
		return err
	}

	if err := binary.WriteAt(s, data, offset); err != nil {
		// Put the old window back: resize again without progress and
		// rewrite the saved bytes.
		undo := splice.NewMover(s, splice.Config{Logger: cfg.Logger, BufferSize: cfg.BufferSize})
		rerr := resize(context.Background(), undo, offset, int64(len(data)), oldLen)
		if rerr == nil {
			rerr = binary.WriteAt(s, old, offset)
		}
		if rerr != nil {
			return &types.RollbackError{Cause: err, Rollback: rerr}
		}
		return err
	}

	if _, err := s.Seek(offset+int64(len(data)), io.SeekStart); err != nil {
		return fmt.Errorf("position stream: %w", err)
	}
	return nil
}

// resize changes the region at offset from oldLen to newLen bytes by
// inserting or removing at its end.
func resize(ctx context.Context, m *splice.Mover, offset, oldLen, newLen int64) error {
	end := offset + oldLen
	switch {
	case newLen > oldLen:
		return m.Lengthen(ctx, end, newLen-oldLen, false)
	case newLen < oldLen:
		return m.Shorten(ctx, end, oldLen-newLen)
	}
	return nil
}

func newMover(rws io.ReadWriteSeeker, opts []Option) (*splice.Mover, error) {
	s, err := binary.AsStream(rws)
	if err != nil {
		return nil, err
	}
	return splice.NewMover(s, applyOptions(opts).config()), nil
}
