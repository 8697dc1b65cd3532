// Package splice implements in-place resizing of a byte region inside a
// stream by shifting the bytes that follow it.
//
// Every operation is built on one directional copy. Moving bytes towards the
// start of the stream copies slices in ascending order, moving them towards
// the end copies in descending order, so a slice is always read before any
// write can land on it, whatever the overlap between source and destination.
package splice

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/simonhull/tagsplice/internal/binary"
	"github.com/simonhull/tagsplice/internal/types"
)

// DefaultBufferSize is the transfer buffer used when Config.BufferSize is not set.
const DefaultBufferSize = 64 * 1024

// Config tunes a Mover.
type Config struct {
	// Progress, if set, is called about ten times per operation on the
	// goroutine running it.
	Progress Progress

	// Logger receives debug records for each operation and rollback.
	Logger logrus.FieldLogger

	// BufferSize is the transfer slice size in bytes.
	BufferSize int
}

// Mover shifts byte ranges within one stream.
//
// A Mover owns the stream for the duration of each call; nothing else may
// read, write or reposition it meanwhile. Operations are all-or-nothing: on
// failure or cancellation every byte moved so far is moved back, overwritten
// bytes are restored and the original length is reinstated.
type Mover struct {
	s        binary.Stream
	buf      []byte
	progress Progress
	log      logrus.FieldLogger
}

// NewMover returns a Mover for s.
func NewMover(s binary.Stream, cfg Config) *Mover {
	size := cfg.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Mover{
		s:        s,
		buf:      make([]byte, size),
		progress: cfg.Progress,
		log:      log,
	}
}

// move describes one directional copy and how much of it has been applied.
type move struct {
	from   int64
	to     int64
	length int64
	done   int64
}

// forward reports whether bytes travel towards the start of the stream.
func (mv *move) forward() bool {
	return mv.to < mv.from
}

// clobbered returns the part of the destination outside the source, whose
// original content the move destroys.
func (mv *move) clobbered() (off, n int64) {
	if mv.forward() {
		end := min(mv.to+mv.length, mv.from)
		return mv.to, end - mv.to
	}
	start := max(mv.to, mv.from+mv.length)
	return start, mv.to + mv.length - start
}

// snapshot is a saved copy of bytes a move is about to overwrite.
type snapshot struct {
	off  int64
	data []byte
}

// Lengthen inserts delta bytes at offset, shifting everything from offset to
// the end of the stream towards the end. With fillZeroes the opened gap is
// zeroed; otherwise it keeps whatever bytes were there.
//
// On success the stream is positioned at offset.
func (m *Mover) Lengthen(ctx context.Context, offset, delta int64, fillZeroes bool) error {
	size, err := binary.Size(m.s)
	if err != nil {
		return err
	}
	if err := checkRange(offset, delta, size, offset); err != nil {
		return err
	}
	log := m.log.WithFields(logrus.Fields{"op": "lengthen", "offset": offset, "delta": delta, "size": size})
	if delta == 0 {
		m.progressFor(0).update(0)
		return m.position(offset)
	}

	log.Debug("Extending stream.")
	if err := m.s.Truncate(size + delta); err != nil {
		return fmt.Errorf("extend stream to %d bytes: %w", size+delta, err)
	}

	mv := &move{from: offset, to: offset + delta, length: size - offset}
	if err := m.run(ctx, mv, m.progressFor(mv.length)); err != nil {
		return m.rollback(log, mv, nil, size, err)
	}

	if fillZeroes {
		if err := m.zero(offset, delta); err != nil {
			return m.rollback(log, mv, nil, size, err)
		}
	}

	log.WithField("bytes", mv.length).Debug("Lengthened stream.")
	return m.position(offset)
}

// Shorten removes the delta bytes that end at offset, shifting everything
// from offset to the end of the stream towards the start, then truncates.
//
// On success the stream is positioned at offset-delta.
func (m *Mover) Shorten(ctx context.Context, offset, delta int64) error {
	size, err := binary.Size(m.s)
	if err != nil {
		return err
	}
	if err := checkRange(offset, delta, size, offset-delta); err != nil {
		return err
	}
	log := m.log.WithFields(logrus.Fields{"op": "shorten", "offset": offset, "delta": delta, "size": size})
	if delta == 0 {
		m.progressFor(0).update(0)
		return m.position(offset)
	}

	mv := &move{from: offset, to: offset - delta, length: size - offset}
	saved, err := m.save(mv, size)
	if err != nil {
		return err
	}

	if err := m.run(ctx, mv, m.progressFor(mv.length)); err != nil {
		return m.rollback(log, mv, saved, size, err)
	}

	if err := m.s.Truncate(size - delta); err != nil {
		return m.rollback(log, mv, saved, size, fmt.Errorf("truncate stream to %d bytes: %w", size-delta, err))
	}

	log.WithField("bytes", mv.length).Debug("Shortened stream.")
	return m.position(offset - delta)
}

// CopyWithin copies length bytes from offsetFrom to offsetTo inside the
// stream, choosing the traversal order that keeps overlapping ranges intact.
// The destination may reach past the end of the stream, which extends it.
//
// On success the stream is positioned at offsetTo+length.
func (m *Mover) CopyWithin(ctx context.Context, offsetFrom, offsetTo, length int64) error {
	size, err := binary.Size(m.s)
	if err != nil {
		return err
	}
	switch {
	case offsetFrom < 0 || offsetTo < 0 || length < 0:
		return &types.InvalidRangeError{Offset: offsetFrom, Delta: offsetTo - offsetFrom, Size: size,
			Reason: "negative offset or length"}
	case offsetFrom+length > size:
		return &types.InvalidRangeError{Offset: offsetFrom, Delta: offsetTo - offsetFrom, Size: size,
			Reason: fmt.Sprintf("source range of %d bytes ends past the stream", length)}
	case offsetTo > size:
		return &types.InvalidRangeError{Offset: offsetFrom, Delta: offsetTo - offsetFrom, Size: size,
			Reason: "destination starts past the end of the stream"}
	}
	log := m.log.WithFields(logrus.Fields{"op": "copy", "from": offsetFrom, "to": offsetTo, "bytes": length})

	mv := &move{from: offsetFrom, to: offsetTo, length: length}
	saved, err := m.save(mv, size)
	if err != nil {
		return err
	}
	if err := m.run(ctx, mv, m.progressFor(length)); err != nil {
		return m.rollback(log, mv, saved, size, err)
	}

	log.Debug("Copied range.")
	return m.position(offsetTo + length)
}

// checkRange validates a resize request against the stream size. low is the
// lowest offset the edit touches.
func checkRange(offset, delta, size, low int64) error {
	switch {
	case delta < 0:
		return &types.InvalidRangeError{Offset: offset, Delta: delta, Size: size, Reason: "negative delta"}
	case offset < 0 || offset > size:
		return &types.InvalidRangeError{Offset: offset, Delta: delta, Size: size, Reason: "offset outside the stream"}
	case low < 0:
		return &types.InvalidRangeError{Offset: offset, Delta: delta, Size: size, Reason: "removed range starts before the stream"}
	}
	return nil
}

// run applies mv slice by slice, resuming from mv.done. The context is only
// consulted between slices.
func (m *Mover) run(ctx context.Context, mv *move, r *reporter) error {
	if mv.from == mv.to {
		mv.done = mv.length
		r.update(mv.done)
		return nil
	}

	for mv.done < mv.length {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled after %d of %d bytes: %w", mv.done, mv.length, err)
		}

		n := min(int64(len(m.buf)), mv.length-mv.done)
		var rel int64
		if mv.forward() {
			rel = mv.done
		} else {
			rel = mv.length - mv.done - n
		}

		chunk := m.buf[:n]
		if err := binary.ReadAt(m.s, chunk, mv.from+rel); err != nil {
			return err
		}
		if err := binary.WriteAt(m.s, chunk, mv.to+rel); err != nil {
			return err
		}

		mv.done += n
		r.update(mv.done)
	}

	r.update(mv.done)
	return nil
}

// undo moves the applied part of mv back where it came from.
func (m *Mover) undo(mv *move) error {
	if mv.done == 0 || mv.from == mv.to {
		return nil
	}
	back := &move{to: mv.from, length: mv.done}
	if mv.forward() {
		back.from = mv.to
	} else {
		skip := mv.length - mv.done
		back.from = mv.to + skip
		back.to = mv.from + skip
	}
	return m.run(context.Background(), back, nil)
}

// save copies the bytes mv will destroy, limited to the current stream size.
func (m *Mover) save(mv *move, size int64) (*snapshot, error) {
	off, n := mv.clobbered()
	if off >= size || n <= 0 {
		return nil, nil
	}
	n = min(n, size-off)
	data := make([]byte, n)
	if err := binary.ReadAt(m.s, data, off); err != nil {
		return nil, fmt.Errorf("save overwritten range: %w", err)
	}
	return &snapshot{off: off, data: data}, nil
}

// rollback returns the stream to its state before mv. cause is returned,
// wrapped in a RollbackError if the stream could not be restored.
func (m *Mover) rollback(log logrus.FieldLogger, mv *move, saved *snapshot, size int64, cause error) error {
	log = log.WithFields(logrus.Fields{"moved": mv.done, "error": cause})
	log.Debug("Rolling back splice.")

	err := m.undo(mv)
	if err == nil && saved != nil {
		err = binary.WriteAt(m.s, saved.data, saved.off)
	}
	if err == nil {
		err = m.s.Truncate(size)
	}
	if err != nil {
		log.WithField("rollback_error", err).Debug("Rollback failed, stream content undefined.")
		return &types.RollbackError{Cause: cause, Rollback: err}
	}
	return cause
}

// zero overwrites n bytes at off with zeroes.
func (m *Mover) zero(off, n int64) error {
	clear(m.buf)
	for n > 0 {
		chunk := min(n, int64(len(m.buf)))
		if err := binary.WriteAt(m.s, m.buf[:chunk], off); err != nil {
			return fmt.Errorf("zero gap: %w", err)
		}
		off += chunk
		n -= chunk
	}
	return nil
}

func (m *Mover) position(off int64) error {
	if _, err := m.s.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("position stream at %d: %w", off, err)
	}
	return nil
}

func (m *Mover) progressFor(total int64) *reporter {
	if m.progress == nil {
		return nil
	}
	return newReporter(m.progress, m.log, total)
}
