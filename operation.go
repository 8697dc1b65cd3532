package tagsplice

import (
	"context"
	"io"
)

// Operation is a splice running in the background.
//
// The work is identical to the blocking functions; only the calling
// goroutine is freed. Progress callbacks run on the operation's goroutine.
// The stream belongs to the operation until Wait returns: do not touch it
// meanwhile and do not start a second operation on it.
type Operation struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// start runs fn on its own goroutine under a cancellable context.
func start(ctx context.Context, fn func(ctx context.Context) error) *Operation {
	ctx, cancel := context.WithCancel(ctx)
	op := &Operation{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(op.done)
		defer cancel()
		op.err = fn(ctx)
	}()

	return op
}

// Wait blocks until the operation finishes and returns its result.
//
// A nil error guarantees the region is fully shifted and the stream length
// updated; any other error means the stream was restored, unless it is a
// RollbackError.
func (op *Operation) Wait() error {
	<-op.done
	return op.err
}

// Done is closed when the operation has finished.
func (op *Operation) Done() <-chan struct{} {
	return op.done
}

// Cancel asks the operation to stop. It is honoured between transfer slices,
// after which the stream is rolled back and Wait returns an error wrapping
// context.Canceled.
func (op *Operation) Cancel() {
	op.cancel()
}

// StartLengthen is the background form of LengthenContext.
//
// Capability errors are returned immediately, before the operation starts.
//
// Example:
//
//	op, err := tagsplice.StartLengthen(ctx, f, 0, 4096, true,
//	    tagsplice.WithProgress(func(p float64) { log.Printf("%.0f%%", p*100) }),
//	)
//	if err != nil {
//		return err
//	}
//	// ... do other work ...
//	if err := op.Wait(); err != nil {
//		return err
//	}
func StartLengthen(ctx context.Context, rws io.ReadWriteSeeker, offset, delta int64, fillZeroes bool, opts ...Option) (*Operation, error) {
	m, err := newMover(rws, opts)
	if err != nil {
		return nil, err
	}
	return start(ctx, func(ctx context.Context) error {
		return m.Lengthen(ctx, offset, delta, fillZeroes)
	}), nil
}

// StartShorten is the background form of ShortenContext.
func StartShorten(ctx context.Context, rws io.ReadWriteSeeker, offset, delta int64, opts ...Option) (*Operation, error) {
	m, err := newMover(rws, opts)
	if err != nil {
		return nil, err
	}
	return start(ctx, func(ctx context.Context) error {
		return m.Shorten(ctx, offset, delta)
	}), nil
}

// StartCopyWithin is the background form of CopyWithin.
func StartCopyWithin(ctx context.Context, rws io.ReadWriteSeeker, offsetFrom, offsetTo, length int64, opts ...Option) (*Operation, error) {
	m, err := newMover(rws, opts)
	if err != nil {
		return nil, err
	}
	return start(ctx, func(ctx context.Context) error {
		return m.CopyWithin(ctx, offsetFrom, offsetTo, length)
	}), nil
}

// StartApply is the background form of Apply.
func StartApply(ctx context.Context, rws io.ReadWriteSeeker, req Request, opts ...Option) (*Operation, error) {
	m, err := newMover(rws, opts)
	if err != nil {
		return nil, err
	}
	return start(ctx, func(ctx context.Context) error {
		return apply(ctx, m, req)
	}), nil
}

