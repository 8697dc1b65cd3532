package tagsplice

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Edit pairs a Request with the stream it applies to.
type Edit struct {
	Stream io.ReadWriteSeeker
	Request
}

// ApplyMany applies edits to distinct streams concurrently.
//
// Edits run in parallel using up to runtime.NumCPU() goroutines. Every
// stream must appear at most once; a stream only tolerates one splice at a
// time, so duplicates are rejected before anything starts.
//
// Each edit is all-or-nothing on its own. When one fails the others are
// cancelled: those still running roll back, those already finished stay
// applied. The first error is returned.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
//	defer cancel()
//
//	err := tagsplice.ApplyMany(ctx, []tagsplice.Edit{
//	    {Stream: f1, Request: tagsplice.Request{EditOffset: 0, Delta: 2048, FillZeroes: true}},
//	    {Stream: f2, Request: tagsplice.Request{EditOffset: 4096, Delta: -1024}},
//	})
func ApplyMany(ctx context.Context, edits []Edit, opts ...Option) error {
	if len(edits) == 0 {
		return nil
	}
	if err := checkDistinct(edits); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU()) // Limit concurrent operations

	for i, edit := range edits {
		g.Go(func() error {
			// Check for cancellation
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err := Apply(ctx, edit.Stream, edit.Request, opts...); err != nil {
				return fmt.Errorf("edit %d: %w", i, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// checkDistinct rejects edits that share a stream. Streams whose dynamic type
// is not comparable cannot be checked and are assumed distinct.
func checkDistinct(edits []Edit) error {
	seen := make(map[io.ReadWriteSeeker]int, len(edits))
	for i, edit := range edits {
		if edit.Stream == nil || !reflect.TypeOf(edit.Stream).Comparable() {
			continue
		}
		if j, ok := seen[edit.Stream]; ok {
			return fmt.Errorf("edits %d and %d: %w", j, i, ErrDuplicateStream)
		}
		seen[edit.Stream] = i
	}
	return nil
}
