package tagsplice

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/simonhull/tagsplice/internal/splice"
)

// Progress receives the completed fraction of a splice, from 0 to 1.
//
// It is called about ten times per operation, always ending with 1.0, on the
// goroutine doing the work. A panic inside it is recovered and logged; the
// splice carries on.
type Progress = splice.Progress

// ProgressChannel adapts a channel to a Progress callback. Updates are sent
// without blocking and dropped when the receiver is not ready.
func ProgressChannel(ch chan<- float64) Progress {
	return splice.ProgressChannel(ch)
}

// Option configures a splice.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	err := tagsplice.Lengthen(f, 4096, 1024, true,
//	    tagsplice.WithBufferSize(1<<20),
//	    tagsplice.WithProgress(func(p float64) { fmt.Printf("%.0f%%\n", p*100) }),
//	)
type Option func(*spliceOptions)

// spliceOptions holds configuration for one splice.
type spliceOptions struct {
	progress   Progress           // Optional progress sink
	logger     logrus.FieldLogger // Debug records for operations and rollbacks
	bufferSize int                // Transfer slice size in bytes
}

// defaultOptions returns the default configuration.
func defaultOptions() *spliceOptions {
	return &spliceOptions{
		bufferSize: splice.DefaultBufferSize,
	}
}

func applyOptions(opts []Option) *spliceOptions {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// config translates the options for the splice engine.
func (o *spliceOptions) config() splice.Config {
	logger := o.logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return splice.Config{
		Progress:   o.progress,
		Logger:     logger,
		BufferSize: o.bufferSize,
	}
}

// WithBufferSize sets the transfer buffer size in bytes.
//
// Bytes are shifted one buffer at a time, so larger buffers mean fewer I/O
// calls on big files. Default is 64 KiB. Non-positive values keep the default.
func WithBufferSize(bytes int) Option {
	return func(o *spliceOptions) {
		if bytes > 0 {
			o.bufferSize = bytes
		}
	}
}

// WithProgress registers a progress callback.
//
// Example:
//
//	err := tagsplice.Shorten(f, 8192, 512,
//	    tagsplice.WithProgress(func(p float64) { bar.Set(p) }),
//	)
func WithProgress(fn Progress) Option {
	return func(o *spliceOptions) {
		o.progress = fn
	}
}

// WithLogger sends debug records about each splice to logger.
//
// By default nothing is logged.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *spliceOptions) {
		o.logger = logger
	}
}
