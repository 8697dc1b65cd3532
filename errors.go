package tagsplice

import (
	"errors"

	"github.com/simonhull/tagsplice/internal/types"
)

// ErrDuplicateStream is returned by ApplyMany when two edits share a stream.
var ErrDuplicateStream = errors.New("stream appears in more than one edit")

// OutOfBoundsError is an alias to types.OutOfBoundsError.
// Re-exporting from internal/types to maintain public API.
type OutOfBoundsError = types.OutOfBoundsError

// CorruptedFileError is an alias to types.CorruptedFileError.
// Returned for malformed input such as an invalid vint or an oversized element.
type CorruptedFileError = types.CorruptedFileError

// UnsupportedStreamError is an alias to types.UnsupportedStreamError.
// Returned before any mutation when a stream cannot be resized.
type UnsupportedStreamError = types.UnsupportedStreamError

// InvalidRangeError is an alias to types.InvalidRangeError.
type InvalidRangeError = types.InvalidRangeError

// RollbackError is an alias to types.RollbackError.
// It is the only error after which the stream content is undefined.
type RollbackError = types.RollbackError

// UnsupportedFormatError is an alias to types.UnsupportedFormatError.
type UnsupportedFormatError = types.UnsupportedFormatError
