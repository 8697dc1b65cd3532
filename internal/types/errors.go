// Package types provides the error types shared by the splice engine,
// the buffered reader and the EBML codec.
package types

import "fmt"

// OutOfBoundsError is returned when a read would cross the end of the stream.
type OutOfBoundsError struct {
	Path   string
	What   string
	Offset int64
	Length int64
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (stream size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed stream size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// CorruptedFileError is returned when the input bytes are malformed, such as
// a vint without a width marker or an element larger than its container.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted data at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// UnsupportedStreamError is returned when a stream lacks a capability a
// splice needs (seeking, writing or changing its length). It is always
// reported before the stream is modified.
type UnsupportedStreamError struct {
	Capability string
	Type       string
}

func (e *UnsupportedStreamError) Error() string {
	return fmt.Sprintf("stream %s does not support %s", e.Type, e.Capability)
}

// InvalidRangeError is returned when a splice request does not fit the stream.
type InvalidRangeError struct {
	Reason string
	Offset int64
	Delta  int64
	Size   int64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid splice at offset %d (delta %d, stream size %d): %s",
		e.Offset, e.Delta, e.Size, e.Reason)
}

// RollbackError is returned when a splice failed and restoring the stream to
// its original state failed too. The stream content is undefined afterwards.
type RollbackError struct {
	Cause    error
	Rollback error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("splice failed: %v; rollback failed: %v", e.Cause, e.Rollback)
}

// Unwrap exposes the original failure so callers can match it with errors.Is.
func (e *RollbackError) Unwrap() error {
	return e.Cause
}

// UnsupportedFormatError is returned when a file's format is not recognized.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}
