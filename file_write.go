package tagsplice

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ReplaceFile swaps the oldLen bytes at offset in the file at path for data,
// shifting the rest of the file in place.
//
// Only the bytes from offset onwards are rewritten, so replacing a tag near
// the end of a large file is cheap. If the splice fails the file is restored
// to its original content and length.
//
// Options can be provided to customize the edit:
//
//	err := tagsplice.ReplaceFile(ctx, "song.mp3", 0, 4096, newTag,
//	    tagsplice.WithBackup(".bak"),
//	    tagsplice.WithSpliceOptions(tagsplice.WithBufferSize(1<<20)),
//	)
func ReplaceFile(ctx context.Context, path string, offset, oldLen int64, data []byte, opts ...EditOption) error {
	options := defaultEditOptions()
	for _, opt := range opts {
		opt(options)
	}

	// Get original file's mod time if we need to preserve it
	var origModTime os.FileInfo
	if options.preserveModTime {
		info, err := os.Stat(path)
		if err == nil {
			origModTime = info
		}
	}

	if options.backupSuffix != "" {
		if err := copyFile(path, path+options.backupSuffix); err != nil {
			return fmt.Errorf("create backup: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Close error reported below when it matters

	if err := Replace(ctx, f, offset, oldLen, data, options.splice...); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if !options.noSync {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("sync file: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	if options.preserveModTime && origModTime != nil {
		_ = os.Chtimes(path, origModTime.ModTime(), origModTime.ModTime()) //nolint:errcheck // Non-fatal: file was written successfully
	}

	return nil
}

// copyFile copies src to dst, replacing dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Read-only handle

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close() //nolint:errcheck // Best effort cleanup
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close() //nolint:errcheck // Best effort cleanup
		return err
	}
	return out.Close()
}
