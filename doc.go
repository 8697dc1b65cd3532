// Package tagsplice resizes regions inside files in place.
//
// Tag editors constantly need to make one part of a file bigger or smaller:
// an ID3v2 tag at the start of an MP3, a Tags element inside a Matroska
// Segment, a metadata block ahead of FLAC frames. Rewriting the whole file
// for that is slow on large media. tagsplice shifts only the bytes that
// follow the edited region and changes the file length, leaving everything
// before the region untouched.
//
// # Quick Start
//
// Replacing a tag whose size changed:
//
//	f, err := os.OpenFile("song.mp3", os.O_RDWR, 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer f.Close()
//
//	// The old tag occupies the first oldSize bytes.
//	if err := tagsplice.Replace(ctx, f, 0, oldSize, newTag); err != nil {
//		log.Fatal(err)
//	}
//
// Or, for a file on disk with a backup:
//
//	err := tagsplice.ReplaceFile(ctx, "song.mp3", 0, oldSize, newTag,
//	    tagsplice.WithBackup(".bak"))
//
// # Operations
//
//   - Lengthen inserts bytes at an offset, optionally zeroed
//   - Shorten removes the bytes that end at an offset
//   - CopyWithin copies a range inside the stream, overlap-safe
//   - Replace swaps a region for new content of any length
//
// Each has a Start form (StartLengthen, StartShorten, ...) that runs in the
// background and returns an Operation to wait on or cancel. ApplyMany splices
// many streams concurrently.
//
// # Guarantees
//
// A splice is all-or-nothing. If it fails or is cancelled, the bytes moved so
// far are moved back and the original length is restored before the error is
// returned. Only a RollbackError means the stream could not be restored.
//
// Streams lacking Truncate are rejected with UnsupportedStreamError before
// anything is written.
//
// # Locating tags
//
// LocateTag finds the tag region of MP3 (leading ID3v2) and Matroska/WebM
// (Segment Tags) files, ready to pass to Replace:
//
//	region, _, err := tagsplice.LocateTag(f, f.Name())
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = tagsplice.Replace(ctx, f, region.Offset, region.Length, newTag)
//
// # Reading
//
// BufferedReader keeps a window of a stream in memory so that parsers issuing
// many small reads and short seeks hit the disk rarely. It is an
// io.ReadSeeker, so it slots in wherever the stream itself would, including
// the ebml package for Matroska and WebM.
package tagsplice
