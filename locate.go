package tagsplice

import (
	"io"

	"github.com/simonhull/tagsplice/internal/binary"
	"github.com/simonhull/tagsplice/internal/registry"
	"github.com/simonhull/tagsplice/internal/types"

	_ "github.com/simonhull/tagsplice/internal/id3"      // Register MP3 locator
	_ "github.com/simonhull/tagsplice/internal/matroska" // Register Matroska locator
)

// Format is an alias to types.Format.
type Format = types.Format

// Supported formats.
const (
	FormatUnknown  = types.FormatUnknown
	FormatMP3      = types.FormatMP3
	FormatMatroska = types.FormatMatroska
)

// Region is an alias to types.Region.
type Region = types.Region

// DetectFormat determines the container format of rs from its magic bytes.
//
// Returns UnsupportedFormatError for anything but MP3 and Matroska/WebM.
func DetectFormat(rs io.ReadSeeker, path string) (Format, error) {
	size, err := binary.Size(rs)
	if err != nil {
		return FormatUnknown, err
	}
	return registry.DetectFormat(rs, size, path)
}

// LocateTag finds the region of rs holding the file's tag: the leading
// ID3v2 tag of an MP3, or the Tags element of a Matroska Segment. A file
// without a tag yields an empty region where a new one belongs.
//
// Reads go through a BufferedReader, so the container is parsed with a
// handful of calls on rs. The region can be handed straight to Replace.
//
// Example:
//
//	region, _, err := tagsplice.LocateTag(f, f.Name())
//	if err != nil {
//		return err
//	}
//	err = tagsplice.Replace(ctx, f, region.Offset, region.Length, newTag)
func LocateTag(rs io.ReadSeeker, path string) (Region, Format, error) {
	size, err := binary.Size(rs)
	if err != nil {
		return Region{}, FormatUnknown, err
	}
	br, err := binary.Buffered(rs, 0)
	if err != nil {
		return Region{}, FormatUnknown, err
	}
	format, err := registry.DetectFormat(br, size, path)
	if err != nil {
		return Region{}, FormatUnknown, err
	}
	locator := registry.Get(format)
	if locator == nil {
		return Region{}, format, &UnsupportedFormatError{Path: path, Reason: "no tag locator for " + format.String()}
	}
	region, err := locator.Locate(br, size, path)
	if err != nil {
		return Region{}, format, err
	}
	return region, format, nil
}
