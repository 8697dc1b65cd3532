package registry

import (
	"io"

	"github.com/simonhull/tagsplice/internal/binary"
	"github.com/simonhull/tagsplice/internal/types"
)

// ebmlMagic is the EBML header element ID every Matroska file starts with.
const ebmlMagic = "\x1A\x45\xDF\xA3"

// DetectFormat determines the container format by examining magic bytes.
//
// Detection looks at the first four bytes only and does not validate the
// rest of the file.
func DetectFormat(rs io.ReadSeeker, size int64, path string) (types.Format, error) {
	// File must be at least 4 bytes for any meaningful detection
	if size < 4 {
		return types.FormatUnknown, &types.UnsupportedFormatError{
			Path:   path,
			Reason: "file too small",
		}
	}

	magic := make([]byte, 4)
	if err := binary.ReadAt(rs, magic, 0); err != nil {
		return types.FormatUnknown, &types.UnsupportedFormatError{
			Path:   path,
			Reason: "failed to read file header",
		}
	}

	switch {
	case string(magic[:3]) == "ID3":
		return types.FormatMP3, nil
	// MP3 frame sync (11 set bits), for files without an ID3v2 tag
	case magic[0] == 0xFF && magic[1]&0xE0 == 0xE0:
		return types.FormatMP3, nil
	case string(magic) == ebmlMagic:
		return types.FormatMatroska, nil
	}

	return types.FormatUnknown, &types.UnsupportedFormatError{
		Path:   path,
		Reason: "unsupported file format",
	}
}
