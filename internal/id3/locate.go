package id3

import (
	"fmt"
	"io"

	"github.com/simonhull/tagsplice/internal/registry"
	"github.com/simonhull/tagsplice/internal/types"
)

func init() {
	registry.Register(types.FormatMP3, &locator{})
}

// locator implements registry.Locator for MP3 files.
type locator struct{}

// Locate returns the leading ID3v2 tag, or an empty region at offset 0.
func (l *locator) Locate(rs io.ReadSeeker, size int64, path string) (types.Region, error) {
	n, err := TagSize(rs, path)
	if err != nil {
		return types.Region{}, err
	}
	if n > size {
		return types.Region{}, &types.CorruptedFileError{
			Path:   path,
			Offset: 6,
			Reason: fmt.Sprintf("ID3v2 tag of %d bytes exceeds file size %d", n, size),
		}
	}
	return types.Region{Offset: 0, Length: n}, nil
}
