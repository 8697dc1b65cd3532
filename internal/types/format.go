package types

// Format identifies a container format whose tag region can be located.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota
	// FormatMP3 represents MP3 files, tagged with a leading ID3v2 tag.
	FormatMP3
	// FormatMatroska represents Matroska and WebM files.
	FormatMatroska
)

func (f Format) String() string {
	switch f {
	case FormatMP3:
		return "MP3"
	case FormatMatroska:
		return "Matroska"
	default:
		return "Unknown"
	}
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatMP3:
		return []string{".mp3"}
	case FormatMatroska:
		return []string{".mkv", ".mka", ".mk3d", ".webm"}
	default:
		return nil
	}
}

// Region is a byte range inside a stream.
type Region struct {
	Offset int64
	Length int64
}

// End returns the offset just past the region.
func (r Region) End() int64 {
	return r.Offset + r.Length
}
