// Package id3 finds and rewrites the ID3v2 tag at the start of an MP3 file.
//
// Frames are encoded by github.com/bogem/id3v2. This package only works out
// where the old tag ends so the new one can be spliced in its place.
package id3

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/bogem/id3v2/v2"

	"github.com/simonhull/tagsplice/internal/binary"
	"github.com/simonhull/tagsplice/internal/types"
)

const (
	headerSize = 10
	footerSize = 10

	flagFooter = 0x10
)

// TagSize returns the size of the ID3v2 tag at the start of rs, header and
// footer included, or 0 if the stream does not start with one.
func TagSize(rs io.ReadSeeker, path string) (int64, error) {
	br, err := binary.Buffered(rs, headerSize)
	if err != nil {
		return 0, err
	}
	if _, err := br.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to ID3v2 header: %w", err)
	}

	var magic [3]byte
	if err := br.ReadFull(magic[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("read ID3v2 header: %w", err)
	}
	if string(magic[:]) != "ID3" {
		return 0, nil
	}

	// Version (major, revision), then flags
	if _, err := binary.ReadBE[uint16](br); err != nil {
		return 0, headerErr(err)
	}
	flags, err := binary.ReadBE[uint8](br)
	if err != nil {
		return 0, headerErr(err)
	}
	raw, err := binary.ReadBE[uint32](br)
	if err != nil {
		return 0, headerErr(err)
	}

	size, err := syncsafe(raw)
	if err != nil {
		return 0, &types.CorruptedFileError{Path: path, Offset: 6, Reason: err.Error()}
	}

	total := headerSize + size
	if flags&flagFooter != 0 {
		total += footerSize
	}
	return total, nil
}

// headerErr treats a header cut short like a missing tag.
func headerErr(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return nil
	}
	return fmt.Errorf("read ID3v2 header: %w", err)
}

// syncsafe decodes a 28-bit integer stored 7 bits per byte.
func syncsafe(v uint32) (int64, error) {
	if v&0x80808080 != 0 {
		return 0, fmt.Errorf("invalid syncsafe size 0x%08X", v)
	}
	return int64(v&0x7F | v>>8&0x7F<<7 | v>>16&0x7F<<14 | v>>24&0x7F<<21), nil
}

// Update reads the existing tag from rs, applies fields and returns the
// encoded replacement together with the size of the tag it replaces.
//
// Fields are keyed by common names understood by id3v2 ("Title", "Artist",
// "Album", "Year", "Genre", ...). An empty value removes the frame.
func Update(rs io.ReadSeeker, path string, fields map[string]string) ([]byte, int64, error) {
	oldSize, err := TagSize(rs, path)
	if err != nil {
		return nil, 0, err
	}

	tag := id3v2.NewEmptyTag()
	if oldSize > 0 {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, 0, fmt.Errorf("seek to tag: %w", err)
		}
		tag, err = id3v2.ParseReader(io.LimitReader(rs, oldSize), id3v2.Options{Parse: true})
		if err != nil {
			return nil, 0, fmt.Errorf("parse ID3v2 tag: %w", err)
		}
	}

	encoding := id3v2.EncodingUTF8
	if tag.Version() < 4 {
		encoding = id3v2.EncodingUTF16
	}

	for name, value := range fields {
		id := tag.CommonID(name)
		if id == "" {
			return nil, 0, fmt.Errorf("unknown ID3v2 field %q", name)
		}
		tag.DeleteFrames(id)
		if value != "" {
			tag.AddTextFrame(id, encoding, value)
		}
	}

	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		return nil, 0, fmt.Errorf("encode ID3v2 tag: %w", err)
	}
	return buf.Bytes(), oldSize, nil
}
