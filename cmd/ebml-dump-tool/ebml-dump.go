package main

import (
	"fmt"
	"os"

	"github.com/simonhull/tagsplice"
	"github.com/simonhull/tagsplice/ebml"
)

// Handy for checking what a Matroska or WebM file actually contains after an edit.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ebml-dump <file.mkv>")
		os.Exit(1)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	br, err := tagsplice.NewBufferedReader(f, 64*1024)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	r, err := ebml.NewReader(br, -1, f.Name())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if err := dumpElements(r); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func dumpElements(r *ebml.Reader) error {
	return r.Walk(-1, func(r *ebml.Reader, e ebml.Element, depth int) error {
		indent := ""
		for i := 0; i < depth; i++ {
			indent += "  "
		}

		size := fmt.Sprintf("%d", e.Size)
		if e.Size == ebml.UnknownSize {
			size = "unknown"
		}
		fmt.Printf("%s%s (size: %s, header: %d, offset: %d)%s\n", indent, name(e.ID), size, e.HeaderSize(), e.Offset, value(r, e))

		// Media data is not interesting here
		if e.ID == ebml.IDCluster || e.ID == ebml.IDCues {
			return ebml.SkipChildren
		}
		return nil
	})
}

// value renders short string and integer payloads.
func value(r *ebml.Reader, e ebml.Element) string {
	if ebml.IsMaster(e.ID) || e.Size <= 0 || e.Size > 64 {
		return ""
	}
	b, err := r.ReadPayload(e.Size)
	if err != nil {
		return ""
	}

	switch e.ID {
	case ebml.IDDocType, ebml.IDCodecID, ebml.IDTitle, ebml.IDMuxingApp, ebml.IDWritingApp,
		ebml.IDTagName, ebml.IDTagString, ebml.IDTagLanguage, ebml.IDFileName, ebml.IDFileMimeType:
		return fmt.Sprintf(" = %q", ebml.DecodeUTF8(b))
	case ebml.IDDuration:
		if v, err := ebml.DecodeFloat(b); err == nil {
			return fmt.Sprintf(" = %g", v)
		}
	case ebml.IDDateUTC:
		if v, err := ebml.DecodeDate(b); err == nil {
			return " = " + v.String()
		}
	case ebml.IDSeekID, ebml.IDTagBinary, ebml.IDFileData, ebml.IDVoid, ebml.IDCRC32:
		return ""
	}
	if len(b) <= 8 {
		if v, err := ebml.DecodeUint(b); err == nil {
			return fmt.Sprintf(" = %d", v)
		}
	}
	return ""
}

func name(id uint64) string {
	names := map[uint64]string{
		ebml.IDEBML:            "EBML",
		ebml.IDDocType:         "DocType",
		ebml.IDVoid:            "Void",
		ebml.IDCRC32:           "CRC-32",
		ebml.IDSegment:         "Segment",
		ebml.IDSeekHead:        "SeekHead",
		ebml.IDSeek:            "Seek",
		ebml.IDSeekID:          "SeekID",
		ebml.IDSeekPosition:    "SeekPosition",
		ebml.IDInfo:            "Info",
		ebml.IDTimestampScale:  "TimestampScale",
		ebml.IDDuration:        "Duration",
		ebml.IDDateUTC:         "DateUTC",
		ebml.IDTitle:           "Title",
		ebml.IDMuxingApp:       "MuxingApp",
		ebml.IDWritingApp:      "WritingApp",
		ebml.IDTracks:          "Tracks",
		ebml.IDTrackEntry:      "TrackEntry",
		ebml.IDTrackNumber:     "TrackNumber",
		ebml.IDTrackType:       "TrackType",
		ebml.IDCodecID:         "CodecID",
		ebml.IDCluster:         "Cluster",
		ebml.IDCues:            "Cues",
		ebml.IDChapters:        "Chapters",
		ebml.IDAttachments:     "Attachments",
		ebml.IDAttachedFile:    "AttachedFile",
		ebml.IDFileName:        "FileName",
		ebml.IDFileMimeType:    "FileMimeType",
		ebml.IDFileData:        "FileData",
		ebml.IDTags:            "Tags",
		ebml.IDTag:             "Tag",
		ebml.IDTargets:         "Targets",
		ebml.IDTargetTypeValue: "TargetTypeValue",
		ebml.IDSimpleTag:       "SimpleTag",
		ebml.IDTagName:         "TagName",
		ebml.IDTagLanguage:     "TagLanguage",
		ebml.IDTagString:       "TagString",
		ebml.IDTagBinary:       "TagBinary",
	}
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("0x%X", id)
}
