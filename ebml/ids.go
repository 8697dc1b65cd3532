package ebml

// Element IDs used by Matroska, in their raw form (marker bit kept).
const (
	IDEBML               uint64 = 0x1A45DFA3
	IDEBMLVersion        uint64 = 0x4286
	IDEBMLReadVersion    uint64 = 0x42F7
	IDEBMLMaxIDLength    uint64 = 0x42F2
	IDEBMLMaxSizeLength  uint64 = 0x42F3
	IDDocType            uint64 = 0x4282
	IDDocTypeVersion     uint64 = 0x4287
	IDDocTypeReadVersion uint64 = 0x4285

	IDVoid  uint64 = 0xEC
	IDCRC32 uint64 = 0xBF

	IDSegment      uint64 = 0x18538067
	IDSeekHead     uint64 = 0x114D9B74
	IDSeek         uint64 = 0x4DBB
	IDSeekID       uint64 = 0x53AB
	IDSeekPosition uint64 = 0x53AC

	IDInfo           uint64 = 0x1549A966
	IDTimestampScale uint64 = 0x2AD7B1
	IDDuration       uint64 = 0x4489
	IDDateUTC        uint64 = 0x4461
	IDTitle          uint64 = 0x7BA9
	IDMuxingApp      uint64 = 0x4D80
	IDWritingApp     uint64 = 0x5741

	IDTracks      uint64 = 0x1654AE6B
	IDTrackEntry  uint64 = 0xAE
	IDTrackNumber uint64 = 0xD7
	IDTrackUID    uint64 = 0x73C5
	IDTrackType   uint64 = 0x83
	IDCodecID     uint64 = 0x86
	IDVideo       uint64 = 0xE0
	IDAudio       uint64 = 0xE1

	IDCluster     uint64 = 0x1F43B675
	IDTimestamp   uint64 = 0xE7
	IDSimpleBlock uint64 = 0xA3
	IDBlockGroup  uint64 = 0xA0
	IDCues        uint64 = 0x1C53BB6B
	IDCuePoint    uint64 = 0xBB

	IDChapters       uint64 = 0x1043A770
	IDEditionEntry   uint64 = 0x45B9
	IDChapterAtom    uint64 = 0xB6
	IDChapterDisplay uint64 = 0x80

	IDAttachments  uint64 = 0x1941A469
	IDAttachedFile uint64 = 0x61A7
	IDFileName     uint64 = 0x466E
	IDFileMimeType uint64 = 0x4660
	IDFileData     uint64 = 0x465C

	IDTags            uint64 = 0x1254C367
	IDTag             uint64 = 0x7373
	IDTargets         uint64 = 0x63C0
	IDTargetTypeValue uint64 = 0x68CA
	IDTargetType      uint64 = 0x63CA
	IDTagTrackUID     uint64 = 0x63C5
	IDSimpleTag       uint64 = 0x67C8
	IDTagName         uint64 = 0x45A3
	IDTagLanguage     uint64 = 0x447A
	IDTagDefault      uint64 = 0x4484
	IDTagString       uint64 = 0x4487
	IDTagBinary       uint64 = 0x4485
)

// masters lists the element IDs whose payload is a sequence of child elements.
var masters = map[uint64]bool{
	IDEBML:           true, // EBML header
	IDSegment:        true, // Everything after the header
	IDSeekHead:       true, // Index of top-level elements
	IDSeek:           true,
	IDInfo:           true, // Segment information
	IDTracks:         true,
	IDTrackEntry:     true,
	IDVideo:          true,
	IDAudio:          true,
	IDCluster:        true, // Media data
	IDBlockGroup:     true,
	IDCues:           true,
	IDCuePoint:       true,
	IDChapters:       true,
	IDEditionEntry:   true,
	IDChapterAtom:    true,
	IDChapterDisplay: true,
	IDAttachments:    true,
	IDAttachedFile:   true,
	IDTags:           true, // Metadata
	IDTag:            true,
	IDTargets:        true,
	IDSimpleTag:      true, // Nests for sub-tags
}

// IsMaster reports whether id is a known master (container) element.
func IsMaster(id uint64) bool {
	return masters[id]
}
