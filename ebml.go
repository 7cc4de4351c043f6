package webmfix

import (
	"fmt"
)

// EBML element IDs used by WebM. IDs are stored with their length marker
// bits intact, exactly as they appear on the wire.
const (
	IDEBMLHeader             = 0x1A45DFA3
	IDEBMLVersion            = 0x4286
	IDEBMLReadVersion        = 0x42F7
	IDEBMLMaxIDLength        = 0x42F2
	IDEBMLMaxSizeLength      = 0x42F3
	IDEBMLDocType            = 0x4282
	IDEBMLDocTypeVersion     = 0x4287
	IDEBMLDocTypeReadVersion = 0x4285

	// Global elements
	IDVoid  = 0xEC
	IDCRC32 = 0xBF

	// Segment
	IDSegment = 0x18538067

	// Meta Seek Information
	IDSeekHead = 0x114D9B74
	IDSeek     = 0x4DBB
	IDSeekID   = 0x53AB
	IDSeekPos  = 0x53AC

	// Segment Information
	IDInfo            = 0x1549A966
	IDSegmentUID      = 0x73A4
	IDSegmentFilename = 0x7384
	IDTimecodeScale   = 0x2AD7B1
	IDDuration        = 0x4489
	IDDateUTC         = 0x4461
	IDTitle           = 0x7BA9
	IDMuxingApp       = 0x4D80
	IDWritingApp      = 0x5741

	// Track
	IDTracks     = 0x1654AE6B
	IDTrackEntry = 0xAE
	IDTrackNum   = 0xD7
	IDTrackUID   = 0x73C5
	IDTrackType  = 0x83
	IDTrackName  = 0x536E
	IDLanguage   = 0x22B59C
	IDCodecID    = 0x86
	IDCodecPriv  = 0x63A2
	IDCodecName  = 0x258688
	IDVideo      = 0xE0
	IDAudio      = 0xE1

	// Video
	IDPixelWidth  = 0xB0
	IDPixelHeight = 0xBA

	// Audio
	IDSamplingFrequency = 0xB5
	IDChannels          = 0x9F
	IDBitDepth          = 0x6264

	// Cluster
	IDCluster = 0x1F43B675

	// Cues
	IDCues              = 0x1C53BB6B
	IDCuePoint          = 0xBB
	IDCueTime           = 0xB3
	IDCueTrackPositions = 0xB7
	IDCueTrack          = 0xF7
	IDCueClusterPos     = 0xF1

	// Chapters
	IDChapters = 0x1043A770

	// Tags
	IDTags = 0x1254C367
	IDTag  = 0x7373

	// Attachments
	IDAttachments = 0x1941A469
)

// UnknownSize is returned by ReadVInt when a size field has every value bit
// set, which EBML reserves for elements of unknown (streamed) length.
const UnknownSize = ^uint64(0)

// vintWidth returns the encoded width of a variable-length integer from its
// first byte, or 0 when no length marker is present.
func vintWidth(first byte) int {
	for i := 0; i < 8; i++ {
		if first&(0x80>>i) != 0 {
			return i + 1
		}
	}
	return 0
}

// ReadVIntID reads an element ID at off. The length marker is kept so the
// result can be compared against the ID constants directly.
func ReadVIntID(buf []byte, off int) (uint64, int, error) {
	return readVInt(buf, off, true)
}

// ReadVInt reads an element size at off with the length marker removed.
// A size with all value bits set is reported as UnknownSize.
func ReadVInt(buf []byte, off int) (uint64, int, error) {
	return readVInt(buf, off, false)
}

// readVInt reads a variable-length integer
func readVInt(buf []byte, off int, keepLengthMarker bool) (uint64, int, error) {
	if off < 0 || off >= len(buf) {
		return 0, 0, fmt.Errorf("%w: no bytes left for VINT at offset %d", ErrMalformedEncoding, off)
	}

	firstByte := buf[off]
	if firstByte == 0 {
		return 0, 0, fmt.Errorf("%w: invalid VINT at offset %d: first byte is 0", ErrMalformedEncoding, off)
	}

	length := vintWidth(firstByte)
	if length > len(buf)-off {
		return 0, 0, fmt.Errorf("%w: %d-byte VINT at offset %d exceeds %d remaining bytes",
			ErrMalformedEncoding, length, off, len(buf)-off)
	}

	lengthMask := byte(0x80 >> (length - 1))

	var result uint64
	if keepLengthMarker {
		result = uint64(firstByte)
	} else {
		result = uint64(firstByte & (lengthMask - 1))
	}

	for i := 1; i < length; i++ {
		result = (result << 8) | uint64(buf[off+i])
	}

	if !keepLengthMarker && result == (uint64(1)<<(7*uint(length)))-1 {
		return UnknownSize, length, nil
	}

	return result, length, nil
}
