package webmfix

import "fmt"

// Kind describes how an element's payload is encoded.
type Kind uint8

const (
	KindBinary Kind = iota
	KindMaster
	KindUint
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindMaster:
		return "master"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBinary:
		return "binary"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Tag is the dictionary entry for an element ID.
type Tag struct {
	Name string
	Kind Kind
}

// UnknownName is the name given to IDs missing from the dictionary.
const UnknownName = "Unknown"

// Clusters are registered as binary so their blocks are skipped rather than
// walked; streamed clusters carry unknown sizes and would otherwise nest.
var tags = map[uint64]Tag{
	IDEBMLHeader:             {"EBML", KindMaster},
	IDEBMLVersion:            {"EBMLVersion", KindUint},
	IDEBMLReadVersion:        {"EBMLReadVersion", KindUint},
	IDEBMLMaxIDLength:        {"EBMLMaxIDLength", KindUint},
	IDEBMLMaxSizeLength:      {"EBMLMaxSizeLength", KindUint},
	IDEBMLDocType:            {"DocType", KindBinary},
	IDEBMLDocTypeVersion:     {"DocTypeVersion", KindUint},
	IDEBMLDocTypeReadVersion: {"DocTypeReadVersion", KindUint},

	IDVoid:  {"Void", KindBinary},
	IDCRC32: {"CRC-32", KindBinary},

	IDSegment: {"Segment", KindMaster},

	IDSeekHead: {"SeekHead", KindMaster},
	IDSeek:     {"Seek", KindMaster},
	IDSeekID:   {"SeekID", KindBinary},
	IDSeekPos:  {"SeekPosition", KindUint},

	IDInfo:            {"Info", KindMaster},
	IDSegmentUID:      {"SegmentUID", KindBinary},
	IDSegmentFilename: {"SegmentFilename", KindBinary},
	IDTimecodeScale:   {"TimecodeScale", KindUint},
	IDDuration:        {"Duration", KindFloat},
	IDDateUTC:         {"DateUTC", KindBinary},
	IDTitle:           {"Title", KindBinary},
	IDMuxingApp:       {"MuxingApp", KindBinary},
	IDWritingApp:      {"WritingApp", KindBinary},

	IDTracks:     {"Tracks", KindMaster},
	IDTrackEntry: {"TrackEntry", KindMaster},
	IDTrackNum:   {"TrackNumber", KindUint},
	IDTrackUID:   {"TrackUID", KindUint},
	IDTrackType:  {"TrackType", KindUint},
	IDTrackName:  {"Name", KindBinary},
	IDLanguage:   {"Language", KindBinary},
	IDCodecID:    {"CodecID", KindBinary},
	IDCodecPriv:  {"CodecPrivate", KindBinary},
	IDCodecName:  {"CodecName", KindBinary},
	IDVideo:      {"Video", KindMaster},
	IDAudio:      {"Audio", KindMaster},

	IDPixelWidth:        {"PixelWidth", KindUint},
	IDPixelHeight:       {"PixelHeight", KindUint},
	IDSamplingFrequency: {"SamplingFrequency", KindFloat},
	IDChannels:          {"Channels", KindUint},
	IDBitDepth:          {"BitDepth", KindUint},

	IDCluster: {"Cluster", KindBinary},

	IDCues:              {"Cues", KindMaster},
	IDCuePoint:          {"CuePoint", KindMaster},
	IDCueTime:           {"CueTime", KindUint},
	IDCueTrackPositions: {"CueTrackPositions", KindMaster},
	IDCueTrack:          {"CueTrack", KindUint},
	IDCueClusterPos:     {"CueClusterPosition", KindUint},

	IDChapters:    {"Chapters", KindBinary},
	IDTags:        {"Tags", KindMaster},
	IDTag:         {"Tag", KindBinary},
	IDAttachments: {"Attachments", KindBinary},
}

// Lookup returns the dictionary entry for id. Unrecognized IDs yield an
// Unknown binary tag so callers can skip them.
func Lookup(id uint64) Tag {
	if tag, ok := tags[id]; ok {
		return tag
	}
	return Tag{Name: UnknownName, Kind: KindBinary}
}

// Known reports whether id is present in the dictionary.
func Known(id uint64) bool {
	_, ok := tags[id]
	return ok
}
