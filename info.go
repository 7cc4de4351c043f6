package webmfix

import (
	"fmt"
	"time"
)

// matroskaEpoch is the origin of DateUTC values.
var matroskaEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// EBMLHeader represents the EBML header
type EBMLHeader struct {
	Version            uint64
	ReadVersion        uint64
	MaxIDLength        uint64
	MaxSizeLength      uint64
	DocType            string
	DocTypeVersion     uint64
	DocTypeReadVersion uint64
}

// SegmentInfo holds the fields of the first Segment → Info element.
type SegmentInfo struct {
	UID           []byte
	Filename      string
	Title         string
	MuxingApp     string
	WritingApp    string
	TimecodeScale uint64
	DateUTC       time.Time

	// HasDuration is false when the Info carries no Duration element.
	HasDuration   bool
	Duration      float64
	DurationWidth int
}

// Length converts the stored Duration to wall-clock time using
// TimecodeScale nanoseconds per tick.
func (si *SegmentInfo) Length() time.Duration {
	if !si.HasDuration {
		return 0
	}
	return time.Duration(si.Duration * float64(si.TimecodeScale))
}

// FileInfo summarizes a WebM file for inspection.
type FileInfo struct {
	Header  *EBMLHeader
	Info    *SegmentInfo
	Tracks  int
	Cues    bool
	Streams bool // Segment or a Cluster was written with unknown size
	Tree    []*Element
}

// Inspect parses buf and collects its header and segment information. It
// never modifies buf.
func Inspect(buf []byte) (*FileInfo, error) {
	tree, err := Build(buf, 0, len(buf))
	if err != nil {
		return nil, err
	}

	fi := &FileInfo{Tree: tree}
	if header := find(tree, IDEBMLHeader); header != nil {
		fi.Header = readHeader(header, buf)
	}

	segment := find(tree, IDSegment)
	if segment == nil {
		return fi, nil
	}
	fi.Streams = segment.UnknownSize

	for _, child := range segment.Children {
		switch child.ID {
		case IDInfo:
			if fi.Info != nil {
				continue
			}
			info, errInfo := readSegmentInfo(child, buf)
			if errInfo != nil {
				return nil, errInfo
			}
			fi.Info = info
		case IDTracks:
			for _, entry := range child.Children {
				if entry.ID == IDTrackEntry {
					fi.Tracks++
				}
			}
		case IDCues:
			fi.Cues = true
		case IDCluster:
			if child.UnknownSize {
				fi.Streams = true
			}
		}
	}

	return fi, nil
}

func readHeader(el *Element, buf []byte) *EBMLHeader {
	header := &EBMLHeader{}
	for _, child := range el.Children {
		v, _ := child.Uint()
		switch child.ID {
		case IDEBMLVersion:
			header.Version = v
		case IDEBMLReadVersion:
			header.ReadVersion = v
		case IDEBMLMaxIDLength:
			header.MaxIDLength = v
		case IDEBMLMaxSizeLength:
			header.MaxSizeLength = v
		case IDEBMLDocType:
			header.DocType = decodeString(child.Payload(buf))
		case IDEBMLDocTypeVersion:
			header.DocTypeVersion = v
		case IDEBMLDocTypeReadVersion:
			header.DocTypeReadVersion = v
		}
	}
	return header
}

func readSegmentInfo(el *Element, buf []byte) (*SegmentInfo, error) {
	info := &SegmentInfo{
		TimecodeScale: durationUnitScale, // Matroska default
	}

	var scaleSeen bool
	for _, child := range el.Children {
		switch child.ID {
		case IDSegmentUID:
			info.UID = append([]byte(nil), child.Payload(buf)...)
		case IDSegmentFilename:
			info.Filename = decodeString(child.Payload(buf))
		case IDTitle:
			info.Title = decodeString(child.Payload(buf))
		case IDMuxingApp:
			info.MuxingApp = decodeString(child.Payload(buf))
		case IDWritingApp:
			info.WritingApp = decodeString(child.Payload(buf))
		case IDTimecodeScale:
			if scaleSeen {
				continue
			}
			info.TimecodeScale, _ = child.Uint()
			scaleSeen = true
		case IDDuration:
			if info.HasDuration {
				continue
			}
			info.Duration, _ = child.Float()
			info.DurationWidth = child.Size
			info.HasDuration = true
		case IDDateUTC:
			ns, err := decodeInt(child.Payload(buf))
			if err != nil {
				return nil, fmt.Errorf("DateUTC at offset %d: %w", child.HeaderOffset, err)
			}
			info.DateUTC = matroskaEpoch.Add(time.Duration(ns))
		}
	}

	return info, nil
}
