package webmfix

import (
	"bytes"
	"encoding/binary"
	"math"
)

// unknownSize8 is the 8-byte unknown-size marker streaming muxers write.
var unknownSize8 = []byte{0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// idBytes returns the wire form of an element ID.
func idBytes(id uint64) []byte {
	var out []byte
	for id > 0 {
		out = append([]byte{byte(id)}, out...)
		id >>= 8
	}
	return out
}

// sizeBytes encodes size in the shortest VINT that does not collide with the
// unknown-size pattern.
func sizeBytes(size uint64) []byte {
	for w := 1; w <= 8; w++ {
		if size < (uint64(1)<<(7*uint(w)))-1 {
			v := size | uint64(1)<<(7*uint(w))
			out := make([]byte, w)
			for i := w - 1; i >= 0; i-- {
				out[i] = byte(v)
				v >>= 8
			}
			return out
		}
	}
	panic("size too large")
}

func elem(id uint64, payload []byte) []byte {
	out := append(idBytes(id), sizeBytes(uint64(len(payload)))...)
	return append(out, payload...)
}

func master(id uint64, children ...[]byte) []byte {
	return elem(id, bytes.Join(children, nil))
}

func streamedMaster(id uint64, children ...[]byte) []byte {
	out := append(idBytes(id), unknownSize8...)
	return append(out, bytes.Join(children, nil)...)
}

func uintBytes(v uint64) []byte {
	out := []byte{byte(v)}
	for v >>= 8; v > 0; v >>= 8 {
		out = append([]byte{byte(v)}, out...)
	}
	return out
}

func float32Bytes(f float32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, math.Float32bits(f))
	return out
}

func float64Bytes(f float64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, math.Float64bits(f))
	return out
}

// recording describes a WebM file shaped like a browser capture.
type recording struct {
	duration []byte // Duration payload; nil omits the element
	scale    []byte // TimecodeScale payload; nil omits the element
	streamed bool   // Segment and Cluster written with unknown size
	noInfo   bool
	noSeg    bool
	// infoPrefix is written inside Info ahead of the standard children.
	infoPrefix [][]byte
}

func (r recording) bytes() []byte {
	header := master(IDEBMLHeader,
		elem(IDEBMLVersion, []byte{1}),
		elem(IDEBMLReadVersion, []byte{1}),
		elem(IDEBMLMaxIDLength, []byte{4}),
		elem(IDEBMLMaxSizeLength, []byte{8}),
		elem(IDEBMLDocType, []byte("webm")),
		elem(IDEBMLDocTypeVersion, []byte{4}),
		elem(IDEBMLDocTypeReadVersion, []byte{2}),
	)
	if r.noSeg {
		return header
	}

	infoChildren := append([][]byte{}, r.infoPrefix...)
	if r.scale != nil {
		infoChildren = append(infoChildren, elem(IDTimecodeScale, r.scale))
	}
	infoChildren = append(infoChildren,
		elem(IDMuxingApp, []byte("Chrome")),
		elem(IDWritingApp, []byte("Chrome")),
	)
	if r.duration != nil {
		infoChildren = append(infoChildren, elem(IDDuration, r.duration))
	}

	tracks := master(IDTracks,
		master(IDTrackEntry,
			elem(IDTrackNum, []byte{1}),
			elem(IDTrackUID, uintBytes(0x1234)),
			elem(IDTrackType, []byte{1}),
			elem(IDCodecID, []byte("V_VP8")),
			master(IDVideo,
				elem(IDPixelWidth, uintBytes(640)),
				elem(IDPixelHeight, uintBytes(480)),
			),
		),
	)

	clusterBody := [][]byte{
		elem(0xE7, []byte{0x00}),                               // Timestamp
		elem(0xA3, []byte{0x81, 0x00, 0x00, 0x80, 0x9D, 0x01}), // SimpleBlock
	}

	var segChildren [][]byte
	if !r.noInfo {
		segChildren = append(segChildren, master(IDInfo, infoChildren...))
	}
	segChildren = append(segChildren, tracks)

	if r.streamed {
		segChildren = append(segChildren,
			streamedMaster(IDCluster, clusterBody...),
		)
		return append(header, streamedMaster(IDSegment, segChildren...)...)
	}

	segChildren = append(segChildren, master(IDCluster, clusterBody...))
	return append(header, master(IDSegment, segChildren...)...)
}

// durationPayloadOffset locates the Duration payload in a fixture.
func durationPayloadOffset(buf []byte, width int) int {
	i := bytes.Index(buf, []byte{0x44, 0x89, 0x80 | byte(width)})
	if i < 0 {
		return -1
	}
	return i + 3
}
