package webmfix

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Element is one node of a parsed EBML tree. Offsets are absolute positions
// in the buffer the tree was built from.
type Element struct {
	ID  uint64
	Tag Tag

	// HeaderOffset is where the element ID starts; Offset is where the
	// payload starts and Size is the payload length.
	HeaderOffset int
	Offset       int
	Size         int

	// UnknownSize is set when the size field held the reserved all-ones
	// value and the element was taken to extend to the end of its parent.
	UnknownSize bool

	Children []*Element

	uintValue  uint64
	floatValue float64
	decoded    bool
}

// Name returns the dictionary name of the element.
func (e *Element) Name() string {
	return e.Tag.Name
}

// End returns the absolute offset just past the payload.
func (e *Element) End() int {
	return e.Offset + e.Size
}

// Payload returns the element payload as a sub-slice of buf.
func (e *Element) Payload(buf []byte) []byte {
	return buf[e.Offset:e.End()]
}

// Uint returns the decoded value of an unsigned integer element.
func (e *Element) Uint() (uint64, bool) {
	if !e.decoded || e.Tag.Kind != KindUint {
		return 0, false
	}
	return e.uintValue, true
}

// Float returns the decoded value of a float element.
func (e *Element) Float() (float64, bool) {
	if !e.decoded || e.Tag.Kind != KindFloat {
		return 0, false
	}
	return e.floatValue, true
}

// Child returns the first direct child with the given ID.
func (e *Element) Child(id uint64) *Element {
	return find(e.Children, id)
}

// Walk calls fn for e and every descendant in document order. Returning
// false from fn skips the children of that element.
func (e *Element) Walk(fn func(el *Element, depth int) bool) {
	e.walk(fn, 0)
}

func (e *Element) walk(fn func(el *Element, depth int) bool, depth int) {
	if !fn(e, depth) {
		return
	}
	for _, child := range e.Children {
		child.walk(fn, depth+1)
	}
}

func find(elements []*Element, id uint64) *Element {
	for _, el := range elements {
		if el.ID == id {
			return el
		}
	}
	return nil
}

// decode fills in the leaf value of e from its payload.
func (e *Element) decode(payload []byte) error {
	switch e.Tag.Kind {
	case KindUint:
		v, err := decodeUint(payload)
		if err != nil {
			return fmt.Errorf("%s at offset %d: %w", e.Tag.Name, e.HeaderOffset, err)
		}
		e.uintValue = v
		e.decoded = true
	case KindFloat:
		v, err := decodeFloat(payload)
		if err != nil {
			return fmt.Errorf("%s at offset %d: %w", e.Tag.Name, e.HeaderOffset, err)
		}
		e.floatValue = v
		e.decoded = true
	}
	return nil
}

// decodeUint reads a big-endian unsigned integer of 0 to 8 bytes.
func decodeUint(data []byte) (uint64, error) {
	if len(data) > 8 {
		return 0, fmt.Errorf("%w: %d-byte unsigned integer", ErrMalformedEncoding, len(data))
	}

	var result uint64
	for _, b := range data {
		result = (result << 8) | uint64(b)
	}
	return result, nil
}

// decodeInt reads a big-endian two's complement integer of 0 to 8 bytes.
func decodeInt(data []byte) (int64, error) {
	if len(data) > 8 {
		return 0, fmt.Errorf("%w: %d-byte signed integer", ErrMalformedEncoding, len(data))
	}
	if len(data) == 0 {
		return 0, nil
	}

	var result uint64
	for _, b := range data {
		result = (result << 8) | uint64(b)
	}

	// Sign-extend from the top bit of the first byte.
	shift := 64 - 8*uint(len(data))
	return int64(result<<shift) >> shift, nil
}

// decodeFloat reads a big-endian IEEE-754 value of exactly 4 or 8 bytes.
func decodeFloat(data []byte) (float64, error) {
	switch len(data) {
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(data))), nil
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
	default:
		return 0, fmt.Errorf("%w: %d-byte float", ErrMalformedEncoding, len(data))
	}
}

// encodeFloat writes v as a big-endian IEEE-754 value into dst, which must
// be 4 or 8 bytes long.
func encodeFloat(dst []byte, v float64) error {
	switch len(dst) {
	case 4:
		f := float32(v)
		if math.IsInf(float64(f), 0) {
			return fmt.Errorf("%w: %g overflows a 4-byte float", ErrMalformedEncoding, v)
		}
		binary.BigEndian.PutUint32(dst, math.Float32bits(f))
	case 8:
		binary.BigEndian.PutUint64(dst, math.Float64bits(v))
	default:
		return fmt.Errorf("%w: %d-byte float", ErrMalformedEncoding, len(dst))
	}
	return nil
}

// decodeString trims the trailing NUL padding EBML strings may carry.
func decodeString(data []byte) string {
	for len(data) > 0 && data[len(data)-1] == 0 {
		data = data[:len(data)-1]
	}
	return string(data)
}
