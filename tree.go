package webmfix

import (
	"fmt"
)

// MaxDepth bounds how deeply master elements may nest.
const MaxDepth = 32

// Build parses the sibling elements found in buf[start:end] into a tree,
// descending into every master element. Any structural problem aborts the
// whole build; a partial tree is never returned.
func Build(buf []byte, start, end int) ([]*Element, error) {
	if start < 0 || start > end || end > len(buf) {
		return nil, fmt.Errorf("%w: range [%d, %d) outside %d-byte buffer",
			ErrTruncatedElement, start, end, len(buf))
	}
	return build(buf, start, end, 0)
}

func build(buf []byte, start, end, depth int) ([]*Element, error) {
	if depth >= MaxDepth {
		return nil, fmt.Errorf("%w: elements nested deeper than %d at offset %d",
			ErrMalformedEncoding, MaxDepth, start)
	}

	var elements []*Element
	for pos := start; pos < end; {
		el, err := readElementHeader(buf, pos, end)
		if err != nil {
			return nil, err
		}

		if el.Tag.Kind == KindMaster {
			children, errBuild := build(buf, el.Offset, el.End(), depth+1)
			if errBuild != nil {
				return nil, errBuild
			}
			el.Children = children
		} else if err = el.decode(el.Payload(buf)); err != nil {
			return nil, err
		}

		elements = append(elements, el)
		pos = el.End()
	}

	return elements, nil
}

// readElementHeader reads the ID and size at pos and resolves the payload
// range, which must lie within [pos, end).
func readElementHeader(buf []byte, pos, end int) (*Element, error) {
	// Limit the reader to the enclosing range so a header cannot spill
	// into the parent's next sibling.
	limited := buf[:end]

	id, idLen, err := ReadVIntID(limited, pos)
	if err != nil {
		return nil, fmt.Errorf("failed to read element ID: %w", err)
	}

	size, sizeLen, err := ReadVInt(limited, pos+idLen)
	if err != nil {
		return nil, fmt.Errorf("failed to read element size for ID 0x%X: %w", id, err)
	}

	el := &Element{
		ID:           id,
		Tag:          Lookup(id),
		HeaderOffset: pos,
		Offset:       pos + idLen + sizeLen,
	}

	remaining := end - el.Offset
	switch {
	case size == UnknownSize:
		el.Size = remaining
		el.UnknownSize = true
	case size > uint64(remaining):
		return nil, fmt.Errorf("%w: %s (ID 0x%X) at offset %d declares %d bytes, %d available",
			ErrTruncatedElement, el.Tag.Name, id, pos, size, remaining)
	default:
		el.Size = int(size)
	}

	return el, nil
}
