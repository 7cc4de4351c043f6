package webmfix

import "errors"

var (
	// ErrMalformedEncoding reports an ID, size or value that violates the
	// EBML encoding rules.
	ErrMalformedEncoding = errors.New("malformed EBML encoding")

	// ErrTruncatedElement reports an element whose declared size runs past
	// the bytes available in its parent.
	ErrTruncatedElement = errors.New("truncated EBML element")

	// ErrMissingMetadata reports that Segment, Info, Duration or
	// TimecodeScale is absent. Files in this state are left as they are.
	ErrMissingMetadata = errors.New("duration metadata not found")
)
