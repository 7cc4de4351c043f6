// Package webmfix repairs the Duration metadata of WebM recordings written in
// streaming mode.
//
// A recorder that streams its output cannot know the final length when it
// writes the Segment Info, so players see a missing or wrong duration and
// refuse to seek. This package walks the EBML tree of a finished recording,
// locates Segment → Info → Duration and TimecodeScale, and overwrites the
// Duration payload in place. The file never changes size and no other byte
// is touched, so no element sizes or offsets need recomputing.
//
// Example usage:
//
//	data, err := os.ReadFile("capture.webm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Process never fails: unparseable files come back unchanged.
//	data = webmfix.Process(data)
//
//	// Fix reports what happened.
//	res, err := webmfix.Fix(data)
//	if errors.Is(err, webmfix.ErrMissingMetadata) {
//	    fmt.Println("no duration to fix")
//	}
//	fmt.Printf("duration %g at offset %d\n", res.Duration, res.Offset)
package webmfix

import (
	"time"
)

// Process repairs the Duration of the WebM file in buf and returns it. The
// returned slice is buf itself. When the file cannot be parsed or carries no
// Duration metadata, buf is returned byte-for-byte unchanged.
func Process(buf []byte) []byte {
	_, _ = Fix(buf)
	return buf
}

// ProcessElapsed is Process with a known recording length written as the
// Duration instead of the rescaled stored value.
func ProcessElapsed(buf []byte, elapsed time.Duration) []byte {
	_, _ = FixElapsed(buf, elapsed)
	return buf
}

// Fix is Process with the outcome reported. Errors wrap ErrMalformedEncoding,
// ErrTruncatedElement or ErrMissingMetadata; buf is only modified when the
// error is nil.
func Fix(buf []byte) (Result, error) {
	tree, err := Build(buf, 0, len(buf))
	if err != nil {
		return Result{}, err
	}
	return PatchDuration(tree, buf)
}

// FixElapsed is Fix with a known recording length.
func FixElapsed(buf []byte, elapsed time.Duration) (Result, error) {
	tree, err := Build(buf, 0, len(buf))
	if err != nil {
		return Result{}, err
	}
	return PatchDurationTo(tree, buf, elapsed)
}
