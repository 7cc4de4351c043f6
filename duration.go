package webmfix

import (
	"bytes"
	"fmt"
	"math"
	"time"
)

// durationUnitScale is the TimecodeScale browsers write (1 ms ticks). The
// raw Duration is rescaled against it so files recorded at another scale end
// up expressed in the same millisecond convention.
const durationUnitScale = 1_000_000

// Result describes the outcome of a duration patch.
type Result struct {
	// Patched is set once the Duration payload has been written. Changed
	// additionally reports that the written bytes differ from the old ones.
	Patched bool
	Changed bool

	// Offset and Width locate the Duration payload in the buffer.
	Offset int
	Width  int

	TimecodeScale uint64
	Previous      float64
	Duration      float64
}

// locateDuration finds Segment → Info → Duration and Segment → Info →
// TimecodeScale, taking the first match at every level.
func locateDuration(tree []*Element) (duration, scale *Element, err error) {
	segment := find(tree, IDSegment)
	if segment == nil {
		return nil, nil, fmt.Errorf("%w: no Segment", ErrMissingMetadata)
	}
	info := segment.Child(IDInfo)
	if info == nil {
		return nil, nil, fmt.Errorf("%w: no Info in Segment", ErrMissingMetadata)
	}
	duration = info.Child(IDDuration)
	if duration == nil {
		return nil, nil, fmt.Errorf("%w: no Duration in Info", ErrMissingMetadata)
	}
	scale = info.Child(IDTimecodeScale)
	if scale == nil {
		return nil, nil, fmt.Errorf("%w: no TimecodeScale in Info", ErrMissingMetadata)
	}
	return duration, scale, nil
}

// PatchDuration rescales the Duration found in tree by TimecodeScale and
// writes it back over the original Duration payload in buf, keeping its
// 4 or 8 byte width. Nothing is written when an error is returned.
func PatchDuration(tree []*Element, buf []byte) (Result, error) {
	duration, scaleEl, err := locateDuration(tree)
	if err != nil {
		return Result{}, err
	}

	raw, scale, err := durationInputs(duration, scaleEl)
	if err != nil {
		return Result{}, err
	}

	corrected := raw * float64(scale) / durationUnitScale
	return writeDuration(buf, duration, scale, raw, corrected)
}

// PatchDurationTo writes a known elapsed recording time into the Duration
// payload, expressed in TimecodeScale ticks.
func PatchDurationTo(tree []*Element, buf []byte, elapsed time.Duration) (Result, error) {
	duration, scaleEl, err := locateDuration(tree)
	if err != nil {
		return Result{}, err
	}

	raw, scale, err := durationInputs(duration, scaleEl)
	if err != nil {
		return Result{}, err
	}
	if elapsed < 0 {
		return Result{}, fmt.Errorf("negative elapsed time %s", elapsed)
	}

	ticks := float64(elapsed.Nanoseconds()) / float64(scale)
	return writeDuration(buf, duration, scale, raw, ticks)
}

func durationInputs(duration, scaleEl *Element) (float64, uint64, error) {
	raw, ok := duration.Float()
	if !ok {
		return 0, 0, fmt.Errorf("%w: Duration at offset %d was not decoded", ErrMalformedEncoding, duration.HeaderOffset)
	}
	scale, ok := scaleEl.Uint()
	if !ok {
		return 0, 0, fmt.Errorf("%w: TimecodeScale at offset %d was not decoded", ErrMalformedEncoding, scaleEl.HeaderOffset)
	}
	if scale == 0 {
		return 0, 0, fmt.Errorf("%w: TimecodeScale is 0", ErrMalformedEncoding)
	}
	return raw, scale, nil
}

// writeDuration encodes value at the Duration element's own width and copies
// it over the payload in one step.
func writeDuration(buf []byte, duration *Element, scale uint64, previous, value float64) (Result, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return Result{}, fmt.Errorf("%w: duration %g is not a valid length", ErrMalformedEncoding, value)
	}
	if duration.Size != 4 && duration.Size != 8 {
		return Result{}, fmt.Errorf("%w: %d-byte Duration", ErrMalformedEncoding, duration.Size)
	}
	if duration.Offset < 0 || duration.End() > len(buf) {
		return Result{}, fmt.Errorf("%w: Duration payload [%d, %d) outside %d-byte buffer",
			ErrTruncatedElement, duration.Offset, duration.End(), len(buf))
	}

	var scratch [8]byte
	encoded := scratch[:duration.Size]
	if err := encodeFloat(encoded, value); err != nil {
		return Result{}, err
	}

	target := duration.Payload(buf)
	changed := !bytes.Equal(target, encoded)
	copy(target, encoded)

	written, _ := decodeFloat(encoded)
	return Result{
		Patched:       true,
		Changed:       changed,
		Offset:        duration.Offset,
		Width:         duration.Size,
		TimecodeScale: scale,
		Previous:      previous,
		Duration:      written,
	}, nil
}
