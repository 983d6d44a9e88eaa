// Package audio provides decoding, silence detection and export of the
// recordings that word clips are cut from.
package audio

import (
	"context"
	"errors"
	"fmt"
)

// Static errors for audio operations.
var (
	// ErrInvalidSilenceOpts is returned when silence options are out of range.
	ErrInvalidSilenceOpts = errors.New("invalid silence options")
	// ErrUnsupportedFormat is returned when a file extension has no decoder.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrNoTrack is returned when an operation needs a decoded track and got nil.
	ErrNoTrack = errors.New("no audio track")
	// ErrNoSpans is returned when an export is requested with nothing to export.
	ErrNoSpans = errors.New("no spans to export")
)

// Interval is a half-open [StartMs, EndMs) region of a track in milliseconds.
type Interval struct {
	StartMs int `json:"start_ms"`
	EndMs   int `json:"end_ms"`
}

// DurationMs returns the length of the interval.
func (i Interval) DurationMs() int {
	return i.EndMs - i.StartMs
}

func (i Interval) String() string {
	return fmt.Sprintf("[%d,%d)", i.StartMs, i.EndMs)
}

// SilenceOpts configures silence detection.
type SilenceOpts struct {
	// MinSilenceMs is the minimum length of a pause that separates two words.
	// Default: 800 milliseconds.
	MinSilenceMs int

	// SilenceThreshDB is the level in dBFS at or below which audio counts
	// as silence.
	// Default: -45 dBFS.
	SilenceThreshDB float64

	// SeekStepMs is the scan step in milliseconds.
	// Default: 5 milliseconds.
	SeekStepMs int
}

// DefaultSilenceOpts returns the default options for silence detection.
func DefaultSilenceOpts() SilenceOpts {
	return SilenceOpts{
		MinSilenceMs:    800,
		SilenceThreshDB: -45,
		SeekStepMs:      5,
	}
}

// Validate reports whether the options can drive a scan.
func (o SilenceOpts) Validate() error {
	if o.MinSilenceMs <= 0 {
		return fmt.Errorf("%w: min silence must be positive, got %d", ErrInvalidSilenceOpts, o.MinSilenceMs)
	}
	if o.SeekStepMs <= 0 {
		return fmt.Errorf("%w: seek step must be positive, got %d", ErrInvalidSilenceOpts, o.SeekStepMs)
	}
	return nil
}

// Detector finds the non-silent regions of a track.
type Detector interface {
	// DetectNonsilent returns the non-silent intervals of the track, sorted
	// by start and non-overlapping.
	DetectNonsilent(ctx context.Context, track *Track, opts SilenceOpts) ([]Interval, error)
}

// Exporter renders spans of a track, in order, into a single encoded file.
type Exporter interface {
	// Export concatenates spans of track and writes the result to dst.
	// Returns ErrNoSpans if spans is empty.
	Export(ctx context.Context, track *Track, spans []Interval, dst string) error
}

// complement returns the regions of [0, totalMs) not covered by silences.
// silences must be sorted and non-overlapping. A zero-length region at the
// start is dropped, and a track that is silent end to end has none.
func complement(silences []Interval, totalMs int) []Interval {
	if len(silences) == 0 {
		return []Interval{{StartMs: 0, EndMs: totalMs}}
	}
	if silences[0].StartMs <= 0 && silences[0].EndMs >= totalMs {
		return nil
	}

	var out []Interval
	prevEnd := 0
	for _, s := range silences {
		out = append(out, Interval{StartMs: prevEnd, EndMs: s.StartMs})
		prevEnd = s.EndMs
	}
	if prevEnd < totalMs {
		out = append(out, Interval{StartMs: prevEnd, EndMs: totalMs})
	}

	if len(out) > 0 && out[0].StartMs == 0 && out[0].EndMs == 0 {
		out = out[1:]
	}
	return out
}
