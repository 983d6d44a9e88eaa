package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// Track is a fully decoded recording held in memory.
type Track struct {
	// Path is the file the track was decoded from, empty for synthetic tracks.
	Path   string
	Format beep.Format
	buf    *beep.Buffer
}

// Decode reads an mp3 or wav file into memory.
func Decode(path string) (*Track, error) {
	f, err := os.Open(path) // #nosec G304 - path is built from configured folders
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = streamer.Close() }()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	return &Track{Path: path, Format: format, buf: buf}, nil
}

// NewTrack builds a track from raw stereo samples.
func NewTrack(format beep.Format, samples [][2]float64) *Track {
	buf := beep.NewBuffer(format)
	buf.Append(&sliceStreamer{samples: samples})
	return &Track{Format: format, buf: buf}
}

// Frames returns the number of sample frames in the track.
func (t *Track) Frames() int {
	return t.buf.Len()
}

// DurationMs returns the track length in milliseconds, rounded.
func (t *Track) DurationMs() int {
	return int(math.Round(float64(t.buf.Len()) * 1000 / float64(t.Format.SampleRate)))
}

// frameAt converts a millisecond position into a frame index within the track.
func (t *Track) frameAt(ms int) int {
	if ms <= 0 {
		return 0
	}
	n := int(int64(ms) * int64(t.Format.SampleRate) / 1000)
	if n > t.buf.Len() {
		return t.buf.Len()
	}
	return n
}

// Streamer returns a streamer over the given span of the track.
func (t *Track) Streamer(span Interval) beep.StreamSeeker {
	from := t.frameAt(span.StartMs)
	to := t.frameAt(span.EndMs)
	if to < from {
		to = from
	}
	return t.buf.Streamer(from, to)
}

// sliceStreamer streams a fixed slice of samples once.
type sliceStreamer struct {
	samples [][2]float64
	pos     int
}

func (s *sliceStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := copy(samples, s.samples[s.pos:])
	s.pos += n
	return n, true
}

func (s *sliceStreamer) Err() error {
	return nil
}
