package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gopxl/beep/v2"
)

// TempFiles is the subset of temporary storage the exporter spools PCM into.
type TempFiles interface {
	SaveTemp(ctx context.Context, name string, data io.Reader) (string, error)
	CleanupTemp(ctx context.Context, paths []string) error
}

// FFmpegExporter implements Exporter. Spans are rendered to raw 16-bit PCM
// in temporary storage and encoded to MP3 with ffmpeg (libmp3lame).
type FFmpegExporter struct {
	ffmpegPath string
	bitrate    string
	temp       TempFiles
}

// NewFFmpegExporter creates a new FFmpegExporter.
// If ffmpegPath is empty it defaults to "ffmpeg"; if bitrate is empty it
// defaults to "128k".
func NewFFmpegExporter(ffmpegPath, bitrate string, temp TempFiles) *FFmpegExporter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if bitrate == "" {
		bitrate = "128k"
	}
	return &FFmpegExporter{ffmpegPath: ffmpegPath, bitrate: bitrate, temp: temp}
}

// Export implements Exporter.
func (e *FFmpegExporter) Export(ctx context.Context, track *Track, spans []Interval, dst string) error {
	if track == nil {
		return ErrNoTrack
	}
	if len(spans) == 0 {
		return ErrNoSpans
	}

	streamers := make([]beep.Streamer, 0, len(spans))
	for _, span := range spans {
		streamers = append(streamers, track.Streamer(span))
	}

	pcmPath, err := e.temp.SaveTemp(ctx, "pcm_"+filepath.Base(dst), newPCMReader(beep.Seq(streamers...)))
	if err != nil {
		return fmt.Errorf("spool pcm: %w", err)
	}
	defer func() { _ = e.temp.CleanupTemp(context.WithoutCancel(ctx), []string{pcmPath}) }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	args := []string{
		"-y", // Overwrite output
		"-hide_banner",
		"-f", "s16le",
		"-ar", strconv.Itoa(int(track.Format.SampleRate)),
		"-ac", "2",
		"-i", pcmPath,
		"-codec:a", "libmp3lame",
		"-b:a", e.bitrate,
		dst,
	}
	if _, err := runFFmpeg(ctx, e.ffmpegPath, args...); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(dst), err)
	}

	return nil
}

// pcmReader adapts a beep.Streamer to an io.Reader of interleaved stereo
// signed 16-bit little-endian samples.
type pcmReader struct {
	s       beep.Streamer
	samples [][2]float64
	pending []byte
	done    bool
}

func newPCMReader(s beep.Streamer) *pcmReader {
	return &pcmReader{s: s, samples: make([][2]float64, 4096)}
}

func (r *pcmReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if r.done {
			if err := r.s.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		n, ok := r.s.Stream(r.samples)
		if !ok {
			r.done = true
		}
		r.pending = encodePCM16(r.pending[:0], r.samples[:n])
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func encodePCM16(dst []byte, samples [][2]float64) []byte {
	for _, frame := range samples {
		for _, v := range frame {
			dst = binary.LittleEndian.AppendUint16(dst, uint16(toInt16(v)))
		}
	}
	return dst
}

func toInt16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * math.MaxInt16))
}

var _ Exporter = (*FFmpegExporter)(nil)
