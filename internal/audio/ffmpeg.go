package audio

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[\d.]+)`)
)

// FFmpegDetector implements Detector using the ffmpeg silencedetect filter.
// ffmpeg evaluates every sample, so SeekStepMs is not used.
type FFmpegDetector struct {
	ffmpegPath string
}

// NewFFmpegDetector creates a new FFmpegDetector.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found in PATH).
func NewFFmpegDetector(ffmpegPath string) *FFmpegDetector {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegDetector{ffmpegPath: ffmpegPath}
}

// DetectNonsilent implements Detector. The track must carry the Path it was
// decoded from.
func (d *FFmpegDetector) DetectNonsilent(ctx context.Context, track *Track, opts SilenceOpts) ([]Interval, error) {
	if track == nil || track.Path == "" {
		return nil, ErrNoTrack
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	total := track.DurationMs()
	if total == 0 {
		return nil, nil
	}

	silences, err := d.detectSilences(ctx, track.Path, opts, total)
	if err != nil {
		return nil, fmt.Errorf("detect silences: %w", err)
	}
	return complement(silences, total), nil
}

// detectSilences runs silencedetect over inputPath.
func (d *FFmpegDetector) detectSilences(ctx context.Context, inputPath string, opts SilenceOpts, totalMs int) ([]Interval, error) {
	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%.3f",
		opts.SilenceThreshDB,
		float64(opts.MinSilenceMs)/1000.0,
	)

	// silencedetect reports on stderr
	stderr, err := runFFmpeg(ctx, d.ffmpegPath,
		"-hide_banner",
		"-nostats",
		"-i", inputPath,
		"-af", filter,
		"-f", "null",
		"-",
	)
	if err != nil {
		return nil, err
	}

	return parseSilenceOutput(stderr, totalMs)
}

// parseSilenceOutput parses ffmpeg silencedetect output into silent
// intervals in milliseconds. A silence still open at the end of the output
// is closed at totalMs.
func parseSilenceOutput(output string, totalMs int) ([]Interval, error) {
	var intervals []Interval
	scanner := bufio.NewScanner(strings.NewReader(output))

	var currentStart int
	hasStart := false

	for scanner.Scan() {
		line := scanner.Text()

		if m := silenceStartRe.FindStringSubmatch(line); len(m) > 1 {
			val, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			currentStart = secondsToMs(val)
			hasStart = true
		}

		if m := silenceEndRe.FindStringSubmatch(line); len(m) > 1 && hasStart {
			val, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			end := secondsToMs(val)
			if end > totalMs {
				end = totalMs
			}
			intervals = append(intervals, Interval{StartMs: currentStart, EndMs: end})
			hasStart = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if hasStart && currentStart < totalMs {
		intervals = append(intervals, Interval{StartMs: currentStart, EndMs: totalMs})
	}

	return intervals, nil
}

func secondsToMs(sec float64) int {
	if sec < 0 {
		return 0
	}
	return int(math.Round(sec * 1000))
}

var _ Detector = (*FFmpegDetector)(nil)
