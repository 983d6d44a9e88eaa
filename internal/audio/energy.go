package audio

import (
	"context"
	"fmt"
	"math"
)

// EnergyDetector implements Detector by scanning the decoded samples with a
// sliding RMS window.
//
// A window of MinSilenceMs is silent when its RMS level is at or below
// SilenceThreshDB. Window starts advance by SeekStepMs, and the last possible
// start is always scanned. Silent windows that touch or overlap are merged.
type EnergyDetector struct{}

// NewEnergyDetector creates a new EnergyDetector.
func NewEnergyDetector() *EnergyDetector {
	return &EnergyDetector{}
}

// DetectNonsilent implements Detector.
func (d *EnergyDetector) DetectNonsilent(ctx context.Context, track *Track, opts SilenceOpts) ([]Interval, error) {
	silences, err := d.DetectSilence(ctx, track, opts)
	if err != nil {
		return nil, err
	}
	total := track.DurationMs()
	if total == 0 {
		return nil, nil
	}
	return complement(silences, total), nil
}

// DetectSilence returns the silent intervals of the track.
func (d *EnergyDetector) DetectSilence(ctx context.Context, track *Track, opts SilenceOpts) ([]Interval, error) {
	if track == nil {
		return nil, ErrNoTrack
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	total := track.DurationMs()
	if total < opts.MinSilenceMs {
		return nil, nil
	}

	prof, err := newEnergyProfile(ctx, track)
	if err != nil {
		return nil, err
	}

	thresh := math.Pow(10, opts.SilenceThreshDB/20)
	lastStart := total - opts.MinSilenceMs

	var starts []int
	check := func(i int) {
		if prof.rms(i, i+opts.MinSilenceMs) <= thresh {
			starts = append(starts, i)
		}
	}
	for i := 0; i <= lastStart; i += opts.SeekStepMs {
		check(i)
	}
	if lastStart%opts.SeekStepMs != 0 {
		check(lastStart)
	}

	if len(starts) == 0 {
		return nil, nil
	}

	var ranges []Interval
	prev := starts[0]
	rangeStart := prev
	for _, s := range starts[1:] {
		continuous := s == prev+opts.SeekStepMs
		hasGap := s > prev+opts.MinSilenceMs
		if !continuous && hasGap {
			ranges = append(ranges, Interval{StartMs: rangeStart, EndMs: prev + opts.MinSilenceMs})
			rangeStart = s
		}
		prev = s
	}
	ranges = append(ranges, Interval{StartMs: rangeStart, EndMs: prev + opts.MinSilenceMs})

	return ranges, nil
}

// energyProfile holds, for every millisecond boundary k, the sum of squared
// samples (both channels) of all frames before that boundary.
type energyProfile struct {
	track  *Track
	prefix []float64
}

func newEnergyProfile(ctx context.Context, track *Track) (*energyProfile, error) {
	total := track.DurationMs()
	prefix := make([]float64, total+1)

	s := track.buf.Streamer(0, track.Frames())
	chunk := make([][2]float64, 8192)

	var (
		acc   float64
		frame int
		next  = 1
	)
	for {
		n, ok := s.Stream(chunk)
		for i := 0; i < n; i++ {
			for next <= total && track.frameAt(next) <= frame {
				prefix[next] = acc
				next++
			}
			acc += chunk[i][0]*chunk[i][0] + chunk[i][1]*chunk[i][1]
			frame++
		}
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}
	}
	for ; next <= total; next++ {
		prefix[next] = acc
	}

	return &energyProfile{track: track, prefix: prefix}, nil
}

// rms returns the root mean square amplitude of [startMs, endMs), in the
// 0..1 range of full scale.
func (p *energyProfile) rms(startMs, endMs int) float64 {
	if endMs > len(p.prefix)-1 {
		endMs = len(p.prefix) - 1
	}
	frames := p.track.frameAt(endMs) - p.track.frameAt(startMs)
	if frames <= 0 {
		return 0
	}
	sum := p.prefix[endMs] - p.prefix[startMs]
	if sum < 0 {
		sum = 0
	}
	return math.Sqrt(sum / float64(2*frames))
}

var _ Detector = (*EnergyDetector)(nil)
