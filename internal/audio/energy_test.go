package audio

import (
	"context"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// msFormat has one frame per millisecond, so frame indexes equal ms positions.
var msFormat = beep.Format{SampleRate: 1000, NumChannels: 1, Precision: 2}

type part struct {
	ms    int
	level float64
}

// buildTrack concatenates constant-level parts into a track.
func buildTrack(format beep.Format, parts ...part) *Track {
	var samples [][2]float64
	for _, p := range parts {
		n := p.ms * int(format.SampleRate) / 1000
		for i := 0; i < n; i++ {
			samples = append(samples, [2]float64{p.level, p.level})
		}
	}
	return NewTrack(format, samples)
}

func TestEnergyDetector_DetectNonsilent(t *testing.T) {
	tests := []struct {
		name  string
		parts []part
		want  []Interval
	}{
		{
			name:  "words separated by long pauses",
			parts: []part{{1000, 0.5}, {1000, 0}, {500, 0.5}, {1000, 0}, {500, 0.5}},
			want:  []Interval{{0, 1000}, {2000, 2500}, {3500, 4000}},
		},
		{
			name:  "short pause does not split",
			parts: []part{{1000, 0.5}, {300, 0}, {1000, 0.5}},
			want:  []Interval{{0, 2300}},
		},
		{
			name:  "leading silence is dropped",
			parts: []part{{1000, 0}, {1000, 0.5}},
			want:  []Interval{{1000, 2000}},
		},
		{
			name:  "trailing silence is dropped",
			parts: []part{{1000, 0.5}, {1200, 0}},
			want:  []Interval{{0, 1000}},
		},
		{
			name:  "track shorter than min silence is one interval",
			parts: []part{{500, 0}},
			want:  []Interval{{0, 500}},
		},
		{
			name:  "silent track has no intervals",
			parts: []part{{3000, 0}},
			want:  nil,
		},
		{
			name:  "quiet signal below threshold is silence",
			parts: []part{{1000, 0.5}, {1000, 0.001}, {1000, 0.5}},
			want:  []Interval{{0, 1000}, {2000, 3000}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := buildTrack(msFormat, tt.parts...)
			got, err := NewEnergyDetector().DetectNonsilent(context.Background(), track, DefaultSilenceOpts())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnergyDetector_DetectSilence_LastWindowScanned(t *testing.T) {
	// 4003 ms: the last window start (3203) is not on the 5 ms grid.
	track := buildTrack(msFormat, part{3203, 0.5}, part{800, 0})

	got, err := NewEnergyDetector().DetectSilence(context.Background(), track, DefaultSilenceOpts())
	require.NoError(t, err)
	assert.Equal(t, []Interval{{3203, 4003}}, got)
}

func TestEnergyDetector_HigherSampleRate(t *testing.T) {
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	track := buildTrack(format, part{600, 0.3}, part{900, 0}, part{400, 0.3})

	got, err := NewEnergyDetector().DetectNonsilent(context.Background(), track, DefaultSilenceOpts())
	require.NoError(t, err)
	assert.Equal(t, []Interval{{0, 600}, {1500, 1900}}, got)
}

func TestEnergyDetector_InvalidOpts(t *testing.T) {
	track := buildTrack(msFormat, part{1000, 0.5})
	d := NewEnergyDetector()

	_, err := d.DetectNonsilent(context.Background(), track, SilenceOpts{MinSilenceMs: 0, SeekStepMs: 5})
	assert.ErrorIs(t, err, ErrInvalidSilenceOpts)

	_, err = d.DetectNonsilent(context.Background(), track, SilenceOpts{MinSilenceMs: 800, SeekStepMs: 0})
	assert.ErrorIs(t, err, ErrInvalidSilenceOpts)
}

func TestEnergyDetector_NilTrack(t *testing.T) {
	_, err := NewEnergyDetector().DetectNonsilent(context.Background(), nil, DefaultSilenceOpts())
	assert.ErrorIs(t, err, ErrNoTrack)
}

func TestComplement(t *testing.T) {
	tests := []struct {
		name     string
		silences []Interval
		total    int
		want     []Interval
	}{
		{"no silence", nil, 1000, []Interval{{0, 1000}}},
		{"whole track silent", []Interval{{0, 1000}}, 1000, nil},
		{"inner silence", []Interval{{300, 600}}, 1000, []Interval{{0, 300}, {600, 1000}}},
		{"silence at start", []Interval{{0, 300}}, 1000, []Interval{{300, 1000}}},
		{"silence at end", []Interval{{700, 1000}}, 1000, []Interval{{0, 700}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, complement(tt.silences, tt.total))
		})
	}
}
