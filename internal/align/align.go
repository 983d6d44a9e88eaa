// Package align pairs a spoken word list with the non-silent intervals of its
// recording and rebuilds a shorter track from a subset of those words.
//
// Alignment is positional: word i is assumed to occupy interval i. A word's
// clip runs from the start of its interval to the start of the next one, so
// the pause after the word travels with it.
package align

import (
	"github.com/maauso/wordclip/internal/audio"
)

// Alignment maps each word of a list to its clip in the source track.
type Alignment struct {
	// Clips holds the clip of every aligned word, keyed by the literal word.
	// A word that occurs more than once keeps the clip of its last occurrence.
	Clips map[string]audio.Interval
	// Aligned is the number of list positions that received a clip.
	Aligned int
	// Duplicates counts positions whose clip replaced an earlier one of the
	// same word.
	Duplicates int
	// Unaligned lists, in order, the words left over once the intervals ran out.
	Unaligned []string
}

// Align pairs words with intervals by position. trackMs is the length of the
// source track and bounds the clip of the final word.
func Align(words []string, intervals []audio.Interval, trackMs int) Alignment {
	a := Alignment{Clips: make(map[string]audio.Interval, len(words))}

	for i, word := range words {
		if i >= len(intervals) {
			a.Unaligned = append(a.Unaligned, words[i:]...)
			break
		}

		clip := audio.Interval{StartMs: intervals[i].StartMs, EndMs: trackMs}
		if i < len(words)-1 && i+1 < len(intervals) {
			clip.EndMs = intervals[i+1].StartMs
		}

		if _, seen := a.Clips[word]; seen {
			a.Duplicates++
		}
		a.Clips[word] = clip
		a.Aligned++
	}

	return a
}

// Assembly is the ordered result of picking words out of an Alignment.
type Assembly struct {
	// Words are the inserted words in output order.
	Words []string
	// Spans are the clips of Words, index for index.
	Spans []audio.Interval
	// Missing lists, in order, the requested words that had no clip.
	Missing []string
}

// Inserted returns the number of clips in the assembly.
func (a Assembly) Inserted() int {
	return len(a.Spans)
}

// Empty reports whether nothing was inserted.
func (a Assembly) Empty() bool {
	return len(a.Spans) == 0
}

// DurationMs returns the total length of the assembled clips.
func (a Assembly) DurationMs() int {
	total := 0
	for _, s := range a.Spans {
		total += s.DurationMs()
	}
	return total
}

// Reassemble collects the clips of keep, in order. Repeated words are
// inserted every time they appear; words without a clip are recorded as
// missing and skipped.
func Reassemble(keep []string, clips map[string]audio.Interval) Assembly {
	var a Assembly
	for _, word := range keep {
		clip, ok := clips[word]
		if !ok {
			a.Missing = append(a.Missing, word)
			continue
		}
		a.Words = append(a.Words, word)
		a.Spans = append(a.Spans, clip)
	}
	return a
}
