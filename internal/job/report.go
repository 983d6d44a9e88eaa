package job

import (
	"time"
)

// Outcome is how the processing of a unit ended.
type Outcome string

const (
	// OutcomeExported means an output track was written.
	OutcomeExported Outcome = "exported"
	// OutcomeEmpty means no kept word could be located, so nothing was written.
	OutcomeEmpty Outcome = "empty"
	// OutcomeSkipped means a required word list was missing.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means decoding, detection or encoding failed.
	OutcomeFailed Outcome = "failed"
)

// Report is the result of processing one unit.
type Report struct {
	Unit    string  `json:"unit"`
	Outcome Outcome `json:"outcome"`
	// Reason explains a skipped or failed outcome.
	Reason string `json:"reason,omitempty"`
	// Warning records a non-fatal problem after export, such as a failed publish.
	Warning string `json:"warning,omitempty"`

	Words      int `json:"words"`
	Intervals  int `json:"intervals"`
	Duplicates int `json:"duplicates"`
	Exported   int `json:"exported"`
	// Unaligned are words left without an interval.
	Unaligned []string `json:"unaligned,omitempty"`
	// Missing are kept words that had no clip.
	Missing []string `json:"missing,omitempty"`

	OutputPath string        `json:"output_path,omitempty"`
	URL        string        `json:"url,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`

	// Err is the cause of a failed outcome.
	Err error `json:"-"`
}

// OK reports whether the unit finished without failing.
func (r Report) OK() bool {
	return r.Outcome == OutcomeExported || r.Outcome == OutcomeEmpty
}

// Unlocated returns every word that could not be found in the recording:
// the unaligned tail followed by the missing kept words.
func (r Report) Unlocated() []string {
	out := make([]string, 0, len(r.Unaligned)+len(r.Missing))
	out = append(out, r.Unaligned...)
	return append(out, r.Missing...)
}

// Summary tallies outcomes across reports.
type Summary struct {
	Exported int
	Empty    int
	Skipped  int
	Failed   int
}

// Summarize counts the outcomes of reports.
func Summarize(reports []Report) Summary {
	var s Summary
	for _, r := range reports {
		switch r.Outcome {
		case OutcomeExported:
			s.Exported++
		case OutcomeEmpty:
			s.Empty++
		case OutcomeSkipped:
			s.Skipped++
		case OutcomeFailed:
			s.Failed++
		}
	}
	return s
}
