// Package job orchestrates cutting word clips out of unit recordings and
// tracks cut requests made through the API as jobs.
package job

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/maauso/wordclip/internal/job/id"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusInQueue indicates the job is waiting to be processed.
	StatusInQueue Status = "IN_QUEUE"
	// StatusRunning indicates the unit is being cut.
	StatusRunning Status = "RUNNING"
	// StatusCompleted indicates the unit finished as exported or empty.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the unit was skipped or failed.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the job was abandoned, for example on shutdown.
	StatusCancelled Status = "CANCELLED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusInQueue:   {StatusRunning, StatusCancelled},
	StatusRunning:   {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

func canTransition(from, to Status) bool {
	return slices.Contains(validTransitions[from], to)
}

// Job is a request to cut one unit.
type Job struct {
	mu sync.RWMutex

	ID      string
	Unit    string
	Publish bool
	Status  Status
	// Report is set once the unit has been processed.
	Report *Report
	// Error contains the reason if the job failed.
	Error string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time
}

// New creates a new Job for unit with a generated ID and IN_QUEUE status.
func New(unit string, publish bool) *Job {
	return NewWithID(id.Generate(), unit, publish)
}

// NewWithID creates a new Job with the specified ID and IN_QUEUE status.
func NewWithID(jobID, unit string, publish bool) *Job {
	now := time.Now()
	return &Job{
		ID:        jobID,
		Unit:      unit,
		Publish:   publish,
		Status:    StatusInQueue,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.transitionLocked(status)
}

func (j *Job) transitionLocked(status Status) error {
	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	switch status {
	case StatusRunning:
		j.StartedAt = j.UpdatedAt
	case StatusCompleted, StatusFailed, StatusCancelled:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from IN_QUEUE to RUNNING.
func (j *Job) Start() error {
	return j.TransitionTo(StatusRunning)
}

// Finish records the report and moves the job to COMPLETED when the unit
// was exported or empty, FAILED otherwise.
func (j *Job) Finish(r Report) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	next := StatusCompleted
	if !r.OK() {
		next = StatusFailed
	}
	if err := j.transitionLocked(next); err != nil {
		return err
	}
	j.Report = &r
	if next == StatusFailed {
		j.Error = r.Reason
	}
	return nil
}

// Fail transitions the job to FAILED state with an error message.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transitionLocked(StatusFailed); err != nil {
		return err
	}
	j.Error = errMsg
	return nil
}

// Cancel transitions the job to CANCELLED state.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusCompleted ||
		j.Status == StatusFailed ||
		j.Status == StatusCancelled
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var report *Report
	if j.Report != nil {
		r := *j.Report
		r.Unaligned = slices.Clone(r.Unaligned)
		r.Missing = slices.Clone(r.Missing)
		report = &r
	}

	return &Job{
		ID:          j.ID,
		Unit:        j.Unit,
		Publish:     j.Publish,
		Status:      j.Status,
		Report:      report,
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}
