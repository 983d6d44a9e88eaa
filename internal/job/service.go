package job

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/maauso/wordclip/internal/align"
	"github.com/maauso/wordclip/internal/audio"
	"github.com/maauso/wordclip/internal/config"
	"github.com/maauso/wordclip/internal/storage"
	"github.com/maauso/wordclip/internal/wordlist"
)

// Decoder loads a recording from disk.
type Decoder func(path string) (*audio.Track, error)

// Dependencies are the collaborators of a CutService.
type Dependencies struct {
	Repo     Repository
	Detector audio.Detector
	Exporter audio.Exporter
	// Storage publishes finished tracks. Nil disables publishing.
	Storage storage.Storage
	Paths   config.Paths
	Silence audio.SilenceOpts
}

// CutService cuts the kept words out of unit recordings.
//
// For each unit the pipeline is: load both word lists, decode the recording,
// detect non-silent intervals, align words to intervals, pick the kept
// words and export them as one track. Units share no state, so a batch
// may run several at once.
type CutService struct {
	repo     Repository
	detector audio.Detector
	exporter audio.Exporter
	store    storage.Storage
	paths    config.Paths
	silence  audio.SilenceOpts
	decode   Decoder
	logger   *slog.Logger
	// maxConcurrentUnits limits units processed in parallel by ProcessBatch.
	maxConcurrentUnits int
}

// NewCutService creates a new CutService. Units are processed one at a time
// unless SetMaxConcurrentUnits says otherwise.
func NewCutService(deps Dependencies, logger *slog.Logger) *CutService {
	if logger == nil {
		logger = slog.Default()
	}
	repo := deps.Repo
	if repo == nil {
		repo = NewMemoryRepository()
	}
	return &CutService{
		repo:               repo,
		detector:           deps.Detector,
		exporter:           deps.Exporter,
		store:              deps.Storage,
		paths:              deps.Paths,
		silence:            deps.Silence,
		decode:             audio.Decode,
		logger:             logger,
		maxConcurrentUnits: 1,
	}
}

// SetMaxConcurrentUnits configures how many units ProcessBatch runs at once.
func (s *CutService) SetMaxConcurrentUnits(n int) {
	if n > 0 {
		s.maxConcurrentUnits = n
	}
}

// SetDecoder replaces the recording decoder.
func (s *CutService) SetDecoder(d Decoder) {
	if d != nil {
		s.decode = d
	}
}

// Paths returns the folder layout units are resolved against.
func (s *CutService) Paths() config.Paths {
	return s.paths
}

// ProcessUnit cuts one unit. Problems are reported in the returned Report,
// never as a panic or error, so a caller can move on to the next unit.
func (s *CutService) ProcessUnit(ctx context.Context, name string, publish bool) Report {
	start := time.Now()
	rep := s.processUnit(ctx, name, publish)
	rep.Elapsed = time.Since(start)

	log := s.logger.With(slog.String("unit", name))
	switch rep.Outcome {
	case OutcomeExported:
		log.Info("unit exported",
			slog.Int("exported", rep.Exported),
			slog.String("output", rep.OutputPath),
			slog.Duration("elapsed", rep.Elapsed),
		)
	case OutcomeEmpty:
		log.Warn("no kept word found, nothing written",
			slog.Int("missing", len(rep.Missing)),
		)
	case OutcomeSkipped:
		log.Warn("unit skipped", slog.String("reason", rep.Reason))
	case OutcomeFailed:
		log.Error("unit failed", slog.String("error", rep.Reason))
	}
	return rep
}

func (s *CutService) processUnit(ctx context.Context, name string, publish bool) Report {
	rep := Report{Unit: name}
	fail := func(outcome Outcome, err error) Report {
		rep.Outcome = outcome
		rep.Reason = err.Error()
		rep.Err = err
		return rep
	}

	unit, err := NewUnit(name, s.paths)
	if err != nil {
		return fail(OutcomeFailed, err)
	}
	log := s.logger.With(slog.String("unit", name))

	words, err := wordlist.Load(unit.WordsPath)
	if err != nil {
		return fail(listOutcome(err), fmt.Errorf("word list: %w", err))
	}
	keep, err := wordlist.Load(unit.KeepPath)
	if err != nil {
		return fail(listOutcome(err), fmt.Errorf("keep list: %w", err))
	}
	rep.Words = len(words)

	if err := ctx.Err(); err != nil {
		return fail(OutcomeFailed, err)
	}

	track, err := s.decode(unit.AudioPath)
	if err != nil {
		return fail(OutcomeFailed, fmt.Errorf("decode %s: %w", unit.AudioPath, err))
	}

	intervals, err := s.detector.DetectNonsilent(ctx, track, s.silence)
	if err != nil {
		return fail(OutcomeFailed, fmt.Errorf("detect silence: %w", err))
	}
	rep.Intervals = len(intervals)
	log.Debug("intervals detected",
		slog.Int("words", len(words)),
		slog.Int("intervals", len(intervals)),
		slog.Int("track_ms", track.DurationMs()),
	)

	alignment := align.Align(words, intervals, track.DurationMs())
	rep.Unaligned = alignment.Unaligned
	rep.Duplicates = alignment.Duplicates
	if len(alignment.Unaligned) > 0 {
		log.Warn("words without an interval",
			slog.Int("count", len(alignment.Unaligned)),
			slog.Any("words", alignment.Unaligned),
		)
	}
	if alignment.Duplicates > 0 {
		log.Warn("repeated words in word list, last occurrence kept",
			slog.Int("duplicates", alignment.Duplicates),
		)
	}

	assembly := align.Reassemble(keep, alignment.Clips)
	rep.Missing = assembly.Missing
	rep.Exported = assembly.Inserted()
	if len(assembly.Missing) > 0 {
		log.Warn("kept words not found in recording",
			slog.Int("count", len(assembly.Missing)),
			slog.Any("words", assembly.Missing),
		)
	}

	if assembly.Empty() {
		rep.Outcome = OutcomeEmpty
		return rep
	}

	if err := s.exporter.Export(ctx, track, assembly.Spans, unit.OutputPath); err != nil {
		rep.Exported = 0
		return fail(OutcomeFailed, fmt.Errorf("export: %w", err))
	}
	rep.Outcome = OutcomeExported
	rep.OutputPath = unit.OutputPath

	if publish {
		url, err := s.publish(ctx, unit.OutputPath)
		if err != nil {
			rep.Warning = err.Error()
			log.Warn("publish failed, local file kept", slog.String("error", err.Error()))
		} else {
			rep.URL = url
		}
	}

	return rep
}

func (s *CutService) publish(ctx context.Context, path string) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("publish: %w", storage.ErrS3NotConfigured)
	}
	url, err := storage.PublishFile(ctx, s.store, path)
	if err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}
	return url, nil
}

// listOutcome classifies a word list load error: a missing file skips the
// unit, anything else fails it.
func listOutcome(err error) Outcome {
	if errors.Is(err, fs.ErrNotExist) {
		return OutcomeSkipped
	}
	return OutcomeFailed
}

// ProcessBatch cuts every unit and returns their reports in input order.
// A failing unit does not stop the others.
func (s *CutService) ProcessBatch(ctx context.Context, names []string, publish bool) []Report {
	reports := make([]Report, len(names))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrentUnits)
	for i, name := range names {
		g.Go(func() error {
			reports[i] = s.ProcessUnit(ctx, name, publish)
			return nil
		})
	}
	_ = g.Wait()

	sum := Summarize(reports)
	s.logger.Info("batch finished",
		slog.Int("units", len(names)),
		slog.Int("exported", sum.Exported),
		slog.Int("empty", sum.Empty),
		slog.Int("skipped", sum.Skipped),
		slog.Int("failed", sum.Failed),
	)
	return reports
}

// Detection is the outcome of running silence detection alone.
type Detection struct {
	Unit      Unit
	TrackMs   int
	Intervals []audio.Interval
}

// Detect decodes a unit's recording and returns its non-silent intervals.
func (s *CutService) Detect(ctx context.Context, name string) (*Detection, error) {
	unit, err := NewUnit(name, s.paths)
	if err != nil {
		return nil, err
	}
	track, err := s.decode(unit.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", unit.AudioPath, err)
	}
	intervals, err := s.detector.DetectNonsilent(ctx, track, s.silence)
	if err != nil {
		return nil, fmt.Errorf("detect silence: %w", err)
	}
	return &Detection{Unit: unit, TrackMs: track.DurationMs(), Intervals: intervals}, nil
}

// CreateJob validates the unit name and stores a new IN_QUEUE job.
func (s *CutService) CreateJob(ctx context.Context, unit string, publish bool) (*Job, error) {
	if err := ValidateUnitName(unit); err != nil {
		return nil, err
	}
	job := New(unit, publish)

	s.logger.Info("creating new job",
		slog.String("job_id", job.ID),
		slog.String("unit", unit),
		slog.Bool("publish", publish),
	)

	if err := s.repo.Save(ctx, job); err != nil {
		s.logger.Error("failed to save job",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return job, nil
}

// GetJob retrieves a job by ID.
func (s *CutService) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// ListJobs returns all jobs, newest first.
func (s *CutService) ListJobs(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx)
}

// DeleteJob removes a finished job from the history. The output track is
// left in place.
func (s *CutService) DeleteJob(ctx context.Context, id string) error {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !job.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrJobActive, id, job.GetStatus())
	}
	return s.repo.Delete(ctx, id)
}

// ProcessExistingJob runs a stored IN_QUEUE job to completion and persists
// each state change.
func (s *CutService) ProcessExistingJob(ctx context.Context, jobID string) (*Job, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if err := job.Start(); err != nil {
		return nil, fmt.Errorf("start job %s: %w", jobID, err)
	}
	if err := s.repo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("save job %s: %w", jobID, err)
	}

	rep := s.ProcessUnit(ctx, job.Unit, job.Publish)
	if ctx.Err() != nil && !rep.OK() {
		_ = job.Cancel()
	} else if err := job.Finish(rep); err != nil {
		return nil, fmt.Errorf("finish job %s: %w", jobID, err)
	}

	// the request context may be gone by now
	if err := s.repo.Save(context.WithoutCancel(ctx), job); err != nil {
		return nil, fmt.Errorf("save job %s: %w", jobID, err)
	}
	return job, nil
}
