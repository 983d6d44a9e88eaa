// Package bootstrap wires configuration into the services used by the CLI
// and the HTTP server.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maauso/wordclip/internal/audio"
	"github.com/maauso/wordclip/internal/collection"
	"github.com/maauso/wordclip/internal/config"
	"github.com/maauso/wordclip/internal/job"
	"github.com/maauso/wordclip/internal/storage"
	"github.com/maauso/wordclip/internal/workbook"
)

// Dependencies holds everything a command needs.
type Dependencies struct {
	Config      *config.Config
	Cuts        *job.CutService
	Repo        job.Repository
	Detector    audio.Detector
	Storage     storage.Storage
	Workbook    *workbook.Workbook
	Collections *collection.Set

	closers []func() error
}

// NewDependencies creates and initializes all dependencies for the
// application. Callers must Close the result.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	detector, err := initDetector(cfg)
	if err != nil {
		return nil, err
	}

	collections, err := collection.Load(cfg.CollectionsFile)
	if err != nil {
		return nil, fmt.Errorf("load collections: %w", err)
	}

	d := &Dependencies{
		Config:      cfg,
		Detector:    detector,
		Storage:     store,
		Workbook:    workbook.New(cfg.WorkbookPath, cfg.TemplateSheet, logger),
		Collections: collections,
	}

	repo, err := d.initRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	d.Repo = repo

	d.Cuts = job.NewCutService(job.Dependencies{
		Repo:     repo,
		Detector: detector,
		Exporter: audio.NewFFmpegExporter(cfg.FFmpegPath, cfg.MP3Bitrate, store),
		Storage:  store,
		Paths:    cfg.Paths(),
		Silence:  cfg.SilenceOpts(),
	}, logger)
	d.Cuts.SetMaxConcurrentUnits(cfg.MaxConcurrentUnits)

	return d, nil
}

// Close releases resources such as the job database.
func (d *Dependencies) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Store, err := storage.NewS3Storage(ctx, cfg.TempDir, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Debug("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Debug("local storage configured", slog.String("temp_dir", localStore.TempDir()))
	return localStore, nil
}

func initDetector(cfg *config.Config) (audio.Detector, error) {
	switch cfg.Detector {
	case "", "energy":
		return audio.NewEnergyDetector(), nil
	case "ffmpeg":
		return audio.NewFFmpegDetector(cfg.FFmpegPath), nil
	default:
		return nil, fmt.Errorf("%w: unknown detector %q", config.ErrInvalidConfig, cfg.Detector)
	}
}

// initRepository opens the SQLite job history when JOB_DB_PATH is set and
// falls back to memory otherwise.
func (d *Dependencies) initRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (job.Repository, error) {
	if cfg.JobDBPath == "" {
		return job.NewMemoryRepository(), nil
	}
	repo, err := job.OpenSQLite(ctx, cfg.JobDBPath)
	if err != nil {
		return nil, fmt.Errorf("open job database: %w", err)
	}
	d.closers = append(d.closers, repo.Close)
	logger.Debug("job history in sqlite", slog.String("path", repo.Path()))
	return repo, nil
}
