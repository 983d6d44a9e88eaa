// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/maauso/wordclip/internal/audio"
)

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("config: invalid value")

// Config holds all configuration for the application.
type Config struct {
	// Folder layout
	OriginAudioDir  string `env:"ORIGIN_AUDIO_DIR, default=OriginAudio" json:"origin_audio_dir" validate:"required"`
	OriginWordsDir  string `env:"ORIGIN_WORDS_DIR, default=OriginWords" json:"origin_words_dir" validate:"required"`
	IntermediateDir string `env:"INTERMEDIATE_DIR, default=Intermediate" json:"intermediate_dir" validate:"required"`
	OutputDir       string `env:"OUTPUT_DIR, default=Output" json:"output_dir" validate:"required"`
	CSVDir          string `env:"CSV_DIR, default=CSV" json:"csv_dir"`

	// Workbook settings
	WorkbookPath  string  `env:"WORKBOOK_PATH, default=vocabulary.xlsx" json:"workbook_path"`
	TemplateSheet string  `env:"TEMPLATE_SHEET, default=Template" json:"template_sheet" validate:"required"`
	ColumnWidth   float64 `env:"COLUMN_WIDTH, default=20" json:"column_width" validate:"gt=0"`

	// Silence detection
	MinSilenceMs    int     `env:"MIN_SILENCE_MS, default=800" json:"min_silence_ms" validate:"min=1"`
	SilenceThreshDB float64 `env:"SILENCE_THRESH_DB, default=-45" json:"silence_thresh_db" validate:"lte=0"`
	SeekStepMs      int     `env:"SEEK_STEP_MS, default=5" json:"seek_step_ms" validate:"min=1"`
	Detector        string  `env:"DETECTOR, default=energy" json:"detector" validate:"oneof=energy ffmpeg"`

	// Encoding
	FFmpegPath string `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`
	MP3Bitrate string `env:"MP3_BITRATE, default=128k" json:"mp3_bitrate"`

	// Processing settings
	MaxConcurrentUnits int    `env:"MAX_CONCURRENT_UNITS, default=1" json:"max_concurrent_units" validate:"min=1"`
	TempDir            string `env:"TEMP_DIR, default=/tmp/wordclip" json:"temp_dir"`
	CollectionsFile    string `env:"COLLECTIONS_FILE, default=collections.toml" json:"collections_file"`

	// Server settings
	Port      int    `env:"PORT, default=8080" json:"port" validate:"min=1,max=65535"`
	JobDBPath string `env:"JOB_DB_PATH" json:"job_db_path,omitempty"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	S3Prefix           string `env:"S3_PREFIX" json:"s3_prefix,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format" validate:"oneof=text json TEXT JSON"`
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"` // "debug", "info", "warn", "error"
}

// Paths is the folder layout a unit's files are resolved against.
type Paths struct {
	OriginAudio  string
	OriginWords  string
	Intermediate string
	Output       string
}

// Paths returns the configured folder layout.
func (c *Config) Paths() Paths {
	return Paths{
		OriginAudio:  c.OriginAudioDir,
		OriginWords:  c.OriginWordsDir,
		Intermediate: c.IntermediateDir,
		Output:       c.OutputDir,
	}
}

// SilenceOpts returns the configured silence detection options.
func (c *Config) SilenceOpts() audio.SilenceOpts {
	return audio.SilenceOpts{
		MinSilenceMs:    c.MinSilenceMs,
		SilenceThreshDB: c.SilenceThreshDB,
		SeekStepMs:      c.SeekStepMs,
	}
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads an optional .env file from the working directory, then the
// environment. Variables already set in the environment take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFromEnv()
}

// LoadFromEnv reads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stdout, parseLogLevel(c.LogLevel))
}

// NewLoggerTo is NewLogger with an explicit writer and level.
func (c *Config) NewLoggerTo(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	return parseLogLevel(c.LogLevel)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{OriginAudioDir: %s, OriginWordsDir: %s, IntermediateDir: %s, OutputDir: %s, Detector: %s, MinSilenceMs: %d, SilenceThreshDB: %g, SeekStepMs: %d, MaxConcurrentUnits: %d, Port: %d, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.OriginAudioDir,
		c.OriginWordsDir,
		c.IntermediateDir,
		c.OutputDir,
		c.Detector,
		c.MinSilenceMs,
		c.SilenceThreshDB,
		c.SeekStepMs,
		c.MaxConcurrentUnits,
		c.Port,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
