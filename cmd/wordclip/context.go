package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/maauso/wordclip/internal/bootstrap"
	"github.com/maauso/wordclip/internal/config"
	"github.com/maauso/wordclip/internal/wordlist"
)

type commandContext struct {
	verbose bool
	quiet   bool

	once   sync.Once
	deps   *bootstrap.Dependencies
	logger *slog.Logger
	err    error
}

// withDeps loads configuration, wires dependencies once and runs fn.
func (c *commandContext) withDeps(cmd *cobra.Command, fn func(*bootstrap.Dependencies) error) error {
	c.once.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.err = fmt.Errorf("load config: %w", err)
			return
		}
		c.logger = cfg.NewLoggerTo(cmd.ErrOrStderr(), c.level(cfg))
		slog.SetDefault(c.logger)
		c.logger.Debug("configuration loaded", slog.String("config", cfg.String()))

		c.deps, c.err = bootstrap.NewDependencies(cmd.Context(), cfg, c.logger)
	})
	if c.err != nil {
		return c.err
	}
	defer func() {
		if err := c.deps.Close(); err != nil {
			c.logger.Warn("close dependencies", slog.String("error", err.Error()))
		}
	}()
	return fn(c.deps)
}

// level applies -v and -q over LOG_LEVEL.
func (c *commandContext) level(cfg *config.Config) slog.Level {
	switch {
	case c.quiet:
		return slog.LevelError
	case c.verbose:
		return slog.LevelDebug
	default:
		return cfg.Level()
	}
}

// resolveUnits expands collection names in args. With no args every
// recording in the audio folder is a unit, in natural order.
func resolveUnits(deps *bootstrap.Dependencies, args []string) ([]string, error) {
	if len(args) > 0 {
		return deps.Collections.Resolve(args), nil
	}
	return discoverUnits(deps.Config.OriginAudioDir)
}

func discoverUnits(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	var units []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || !strings.EqualFold(ext, ".mp3") {
			continue
		}
		units = append(units, strings.TrimSuffix(e.Name(), ext))
	}
	wordlist.SortNatural(units)
	return units, nil
}
