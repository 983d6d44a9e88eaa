// Package storage provides temporary file storage for intermediate audio and
// optional publishing of finished tracks to S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Storage defines the interface for temporary files and published output.
type Storage interface {
	// SaveTemp saves data to a temporary file and returns the file path.
	// The name parameter is used as a hint for the filename.
	SaveTemp(ctx context.Context, name string, data io.Reader) (path string, err error)

	// CleanupTemp removes the specified temporary files.
	// It continues cleanup even if some files fail to delete.
	CleanupTemp(ctx context.Context, paths []string) error

	// Publish uploads data under name and returns its URL.
	// Returns ErrS3NotConfigured if no bucket is configured.
	Publish(ctx context.Context, name string, data io.Reader) (url string, err error)
}

// PublishFile publishes the file at path under its base name.
func PublishFile(ctx context.Context, s Storage, path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 - path is built from configured output dir
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return s.Publish(ctx, filepath.Base(path), f)
}
