// Package id provides unique identifier generation for jobs.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// Prefix starts every job ID.
const Prefix = "cut-"

// Generate creates a new unique job ID.
// Format: cut-<uuid v4>
// Example: cut-9b2f6c1e-3f0a-4c8e-9d1b-2a7e5f4c3b21
func Generate() string {
	return Prefix + uuid.NewString()
}

// Valid reports whether s has the shape Generate produces.
func Valid(s string) bool {
	rest, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
