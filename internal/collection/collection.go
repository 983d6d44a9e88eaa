// Package collection expands named groups of units, such as a day's lessons,
// into the unit names they stand for.
package collection

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/maauso/wordclip/internal/wordlist"
)

// Set maps a collection name to its units, in order.
type Set struct {
	Collections map[string][]string `toml:"collections"`
}

// Load reads a collections file. A missing file yields an empty Set.
func Load(path string) (*Set, error) {
	set := &Set{Collections: map[string][]string{}}
	if path == "" {
		return set, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return set, nil
		}
		return nil, fmt.Errorf("open collections: %w", err)
	}
	defer func() { _ = file.Close() }()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(set); err != nil {
		return nil, fmt.Errorf("parse collections %s: %w", path, err)
	}
	if set.Collections == nil {
		set.Collections = map[string][]string{}
	}
	return set, nil
}

// Resolve expands collection names in args into their units. Arguments that
// name no collection are taken as unit names. Order is preserved and repeated
// units are kept once.
func (s *Set) Resolve(args []string) []string {
	seen := make(map[string]bool, len(args))
	var units []string
	add := func(u string) {
		if seen[u] {
			return
		}
		seen[u] = true
		units = append(units, u)
	}

	for _, arg := range args {
		members, ok := s.Collections[arg]
		if !ok {
			add(arg)
			continue
		}
		for _, u := range members {
			add(u)
		}
	}
	return units
}

// Names returns the defined collection names in natural order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Collections))
	for name := range s.Collections {
		names = append(names, name)
	}
	wordlist.SortNatural(names)
	return names
}
