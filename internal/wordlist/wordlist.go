// Package wordlist reads and writes the one-word-per-line text files that
// describe what a recording says and which words to keep.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Load reads a word list. Lines are trimmed and blank lines are dropped.
// A missing file yields an error wrapping fs.ErrNotExist.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer func() { _ = f.Close() }()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}
	return words, nil
}

// Write stores lines joined by newlines, creating parent directories.
// Empty lines are written as-is.
func Write(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("write word list: %w", err)
	}
	return nil
}

// NaturalLess orders strings so that runs of digits compare by value:
// "D2S1" < "D10S1" and "3.3-2" < "3.3-10".
func NaturalLess(a, b string) bool {
	return naturalCompare(a, b) < 0
}

// SortNatural sorts s in place in natural order.
func SortNatural(s []string) {
	slices.SortStableFunc(s, naturalCompare)
}

func naturalCompare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			si, sj := i, j
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			if c := compareDigits(a[si:i], b[sj:j]); c != 0 {
				return c
			}
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return 1
	}
	return strings.Compare(a, b)
}

// compareDigits compares two digit runs by numeric value without parsing,
// so runs longer than an int still order correctly.
func compareDigits(x, y string) int {
	tx := strings.TrimLeft(x, "0")
	ty := strings.TrimLeft(y, "0")
	if len(tx) != len(ty) {
		if len(tx) < len(ty) {
			return -1
		}
		return 1
	}
	if c := strings.Compare(tx, ty); c != 0 {
		return c
	}
	// "01" after "1"
	switch {
	case len(x) < len(y):
		return -1
	case len(x) > len(y):
		return 1
	}
	return 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
