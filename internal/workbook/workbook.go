// Package workbook edits the vocabulary workbook that drives which words
// are kept: importing word tables, hiding rows the learner already knows,
// and exporting word lists for cutting.
//
// Data rows start at row 3. Column B holds the word, C an alternative
// accepted answer and D its meaning. Answer columns further right are
// paired: the learner types into one column and the column to its right
// holds the check.
package workbook

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"
)

// FirstDataRow is the first row holding a word.
const FirstDataRow = 3

// Static errors for workbook operations.
var (
	// ErrWorkbookBusy is returned when another process holds the workbook,
	// either another wordclip run or a spreadsheet application.
	ErrWorkbookBusy = errors.New("workbook is in use")
	// ErrTemplateMissing is returned when the template sheet does not exist.
	ErrTemplateMissing = errors.New("template sheet not found")
	// ErrInvalidColumn is returned for a column name that is not a letter
	// reference right of column A.
	ErrInvalidColumn = errors.New("invalid answer column")
)

// Workbook is the vocabulary workbook on disk.
type Workbook struct {
	path     string
	template string
	logger   *slog.Logger
}

// New returns a Workbook for the file at path. template names the sheet new
// word sheets are copied from.
func New(path, template string, logger *slog.Logger) *Workbook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workbook{path: path, template: template, logger: logger}
}

// Path returns the workbook file path.
func (w *Workbook) Path() string {
	return w.path
}

// read opens the workbook for reading.
func (w *Workbook) read(fn func(f *excelize.File) error) error {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return fn(f)
}

// update opens the workbook under an exclusive lock and saves it after fn
// succeeds.
func (w *Workbook) update(fn func(f *excelize.File) error) error {
	if w.openInOffice() {
		return fmt.Errorf("%w: %s is open in a spreadsheet application", ErrWorkbookBusy, w.path)
	}

	lock := flock.New(w.path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire workbook lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s is locked by another process", ErrWorkbookBusy, w.path)
	}
	defer func() { _ = lock.Unlock() }()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := fn(f); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// openInOffice reports whether a spreadsheet application has left its
// owner file (~$name.xlsx) next to the workbook.
func (w *Workbook) openInOffice() bool {
	owner := filepath.Join(filepath.Dir(w.path), "~$"+filepath.Base(w.path))
	_, err := os.Stat(owner)
	return err == nil
}

// hasSheet reports whether f contains sheet.
func hasSheet(f *excelize.File, sheet string) bool {
	idx, err := f.GetSheetIndex(sheet)
	return err == nil && idx >= 0
}

// cell returns the 1-based column col of row, or "" past its end.
func cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return row[col-1]
}
