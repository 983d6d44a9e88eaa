package workbook

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/maauso/wordclip/internal/wordlist"
)

// ExportedFile is a word list written from a sheet.
type ExportedFile struct {
	Sheet string
	Path  string
	Lines int
}

// ExportResult reports what an export wrote and skipped.
type ExportResult struct {
	Files []ExportedFile
	// Unknown lists requested sheets that do not exist.
	Unknown []string
	// Empty lists sheets that had nothing to export.
	Empty []string
}

// ExportKeep writes the words of the visible data rows of each sheet to
// <dir>/Keep_<sheet>.txt, skipping rows with an empty column B.
func (w *Workbook) ExportKeep(sheets []string, dir string) (ExportResult, error) {
	var res ExportResult
	err := w.read(func(f *excelize.File) error {
		for _, sheet := range sheets {
			if !hasSheet(f, sheet) {
				res.Unknown = append(res.Unknown, sheet)
				w.logger.Warn("sheet not found, skipped", slog.String("sheet", sheet))
				continue
			}

			words, err := visibleWords(f, sheet)
			if err != nil {
				return err
			}
			if len(words) == 0 {
				res.Empty = append(res.Empty, sheet)
				w.logger.Warn("no visible words to keep", slog.String("sheet", sheet))
				continue
			}

			path := filepath.Join(dir, "Keep_"+sheet+".txt")
			if err := wordlist.Write(path, words); err != nil {
				return err
			}
			res.Files = append(res.Files, ExportedFile{Sheet: sheet, Path: path, Lines: len(words)})
			w.logger.Info("keep list exported", slog.String("sheet", sheet), slog.Int("words", len(words)))
		}
		return nil
	})
	return res, err
}

func visibleWords(f *excelize.File, sheet string) ([]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}

	var words []string
	for i := FirstDataRow - 1; i < len(rows); i++ {
		visible, err := f.GetRowVisible(sheet, i+1)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", i+1, sheet, err)
		}
		if !visible {
			continue
		}
		if word := cell(rows[i], 2); word != "" {
			words = append(words, word)
		}
	}
	return words, nil
}

// ExportOrigin writes column B of the data rows of every sheet except the
// template to <dir>/<sheet>.txt. Empty cells are kept as empty lines so that
// line numbers follow row numbers.
func (w *Workbook) ExportOrigin(dir string) (ExportResult, error) {
	var res ExportResult
	err := w.read(func(f *excelize.File) error {
		for _, sheet := range f.GetSheetList() {
			if sheet == w.template {
				continue
			}

			rows, err := f.GetRows(sheet)
			if err != nil {
				return fmt.Errorf("read %s: %w", sheet, err)
			}
			if len(rows) < FirstDataRow {
				res.Empty = append(res.Empty, sheet)
				continue
			}

			lines := make([]string, 0, len(rows)-FirstDataRow+1)
			for _, row := range rows[FirstDataRow-1:] {
				lines = append(lines, cell(row, 2))
			}

			path := filepath.Join(dir, sheet+".txt")
			if err := wordlist.Write(path, lines); err != nil {
				return err
			}
			res.Files = append(res.Files, ExportedFile{Sheet: sheet, Path: path, Lines: len(lines)})
		}
		return nil
	})
	return res, err
}
