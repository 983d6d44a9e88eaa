package workbook

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
)

// HideResult reports what HideCompleted did.
type HideResult struct {
	// Hidden counts hidden rows per processed sheet.
	Hidden map[string]int
	// Unknown lists requested sheets that do not exist.
	Unknown []string
}

// ParseColumns turns a list such as "F,H" into column numbers. Every column
// must have an input column to its left, so A is rejected.
func ParseColumns(list string) ([]int, error) {
	names := strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' })
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: none given", ErrInvalidColumn)
	}

	cols := make([]int, 0, len(names))
	for _, n := range names {
		col, err := excelize.ColumnNameToNumber(strings.ToUpper(n))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidColumn, n, err)
		}
		if col < 2 {
			return nil, fmt.Errorf("%w: %q has no input column to its left", ErrInvalidColumn, n)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// HideCompleted unhides every row of each sheet and then hides the data rows
// whose answers are all done. For each check column the learner's answer is
// the cell to its left; an answer is done when it is blank or matches column
// B or C, ignoring case and surrounding space.
func (w *Workbook) HideCompleted(sheets []string, columns []int) (HideResult, error) {
	res := HideResult{Hidden: make(map[string]int, len(sheets))}
	if len(columns) == 0 {
		return res, fmt.Errorf("%w: none given", ErrInvalidColumn)
	}

	err := w.update(func(f *excelize.File) error {
		for _, sheet := range sheets {
			if !hasSheet(f, sheet) {
				res.Unknown = append(res.Unknown, sheet)
				w.logger.Warn("sheet not found, skipped", slog.String("sheet", sheet))
				continue
			}

			n, err := hideSheet(f, sheet, columns)
			if err != nil {
				return err
			}
			res.Hidden[sheet] = n
			w.logger.Info("rows hidden", slog.String("sheet", sheet), slog.Int("hidden", n))
		}
		return nil
	})
	return res, err
}

func hideSheet(f *excelize.File, sheet string, columns []int) (int, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", sheet, err)
	}

	for r := 1; r <= len(rows); r++ {
		if err := f.SetRowVisible(sheet, r, true); err != nil {
			return 0, fmt.Errorf("unhide %s row %d: %w", sheet, r, err)
		}
	}

	fold := cases.Fold()
	hidden := 0
	for i := FirstDataRow - 1; i < len(rows); i++ {
		if !rowDone(fold, rows[i], columns) {
			continue
		}
		if err := f.SetRowVisible(sheet, i+1, false); err != nil {
			return 0, fmt.Errorf("hide %s row %d: %w", sheet, i+1, err)
		}
		hidden++
	}
	return hidden, nil
}

// rowDone reports whether every check column of row is done.
func rowDone(fold cases.Caser, row []string, columns []int) bool {
	word := fold.String(strings.TrimSpace(cell(row, 2)))
	alt := fold.String(strings.TrimSpace(cell(row, 3)))

	for _, col := range columns {
		answer := strings.TrimSpace(cell(row, col-1))
		if answer == "" {
			continue
		}
		a := fold.String(answer)
		if a != word && a != alt {
			return false
		}
	}
	return true
}
