package workbook

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// minWidenColumns makes Widen cover at least A..X.
const minWidenColumns = 24

// Widen sets the default column width of every sheet and forces width on
// every used column, and at least on A..X. It returns the sheets changed.
func (w *Workbook) Widen(width float64) ([]string, error) {
	if width <= 0 {
		return nil, fmt.Errorf("column width must be positive, got %g", width)
	}

	var sheets []string
	err := w.update(func(f *excelize.File) error {
		for _, sheet := range f.GetSheetList() {
			if err := f.SetSheetProps(sheet, &excelize.SheetPropsOptions{DefaultColWidth: &width}); err != nil {
				return fmt.Errorf("set default width of %s: %w", sheet, err)
			}

			rows, err := f.GetRows(sheet)
			if err != nil {
				return fmt.Errorf("read %s: %w", sheet, err)
			}
			last := minWidenColumns
			for _, row := range rows {
				last = max(last, len(row))
			}
			lastName, err := excelize.ColumnNumberToName(last)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(sheet, "A", lastName, width); err != nil {
				return fmt.Errorf("set column width of %s: %w", sheet, err)
			}
			sheets = append(sheets, sheet)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.logger.Info("columns widened", slog.Int("sheets", len(sheets)), slog.Float64("width", width))
	return sheets, nil
}
