package workbook

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/maauso/wordclip/internal/wordlist"
)

// SheetImport describes one imported CSV file.
type SheetImport struct {
	Sheet   string
	Rows    int
	Created bool
}

// ImportCSV writes every *.csv file of dir into the sheet of the same base
// name, creating missing sheets from the template. CSV row i lands on sheet
// row i+3 as A=col0, B=col1, C=col1, D=col2. Afterwards the template is the
// first sheet and the others follow in natural order.
func (w *Workbook) ImportCSV(ctx context.Context, dir string) ([]SheetImport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read csv dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			files = append(files, e.Name())
		}
	}
	wordlist.SortNatural(files)

	var imports []SheetImport
	err = w.update(func(f *excelize.File) error {
		tmplIdx, err := f.GetSheetIndex(w.template)
		if err != nil || tmplIdx < 0 {
			return fmt.Errorf("%w: %q", ErrTemplateMissing, w.template)
		}

		for _, name := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			sheet := strings.TrimSuffix(name, filepath.Ext(name))

			records, err := readCSV(filepath.Join(dir, name))
			if err != nil {
				return err
			}

			imp := SheetImport{Sheet: sheet, Rows: len(records)}
			if !hasSheet(f, sheet) {
				idx, err := f.NewSheet(sheet)
				if err != nil {
					return fmt.Errorf("create sheet %s: %w", sheet, err)
				}
				if err := f.CopySheet(tmplIdx, idx); err != nil {
					return fmt.Errorf("copy template to %s: %w", sheet, err)
				}
				imp.Created = true
				w.logger.Info("sheet created", slog.String("sheet", sheet))
			}

			if err := writeRecords(f, sheet, records); err != nil {
				return err
			}
			imports = append(imports, imp)
		}

		return orderSheets(f, w.template)
	})
	if err != nil {
		return nil, err
	}
	return imports, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path) // #nosec G304 - path comes from the configured csv dir
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = file.Close() }()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
		if len(records) == 0 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
		}
		records = append(records, rec)
	}
	return records, nil
}

func writeRecords(f *excelize.File, sheet string, records [][]string) error {
	// sheet column -> CSV field
	layout := []struct {
		col   int
		field int
	}{
		{1, 0}, {2, 1}, {3, 1}, {4, 2},
	}

	for i, rec := range records {
		row := i + FirstDataRow
		for _, l := range layout {
			if l.field >= len(rec) {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(l.col, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, ref, cellValue(rec[l.field])); err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet, ref, err)
			}
		}
	}
	return nil
}

// cellValue stores integers and decimals as numbers and everything else as
// text.
func cellValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "eEnN") {
		return v
	}
	return s
}

// orderSheets puts template first and the remaining sheets in natural order.
func orderSheets(f *excelize.File, template string) error {
	var others []string
	for _, s := range f.GetSheetList() {
		if s != template {
			others = append(others, s)
		}
	}
	wordlist.SortNatural(others)
	want := append([]string{template}, others...)

	for i, name := range want {
		current := f.GetSheetList()
		if current[i] == name {
			continue
		}
		if err := f.MoveSheet(name, current[i]); err != nil {
			return fmt.Errorf("move sheet %s: %w", name, err)
		}
	}
	return nil
}
