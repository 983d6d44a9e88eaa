package workbook

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// newTestWorkbook saves a workbook with a Template sheet, lets setup add
// content, and returns its path.
func newTestWorkbook(t *testing.T, setup func(f *excelize.File)) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, f.SetSheetName("Sheet1", "Template"))
	require.NoError(t, f.SetCellValue("Template", "A1", "No."))
	require.NoError(t, f.SetCellValue("Template", "B1", "Word"))
	if setup != nil {
		setup(f)
	}

	path := filepath.Join(t.TempDir(), "vocabulary.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func openForTest(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func setRow(t *testing.T, f *excelize.File, sheet string, row int, values ...any) {
	t.Helper()
	ref, err := excelize.CoordinatesToCellName(1, row)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(sheet, ref, &values))
}

func newSheet(t *testing.T, f *excelize.File, name string) {
	t.Helper()
	_, err := f.NewSheet(name)
	require.NoError(t, err)
}

func TestImportCSV(t *testing.T) {
	path := newTestWorkbook(t, func(f *excelize.File) {
		_, _ = f.NewSheet("Notes")
		_, _ = f.NewSheet("D10S1")
		_ = f.SetCellValue("D10S1", "B3", "stale")
	})

	csvDir := t.TempDir()
	files := map[string]string{
		"D2S1.csv":  "1,cat,猫\n2,dog,狗\n",
		"D1S1.csv":  "\ufeff1,bird,鸟\n2,\"owl, barn\",猫头鹰\n3,short\n",
		"D10S1.csv": "1,fresh,新\n",
		"notes.txt": "ignored",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(csvDir, name), []byte(content), 0o644))
	}

	wb := New(path, "Template", nil)
	imports, err := wb.ImportCSV(context.Background(), csvDir)
	require.NoError(t, err)

	assert.Equal(t, []SheetImport{
		{Sheet: "D1S1", Rows: 3, Created: true},
		{Sheet: "D2S1", Rows: 2, Created: true},
		{Sheet: "D10S1", Rows: 1, Created: false},
	}, imports)

	f := openForTest(t, path)
	assert.Equal(t, []string{"Template", "D1S1", "D2S1", "D10S1", "Notes"}, f.GetSheetList())

	// copied from the template
	header, err := f.GetCellValue("D1S1", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Word", header)

	rows, err := f.GetRows("D1S1")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"1", "bird", "bird", "鸟"}, rows[2])
	assert.Equal(t, []string{"2", "owl, barn", "owl, barn", "猫头鹰"}, rows[3])
	assert.Equal(t, []string{"3", "short", "short"}, rows[4])

	fresh, err := f.GetCellValue("D10S1", "B3")
	require.NoError(t, err)
	assert.Equal(t, "fresh", fresh)
}

func TestImportCSV_TemplateMissing(t *testing.T) {
	path := newTestWorkbook(t, nil)
	csvDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(csvDir, "A.csv"), []byte("1,a,b\n"), 0o644))

	_, err := New(path, "NoSuchTemplate", nil).ImportCSV(context.Background(), csvDir)
	assert.ErrorIs(t, err, ErrTemplateMissing)
}

func TestImportCSV_MissingDir(t *testing.T) {
	path := newTestWorkbook(t, nil)

	_, err := New(path, "Template", nil).ImportCSV(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUpdate_Busy(t *testing.T) {
	t.Run("office owner file", func(t *testing.T) {
		path := newTestWorkbook(t, nil)
		owner := filepath.Join(filepath.Dir(path), "~$"+filepath.Base(path))
		require.NoError(t, os.WriteFile(owner, []byte("someone"), 0o644))

		_, err := New(path, "Template", nil).Widen(20)
		assert.ErrorIs(t, err, ErrWorkbookBusy)
	})

	t.Run("lock held", func(t *testing.T) {
		path := newTestWorkbook(t, nil)
		other := flock.New(path + ".lock")
		ok, err := other.TryLock()
		require.NoError(t, err)
		require.True(t, ok)
		defer func() { _ = other.Unlock() }()

		_, err = New(path, "Template", nil).HideCompleted([]string{"Template"}, []int{6})
		assert.ErrorIs(t, err, ErrWorkbookBusy)
	})
}

// answerSheet builds a D1S1 sheet with answers in E and G, checked by F and H.
func answerSheet(t *testing.T) string {
	return newTestWorkbook(t, func(f *excelize.File) {
		newSheet(t, f, "D1S1")
		setRow(t, f, "D1S1", 1, "No.", "Word", "Alt", "Meaning", "Try 1", "Check 1", "Try 2", "Check 2")
		setRow(t, f, "D1S1", 3, 1, "cat", "Cat", "猫", "CAT ", "", "")
		setRow(t, f, "D1S1", 4, 2, "dog", "hound", "狗", "hound", "", "dgo")
		setRow(t, f, "D1S1", 5, 3, "bird")
		setRow(t, f, "D1S1", 6, 4, "owl", "", "", "Owl", "", "owl")
		setRow(t, f, "D1S1", 7, 5, "Éclair", "", "", "éCLAIR")
		require.NoError(t, f.SetRowVisible("D1S1", 1, false))
		require.NoError(t, f.SetRowVisible("D1S1", 4, false))
	})
}

func TestHideCompleted(t *testing.T) {
	path := answerSheet(t)
	wb := New(path, "Template", nil)

	res, err := wb.HideCompleted([]string{"D1S1", "Missing"}, []int{6, 8})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"D1S1": 4}, res.Hidden)
	assert.Equal(t, []string{"Missing"}, res.Unknown)

	f := openForTest(t, path)
	want := map[int]bool{1: true, 2: true, 3: false, 4: true, 5: false, 6: false, 7: false}
	for row, visible := range want {
		got, err := f.GetRowVisible("D1S1", row)
		require.NoError(t, err)
		assert.Equal(t, visible, got, "row %d", row)
	}
}

func TestHideCompleted_NoColumns(t *testing.T) {
	path := answerSheet(t)

	_, err := New(path, "Template", nil).HideCompleted([]string{"D1S1"}, nil)
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestExportKeep(t *testing.T) {
	path := answerSheet(t)
	wb := New(path, "Template", nil)
	_, err := wb.HideCompleted([]string{"D1S1"}, []int{6, 8})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "Intermediate")
	res, err := wb.ExportKeep([]string{"D1S1", "Template", "Ghost"}, dir)
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	assert.Equal(t, ExportedFile{Sheet: "D1S1", Path: filepath.Join(dir, "Keep_D1S1.txt"), Lines: 1}, res.Files[0])
	assert.Equal(t, []string{"Template"}, res.Empty)
	assert.Equal(t, []string{"Ghost"}, res.Unknown)

	data, err := os.ReadFile(filepath.Join(dir, "Keep_D1S1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "dog", string(data))
}

func TestExportKeep_AllVisible(t *testing.T) {
	path := answerSheet(t)
	dir := t.TempDir()

	// row 4 was hidden by hand and stays hidden without HideCompleted
	res, err := New(path, "Template", nil).ExportKeep([]string{"D1S1"}, dir)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)

	data, err := os.ReadFile(res.Files[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "cat\nbird\nowl\nÉclair", string(data))
}

func TestExportOrigin(t *testing.T) {
	path := newTestWorkbook(t, func(f *excelize.File) {
		newSheet(t, f, "D1S1")
		setRow(t, f, "D1S1", 1, "No.", "Word")
		setRow(t, f, "D1S1", 3, 1, "cat")
		setRow(t, f, "D1S1", 4, 2)
		setRow(t, f, "D1S1", 5, 3, "dog")
		newSheet(t, f, "Short")
		setRow(t, f, "Short", 1, "header")
		setRow(t, f, "Template", 3, 1, "template word")
	})
	dir := filepath.Join(t.TempDir(), "OriginWords")

	res, err := New(path, "Template", nil).ExportOrigin(dir)
	require.NoError(t, err)

	assert.Equal(t, []ExportedFile{{Sheet: "D1S1", Path: filepath.Join(dir, "D1S1.txt"), Lines: 3}}, res.Files)
	assert.Equal(t, []string{"Short"}, res.Empty)

	data, err := os.ReadFile(filepath.Join(dir, "D1S1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "cat\n\ndog", string(data))
	assert.NoFileExists(t, filepath.Join(dir, "Template.txt"))
}

func TestWiden(t *testing.T) {
	path := newTestWorkbook(t, func(f *excelize.File) {
		newSheet(t, f, "Wide")
		require.NoError(t, f.SetCellValue("Wide", "AB3", "far right"))
	})

	sheets, err := New(path, "Template", nil).Widen(20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Template", "Wide"}, sheets)

	f := openForTest(t, path)
	for _, sheet := range sheets {
		props, err := f.GetSheetProps(sheet)
		require.NoError(t, err)
		require.NotNil(t, props.DefaultColWidth)
		assert.InDelta(t, 20.0, *props.DefaultColWidth, 1e-9)

		for _, col := range []string{"A", "M", "X"} {
			w, err := f.GetColWidth(sheet, col)
			require.NoError(t, err)
			assert.InDelta(t, 20.0, w, 1e-9, "%s!%s", sheet, col)
		}
	}

	w, err := f.GetColWidth("Wide", "AB")
	require.NoError(t, err)
	assert.InDelta(t, 20.0, w, 1e-9)
}

func TestWiden_InvalidWidth(t *testing.T) {
	path := newTestWorkbook(t, nil)

	_, err := New(path, "Template", nil).Widen(0)
	assert.Error(t, err)
}

func TestParseColumns(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"F,H", []int{6, 8}, false},
		{"f h", []int{6, 8}, false},
		{"G", []int{7}, false},
		{"AA", []int{27}, false},
		{"A", nil, true},
		{"", nil, true},
		{"F,1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColumns(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidColumn)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, 12, cellValue("12"))
	assert.Equal(t, 1.5, cellValue("1.5"))
	assert.Equal(t, "NaN", cellValue("NaN"))
	assert.Equal(t, "1e3", cellValue("1e3"))
	assert.Equal(t, "cat", cellValue("cat"))
}
