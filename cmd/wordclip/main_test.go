package main

import (
	"bytes"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/maauso/wordclip/internal/audio"
)

type cliTestEnv struct {
	base         string
	audioDir     string
	wordsDir     string
	intermDir    string
	outputDir    string
	csvDir       string
	workbookPath string
	collections  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	env := &cliTestEnv{
		base:         base,
		audioDir:     filepath.Join(base, "OriginAudio"),
		wordsDir:     filepath.Join(base, "OriginWords"),
		intermDir:    filepath.Join(base, "Intermediate"),
		outputDir:    filepath.Join(base, "Output"),
		csvDir:       filepath.Join(base, "CSV"),
		workbookPath: filepath.Join(base, "vocabulary.xlsx"),
		collections:  filepath.Join(base, "collections.toml"),
	}
	require.NoError(t, os.MkdirAll(env.audioDir, 0o755))

	t.Setenv("ORIGIN_AUDIO_DIR", env.audioDir)
	t.Setenv("ORIGIN_WORDS_DIR", env.wordsDir)
	t.Setenv("INTERMEDIATE_DIR", env.intermDir)
	t.Setenv("OUTPUT_DIR", env.outputDir)
	t.Setenv("CSV_DIR", env.csvDir)
	t.Setenv("WORKBOOK_PATH", env.workbookPath)
	t.Setenv("COLLECTIONS_FILE", env.collections)
	t.Setenv("TEMP_DIR", filepath.Join(base, "tmp"))
	t.Setenv("JOB_DB_PATH", "")
	t.Setenv("S3_BUCKET", "")
	t.Setenv("DETECTOR", "energy")
	t.Setenv("LOG_LEVEL", "error")
	return env
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRootShowsHelp(t *testing.T) {
	setupCLITestEnv(t)

	out, _, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "cut")
	assert.Contains(t, out, "sheet")
	assert.Contains(t, out, "serve")
}

func TestCut_SkipsUnitsWithoutWordLists(t *testing.T) {
	env := setupCLITestEnv(t)
	writeFile(t, filepath.Join(env.audioDir, "D10S1.mp3"), "")
	writeFile(t, filepath.Join(env.audioDir, "D2S1.mp3"), "")
	writeFile(t, filepath.Join(env.audioDir, "notes.txt"), "")

	out, _, err := runCLI(t, "cut")
	require.NoError(t, err)

	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "0 exported, 0 empty, 2 skipped, 0 failed")
	assert.Less(t, bytes.Index([]byte(out), []byte("D2S1")), bytes.Index([]byte(out), []byte("D10S1")),
		"units run in natural order")
	assert.NotContains(t, out, "notes")
}

func TestCut_NoRecordings(t *testing.T) {
	setupCLITestEnv(t)

	out, _, err := runCLI(t, "cut")
	require.NoError(t, err)
	assert.Contains(t, out, "No units to cut")
}

func TestCut_FailedUnitIsAnError(t *testing.T) {
	env := setupCLITestEnv(t)
	writeFile(t, filepath.Join(env.wordsDir, "D1S1.txt"), "cat\ndog\n")
	writeFile(t, filepath.Join(env.intermDir, "Keep_D1S1.txt"), "dog\n")
	writeFile(t, filepath.Join(env.audioDir, "D1S1.mp3"), "")

	out, _, err := runCLI(t, "cut", "D1S1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 units failed")
	assert.Contains(t, out, "failed")
	assert.NoFileExists(t, filepath.Join(env.outputDir, "Cutted_D1S1.mp3"))
}

func TestCut_ExpandsCollections(t *testing.T) {
	env := setupCLITestEnv(t)
	writeFile(t, env.collections, "[collections]\nday1 = [\"D1S1\", \"D1S2\"]\n")

	out, _, err := runCLI(t, "cut", "day1", "D1S1")
	require.NoError(t, err)
	assert.Contains(t, out, "D1S1")
	assert.Contains(t, out, "D1S2")
	assert.Contains(t, out, "0 exported, 0 empty, 2 skipped, 0 failed")

	out, _, err = runCLI(t, "collections")
	require.NoError(t, err)
	assert.Contains(t, out, "day1")
	assert.Contains(t, out, "D1S1, D1S2")
}

func TestCut_InvalidConfig(t *testing.T) {
	setupCLITestEnv(t)
	t.Setenv("MIN_SILENCE_MS", "0")

	_, _, err := runCLI(t, "cut")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestPrepare_RequiresColumns(t *testing.T) {
	setupCLITestEnv(t)

	_, _, err := runCLI(t, "prepare", "D1S1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns")
}

// newVocabulary writes a workbook with a template and one answered sheet.
func newVocabulary(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, f.SetSheetName("Sheet1", "Template"))
	_, err := f.NewSheet("D1S1")
	require.NoError(t, err)
	rows := [][]any{
		{"No.", "Word", "Alt", "Meaning", "Answer", "Check"},
		{},
		{1, "cat", "", "猫", "cat"},
		{2, "dog", "", "狗", "dgo"},
		{3, "bird", "", "鸟", ""},
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("D1S1", ref, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestSheetCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	newVocabulary(t, env.workbookPath)

	out, _, err := runCLI(t, "sheet", "export-origin")
	require.NoError(t, err)
	assert.Contains(t, out, "D1S1")
	data, err := os.ReadFile(filepath.Join(env.wordsDir, "D1S1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "cat\ndog\nbird", string(data))

	out, _, err = runCLI(t, "sheet", "hide-done", "D1S1", "Ghost", "--columns", "F")
	require.NoError(t, err)
	assert.Contains(t, out, "D1S1")
	assert.Contains(t, out, "Unknown sheets: Ghost")

	_, _, err = runCLI(t, "sheet", "export-keep", "D1S1")
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(env.intermDir, "Keep_D1S1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "dog", string(data))

	out, _, err = runCLI(t, "sheet", "widen", "--width", "18")
	require.NoError(t, err)
	assert.Contains(t, out, "Widened 2 sheets to 18")

	writeFile(t, filepath.Join(env.csvDir, "D1S2.csv"), "1,owl,猫头鹰\n")
	out, _, err = runCLI(t, "sheet", "import-csv")
	require.NoError(t, err)
	assert.Contains(t, out, "D1S2")
	assert.Contains(t, out, "yes")

	f, err := excelize.OpenFile(env.workbookPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{"Template", "D1S1", "D1S2"}, f.GetSheetList())
}

func TestSheetHideDone_InvalidColumn(t *testing.T) {
	setupCLITestEnv(t)

	_, _, err := runCLI(t, "sheet", "hide-done", "D1S1", "--columns", "A")
	assert.Error(t, err)
}

func TestPrepare_EndToEnd(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH, skipping test")
	}
	env := setupCLITestEnv(t)
	newVocabulary(t, env.workbookPath)
	writeFile(t, filepath.Join(env.wordsDir, "D1S1.txt"), "cat\ndog\nbird\n")
	writeToneMP3(t, filepath.Join(env.audioDir, "D1S1.mp3"))

	out, _, err := runCLI(t, "detect", "D1S1")
	require.NoError(t, err)
	assert.Contains(t, out, "D1S1: 3 intervals")

	out, _, err = runCLI(t, "prepare", "D1S1", "--columns", "F")
	require.NoError(t, err)
	assert.Contains(t, out, "1 exported, 0 empty, 0 skipped, 0 failed")
	assert.FileExists(t, filepath.Join(env.outputDir, "Cutted_D1S1.mp3"))

	cut, err := audio.Decode(filepath.Join(env.outputDir, "Cutted_D1S1.mp3"))
	require.NoError(t, err)
	// only "dog": one second of tone plus the pause after it
	assert.InDelta(t, 2500, cut.DurationMs(), 200)
}

// writeToneMP3 encodes three one-second tones separated by 1.5 s pauses.
func writeToneMP3(t *testing.T, path string) {
	t.Helper()
	format := beep.Format{SampleRate: 16000, NumChannels: 1, Precision: 2}
	rate := int(format.SampleRate)

	var samples [][2]float64
	for i := range 3 {
		if i > 0 {
			samples = append(samples, make([][2]float64, rate*3/2)...)
		}
		for n := range rate {
			v := 0.5 * math.Sin(2*math.Pi*440*float64(n)/float64(rate))
			samples = append(samples, [2]float64{v, v})
		}
	}
	samples = append(samples, make([][2]float64, rate/2)...)
	track := audio.NewTrack(format, samples)

	wavPath := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(wavPath)
	require.NoError(t, err)
	require.NoError(t, wav.Encode(f, track.Streamer(audio.Interval{StartMs: 0, EndMs: track.DurationMs()}), format))
	require.NoError(t, f.Close())

	cmd := exec.Command("ffmpeg", "-y", "-hide_banner", "-loglevel", "error", "-i", wavPath, "-codec:a", "libmp3lame", "-b:a", "64k", path)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))
}
