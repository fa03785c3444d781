package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "SPPD Juli 2025.xlsx"))
	touch(t, filepath.Join(dir, "CC 5657.CSV"))
	touch(t, filepath.Join(dir, "~$SPPD Juli 2025.xlsx"))
	touch(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old.xlsx"), 0755))

	fm := NewFileManager(dir, t.TempDir(), t.TempDir())
	files, err := fm.DiscoverInputFiles()
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "CC 5657.CSV"),
		filepath.Join(dir, "SPPD Juli 2025.xlsx"),
	}, files)
}

func TestDiscoverInputFilesMissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "missing"), "", "")
	_, err := fm.DiscoverInputFiles()
	assert.Error(t, err)
}

func TestArchiveInputFile(t *testing.T) {
	in, archive := t.TempDir(), filepath.Join(t.TempDir(), "archive")
	src := filepath.Join(in, "BFKO 2024.xlsx")
	touch(t, src)

	fm := NewFileManager(in, t.TempDir(), archive)
	dst, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(archive, "BFKO 2024.xlsx"), dst)
	assert.True(t, FileExists(dst))
	assert.False(t, FileExists(src))
}

func TestArchivePathTimestampSubdirs(t *testing.T) {
	fm := NewFileManager("in", "out", "archive")
	fm.UseTimestampSubdirs = true
	now := time.Date(2025, time.July, 31, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, filepath.Join("archive", "2025", "07", "31", "a.xlsx"), fm.archivePath("in/a.xlsx", now))
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{source}_{table}", map[string]string{
		"source": "CC Juli 2025",
		"table":  "travel_transactions",
	})
	assert.Equal(t, "CC_Juli_2025_travel_transactions.csv", name)

	name = GenerateOutputFileName("{table}_{timestamp}.csv", map[string]string{"table": "sheet_summaries"})
	assert.True(t, strings.HasPrefix(name, "sheet_summaries_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
	assert.NotContains(t, name, "{")
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir, "run")
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "SPPD Juli 2025.xlsx",
		Sheet:        "Sheet1",
		ErrorType:    "FieldUnparseable",
		Severity:     "error",
		ErrorMessage: "cannot parse value",
		RowNumber:    9,
		FieldName:    "start_date",
		FieldValue:   "tgl ?",
	}}, dir, "0f8fad5b-d9cb-469f-a165-70867728950e")
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "0f8fad5b")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total Errors: 1")
	assert.Contains(t, string(data), "Row Number: 9")
	assert.Contains(t, string(data), "Field:      start_date")
}

func TestWriteSummaryLog(t *testing.T) {
	start := time.Date(2025, time.July, 31, 10, 0, 0, 0, time.UTC)
	path, err := WriteSummaryLog(ProcessingSummary{
		RunID:           "run-1",
		StartTime:       start,
		EndTime:         start.Add(2 * time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		Inserted:        9,
		Errored:         1,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "SPPD Juli 2025.xlsx", Sheets: 1, Records: 9, Errored: 1}},
		FailedFilesList: []FailedFileInfo{{InputFile: "broken.xlsx", ErrorMessage: "failed to open workbook"}},
	}, t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Duration:       2s")
	assert.Contains(t, text, "Inserted:       9")
	assert.Contains(t, text, "Input:        SPPD Juli 2025.xlsx")
	assert.Contains(t, text, "Error: failed to open workbook")
}
