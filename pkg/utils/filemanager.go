// =============================================================================
// Finance Sheet Normalizer - File Manager Utility
// =============================================================================
//
// This module provides the file handling around an ingestion run:
//   - Discovering report documents in the input directory
//   - Archiving documents after a clean run
//   - Naming exported tables
//   - Writing the per-run error log and summary log
//
// ARCHIVAL STRATEGY:
//   - A document is moved to input_archive only when the run had no
//     storage failure; documents with row errors are still archived since
//     their good rows were stored
//   - Failed documents remain in the input directory for a rerun
//   - Logs are written to the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentExtensions are the input formats the normalizer reads.
var DocumentExtensions = []string{".xlsx", ".xlsm", ".csv"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles the input, output and archive directories.
type FileManager struct {
	// InputDir is where report documents are dropped.
	InputDir string

	// OutputDir receives logs and exported tables.
	OutputDir string

	// InputArchiveDir receives processed documents.
	InputArchiveDir string

	// UseTimestampSubdirs files archives under year/month/day.
	// Example: input_archive/2025/07/31/BFKO 2024.xlsx
	UseTimestampSubdirs bool
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the documents in the input directory, sorted by
// name. Office lock files ("~$...") and subdirectories are ignored.
//
// RETURNS:
//   - A slice of file paths.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") {
			continue
		}
		if IsDocument(entry.Name()) {
			result = append(result, filepath.Join(fm.InputDir, entry.Name()))
		}
	}
	sort.Strings(result)
	return result, nil
}

// IsDocument reports whether a file name has a supported extension.
func IsDocument(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range DocumentExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a document to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the document.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath := fm.archivePath(filePath, time.Now())

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}
	return archivePath, nil
}

func (fm *FileManager) archivePath(filePath string, now time.Time) string {
	fileName := filepath.Base(filePath)
	if !fm.UseTimestampSubdirs {
		return filepath.Join(fm.InputArchiveDir, fileName)
	}
	return filepath.Join(
		fm.InputArchiveDir,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()),
		fileName,
	)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName fills an export file name format.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {source}    - Source document name (without extension)
//               {table}     - Canonical table name
//   - params: A map of placeholder values, keyed without braces.
//
// RETURNS:
//   - The generated file name, always ending in .csv.
//
// EXAMPLE:
//   format: "{source}_{table}.csv"
//   params: {"source": "CC Juli 2025", "table": "travel_transactions"}
//   output: "CC_Juli_2025_travel_transactions.csv"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Source names come from spreadsheet file names and carry spaces.
	result = strings.ReplaceAll(result, " ", "_")

	if !strings.HasSuffix(strings.ToLower(result), ".csv") {
		result += ".csv"
	}
	return result
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry is one row or sheet problem of a run.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	Sheet        string
	ErrorType    string
	Severity     string
	ErrorMessage string
	RowNumber    int
	FieldName    string
	FieldValue   string
}

// WriteErrorLog writes error entries to a log file.
//
// PARAMETERS:
//   - entries: The error entries to write.
//   - outputDir: The directory to write the log file.
//   - runID: Identifies the run in the file name.
//
// RETURNS:
//   - The path to the error log file, empty when there was nothing to write.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir, runID string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s_%s.txt", time.Now().Format("20060102_150405"), shortID(runID)))
	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Finance Sheet Normalizer - Error Log\n"+
		"Run:          %s\n"+
		"Generated:    %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		runID, time.Now().Format("2006-01-02 15:04:05"), len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:  %s\n"+
			"  File:       %s\n"+
			"  Error Type: %s (%s)\n"+
			"  Message:    %s\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.FileName,
			entry.ErrorType, entry.Severity,
			entry.ErrorMessage)
		if entry.Sheet != "" {
			fmt.Fprintf(writer, "  Sheet:      %s\n", entry.Sheet)
		}
		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number: %d\n", entry.RowNumber)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(writer, "  Field:      %s\n", entry.FieldName)
		}
		if entry.FieldValue != "" {
			fmt.Fprintf(writer, "  Value:      %s\n", entry.FieldValue)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID           string
	StartTime       time.Time
	EndTime         time.Time
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	Inserted        int
	Updated         int
	Unchanged       int
	Skipped         int
	Errored         int
	Warnings        int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo describes a document whose records were stored.
type ProcessedFileInfo struct {
	InputFile   string
	ArchivePath string
	Sheets      int
	Records     int
	Errored     int
	ProcessTime time.Duration
}

// FailedFileInfo describes a document that could not be stored.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to a log file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s_%s.txt", time.Now().Format("20060102_150405"), shortID(summary.RunID)))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := writeSummary(writer, summary); err != nil {
		return "", err
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

func writeSummary(w io.Writer, summary ProcessingSummary) error {
	_, err := fmt.Fprintf(w, "Finance Sheet Normalizer - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:    %d\n"+
		"  Successful:     %d\n"+
		"  Failed:         %d\n"+
		"  Inserted:       %d\n"+
		"  Updated:        %d\n"+
		"  Unchanged:      %d\n"+
		"  Skipped:        %d\n"+
		"  Errored Rows:   %d\n"+
		"  Warnings:       %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.TotalFiles, summary.SuccessfulFiles, summary.FailedFiles,
		summary.Inserted, summary.Updated, summary.Unchanged, summary.Skipped,
		summary.Errored, summary.Warnings)
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if len(summary.ProcessedFiles) > 0 {
		fmt.Fprint(w, "Successful Files:\n"+
			"--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(w, "  Input:        %s\n", pf.InputFile)
			if pf.ArchivePath != "" {
				fmt.Fprintf(w, "  Archived:     %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(w, "  Sheets:       %d\n", pf.Sheets)
			fmt.Fprintf(w, "  Records:      %d\n", pf.Records)
			fmt.Fprintf(w, "  Errored Rows: %d\n", pf.Errored)
			fmt.Fprintf(w, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		fmt.Fprint(w, "Failed Files:\n"+
			"--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(w, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(w, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	_, err = fmt.Fprint(w, "================================================================================\n"+
		"End of Summary\n")
	return err
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// shortID keeps log file names readable.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
