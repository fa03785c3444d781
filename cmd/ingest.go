// =============================================================================
// Finance Sheet Normalizer - Ingest Command
// =============================================================================
//
// This file defines the 'ingest' command, the main command of the tool. It
// runs every document through the normalization pipeline and stores the
// records.
//
// COMMAND USAGE:
//   normalizer ingest [flags]
//
// FLAGS:
//   --file        : Ingest a single document instead of the input directory
//   --source      : Force a source profile (bfko, sppd, cc, service_fee)
//   --dry-run     : Extract and report without touching the database
//   --export      : Write the normalized tables as CSV to the output directory
//   --export-xlsx : Write the normalized tables to one workbook at this path
//
// PROCESSING PIPELINE:
//   1. Load configuration and source profiles
//   2. Discover documents in the input directory
//   3. Open the database
//   4. Ingest each document in turn (see internal/ingest)
//   5. Export tables, write the error and summary logs
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/export"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/ingest"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/store"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
	"github.com/ginjaninja78/finance-sheet-normalizer/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	ingestFile   string
	ingestSource string
	dryRun       bool
	exportCSV    bool
	exportXLSX   string
)

// =============================================================================
// INGEST COMMAND DEFINITION
// =============================================================================

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Normalize report documents into the database",
	Long: `The ingest command reads every .xlsx and .csv document in the input
directory, recognises the report template of each sheet, and upserts one
record per installment, trip, settlement line and booking.

Documents are processed one after the other. Each document is stored in a
single transaction:
  - Rows that cannot be read are skipped and listed in the error log
  - A database failure rolls the whole document back
  - A stored document is moved to the input archive when archive_processed
    is set

Records already in the database are updated when update_existing is true
(the default) and counted as skipped otherwise.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest()
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "Ingest a single document")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "Force a source profile: bfko, sppd, cc or service_fee")
	ingestCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Extract and report without writing to the database")
	ingestCmd.Flags().BoolVar(&exportCSV, "export", false, "Write the normalized tables as CSV files")
	ingestCmd.Flags().StringVar(&exportXLSX, "export-xlsx", "", "Write the normalized tables to a workbook at this path")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runIngest() error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Println("=== Finance Sheet Normalizer ===")
	fmt.Println("Loading configuration...")

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	source, err := parseSource(ingestSource)
	if err != nil {
		return err
	}
	cfg := env.config

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	var inputFiles []string
	if ingestFile != "" {
		inputFiles = []string{ingestFile}
	} else {
		fmt.Println("Discovering input files...")
		inputFiles, err = fm.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		fmt.Println("No documents found in the input directory.")
		return nil
	}
	fmt.Printf("Found %d document(s) to process\n", len(inputFiles))

	// =========================================================================
	// STEP 3: OPEN DATABASE
	// =========================================================================

	var st store.Store
	if dryRun {
		fmt.Println("Dry run: nothing will be written to the database")
		st = store.NewMemory()
	} else {
		db, err := store.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			return err
		}
		st = db
	}
	defer st.Close()

	in, err := ingest.New(st, env.profiles, cfg, env.log)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 4: INGEST DOCUMENTS
	// =========================================================================
	// Sequential: a document is committed before the next one starts, so a
	// later document's update of the same key wins deterministically.

	fmt.Println("Processing documents...")

	summary := utils.ProcessingSummary{
		StartTime:  startTime,
		TotalFiles: len(inputFiles),
	}
	var (
		logEntries []utils.ErrorLogEntry
		records    []types.Record
	)

	for _, file := range inputFiles {
		result := in.Run(env.ctx, file, ingest.Options{Source: source, DryRun: dryRun})
		if summary.RunID == "" {
			summary.RunID = result.RunID
		}
		logEntries = append(logEntries, result.ErrorLogEntries()...)

		name := filepath.Base(file)
		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    name,
				ErrorMessage: result.Error.Error(),
			})
			fmt.Printf("  ✗ %s: %v\n", name, result.Error)
			continue
		}

		s := result.Stats
		summary.SuccessfulFiles++
		summary.Inserted += s.Inserted
		summary.Updated += s.Updated
		summary.Unchanged += s.Unchanged
		summary.Skipped += s.Skipped
		summary.Errored += s.Errored
		summary.Warnings += s.Warnings
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   name,
			ArchivePath: result.ArchivePath,
			Sheets:      s.SheetsProcessed,
			Records:     len(result.Records),
			Errored:     s.Errored,
			ProcessTime: s.ProcessingTime,
		})

		fmt.Printf("  ✓ %s: %d sheet(s), %d inserted, %d updated, %d skipped, %d errored\n",
			name, s.SheetsProcessed, s.Inserted, s.Updated, s.Skipped, s.Errored)
		for _, sheet := range result.Sheets {
			if sheet.LegacyLayout {
				fmt.Printf("      ! %s: month columns taken from the 2024 template layout\n", sheet.Name)
			}
		}
		for _, sum := range result.Summaries {
			if !sum.Matches() {
				fmt.Printf("      ! %s: computed %d, printed %d\n", sum.SourceSheet, sum.Computed(), sum.DocumentGrandTotal)
			}
		}

		if exportCSV || cfg.ExportCSV {
			paths, err := export.WriteCSVFiles(cfg.OutputDir, result.Records, export.DefaultOptions(), func(table string) string {
				return utils.GenerateOutputFileName(cfg.OutputNameFormat, map[string]string{
					"table":  table,
					"source": strings.TrimSuffix(name, filepath.Ext(name)),
				})
			})
			if err != nil {
				env.log.Warn().Err(err).Str("file", name).Msg("Failed to export tables")
			}
			for _, p := range paths {
				fmt.Printf("      -> %s\n", p)
			}
		}
		records = append(records, result.Records...)
	}

	// =========================================================================
	// STEP 5: EXPORT AND LOGS
	// =========================================================================

	if exportXLSX != "" && len(records) > 0 {
		if err := export.WriteXLSX(exportXLSX, records); err != nil {
			env.log.Warn().Err(err).Msg("Failed to export workbook")
		} else {
			fmt.Printf("Exported workbook: %s\n", exportXLSX)
		}
	}

	summary.EndTime = time.Now()

	if path, err := utils.WriteErrorLog(logEntries, cfg.OutputDir, summary.RunID); err != nil {
		env.log.Warn().Err(err).Msg("Failed to write error log")
	} else if path != "" {
		fmt.Printf("\nRow errors have been logged to %s\n", path)
	}
	if _, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
		env.log.Warn().Err(err).Msg("Failed to write summary log")
	}

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total documents: %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Failed:          %d\n", summary.FailedFiles)
	fmt.Printf("Inserted:        %d\n", summary.Inserted)
	fmt.Printf("Updated:         %d\n", summary.Updated)
	fmt.Printf("Unchanged:       %d\n", summary.Unchanged)
	fmt.Printf("Skipped:         %d\n", summary.Skipped)
	fmt.Printf("Errored rows:    %d\n", summary.Errored)
	fmt.Printf("Warnings:        %d\n", summary.Warnings)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d document(s) failed", summary.FailedFiles)
	}
	return nil
}
