// =============================================================================
// Finance Sheet Normalizer - Ingest Module
// =============================================================================
//
// This module runs one report document through the whole pipeline, from
// reading the workbook to storing the normalized records.
//
// INGESTION PIPELINE:
//   1. Read the document (.xlsx workbook or .csv export)
//   2. Classify each sheet to a source profile
//   3. Extract records from every classified sheet
//   4. Aggregate the summary block of every CC sheet
//   5. Upsert the records and the run in one batch
//   6. Archive the document
//
// FAILURE MODEL:
//   Row problems never stop a document: they are collected in the result
//   and written to the error log. A storage failure rolls back the whole
//   document, so a rerun starts from a clean state.
//
// =============================================================================

package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/csvparser"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/extractor"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/logger"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/reconcile"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/scanner"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/store"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/validation"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/xlsxparser"
	"github.com/ginjaninja78/finance-sheet-normalizer/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of ingesting a single document.
type Result struct {
	// FilePath is the path to the document that was processed.
	FilePath string

	// RunID identifies the run in the store and in log file names.
	RunID string

	// ArchivePath is where the document was moved, empty if it was not.
	ArchivePath string

	// Success is false only when the document could not be read or stored.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats

	// Sheets has one entry per sheet of the document, classified or not.
	Sheets []SheetOutcome

	// Errors are the row and sheet problems, in sheet order.
	Errors []*validation.RowError

	// Summaries are the reconciliation buckets of the CC sheets.
	Summaries []types.SheetSummary

	// Records are the records handed to the store, summaries included.
	Records []types.Record
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// SheetsProcessed counts sheets a profile was applied to.
	SheetsProcessed int

	// SheetsIgnored counts sheets no profile recognised.
	SheetsIgnored int

	// Inserted, Updated and Unchanged are store outcomes.
	Inserted  int
	Updated   int
	Unchanged int

	// Skipped counts rejected rows plus existing records left alone
	// because update_existing is off.
	Skipped int

	// Errored counts dropped rows and failed sheets.
	Errored int

	// Warnings counts rows stored with a problem worth reviewing.
	Warnings int

	// ProcessingTime is the time taken to process the document.
	ProcessingTime time.Duration
}

// SheetOutcome describes what happened to one sheet.
type SheetOutcome struct {
	Name string

	// Profile is empty for ignored sheets.
	Profile string
	Kind    config.SourceKind

	HeaderRow    int
	LegacyLayout bool
	Emitted      int
	Skipped      int
	Errored      int
	Warnings     int
}

// Options tune a single run.
type Options struct {
	// Source forces one profile for every sheet. Empty classifies each sheet
	// by file name, sheet name and header labels.
	Source config.SourceKind

	// DryRun stores into a throwaway in-memory store and never archives.
	DryRun bool
}

// =============================================================================
// INGESTER STRUCTURE
// =============================================================================

// Ingester ingests documents into a store.
type Ingester struct {
	store      store.Store
	profiles   config.Profiles
	extractors map[config.SourceKind]*extractor.Extractor
	mainConfig *config.MainConfig
	files      *utils.FileManager
	log        zerolog.Logger
}

// New creates an Ingester.
//
// PARAMETERS:
//   - st: The store records are upserted into.
//   - profiles: The active source profiles.
//   - mainConfig: The main application configuration.
//   - log: The application logger.
//
// RETURNS:
//   - A new Ingester.
//   - An error if a profile cannot be compiled into an extractor.
func New(st store.Store, profiles config.Profiles, mainConfig *config.MainConfig, log zerolog.Logger) (*Ingester, error) {
	in := &Ingester{
		store:      st,
		profiles:   profiles,
		extractors: make(map[config.SourceKind]*extractor.Extractor, len(profiles)),
		mainConfig: mainConfig,
		files:      utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir),
		log:        logger.Component(log, "ingest"),
	}
	for kind, profile := range profiles {
		e, err := extractor.New(profile)
		if err != nil {
			return nil, err
		}
		in.extractors[kind] = e
	}
	return in, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run ingests one document.
//
// RETURNS:
//   - A Result describing the outcome. Row problems are reported in
//     Result.Errors and never make the run fail.
func (in *Ingester) Run(ctx context.Context, path string, opts Options) Result {
	startTime := time.Now()
	result := Result{
		FilePath: path,
		RunID:    uuid.New().String(),
	}
	fileName := filepath.Base(path)
	log := in.log.With().Str("file", fileName).Str("run_id", result.RunID).Logger()

	// =========================================================================
	// STEP 1: READ DOCUMENT
	// =========================================================================

	log.Info().Msg("Processing document")

	wb, err := LoadDocument(path, in.mainConfig.CSV)
	if err != nil {
		result.Error = fmt.Errorf("failed to read document: %w", err)
		return result
	}
	log.Debug().Int("sheets", len(wb.Sheets)).Msg("Read document")

	// =========================================================================
	// STEP 2-4: CLASSIFY, EXTRACT, AGGREGATE
	// =========================================================================
	// Sheets are independent: a sheet that fails structurally is reported
	// and the next sheet is processed.

	var report validation.Report
	keys := extractor.NewIDSet()
	for _, g := range wb.Sheets {
		outcome := SheetOutcome{Name: g.Name, HeaderRow: -1}

		profile := in.Classify(fileName, g, opts.Source)
		if profile == nil {
			log.Debug().Str("sheet", g.Name).Msg("No profile recognises sheet, ignoring")
			result.Stats.SheetsIgnored++
			result.Sheets = append(result.Sheets, outcome)
			continue
		}
		outcome.Profile, outcome.Kind = profile.Name, profile.Kind

		res, err := in.extractors[profile.Kind].ExtractSheet(g)
		if err != nil {
			result.Error = fmt.Errorf("failed to extract sheet %q: %w", g.Name, err)
			return result
		}
		result.Stats.SheetsProcessed++
		claimKeys(keys, res)

		if res.LegacyLayout {
			log.Warn().Str("sheet", g.Name).Msg("No month header found, using the 2024 BFKO column layout")
		}

		outcome.HeaderRow = res.HeaderRow
		outcome.LegacyLayout = res.LegacyLayout
		outcome.Emitted = res.Emitted()
		outcome.Skipped = res.Report.Skipped
		outcome.Errored = len(res.Report.Fatal())
		outcome.Warnings = len(res.Report.Warnings())
		result.Sheets = append(result.Sheets, outcome)

		report.Merge(res.Report)
		result.Records = append(result.Records, res.Records...)

		if profile.Kind == config.KindCC {
			if summary, ok := summarize(g, res, profile); ok {
				if claimKey(keys, summary) {
					result.Summaries = append(result.Summaries, summary)
					result.Records = append(result.Records, summary)
				} else {
					report.Add(validation.NewDuplicate(g.Name, 0, "source_sheet", summary.SourceSheet))
				}
			}
		}

		log.Debug().
			Str("sheet", g.Name).
			Str("profile", profile.Name).
			Int("records", outcome.Emitted).
			Int("errored", outcome.Errored).
			Msg("Extracted sheet")
	}

	result.Errors = report.Errors
	result.Stats.Skipped = report.Skipped
	result.Stats.Errored = len(report.Fatal())
	result.Stats.Warnings = len(report.Warnings())
	for _, re := range report.Errors {
		event := log.Debug()
		if re.IsFatal() {
			event = log.Warn()
		}
		event.Str("sheet", re.Sheet).Int("row", re.Row).Str("field", re.Field).Msg(re.Message)
	}

	// =========================================================================
	// STEP 5: STORE RECORDS
	// =========================================================================

	st := in.store
	if opts.DryRun {
		st = store.NewMemory()
	}

	tally, err := in.persist(ctx, st, fileName, result, startTime)
	if err != nil {
		result.Error = err
		return result
	}
	result.Stats.Inserted = tally.inserted
	result.Stats.Updated = tally.updated
	result.Stats.Unchanged = tally.unchanged
	result.Stats.Skipped += tally.skipped

	log.Info().
		Int("inserted", tally.inserted).
		Int("updated", tally.updated).
		Int("unchanged", tally.unchanged).
		Int("skipped", result.Stats.Skipped).
		Int("errored", result.Stats.Errored).
		Msg("Stored records")

	// =========================================================================
	// STEP 6: ARCHIVE DOCUMENT
	// =========================================================================

	if in.mainConfig.ArchiveProcessed && !opts.DryRun {
		archived, err := in.files.ArchiveInputFile(path)
		if err != nil {
			// Log the error but don't fail the processing.
			log.Warn().Err(err).Msg("Failed to archive document")
		} else {
			result.ArchivePath = archived
		}
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// claimKeys drops records whose table and natural key an earlier sheet of
// the same document already produced, reporting each as a duplicate.
func claimKeys(keys *extractor.IDSet, res *extractor.SheetResult) {
	records, rows := res.Records[:0], res.Rows[:0]
	for i, rec := range res.Records {
		row := 0
		if i < len(res.Rows) {
			row = res.Rows[i]
		}
		if !claimKey(keys, rec) {
			res.Report.Add(validation.NewDuplicate(res.Sheet, row, "natural_key", rec.NaturalKey()))
			continue
		}
		records = append(records, rec)
		rows = append(rows, row)
	}
	res.Records, res.Rows = records, rows
}

func claimKey(keys *extractor.IDSet, rec types.Record) bool {
	return keys.Claim(rec.Table() + "|" + rec.NaturalKey())
}

type tally struct {
	inserted, updated, unchanged, skipped int
}

// persist upserts the records and the run record in one batch.
func (in *Ingester) persist(ctx context.Context, st store.Store, fileName string, result Result, started time.Time) (tally, error) {
	var t tally
	overwrite := in.mainConfig.ShouldUpdateExisting()
	runCtx := store.WithRun(ctx, store.Run{ID: result.RunID, SourceFile: fileName})

	err := st.InBatch(runCtx, func(ctx context.Context) error {
		for _, rec := range result.Records {
			outcome, err := st.Upsert(ctx, rec, overwrite)
			if err != nil {
				return fmt.Errorf("failed to store records: %w", err)
			}
			switch outcome {
			case store.Inserted:
				t.inserted++
			case store.Updated:
				t.updated++
			case store.Unchanged:
				t.unchanged++
			case store.Skipped:
				t.skipped++
			}
		}
		return st.RecordRun(ctx, store.RunRecord{
			RunID:      result.RunID,
			SourceFile: fileName,
			StartedAt:  started,
			Inserted:   t.inserted,
			Updated:    t.updated,
			Skipped:    result.Stats.Skipped + t.skipped,
			Errored:    result.Stats.Errored,
		})
	})
	if err != nil {
		return tally{}, err
	}
	return t, nil
}

// summarize aggregates the summary block of a CC sheet. Sheets without any
// summary label yield nothing.
func summarize(g types.Grid, res *extractor.SheetResult, profile *config.SourceProfile) (types.SheetSummary, bool) {
	layout := reconcile.DefaultLayout()
	if res.HeaderRow >= 0 {
		layout = reconcile.LayoutFromColumns(res.Columns, profile.Summary)
	}
	summary := reconcile.AggregateSheet(extractor.NormalizeCCSheetName(g.Name), g.Rows, layout)
	empty := summary.GrossPaymentTotal == 0 && summary.RefundTotal == 0 && !summary.HasGrandTotal
	return summary, !empty
}

// Classify picks the profile for a sheet.
//
// MATCHING LOGIC:
//   1. A forced source applies when its sheet patterns accept the sheet
//   2. Otherwise the first profile whose file and sheet patterns match
//   3. Otherwise the first profile whose header labels are found
func (in *Ingester) Classify(fileName string, g types.Grid, forced config.SourceKind) *config.SourceProfile {
	if forced != "" {
		p, ok := in.profiles.Get(forced)
		if !ok || !p.MatchesSheet(g.Name) {
			return nil
		}
		return p
	}
	if p := in.profiles.Match(fileName, g.Name); p != nil {
		return p
	}
	return Recognize(in.profiles, g)
}

// Recognize identifies a sheet by its structure alone: the profile's
// section label (if any) and header labels must both be present.
func Recognize(profiles config.Profiles, g types.Grid) *config.SourceProfile {
	for _, kind := range config.Kinds {
		p, ok := profiles.Get(kind)
		if !ok || !p.MatchesSheet(g.Name) {
			continue
		}
		from := 0
		if p.SectionLabel != "" {
			start, err := scanner.FindSectionStart(g, p.SectionLabel)
			if err != nil {
				continue
			}
			from = start
		}
		if _, err := scanner.FindHeaderRowFrom(g, from, p.HeaderWindow, p.HeaderLabels...); err == nil {
			return p
		}
	}
	return nil
}

// LoadDocument reads an .xlsx/.xlsm workbook or a .csv export.
func LoadDocument(path string, csvSettings config.CSVSettings) (types.Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsxparser.ReadWorkbook(path)
	case ".csv":
		return csvparser.ParseWorkbook(path, csvSettings)
	default:
		return types.Workbook{}, fmt.Errorf("unsupported document type %q", filepath.Ext(path))
	}
}

// ErrorLogEntries converts the result's problems for the error log.
func (r Result) ErrorLogEntries() []utils.ErrorLogEntry {
	entries := make([]utils.ErrorLogEntry, 0, len(r.Errors)+1)
	now := time.Now()
	fileName := filepath.Base(r.FilePath)
	if r.Error != nil {
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    now,
			FileName:     fileName,
			ErrorType:    "DocumentFailed",
			Severity:     validation.SeverityError,
			ErrorMessage: r.Error.Error(),
		})
	}
	for _, re := range r.Errors {
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    now,
			FileName:     fileName,
			Sheet:        re.Sheet,
			ErrorType:    re.Kind.String(),
			Severity:     re.Severity,
			ErrorMessage: re.Message,
			RowNumber:    re.Row,
			FieldName:    re.Field,
			FieldValue:   re.Value,
		})
	}
	return entries
}
