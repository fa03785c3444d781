package extractor

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/scanner"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/validation"
)

// SheetResult is everything extracted from one sheet.
type SheetResult struct {
	Sheet   string
	Records []types.Record
	Report  validation.Report

	// Rows holds the 1-based spreadsheet row of each record.
	Rows []int

	// HeaderRow is the 0-based header row index, -1 when none was found.
	HeaderRow int
	Columns   scanner.ColumnMap

	// LegacyLayout is set when BFKO month columns came from the fixed 2024
	// template positions instead of header labels.
	LegacyLayout bool

	// Blocks are the BFKO month blocks the rows were fanned out across.
	Blocks []scanner.Block

	// DataStart and DataEnd bound the data rows (end exclusive). Rows past
	// DataEnd may hold summary blocks.
	DataStart int
	DataEnd   int
}

// Emitted is the number of records produced.
func (r *SheetResult) Emitted() int {
	return len(r.Records)
}

func (r *SheetResult) emit(rec types.Record, row int) {
	r.Records = append(r.Records, rec)
	r.Rows = append(r.Rows, row)
}

func newSheetResult(name string) *SheetResult {
	return &SheetResult{Sheet: name, HeaderRow: -1}
}

// structural records a missing marker, which ends extraction of the sheet.
func (r *SheetResult) structural(err error) *SheetResult {
	var re *validation.RowError
	if errors.As(err, &re) {
		r.Report.Add(re)
		return r
	}
	r.Report.Add(validation.NewStructural(r.Sheet, err.Error()))
	return r
}

// ExtractSheet runs the profile's extraction over one sheet.
func (e *Extractor) ExtractSheet(g types.Grid) (*SheetResult, error) {
	switch e.profile.Kind {
	case config.KindBFKO:
		return e.ExtractBFKO(g), nil
	case config.KindSPPD:
		return e.ExtractSPPD(g), nil
	case config.KindCC:
		return e.ExtractCC(g), nil
	case config.KindServiceFee:
		return e.ExtractServiceFee(g), nil
	default:
		return nil, fmt.Errorf("profile %s: unsupported source kind %q", e.profile.Name, e.profile.Kind)
	}
}

// locateHeader finds the header row and maps the profile's columns onto it.
func (e *Extractor) locateHeader(g types.Grid, from int, res *SheetResult) bool {
	header, err := scanner.FindHeaderRowFrom(g, from, e.profile.HeaderWindow, e.profile.HeaderLabels...)
	if err != nil {
		res.structural(err)
		return false
	}
	res.HeaderRow = header
	res.Columns = scanner.MapColumns(g.Rows[header], e.profile.Columns)
	if !res.Columns.Has(e.profile.PrimaryKey) {
		res.structural(validation.NewStructural(g.Name, e.profile.PrimaryKey))
		return false
	}
	return true
}
