package extractor

import (
	"time"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/normalize"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/scanner"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/validation"
)

// monthRowSpan is how many rows from the header row down may carry the month
// labels (merged two-row headers put them one or two rows lower).
const monthRowSpan = 3

// =============================================================================
// BFKO INSTALLMENTS
// =============================================================================

// ExtractBFKO extracts the monthly installment section of a BFKO sheet.
//
// PROCESS:
//  1. Locate the section title
//  2. Find the NIP header row below it
//  3. Detect the month blocks on the header row or the rows just below it,
//     falling back to the 2024 template positions when the profile allows
//  4. Bound the data rows by the next title row after the header rows
//  5. Fan each employee row out into one record per paid month
func (e *Extractor) ExtractBFKO(g types.Grid) *SheetResult {
	res := newSheetResult(g.Name)

	start := 0
	if e.profile.SectionLabel != "" {
		s, err := scanner.FindSectionStart(g, e.profile.SectionLabel)
		if err != nil {
			return res.structural(err)
		}
		start = s
	}

	if !e.locateHeader(g, start, res) {
		return res
	}

	var blocks []scanner.Block
	dataStart := res.HeaderRow + 1
	for r := res.HeaderRow; r < res.HeaderRow+monthRowSpan && r < len(g.Rows); r++ {
		if blocks = scanner.DetectRepeatingBlocks(g.Rows[r], e.months.Names()); len(blocks) > 0 {
			dataStart = r + 1
			break
		}
	}
	if len(blocks) == 0 {
		if !e.profile.AllowLegacyMonthLayout {
			return res.structural(validation.NewStructural(g.Name, "month columns"))
		}
		blocks = scanner.LegacyMonthBlocks(e.months)
		res.LegacyLayout = true
	}

	res.Blocks = blocks

	// Subtitles between the section title and the header are not section
	// ends; only titles after the header rows are.
	minTitle := e.profile.SectionEndMinLength
	if minTitle <= 0 {
		minTitle = scanner.DefaultSectionEnd.MinTitleLength
	}
	end := scanner.FindSectionEnd(g, dataStart-1, scanner.SectionEnd{MinTitleLength: minTitle})

	meta := ParseBFKOSheetName(g.Name)
	if meta.Year == 0 {
		meta.Year = YearFromText(g.Rows[start].Join(" "))
	}

	keys := NewIDSet()
	res.DataStart, res.DataEnd = dataStart, end
	for i := dataStart; i < end; i++ {
		row := g.Rows[i]
		if row.IsBlank() {
			continue
		}
		if _, reject := e.Reject(row, res.Columns); reject {
			res.Report.Skip()
			continue
		}
		ctx := Context{Sheet: g.Name, Row: i + 1, Year: meta.Year, OrgUnit: meta.Unit}
		records, errs := e.Installments(row, res.Columns, blocks, ctx)
		res.Report.Add(errs...)
		for _, rec := range records {
			if !keys.Claim(rec.NaturalKey()) {
				res.Report.Add(validation.NewDuplicate(g.Name, ctx.Row, config.RoleEmployeeID, rec.NaturalKey()))
				continue
			}
			res.emit(rec, ctx.Row)
		}
	}
	return res
}

// Installments fans one employee row out across the month blocks.
//
// PARAMETERS:
//   - row: the employee row
//   - cm: column roles for the identity columns
//   - blocks: one block per month, value column = amount, aux = paid date
//   - ctx: sheet name, row number, year and fallback unit
//
// RETURNS:
//   - One record per month with a positive amount. A month with an amount but
//     no readable date is kept as unpaid and reported as a warning.
func (e *Extractor) Installments(row types.Row, cm scanner.ColumnMap, blocks []scanner.Block, ctx Context) ([]types.InstallmentRecord, []*validation.RowError) {
	id := e.text(row, cm, config.RoleEmployeeID)
	name := e.text(row, cm, config.RoleEmployeeName)
	position := e.text(row, cm, config.RolePosition)
	stage := NormalizeStage(e.text(row, cm, config.RoleStage))

	unit := e.text(row, cm, config.RoleOrgUnit)
	if unit == "" {
		unit = ctx.OrgUnit
	}

	var records []types.InstallmentRecord
	var errs []*validation.RowError
	for _, b := range blocks {
		amount := normalize.Amount(row.At(b.ValueColumn))
		if amount <= 0 {
			continue
		}

		month := time.Month(b.Index + 1)
		rec := types.InstallmentRecord{
			EmployeeID:   id,
			EmployeeName: name,
			Position:     position,
			OrgUnit:      unit,
			MonthName:    e.months.Name(month),
			Month:        month,
			Year:         ctx.Year,
			Amount:       amount,
			Status:       types.StatusUnpaid,
			Stage:        stage,
			SourceSheet:  ctx.Sheet,
		}

		paid := row.At(b.AuxColumn)
		if !paid.IsEmpty() {
			t, ok := normalize.Date(paid, normalize.DateContext{Month: month, Year: ctx.Year})
			if ok {
				rec.PaidOn = &t
				rec.Status = types.StatusPaid
			} else {
				errs = append(errs, validation.NewUnparseable(ctx.Sheet, ctx.Row, "paid_on_date "+rec.MonthName, paid.Text(), false))
			}
		}
		records = append(records, rec)
	}
	return records, errs
}
