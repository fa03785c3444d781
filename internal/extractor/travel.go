package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/normalize"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/scanner"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/validation"
)

// tripRangePattern is the CC trip date cell: "01/07/2025 - 03/07/2025".
var tripRangePattern = regexp.MustCompile(`^\s*(\d{1,2}/\d{1,2}/\d{4})\s*-\s*(\d{1,2}/\d{1,2}/\d{4})\s*$`)

// Position markers of a CC sheet. Rows after the payment total belong to the
// refund listing; the refund total closes the transaction area.
const (
	ccPaymentTotalLabel = "total payment"
	ccRefundTotalLabel  = "nominal refund"
)

// =============================================================================
// ROW EXTRACTION
// =============================================================================

// Travel extracts one SPPD trip or CC settlement line.
//
// A required date that is missing or unreadable drops the row, since the
// trip duration is derived from it. Other unreadable values are warnings.
func (e *Extractor) Travel(row types.Row, cm scanner.ColumnMap, ctx Context) (*types.TravelTransaction, []*validation.RowError) {
	if e.profile.Kind == config.KindCC {
		return e.ccLine(row, cm, ctx)
	}
	return e.sppdTrip(row, cm, ctx)
}

func (e *Extractor) sppdTrip(row types.Row, cm scanner.ColumnMap, ctx Context) (*types.TravelTransaction, []*validation.RowError) {
	var errs []*validation.RowError

	start, err := e.date(row, cm, config.RoleStartDate, ctx, normalize.DateContext{})
	errs = appendErr(errs, err)
	end, err := e.date(row, cm, config.RoleEndDate, ctx, normalize.DateContext{})
	errs = appendErr(errs, err)
	planned, err := e.date(row, cm, config.RolePlannedPayment, ctx, normalize.DateContext{})
	errs = appendErr(errs, err)
	if hasFatal(errs) {
		return nil, errs
	}

	tripNumber := e.text(row, cm, config.RoleTripNumber)
	full := e.text(row, cm, config.RoleDestination)
	origin, destination := SplitRoute(full)

	tx := &types.TravelTransaction{
		Source:             types.SourceSPPD,
		SequenceNo:         ctx.Sequence,
		TransactionID:      tripNumber,
		TripNumber:         tripNumber,
		TravelerName:       e.text(row, cm, config.RoleTravelerName),
		Origin:             origin,
		Destination:        destination,
		FullDestination:    full,
		StartDate:          start,
		EndDate:            end,
		Amount:             normalize.Amount(cm.Cell(row, config.RoleAmount)),
		Kind:               types.KindPayment,
		Status:             e.profile.DefaultStatus,
		SourceSheet:        ctx.Sheet,
		Reason:             e.text(row, cm, config.RoleReason),
		PlannedPaymentDate: planned,
		BeneficiaryBank:    e.text(row, cm, config.RoleBank),
	}
	return tx, errs
}

func (e *Extractor) ccLine(row types.Row, cm scanner.ColumnMap, ctx Context) (*types.TravelTransaction, []*validation.RowError) {
	var errs []*validation.RowError

	start, end, err := e.tripDates(row, cm, ctx)
	errs = appendErr(errs, err)
	if hasFatal(errs) {
		return nil, errs
	}

	seq := ctx.Sequence
	if c := cm.Cell(row, config.RoleSequence); normalize.IsNumeric(c) {
		seq = int(normalize.Amount(c))
	}

	kind := ctx.Kind
	switch types.TransactionKind(e.text(row, cm, config.RoleTransactionKind)) {
	case types.KindRefund:
		kind = types.KindRefund
	case types.KindPayment:
		kind = types.KindPayment
	}
	if kind == "" {
		kind = types.KindPayment
	}

	full := e.text(row, cm, config.RoleDestination)
	origin, destination := SplitRoute(full)

	tx := &types.TravelTransaction{
		Source:          types.SourceCC,
		SequenceNo:      seq,
		TransactionID:   strings.TrimSuffix(e.text(row, cm, config.RoleBookingID), ".0"),
		TravelerName:    e.text(row, cm, config.RoleTravelerName),
		Origin:          origin,
		Destination:     destination,
		FullDestination: full,
		StartDate:       start,
		EndDate:         end,
		Amount:          normalize.Amount(cm.Cell(row, config.RoleAmount)),
		Kind:            kind,
		Status:          e.profile.DefaultStatus,
		SourceSheet:     ctx.Sheet,
		PersonnelNumber: strings.TrimSuffix(e.text(row, cm, config.RolePersonnelNumber), ".0"),
		TripNumber:      strings.TrimSuffix(e.text(row, cm, config.RoleTripNumber), ".0"),
	}
	return tx, errs
}

// tripDates reads the CC trip period. A mapped start/end column pair wins;
// otherwise the trip date cell holds "start - end" or a single day.
func (e *Extractor) tripDates(row types.Row, cm scanner.ColumnMap, ctx Context) (*time.Time, *time.Time, *validation.RowError) {
	if cm.Has(config.RoleStartDate) {
		start, err := e.date(row, cm, config.RoleStartDate, ctx, normalize.DateContext{})
		if err != nil {
			return nil, nil, err
		}
		end, err := e.date(row, cm, config.RoleEndDate, ctx, normalize.DateContext{})
		return start, end, err
	}

	c := cm.Cell(row, config.RoleTripDate)
	if c.IsEmpty() {
		if e.required(config.RoleTripDate) {
			return nil, nil, validation.NewUnparseable(ctx.Sheet, ctx.Row, config.RoleTripDate, "", true)
		}
		return nil, nil, nil
	}

	if m := tripRangePattern.FindStringSubmatch(c.Text()); m != nil {
		start, ok1 := normalize.DateString(m[1], normalize.DateContext{})
		end, ok2 := normalize.DateString(m[2], normalize.DateContext{})
		if ok1 && ok2 {
			return &start, &end, nil
		}
	} else if t, ok := normalize.Date(c, normalize.DateContext{}); ok {
		return &t, &t, nil
	}
	return nil, nil, validation.NewUnparseable(ctx.Sheet, ctx.Row, config.RoleTripDate, c.Text(), e.required(config.RoleTripDate))
}

// =============================================================================
// SHEET DRIVERS
// =============================================================================

// ExtractSPPD extracts a flat SPPD sheet. Sheets with a default name such as
// "Sheet1" are labelled by each trip's start month instead.
func (e *Extractor) ExtractSPPD(g types.Grid) *SheetResult {
	res := newSheetResult(g.Name)
	if !e.locateHeader(g, 0, res) {
		return res
	}

	generic := IsGenericSheetName(g.Name)
	ids := NewIDSet()
	seq := 0

	res.DataStart, res.DataEnd = res.HeaderRow+1, len(g.Rows)
	for i := res.DataStart; i < res.DataEnd; i++ {
		row := g.Rows[i]
		if row.IsBlank() {
			continue
		}
		if _, reject := e.Reject(row, res.Columns); reject {
			res.Report.Skip()
			continue
		}

		ctx := Context{Sheet: g.Name, Row: i + 1, Sequence: seq + 1}
		tx, errs := e.Travel(row, res.Columns, ctx)
		res.Report.Add(errs...)
		if tx == nil {
			continue
		}
		if !ids.Claim(tx.TransactionID) {
			res.Report.Add(validation.NewDuplicate(g.Name, ctx.Row, config.RoleTripNumber, tx.TransactionID))
			continue
		}
		if generic && tx.StartDate != nil {
			tx.SourceSheet = PeriodLabel(*tx.StartDate)
		}
		seq++
		res.emit(*tx, ctx.Row)
	}
	return res
}

// ExtractCC extracts the transaction area of a CC sheet: payments first,
// then the refund listing after TOTAL PAYMENT, up to NOMINAL REFUND.
// The summary rows below are left to the reconciliation aggregator.
func (e *Extractor) ExtractCC(g types.Grid) *SheetResult {
	res := newSheetResult(g.Name)
	if !e.locateHeader(g, 0, res) {
		return res
	}

	sheet := NormalizeCCSheetName(g.Name)
	ids := NewRefundIDs()
	kind := types.KindPayment
	seq := 0

	res.DataStart, res.DataEnd = res.HeaderRow+1, len(g.Rows)
	for i := res.DataStart; i < len(g.Rows); i++ {
		row := g.Rows[i]
		if row.IsBlank() {
			continue
		}

		joined := normalize.Label(row.Join("|"))
		if strings.Contains(joined, ccRefundTotalLabel) {
			res.DataEnd = i
			break
		}
		if strings.Contains(joined, ccPaymentTotalLabel) {
			kind = types.KindRefund
			res.Report.Skip()
			continue
		}
		if _, reject := e.Reject(row, res.Columns); reject {
			res.Report.Skip()
			continue
		}

		ctx := Context{Sheet: sheet, Row: i + 1, Kind: kind, Sequence: seq + 1}
		tx, errs := e.Travel(row, res.Columns, ctx)
		res.Report.Add(errs...)
		if tx == nil {
			continue
		}
		id, ok := ids.Assign(tx.TransactionID, tx.Kind)
		if !ok {
			res.Report.Add(validation.NewDuplicate(g.Name, ctx.Row, config.RoleBookingID, tx.TransactionID))
			continue
		}
		tx.TransactionID = id
		seq++
		res.emit(*tx, ctx.Row)
	}
	return res
}

// PeriodLabel names a month the way sheets do: "Juli 2025".
func PeriodLabel(t time.Time) string {
	return normalize.IndonesianMonths.Name(t.Month()) + " " + strconv.Itoa(t.Year())
}

func appendErr(errs []*validation.RowError, err *validation.RowError) []*validation.RowError {
	if err == nil {
		return errs
	}
	return append(errs, err)
}

func hasFatal(errs []*validation.RowError) bool {
	for _, err := range errs {
		if err.IsFatal() {
			return true
		}
	}
	return false
}
