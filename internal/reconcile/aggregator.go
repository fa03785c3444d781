// =============================================================================
// Finance Sheet Normalizer - Reconciliation Aggregator
// =============================================================================
//
// A CC sheet prints its own totals below the transactions:
//
//	TOTAL PAYMENT            (A)   gross payments, followed by the refund listing
//	NOMINAL REFUND           (B)   refund total, closes the listing
//	BIAYA PAYMENT/VIA TRANSFER     transfer fee
//	IURAN TAHUNAN                  annual card fee
//	BIAYA ADM & BUNGA              admin and interest fee
//	TOTAL (A-B+...)                the document's grand total
//
// AggregateSheet folds the rows once, in order, into a types.SheetSummary.
// The printed grand total is kept as printed; whether it agrees with the
// computed figure is for the caller to judge.
//
// =============================================================================

package reconcile

import (
	"strings"
	"unicode"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/normalize"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/scanner"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

// =============================================================================
// LAYOUT
// =============================================================================

// Layout says where values and refund listing columns sit.
type Layout struct {
	// ValueColumn is read when no cell in the search window qualifies.
	ValueColumn int

	// SearchFrom and SearchTo (inclusive) bound the scan for the first
	// numeric cell above MinValue on a label row.
	SearchFrom int
	SearchTo   int
	MinValue   int64

	// Refund listing columns.
	SequenceColumn int
	IDColumn       int
	NameColumn     int
	AmountColumn   int
}

// DefaultLayout is the CC template layout, for sheets whose header could not
// be mapped. The template leaves column A empty, so the listing starts in
// column B.
func DefaultLayout() Layout {
	return Layout{
		ValueColumn:    8,
		SearchFrom:     7,
		SearchTo:       10,
		MinValue:       1000,
		SequenceColumn: 1,
		IDColumn:       2,
		NameColumn:     3,
		AmountColumn:   8,
	}
}

// LayoutFromColumns builds a layout from a mapped CC header. The profile's
// summary settings fill in what the header cannot say; the amount column is
// always inside the search window.
func LayoutFromColumns(cm scanner.ColumnMap, summary config.SummaryLayout) Layout {
	l := DefaultLayout()
	if summary.SearchTo > 0 {
		l.ValueColumn = summary.ValueColumn
		l.SearchFrom = summary.SearchFrom
		l.SearchTo = summary.SearchTo
		l.AmountColumn = summary.ValueColumn
	}
	if summary.MinValue > 0 {
		l.MinValue = summary.MinValue
	}

	if idx, ok := cm.Index(config.RoleAmount); ok {
		l.ValueColumn = idx
		l.AmountColumn = idx
		l.SearchFrom = min(l.SearchFrom, idx)
		l.SearchTo = max(l.SearchTo, idx)
	}
	if idx, ok := cm.Index(config.RoleSequence); ok {
		l.SequenceColumn = idx
	}
	if idx, ok := cm.Index(config.RoleBookingID); ok {
		l.IDColumn = idx
	}
	if idx, ok := cm.Index(config.RoleTravelerName); ok {
		l.NameColumn = idx
	}
	return l
}

// value reads a label row's figure: the first numeric cell above MinValue
// in the search window, else the value column under the summary rules.
func (l Layout) value(row types.Row) int64 {
	for col := l.SearchFrom; col <= l.SearchTo; col++ {
		c := row.At(col)
		if !normalize.IsNumeric(c) {
			continue
		}
		if v := normalize.SummaryAmount(c); v > l.MinValue {
			return v
		}
	}
	return normalize.SummaryAmount(row.At(l.ValueColumn))
}

// =============================================================================
// AGGREGATION
// =============================================================================

type state int

const (
	outside state = iota
	inRefundListing
)

type bucket int

const (
	bucketNone bucket = iota
	bucketGross
	bucketRefund
	bucketTransfer
	bucketAnnual
	bucketAdmin
	bucketGrandTotal
)

// labelRules are checked in order against the row joined with "|"; the first
// match wins.
var labelRules = []struct {
	labels []string
	bucket bucket
}{
	{[]string{"total payment"}, bucketGross},
	{[]string{"nominal refund"}, bucketRefund},
	{[]string{"biaya payment", "via transfer"}, bucketTransfer},
	{[]string{"iuran tahunan"}, bucketAnnual},
	{[]string{"biaya adm", "adm & bunga"}, bucketAdmin},
	{[]string{"total (a-b", "total(a-b"}, bucketGrandTotal},
}

func classify(row types.Row) bucket {
	joined := normalize.Label(row.Join("|"))
	for _, rule := range labelRules {
		for _, label := range rule.labels {
			if strings.Contains(joined, label) {
				return rule.bucket
			}
		}
	}
	return bucketNone
}

// AggregateSheet folds a CC sheet's rows into its reconciliation buckets.
//
// PARAMETERS:
//   - name: the sheet label written into the summary
//   - rows: all rows of the sheet, row 0 being spreadsheet row 1
//   - layout: value and refund listing columns
//
// RETURNS:
//   - The summary. Buckets without a label row stay zero and HasGrandTotal
//     is false when no grand total row was printed.
func AggregateSheet(name string, rows []types.Row, layout Layout) types.SheetSummary {
	s := types.SheetSummary{SourceSheet: name}
	st := outside

	for i, row := range rows {
		if row.IsBlank() {
			continue
		}

		switch classify(row) {
		case bucketGross:
			s.GrossPaymentTotal = layout.value(row)
			st = inRefundListing
		case bucketRefund:
			s.RefundTotal = layout.value(row)
			st = outside
		case bucketTransfer:
			s.TransferFee = layout.value(row)
		case bucketAnnual:
			s.AnnualFee = layout.value(row)
		case bucketAdmin:
			s.AdminInterestFee = layout.value(row)
		case bucketGrandTotal:
			s.DocumentGrandTotal = layout.value(row)
			s.HasGrandTotal = true
		default:
			if st == inRefundListing {
				if item, ok := layout.refundItem(row, i+1); ok {
					s.RefundItems = append(s.RefundItems, item)
				}
			}
		}
	}
	return s
}

// refundItem accepts a listing row with a numeric sequence, an identifier
// holding a digit and a positive amount.
func (l Layout) refundItem(row types.Row, rowNum int) (types.RefundItem, bool) {
	if !normalize.IsNumeric(row.At(l.SequenceColumn)) {
		return types.RefundItem{}, false
	}
	id := strings.TrimSuffix(row.At(l.IDColumn).Text(), ".0")
	if strings.IndexFunc(id, unicode.IsDigit) < 0 {
		return types.RefundItem{}, false
	}
	amount := normalize.SummaryAmount(row.At(l.AmountColumn))
	if amount <= 0 {
		return types.RefundItem{}, false
	}
	return types.RefundItem{
		Row:       rowNum,
		BookingID: id,
		Name:      row.At(l.NameColumn).Text(),
		Amount:    amount,
	}, true
}
