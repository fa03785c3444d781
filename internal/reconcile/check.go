package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

// Report is the document-level cross-check of a set of CC sheets.
type Report struct {
	Sheets []types.SheetSummary

	// Total is the sum of every sheet's computed figure.
	Total int64

	// DocumentTotal is the sum of the printed grand totals.
	DocumentTotal int64

	// Expected is the figure the caller checks against; zero means none.
	Expected int64
	Match    bool
}

// Check sums the computed sheet figures and compares them with expected.
// Without an expected figure the printed grand totals are the reference.
func Check(summaries []types.SheetSummary, expected int64) Report {
	total := decimal.Zero
	printed := decimal.Zero
	for _, s := range summaries {
		total = total.Add(decimal.NewFromInt(s.Computed()))
		printed = printed.Add(decimal.NewFromInt(s.DocumentGrandTotal))
	}

	r := Report{
		Sheets:        summaries,
		Total:         total.IntPart(),
		DocumentTotal: printed.IntPart(),
		Expected:      expected,
	}
	if expected != 0 {
		r.Match = total.Equal(decimal.NewFromInt(expected))
	} else {
		r.Match = total.Equal(printed)
	}
	return r
}

// Mismatches returns the sheets whose printed grand total is missing or
// disagrees with the computed figure.
func (r Report) Mismatches() []types.SheetSummary {
	var out []types.SheetSummary
	for _, s := range r.Sheets {
		if !s.Matches() {
			out = append(out, s)
		}
	}
	return out
}

// RefundDrift returns the sheets whose refund listing does not add up to the
// printed refund total. Sheets without a listing are not judged.
func (r Report) RefundDrift() []types.SheetSummary {
	var out []types.SheetSummary
	for _, s := range r.Sheets {
		if len(s.RefundItems) > 0 && s.RefundItemsTotal() != s.RefundTotal {
			out = append(out, s)
		}
	}
	return out
}
