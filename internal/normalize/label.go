package normalize

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Label folds a header or marker label for comparison: NFKC, collapsed
// whitespace, lower case. Full-width digits and non-breaking spaces that
// leak in from copy-pasted templates compare equal to their ASCII forms.
func Label(s string) string {
	s = norm.NFKC.String(s)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// LabelEqual compares two labels after folding.
func LabelEqual(a, b string) bool {
	return Label(a) == Label(b)
}

// LabelContains reports whether s contains substr after folding both.
func LabelContains(s, substr string) bool {
	return strings.Contains(Label(s), Label(substr))
}

// =============================================================================
// MONTH TABLE
// =============================================================================

// MonthTable maps month names to calendar months. Index 0 is January.
type MonthTable [12]string

// IndonesianMonths is the month-name table every source document uses.
var IndonesianMonths = MonthTable{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// Lookup resolves a month name (case-insensitive, exact).
func (m MonthTable) Lookup(name string) (time.Month, bool) {
	folded := Label(name)
	for i, candidate := range m {
		if Label(candidate) == folded {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// Name returns the table's name for a calendar month.
func (m MonthTable) Name(month time.Month) string {
	if month < time.January || month > time.December {
		return ""
	}
	return m[month-1]
}

// Names returns the table as a slice, January first.
func (m MonthTable) Names() []string {
	return append([]string(nil), m[:]...)
}
