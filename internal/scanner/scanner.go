// =============================================================================
// Finance Sheet Normalizer - Structural Scanner
// =============================================================================
//
// The scanner finds structure inside sheets that have no fixed schema: the
// header row of a table, the row range of a named section, and month-by-month
// column blocks whose positions shift between monthly editions of the same
// report.
//
// Every function is pure over the in-memory grid. Column positions leave this
// package only as a ColumnMap or a []Block; extraction code never indexes
// columns by literal number.
//
// =============================================================================

package scanner

import (
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/normalize"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/validation"
)

// DefaultHeaderWindow is how many rows a header search looks at.
const DefaultHeaderWindow = 10

// =============================================================================
// HEADER ROW
// =============================================================================

// FindHeaderRow returns the first row within the first window rows holding
// every label as a whole cell (case-insensitive). A missing header is a
// StructuralNotFound error; no default layout is assumed.
func FindHeaderRow(g types.Grid, window int, labels ...string) (int, error) {
	return FindHeaderRowFrom(g, 0, window, labels...)
}

// FindHeaderRowFrom is FindHeaderRow starting at row from.
func FindHeaderRowFrom(g types.Grid, from, window int, labels ...string) (int, error) {
	if window <= 0 {
		window = DefaultHeaderWindow
	}
	if from < 0 {
		from = 0
	}
	end := min(from+window, len(g.Rows))
	for i := from; i < end; i++ {
		if rowHasLabels(g.Rows[i], labels) {
			return i, nil
		}
	}
	return -1, validation.NewStructural(g.Name, strings.Join(labels, ", "))
}

func rowHasLabels(row types.Row, labels []string) bool {
	for _, label := range labels {
		if CellIndex(row, label) < 0 {
			return false
		}
	}
	return len(labels) > 0
}

// CellIndex returns the column of the first cell equal to label, or -1.
func CellIndex(row types.Row, label string) int {
	want := normalize.Label(label)
	for i, c := range row {
		if c.IsEmpty() {
			continue
		}
		if normalize.Label(c.Text()) == want {
			return i
		}
	}
	return -1
}

// =============================================================================
// SECTIONS
// =============================================================================

// FindSectionStart returns the first row whose first populated cell contains
// substr (case-insensitive).
func FindSectionStart(g types.Grid, substr string) (int, error) {
	return FindSectionStartFrom(g, 0, substr)
}

// FindSectionStartFrom is FindSectionStart starting at row from.
func FindSectionStartFrom(g types.Grid, from int, substr string) (int, error) {
	for i := max(from, 0); i < len(g.Rows); i++ {
		first, idx := g.Rows[i].FirstNonEmpty()
		if idx < 0 {
			continue
		}
		if normalize.LabelContains(first.Text(), substr) {
			return i, nil
		}
	}
	return -1, validation.NewStructural(g.Name, substr)
}

// SectionEnd is the heuristic for spotting the next section's title row.
type SectionEnd struct {
	// MinTitleLength is the length a first-column text must exceed to be
	// taken as a title rather than a data value.
	MinTitleLength int
}

// DefaultSectionEnd matches the BFKO section titles.
var DefaultSectionEnd = SectionEnd{MinTitleLength: 15}

// FindSectionEnd scans forward from start for a row whose first cell is
// non-empty, non-numeric and longer than the threshold. The returned index
// is exclusive; without such a row the section runs to the end of the sheet.
func FindSectionEnd(g types.Grid, start int, h SectionEnd) int {
	for i := start + 1; i < len(g.Rows); i++ {
		first := g.Rows[i].At(0)
		if first.IsEmpty() || normalize.IsNumeric(first) {
			continue
		}
		if utf8.RuneCountInString(first.Text()) > h.MinTitleLength {
			return i
		}
	}
	return len(g.Rows)
}

// =============================================================================
// REPEATING COLUMN BLOCKS
// =============================================================================

// Block is one repeating column pair, e.g. a month's amount and paid date.
type Block struct {
	Label string

	// Index is the label's position in the list it was detected against.
	Index int

	ValueColumn int
	AuxColumn   int
}

// DetectRepeatingBlocks matches header cells exactly (case-insensitive)
// against labels. Each match yields a block whose value column is the match
// and whose auxiliary column is the next one. Blocks come back in column
// order; a label seen twice keeps its first position.
func DetectRepeatingBlocks(header types.Row, labels []string) []Block {
	folded := make(map[string]int, len(labels))
	for i, label := range labels {
		folded[normalize.Label(label)] = i
	}

	var blocks []Block
	seen := make(map[int]bool)
	for col, c := range header {
		if c.IsEmpty() {
			continue
		}
		idx, ok := folded[normalize.Label(c.Text())]
		if !ok || seen[idx] {
			continue
		}
		seen[idx] = true
		blocks = append(blocks, Block{
			Label:       labels[idx],
			Index:       idx,
			ValueColumn: col,
			AuxColumn:   col + 1,
		})
	}
	return blocks
}

// LegacyMonthBlocks is the column layout of the 2024 BFKO template, where
// January's amount sits in column 7 and every month takes two columns.
//
// It is a compatibility shim for that one template. Callers must only use it
// after DetectRepeatingBlocks found nothing, and must flag that they did.
func LegacyMonthBlocks(months normalize.MonthTable) []Block {
	blocks := make([]Block, 0, len(months))
	for i, name := range months {
		value := 7 + 2*i
		blocks = append(blocks, Block{
			Label:       name,
			Index:       i,
			ValueColumn: value,
			AuxColumn:   value + 1,
		})
	}
	return blocks
}
