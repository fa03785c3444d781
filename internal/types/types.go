// =============================================================================
// Finance Sheet Normalizer - Shared Types
// =============================================================================
//
// This package holds the types shared by every stage of the pipeline so that
// the scanner, extractor, aggregator and storage packages never import each
// other:
//   - the in-memory grid (Cell, Row, Grid, Workbook)
//   - the canonical records produced by extraction (records.go)
//
// =============================================================================

package types

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// CELL VALUES
// =============================================================================

// CellKind discriminates the value held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellDate
)

// Cell is a single heterogeneous spreadsheet value.
//
// Numbers keep their raw text in Str so long identifiers (18-digit NIPs,
// booking IDs) survive without float rounding.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Time time.Time
}

// Empty is the zero cell.
var Empty = Cell{}

// StringCell wraps a text value. Blank text becomes an empty cell.
func StringCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Empty
	}
	return Cell{Kind: CellString, Str: s}
}

// NumberCell wraps a numeric value.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Num: f, Str: strconv.FormatFloat(f, 'f', -1, 64)}
}

// DateCell wraps an already-typed date value.
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Time: t, Str: t.Format("2006-01-02")}
}

// ParseCell classifies raw text read from a workbook: anything that parses as
// a plain decimal number becomes a number cell, everything else stays text.
func ParseCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Empty
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && isPlainNumber(trimmed) {
		return Cell{Kind: CellNumber, Num: f, Str: trimmed}
	}
	return Cell{Kind: CellString, Str: raw}
}

// isPlainNumber rejects forms ParseFloat accepts but spreadsheets never
// store as numbers ("Inf", "NaN", "1e5", hex).
func isPlainNumber(s string) bool {
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return true
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty || (c.Kind == CellString && strings.TrimSpace(c.Str) == "")
}

// IsNumber reports whether the cell holds a number.
func (c Cell) IsNumber() bool {
	return c.Kind == CellNumber
}

// Text returns the trimmed textual form of the cell.
func (c Cell) Text() string {
	switch c.Kind {
	case CellEmpty:
		return ""
	case CellNumber:
		if c.Str != "" {
			return strings.TrimSpace(c.Str)
		}
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellDate:
		return c.Time.Format("2006-01-02")
	default:
		return strings.TrimSpace(c.Str)
	}
}

// =============================================================================
// ROWS, GRIDS, WORKBOOKS
// =============================================================================

// Row is one spreadsheet row, column 0 first.
type Row []Cell

// At returns the cell at column i, or an empty cell when out of range.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Empty
	}
	return r[i]
}

// FirstNonEmpty returns the first populated cell and its column, or -1.
func (r Row) FirstNonEmpty() (Cell, int) {
	for i, c := range r {
		if !c.IsEmpty() {
			return c, i
		}
	}
	return Empty, -1
}

// IsBlank reports whether every cell in the row is empty.
func (r Row) IsBlank() bool {
	_, idx := r.FirstNonEmpty()
	return idx < 0
}

// Join concatenates the textual form of all cells with sep.
func (r Row) Join(sep string) string {
	parts := make([]string, len(r))
	for i, c := range r {
		parts[i] = c.Text()
	}
	return strings.Join(parts, sep)
}

// Grid is one sheet held fully in memory.
type Grid struct {
	// Name is the sheet name as it appears in the workbook.
	Name string

	// Rows are the sheet rows; row index 0 is spreadsheet row 1.
	Rows []Row
}

// Row returns row i, or nil when out of range.
func (g Grid) Row(i int) Row {
	if i < 0 || i >= len(g.Rows) {
		return nil
	}
	return g.Rows[i]
}

// Workbook is a source document: one or more sheets.
type Workbook struct {
	Path   string
	Sheets []Grid
}

// Sheet looks a sheet up by name.
func (w Workbook) Sheet(name string) (Grid, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Grid{}, false
}

// RowOf builds a row from Go values: strings become text cells, integers and
// floats number cells, time.Time date cells and nil an empty cell.
func RowOf(values ...any) Row {
	row := make(Row, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil:
			row[i] = Empty
		case string:
			row[i] = StringCell(val)
		case int:
			row[i] = NumberCell(float64(val))
		case int64:
			row[i] = NumberCell(float64(val))
		case float64:
			row[i] = NumberCell(val)
		case time.Time:
			row[i] = DateCell(val)
		case Cell:
			row[i] = val
		default:
			row[i] = Empty
		}
	}
	return row
}
