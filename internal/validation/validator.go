// =============================================================================
// Finance Sheet Normalizer - Error Taxonomy
// =============================================================================
//
// Extraction problems are collected, not thrown. Each one carries the sheet,
// the 1-based spreadsheet row, the field and the offending value so the batch
// summary can point an operator at the exact cell.
//
// KINDS:
//   StructuralNotFound  - header/section marker absent; the sheet is skipped
//   FieldUnparseable    - amount/date/sub-field failed to parse
//   DuplicateIdentifier - identifier already emitted in this batch
//   RowRejected         - sentinel row or empty key; counted, not reported
//
// SEVERITY:
//   "error"   - the row produced no record and counts as errored
//   "warning" - the row was still emitted with a null/zero field
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an extraction problem.
type Kind int

const (
	StructuralNotFound Kind = iota + 1
	FieldUnparseable
	DuplicateIdentifier
	RowRejected
)

func (k Kind) String() string {
	switch k {
	case StructuralNotFound:
		return "StructuralNotFound"
	case FieldUnparseable:
		return "FieldUnparseable"
	case DuplicateIdentifier:
		return "DuplicateIdentifier"
	case RowRejected:
		return "RowRejected"
	default:
		return "Unknown"
	}
}

// Sentinel errors matching each kind, for errors.Is.
var (
	ErrStructuralNotFound  = errors.New("structure not found")
	ErrFieldUnparseable    = errors.New("field unparseable")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrRowRejected         = errors.New("row rejected")
)

func (k Kind) sentinel() error {
	switch k {
	case StructuralNotFound:
		return ErrStructuralNotFound
	case FieldUnparseable:
		return ErrFieldUnparseable
	case DuplicateIdentifier:
		return ErrDuplicateIdentifier
	case RowRejected:
		return ErrRowRejected
	default:
		return nil
	}
}

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// ROW ERROR
// =============================================================================

// RowError is a single extraction problem.
type RowError struct {
	Kind     Kind
	Severity string

	// Sheet is the sheet name the row belongs to.
	Sheet string

	// Row is the 1-based spreadsheet row number; 0 for sheet-level problems.
	Row int

	Field   string
	Value   string
	Message string
}

// Error implements the error interface.
func (e *RowError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(e.Severity), e.Kind)
	if e.Sheet != "" {
		fmt.Fprintf(&b, " sheet '%s'", e.Sheet)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field '%s'", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value: '%s')", e.Value)
	}
	return b.String()
}

// Unwrap exposes the kind's sentinel error.
func (e *RowError) Unwrap() error {
	return e.Kind.sentinel()
}

// IsFatal reports whether the row was dropped because of this error.
func (e *RowError) IsFatal() bool {
	return e.Severity == SeverityError
}

// NewStructural reports a missing header or section marker.
func NewStructural(sheet, marker string) *RowError {
	return &RowError{
		Kind:     StructuralNotFound,
		Severity: SeverityError,
		Sheet:    sheet,
		Value:    marker,
		Message:  "required marker not found",
	}
}

// NewUnparseable reports a field that could not be parsed. required decides
// whether the row is dropped.
func NewUnparseable(sheet string, row int, field, value string, required bool) *RowError {
	e := &RowError{
		Kind:     FieldUnparseable,
		Severity: SeverityWarning,
		Sheet:    sheet,
		Row:      row,
		Field:    field,
		Value:    value,
		Message:  "value could not be parsed",
	}
	if required {
		e.Severity = SeverityError
		e.Message = "required value could not be parsed"
	}
	return e
}

// NewDuplicate reports an identifier that was already emitted.
func NewDuplicate(sheet string, row int, field, id string) *RowError {
	return &RowError{
		Kind:     DuplicateIdentifier,
		Severity: SeverityError,
		Sheet:    sheet,
		Row:      row,
		Field:    field,
		Value:    id,
		Message:  "identifier already present in this batch",
	}
}

// =============================================================================
// REPORT
// =============================================================================

// Report collects the problems found while extracting one document.
type Report struct {
	Errors  []*RowError
	Skipped int
}

// Add records problems. Nil entries are ignored.
func (r *Report) Add(errs ...*RowError) {
	for _, e := range errs {
		if e != nil {
			r.Errors = append(r.Errors, e)
		}
	}
}

// Skip counts a rejected row.
func (r *Report) Skip() {
	r.Skipped++
}

// Merge folds another report into this one.
func (r *Report) Merge(other Report) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Skipped += other.Skipped
}

// Fatal returns the errors that dropped a row or a sheet.
func (r *Report) Fatal() []*RowError {
	var out []*RowError
	for _, e := range r.Errors {
		if e.IsFatal() {
			out = append(out, e)
		}
	}
	return out
}

// Warnings returns the errors that left a row emitted.
func (r *Report) Warnings() []*RowError {
	var out []*RowError
	for _, e := range r.Errors {
		if !e.IsFatal() {
			out = append(out, e)
		}
	}
	return out
}

// CountByKind tallies errors per kind.
func (r *Report) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, e := range r.Errors {
		counts[e.Kind]++
	}
	return counts
}
