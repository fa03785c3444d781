// =============================================================================
// Finance Sheet Normalizer - Record Extractor
// =============================================================================
//
// The extractor turns data rows into canonical records. One parameterized
// Extractor serves all four report templates; what differs between them
// (column names, sentinel strings, month table, cleanup rules) lives in the
// config.SourceProfile it is built from.
//
// ROW RULES:
//   - Flat sources (SPPD, CC, Service Fee): at most one record per row.
//   - BFKO: up to one record per detected month block, each month judged on
//     its own.
//   - A row is rejected (counted, not reported) when its primary key is
//     empty, its first populated cell contains a reject marker, or the key
//     does not have the shape the source uses.
//
// Column positions arrive as a scanner.ColumnMap; nothing here indexes a
// column by literal number.
//
// =============================================================================

package extractor

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/normalize"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/scanner"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/textparse"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/validation"
)

// Context carries the per-row facts that do not live in the row itself.
type Context struct {
	// Sheet is the source sheet label written into records.
	Sheet string

	// Row is the 1-based spreadsheet row number, for error reports.
	Row int

	// Year and OrgUnit come from the BFKO sheet name.
	Year    int
	OrgUnit string

	// Kind is the transaction kind implied by the row's position in a CC
	// sheet, used when the sheet has no transaction type column.
	Kind types.TransactionKind

	// ServiceType is the Service Fee sheet's hotel/flight discriminant.
	ServiceType types.ServiceType

	// Sequence is the running record number, used when the sheet has no
	// sequence column.
	Sequence int
}

// Extractor extracts records for one source profile.
type Extractor struct {
	profile *config.SourceProfile
	cleaner *Cleaner
	months  normalize.MonthTable
	hotels  *textparse.HotelParser
	vatRate decimal.Decimal
	markers []string
}

// New builds an extractor from a profile.
func New(profile *config.SourceProfile) (*Extractor, error) {
	cleaner, err := NewCleaner(profile.Cleanup)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", profile.Name, err)
	}

	e := &Extractor{
		profile: profile,
		cleaner: cleaner,
		months:  normalize.IndonesianMonths,
		hotels:  textparse.NewHotelParser(profile.HotelOverrides),
		vatRate: decimal.Zero,
	}

	if len(profile.MonthNames) == 12 {
		copy(e.months[:], profile.MonthNames)
	}

	if profile.VATRate != "" {
		rate, err := decimal.NewFromString(profile.VATRate)
		if err != nil {
			return nil, fmt.Errorf("profile %s: invalid vat_rate %q: %w", profile.Name, profile.VATRate, err)
		}
		e.vatRate = rate
	}

	for _, m := range profile.RejectMarkers {
		e.markers = append(e.markers, normalize.Label(m))
	}
	return e, nil
}

// Profile returns the profile the extractor was built from.
func (e *Extractor) Profile() *config.SourceProfile {
	return e.profile
}

// text returns a role's cell text after cleanup.
func (e *Extractor) text(row types.Row, cm scanner.ColumnMap, role string) string {
	return strings.TrimSpace(e.cleaner.Clean(role, cm.Text(row, role)))
}

// =============================================================================
// ROW REJECTION
// =============================================================================

// Reject decides whether a row is noise. The reason is for debug logs only.
func (e *Extractor) Reject(row types.Row, cm scanner.ColumnMap) (string, bool) {
	if first, idx := row.FirstNonEmpty(); idx >= 0 && !normalize.IsNumeric(first) {
		folded := normalize.Label(first.Text())
		for _, marker := range e.markers {
			if strings.Contains(folded, marker) {
				return "marker row: " + first.Text(), true
			}
		}
	}

	key := e.text(row, cm, e.profile.PrimaryKey)
	if key == "" {
		return "empty " + e.profile.PrimaryKey, true
	}
	if !e.keyHasShape(key) {
		return "malformed " + e.profile.PrimaryKey + ": " + key, true
	}
	return "", false
}

// keyHasShape checks the identifier format each source uses: NIPs start
// with a digit, CC booking IDs contain one, Service Fee booking IDs are all
// digits.
func (e *Extractor) keyHasShape(key string) bool {
	switch e.profile.Kind {
	case config.KindBFKO:
		return unicode.IsDigit(rune(key[0]))
	case config.KindCC:
		return strings.IndexFunc(key, unicode.IsDigit) >= 0
	case config.KindServiceFee:
		return isDigits(strings.TrimSuffix(key, ".0"))
	default:
		return true
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// required reports whether a role is in the profile's required fields.
func (e *Extractor) required(role string) bool {
	for _, r := range e.profile.RequiredFields {
		if r == role {
			return true
		}
	}
	return false
}

// date parses a role's cell. A populated cell that does not parse yields a
// FieldUnparseable error, fatal for required roles; an empty cell is null,
// which is also fatal for required roles.
func (e *Extractor) date(row types.Row, cm scanner.ColumnMap, role string, ctx Context, dctx normalize.DateContext) (*time.Time, *validation.RowError) {
	c := cm.Cell(row, role)
	if c.IsEmpty() {
		if e.required(role) {
			return nil, validation.NewUnparseable(ctx.Sheet, ctx.Row, role, "", true)
		}
		return nil, nil
	}
	t, ok := normalize.Date(c, dctx)
	if !ok {
		return nil, validation.NewUnparseable(ctx.Sheet, ctx.Row, role, c.Text(), e.required(role))
	}
	return &t, nil
}

// =============================================================================
// IDENTIFIER SETS
// =============================================================================

// IDSet rejects identifiers already emitted within a sheet or document.
type IDSet struct {
	seen map[string]bool
}

// NewIDSet returns an empty set.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]bool)}
}

// Claim records id and reports whether it was new.
func (s *IDSet) Claim(id string) bool {
	if s.seen[id] {
		return false
	}
	s.seen[id] = true
	return true
}

// RefundIDs assigns CC identifiers. Payments keep their booking ID; refunds
// take the first free of X-REFUND, X-REFUND-2, X-REFUND-3 and so on. A payment
// whose ID is already taken is a true duplicate.
type RefundIDs struct {
	ids *IDSet
}

// NewRefundIDs returns an empty assigner.
func NewRefundIDs() *RefundIDs {
	return &RefundIDs{ids: NewIDSet()}
}

// Assign returns the identifier to store, or false for a duplicate payment.
func (r *RefundIDs) Assign(id string, kind types.TransactionKind) (string, bool) {
	if kind != types.KindRefund {
		return id, r.ids.Claim(id)
	}
	candidate := id + "-REFUND"
	for n := 2; !r.ids.Claim(candidate); n++ {
		candidate = fmt.Sprintf("%s-REFUND-%d", id, n)
	}
	return candidate, true
}
