// Package normalize converts raw spreadsheet cells into canonical amounts
// and dates.
//
// Every function here is pure and total: malformed input yields zero or a
// null date, never an error or panic.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

var (
	// 300,000,000.00 and 4239758.50: two-decimal suffix, optional comma groups.
	commaDecimalPattern = regexp.MustCompile(`^[\d,]+\.\d{2}$`)

	// 3.734.355: dot-grouped thousands, no decimals.
	dotGroupedPattern = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

	// 1.500.000,00: dot-grouped thousands with a decimal comma.
	dotDecimalPattern = regexp.MustCompile(`^\d{1,3}(\.\d{3})+,\d{2}$`)

	// 3,734,355: comma-grouped thousands only.
	commaGroupedPattern = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)

	currencyPrefixPattern = regexp.MustCompile(`(?i)^(rp\.?|idr)`)
	nonDigitPattern       = regexp.MustCompile(`\D`)
)

// Amount returns the whole-rupiah amount held by a cell.
func Amount(c types.Cell) int64 {
	switch c.Kind {
	case types.CellEmpty, types.CellDate:
		return 0
	case types.CellNumber:
		return fromFloat(c.Num)
	default:
		return AmountString(c.Str)
	}
}

// AmountString parses a textual amount. The pattern order matters: stripping
// every non-digit from "300,000,000.00" would yield a value 100x too large.
func AmountString(raw string) int64 {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return 0
	}
	s = strings.ReplaceAll(s, " ", "")
	s = currencyPrefixPattern.ReplaceAllString(s, "")
	if s == "" || s == "-" {
		return 0
	}

	switch {
	case commaDecimalPattern.MatchString(s):
		s = strings.ReplaceAll(s[:len(s)-3], ",", "")
	case dotDecimalPattern.MatchString(s):
		s = strings.ReplaceAll(s[:len(s)-3], ".", "")
	case dotGroupedPattern.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	case commaGroupedPattern.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	default:
		s = nonDigitPattern.ReplaceAllString(s, "")
	}
	return parseDigits(s)
}

// SummaryAmount is the looser rule used for printed summary cells: a dash or
// blank is zero, numbers pass through, anything else keeps only its digits.
func SummaryAmount(c types.Cell) int64 {
	switch c.Kind {
	case types.CellNumber:
		return fromFloat(c.Num)
	case types.CellString:
		s := strings.TrimSpace(c.Str)
		if s == "" || s == "-" {
			return 0
		}
		if commaDecimalPattern.MatchString(strings.ReplaceAll(s, " ", "")) {
			return AmountString(s)
		}
		return parseDigits(nonDigitPattern.ReplaceAllString(s, ""))
	default:
		return 0
	}
}

// IsNumeric reports whether the cell is a number or numeric text.
func IsNumeric(c types.Cell) bool {
	if c.Kind == types.CellNumber {
		return true
	}
	if c.Kind != types.CellString {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64)
	return err == nil
}

func parseDigits(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func fromFloat(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Abs(math.Trunc(f))
	if f > math.MaxInt64/2 {
		return 0
	}
	return int64(f)
}
