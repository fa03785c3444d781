package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/normalize"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

var (
	trailingYearPattern = regexp.MustCompile(`(\d{4})\s*$`)
	anyYearPattern      = regexp.MustCompile(`\b(20\d{2})\b`)
	uidUnitPattern      = regexp.MustCompile(`(?i)\bUID\s+([A-Za-z]+)`)
	serviceSheetPattern = regexp.MustCompile(`(?i)^(.+?)\s*-\s*(FL|HL)\s*$`)
	genericSheetPattern = regexp.MustCompile(`(?i)^sheet\s*\d*$`)
	stagePattern        = regexp.MustCompile(`(?i)angsuran\s*ke\s*-?\s*(\d+)`)
	ccYearPattern       = regexp.MustCompile(`^\s*[-_ ]*(\d{4}|\d{2})\b`)
	ccCardPattern       = regexp.MustCompile(`(\d{4})\s*$`)
)

// BFKOSheet is what a BFKO sheet name says about its contents, e.g.
// "34 UID SULSELRABAR_2024".
type BFKOSheet struct {
	Year int
	Unit string
}

// ParseBFKOSheetName reads the year suffix and the UID unit.
func ParseBFKOSheetName(name string) BFKOSheet {
	var meta BFKOSheet
	if m := trailingYearPattern.FindStringSubmatch(name); m != nil {
		meta.Year, _ = strconv.Atoi(m[1])
	}
	if m := uidUnitPattern.FindStringSubmatch(name); m != nil {
		meta.Unit = strings.ToUpper(m[1])
	}
	return meta
}

// YearFromText finds the first 20xx year in free text.
func YearFromText(s string) int {
	m := anyYearPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}

// ServiceFeeSheet is the period and service type encoded in a Service Fee
// sheet name such as "Juli 2025 - HL".
type ServiceFeeSheet struct {
	Period      string
	ServiceType types.ServiceType
}

// ParseServiceFeeSheetName recognises "<period> - HL" (hotel) and
// "<period> - FL" (flight).
func ParseServiceFeeSheetName(name string) (ServiceFeeSheet, bool) {
	m := serviceSheetPattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return ServiceFeeSheet{}, false
	}
	sheet := ServiceFeeSheet{Period: strings.TrimSpace(m[1]), ServiceType: types.ServiceHotel}
	if strings.EqualFold(m[2], "FL") {
		sheet.ServiceType = types.ServiceFlight
	}
	return sheet, true
}

// IsGenericSheetName reports default names like "Sheet1" that carry no
// period information.
func IsGenericSheetName(name string) bool {
	return genericSheetPattern.MatchString(strings.TrimSpace(name))
}

// NormalizeCCSheetName rewrites CC sheet names to "<Month> <Year> - CC <card>",
// so "JULI 25 5657" and "Juli 2025 - CC 5657" name the same sheet. Names
// without a recognisable month come back unchanged.
func NormalizeCCSheetName(name string) string {
	folded := strings.ToLower(name)
	for i, month := range normalize.IndonesianMonths {
		pos := strings.Index(folded, strings.ToLower(month))
		if pos < 0 {
			continue
		}
		after := name[pos+len(month):]
		ym := ccYearPattern.FindStringSubmatchIndex(after)
		if ym == nil {
			return name
		}
		year := after[ym[2]:ym[3]]
		if len(year) == 2 {
			year = "20" + year
		}
		label := normalize.IndonesianMonths[i] + " " + year

		rest := after[ym[1]:]
		if cm := ccCardPattern.FindStringSubmatch(rest); cm != nil {
			label += " - CC " + cm[1]
		}
		return label
	}
	return name
}

// NormalizeStage tidies the installment stage text: "Angsuran Ke - 5"
// becomes "Angsuran Ke-5" and "selesai" becomes "SELESAI".
func NormalizeStage(s string) string {
	s = strings.TrimSpace(s)
	if m := stagePattern.FindStringSubmatch(s); m != nil {
		return "Angsuran Ke-" + m[1]
	}
	if strings.EqualFold(s, "selesai") {
		return "SELESAI"
	}
	return s
}

// SplitRoute splits "Makassar - Jakarta" into origin and destination. Text
// without the separator is all destination.
func SplitRoute(s string) (origin, destination string) {
	s = strings.TrimSpace(s)
	if before, after, ok := strings.Cut(s, " - "); ok {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return "", s
}
