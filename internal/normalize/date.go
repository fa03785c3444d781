package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

// Serial dates outside this window are treated as plain numbers.
const (
	serialMin = 40000
	serialMax = 50000
)

var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var (
	// 2024年1月29日, possibly behind a numeric code: 1212122024年1月29日.
	kanjiDatePattern = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)

	slashDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoDatePattern   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	bareDayPattern   = regexp.MustCompile(`^\d{1,2}$`)

	monthTextPattern = buildMonthTextPattern(IndonesianMonths)
)

func buildMonthTextPattern(table MonthTable) *regexp.Regexp {
	names := make([]string, len(table))
	for i, name := range table {
		names[i] = regexp.QuoteMeta(name)
	}
	return regexp.MustCompile(`(?i)(\d{1,2})\s*(` + strings.Join(names, "|") + `)\s*(\d{4})`)
}

// DateContext supplies the month a bare day number belongs to. The zero
// value disables that rule.
type DateContext struct {
	Month time.Month
	Year  int
}

func (c DateContext) valid() bool {
	return c.Year > 0 && c.Month >= time.January && c.Month <= time.December
}

// Date resolves a cell into a calendar date.
//
// Attempts, in order: typed date cell, 2024年1月29日, DD/MM/YYYY, serial number
// in the sane range, "29 Januari 2024", YYYY-MM-DD, and finally a bare day
// number inside ctx.
func Date(c types.Cell, ctx DateContext) (time.Time, bool) {
	switch c.Kind {
	case types.CellEmpty:
		return time.Time{}, false
	case types.CellDate:
		y, m, d := c.Time.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	case types.CellNumber:
		if t, ok := fromSerial(c.Num); ok {
			return t, true
		}
		return fromBareDay(c.Text(), ctx)
	}
	return DateString(c.Str, ctx)
}

// DateString is Date for raw text.
func DateString(raw string, ctx DateContext) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return time.Time{}, false
	}

	if m := kanjiDatePattern.FindStringSubmatch(s); m != nil {
		return civil(m[1], m[2], m[3])
	}
	if m := slashDatePattern.FindStringSubmatch(s); m != nil {
		return civil(m[3], m[2], m[1])
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if t, ok := fromSerial(f); ok {
			return t, true
		}
	}
	if m := monthTextPattern.FindStringSubmatch(s); m != nil {
		month, _ := IndonesianMonths.Lookup(m[2])
		return civil(m[3], strconv.Itoa(int(month)), m[1])
	}
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return civil(m[1], m[2], m[3])
	}
	return fromBareDay(s, ctx)
}

// DateISO renders Date as YYYY-MM-DD, or "" when unparseable.
func DateISO(c types.Cell, ctx DateContext) string {
	t, ok := Date(c, ctx)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// DatePtr is Date returning nil for null.
func DatePtr(c types.Cell, ctx DateContext) *time.Time {
	t, ok := Date(c, ctx)
	if !ok {
		return nil
	}
	return &t
}

var dateTimeLayouts = []string{
	"02 Jan 2006, 15:04:05",
	"2 Jan 2006, 15:04:05",
	"02 Jan 2006, 15:04",
	"02 Jan 2006 15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// DateTime resolves a transaction timestamp. Serial numbers keep their
// fractional day; anything else falls back to Date at midnight.
func DateTime(c types.Cell) (time.Time, bool) {
	if c.Kind == types.CellNumber {
		if c.Num > serialMin && c.Num < serialMax {
			whole := math.Floor(c.Num)
			secs := math.Round((c.Num - whole) * 86400)
			return serialEpoch.AddDate(0, 0, int(whole)).Add(time.Duration(secs) * time.Second), true
		}
		return time.Time{}, false
	}
	if c.Kind == types.CellString {
		s := strings.Join(strings.Fields(c.Str), " ")
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return Date(c, DateContext{})
}

func fromSerial(f float64) (time.Time, bool) {
	if f <= serialMin || f >= serialMax {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(f)), true
}

func fromBareDay(s string, ctx DateContext) (time.Time, bool) {
	if !ctx.valid() || !bareDayPattern.MatchString(s) {
		return time.Time{}, false
	}
	return civil(strconv.Itoa(ctx.Year), strconv.Itoa(int(ctx.Month)), s)
}

// civil builds a date and rejects values time.Date would roll over
// (31/02 becoming 02/03).
func civil(year, month, day string) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}
