package normalize

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

func TestAmountString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{"comma groups with decimals", "300,000,000.00", 300000000},
		{"smaller comma decimal", "4,710,842.00", 4710842},
		{"plain two decimals", "4239758.50", 4239758},
		{"dot grouped", "3.734.355", 3734355},
		{"comma grouped", "3,734,355", 3734355},
		{"dot groups with decimal comma", "1.500.000,00", 1500000},
		{"rupiah prefix decimal comma", "Rp 3.734.355,50", 3734355},
		{"plain digits", "4239758", 4239758},
		{"with spaces", " 1 250 000 ", 1250000},
		{"rupiah prefix dot grouped", "Rp 3.734.355", 3734355},
		{"rupiah prefix comma decimal", "Rp300,000,000.00", 300000000},
		{"dash sentinel", "-", 0},
		{"empty", "", 0},
		{"negative text keeps magnitude", "-500", 500},
		{"garbage", "n/a", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AmountString(tt.raw))
		})
	}
}

func TestAmountCell(t *testing.T) {
	assert.Equal(t, int64(4239758), Amount(types.NumberCell(4239758)))
	assert.Equal(t, int64(1500), Amount(types.NumberCell(1500.75)))
	assert.Equal(t, int64(500), Amount(types.NumberCell(-500)))
	assert.Equal(t, int64(0), Amount(types.Empty))
	assert.Equal(t, int64(3734355), Amount(types.StringCell("3.734.355")))
}

func TestAmountIdempotent(t *testing.T) {
	samples := []string{
		"300,000,000.00", "3.734.355", "3,734,355", "4239758", "-", "",
		"Rp 12.500", "1,234.56", "abc123def", "0", "999",
	}
	for _, raw := range samples {
		first := AmountString(raw)
		assert.Equal(t, first, AmountString(strconv.FormatInt(first, 10)), "input %q", raw)
	}
}

func TestSummaryAmount(t *testing.T) {
	assert.Equal(t, int64(0), SummaryAmount(types.StringCell("-")))
	assert.Equal(t, int64(7500), SummaryAmount(types.StringCell("7,500")))
	assert.Equal(t, int64(12243872), SummaryAmount(types.NumberCell(12243872)))
	assert.Equal(t, int64(600000), SummaryAmount(types.StringCell("600,000.00")))
}

func TestDateString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ctx  DateContext
		want string
	}{
		{"indonesian month text", "29 Januari 2024", DateContext{}, "2024-01-29"},
		{"indonesian month lower case", "5 agustus 2025", DateContext{}, "2025-08-05"},
		{"slash day first", "29/01/2024", DateContext{}, "2024-01-29"},
		{"kanji encoded", "2024年1月29日", DateContext{}, "2024-01-29"},
		{"kanji behind code", "1212122024年1月29日", DateContext{}, "2024-01-29"},
		{"serial as text", "45000", DateContext{}, "2023-03-15"},
		{"iso passthrough", "2025-07-01", DateContext{}, "2025-07-01"},
		{"bare day with context", "15", DateContext{Month: time.March, Year: 2024}, "2024-03-15"},
		{"bare day without context", "15", DateContext{}, ""},
		{"impossible calendar date", "31/02/2024", DateContext{}, ""},
		{"serial out of range", "12345", DateContext{}, ""},
		{"garbage", "belum bayar", DateContext{}, ""},
		{"dash", "-", DateContext{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DateString(tt.raw, tt.ctx)
			if tt.want == "" {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestDateCell(t *testing.T) {
	assert.Equal(t, "2023-03-15", DateISO(types.NumberCell(45000), DateContext{}))
	assert.Equal(t, "2024-01-15", DateISO(types.NumberCell(45306.75), DateContext{}))
	assert.Equal(t, "", DateISO(types.NumberCell(4239758), DateContext{}))
	assert.Equal(t, "", DateISO(types.Empty, DateContext{}))

	typed := time.Date(2025, time.July, 4, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-07-04", DateISO(types.DateCell(typed), DateContext{}))

	assert.Nil(t, DatePtr(types.StringCell("n/a"), DateContext{}))
}

func TestDateTime(t *testing.T) {
	got, ok := DateTime(types.StringCell("01 Jul 2025, 17:08:28"))
	assert.True(t, ok)
	assert.Equal(t, "2025-07-01 17:08:28", got.Format("2006-01-02 15:04:05"))

	got, ok = DateTime(types.NumberCell(45000.5))
	assert.True(t, ok)
	assert.Equal(t, "2023-03-15 12:00:00", got.Format("2006-01-02 15:04:05"))

	got, ok = DateTime(types.StringCell("29/01/2024"))
	assert.True(t, ok)
	assert.Equal(t, "2024-01-29", got.Format("2006-01-02"))

	_, ok = DateTime(types.StringCell("tomorrow"))
	assert.False(t, ok)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "trip number", Label("  Trip  Number "))
	assert.True(t, LabelEqual("BOOKING ID", "Booking ID"))
	assert.True(t, LabelContains("Angsuran Bulanan BFKO 2024", "angsuran bulanan"))
	assert.Equal(t, "123", Label("１２３"))
}

func TestMonthTable(t *testing.T) {
	m, ok := IndonesianMonths.Lookup("AGUSTUS")
	assert.True(t, ok)
	assert.Equal(t, time.August, m)

	_, ok = IndonesianMonths.Lookup("August")
	assert.False(t, ok)

	assert.Equal(t, "Desember", IndonesianMonths.Name(time.December))
	assert.Equal(t, "", IndonesianMonths.Name(0))
	assert.Len(t, IndonesianMonths.Names(), 12)
}
