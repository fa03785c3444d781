package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

func records() []types.Record {
	return []types.Record{
		types.ServiceFeeTransaction{
			BookingID: "1", ServiceType: types.ServiceHotel, ServiceFee: 10000, VAT: 1100,
			Hotel: &types.HotelFields{HotelName: "Hotel Santika Palu", RoomType: "Superior Twin Bed 3"},
			SourceSheet: "Juli 2025 - HL",
		},
		types.ServiceFeeTransaction{
			BookingID: "2", ServiceType: types.ServiceFlight, ServiceFee: 25000, VAT: 2750,
			Flight: &types.FlightFields{Route: "UPG-CGK", Pax: 2},
			SourceSheet: "Juli 2025 - FL",
		},
		types.SheetSummary{SourceSheet: "Juli 2025", GrossPaymentTotal: 100},
	}
}

func TestGroupUnionsColumns(t *testing.T) {
	tables := Group(records())
	require.Len(t, tables, 2)
	assert.Equal(t, types.TableSummaries, tables[0].Name)
	assert.Equal(t, types.TableServiceFees, tables[1].Name)

	fees := tables[1]
	assert.Contains(t, fees.Columns, "hotel_name")
	assert.Contains(t, fees.Columns, "route")
	require.Len(t, fees.Rows, 2)

	col := func(name string) int {
		for i, c := range fees.Columns {
			if c == name {
				return i
			}
		}
		t.Fatalf("column %s missing", name)
		return -1
	}
	assert.Equal(t, "Hotel Santika Palu", fees.Rows[0][col("hotel_name")])
	assert.Equal(t, "", fees.Rows[0][col("route")])
	assert.Equal(t, "UPG-CGK", fees.Rows[1][col("route")])
	assert.Equal(t, "2750", fees.Rows[1][col("vat")])
	assert.Equal(t, "false", fees.Rows[1][col("needs_review")])
	assert.Equal(t, "", fees.Rows[1][col("transaction_time")])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	table := Table{Name: "x", Columns: []string{"a", "b"}, Rows: [][]string{{"1", "Makassar, Sulsel"}}}
	require.NoError(t, WriteCSV(&buf, table, DefaultOptions()))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
	assert.Equal(t, "a,b\n1,\"Makassar, Sulsel\"\n", string(buf.Bytes()[len(utf8BOM):]))

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, table, Options{Delimiter: ';'}))
	assert.Equal(t, "a;b\n1;Makassar, Sulsel\n", buf.String())
}

func TestWriteCSVFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteCSVFiles(dir, records(), DefaultOptions(), func(table string) string {
		return table + ".csv"
	})
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.FileExists(t, filepath.Join(dir, "service_fee_transactions.csv"))

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "gross_payment_total")
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, WriteXLSX(path, records()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{types.TableSummaries, types.TableServiceFees}, f.GetSheetList())
	v, err := f.GetCellValue(types.TableSummaries, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Juli 2025", v)

	assert.Error(t, WriteXLSX(path, nil))
}
