package xlsxparser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any, order ...string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, values := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := values
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadWorkbook(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Juli 2025 - HL": {
			{"Transaction Time", "Booking ID", "Base Amount"},
			{45306.75, "198501012010011001", 1500000},
		},
		"Juli 2025 - FL": {
			{"Booking ID"},
		},
	}, "Juli 2025 - HL", "Juli 2025 - FL")

	wb, err := ReadWorkbook(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, "Juli 2025 - HL", wb.Sheets[0].Name)
	assert.Equal(t, "Juli 2025 - FL", wb.Sheets[1].Name)

	row := wb.Sheets[0].Row(1)
	require.Len(t, row, 3)
	assert.Equal(t, types.CellNumber, row[0].Kind)
	assert.InDelta(t, 45306.75, row[0].Num, 1e-9)
	assert.Equal(t, types.CellNumber, row[1].Kind)
	assert.Equal(t, "198501012010011001", row[1].Text())
	assert.Equal(t, types.CellNumber, row[2].Kind)
	assert.Equal(t, "1500000", row[2].Text())

	_, ok := wb.Sheet("Juli 2025 - FL")
	assert.True(t, ok)
}

func TestReadSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"A": {{"x"}},
		"B": {{"NIP", "Nama"}, {"8912345Z", "BUDI"}},
	}, "A", "B")

	g, err := ReadSheet(path, "B")
	require.NoError(t, err)
	assert.Len(t, g.Rows, 2)
	assert.Equal(t, "BUDI", g.Row(1).At(1).Text())

	_, err = ReadSheet(path, "C")
	assert.ErrorContains(t, err, "not found")

	names, err := SheetNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names)
}

func TestReadWorkbookMissingFile(t *testing.T) {
	_, err := ReadWorkbook(filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.ErrorContains(t, err, "failed to open workbook")
}
