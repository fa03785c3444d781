package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

func TestReadStripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFNo.,Booking ID,Payment\n1,1234567,\"1,500,000\"\n,TOTAL PAYMENT\n"
	g, err := Read(strings.NewReader(input), "JULI 25 5657", config.CSVSettings{})
	require.NoError(t, err)

	require.Len(t, g.Rows, 3)
	assert.Equal(t, "No.", g.Rows[0].At(0).Text())
	assert.Equal(t, types.CellNumber, g.Rows[1].At(0).Kind)
	assert.Equal(t, "1,500,000", g.Rows[1].At(2).Text())
	assert.Len(t, g.Rows[2], 2)
	assert.True(t, g.Rows[2].At(0).IsEmpty())
}

func TestReadDelimiterAndEncoding(t *testing.T) {
	// "Pembayaran é" in Windows-1252.
	input := "Nama;Keterangan\nBUDI;Pembayaran \xe9\n"
	g, err := Read(strings.NewReader(input), "x", config.CSVSettings{Delimiter: "semicolon", Encoding: "Windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, "Pembayaran é", g.Rows[1].At(1).Text())

	_, err = Read(strings.NewReader(input), "x", config.CSVSettings{Encoding: "EBCDIC"})
	assert.ErrorContains(t, err, "unsupported encoding")
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Rekap CC Juli.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\tb\n1\t2\n"), 0644))

	wb, err := ParseWorkbook(path, config.CSVSettings{Delimiter: "tab"})
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "Rekap CC Juli", wb.Sheets[0].Name)
	assert.Equal(t, "2", wb.Sheets[0].Rows[1].At(1).Text())

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = Parse(empty, config.CSVSettings{})
	assert.ErrorContains(t, err, "empty")
}
