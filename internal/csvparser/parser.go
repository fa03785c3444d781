// =============================================================================
// Finance Sheet Normalizer - CSV Reader
// =============================================================================
//
// This module reads raw CSV exports (the CC card statement download in
// particular) into the same in-memory grid the XLSX reader produces, so the
// scanner and extractor never know which format a sheet came from.
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, tab, pipe)
//   - Windows-1252 and ISO-8859-1 exports decoded to UTF-8
//   - A leading UTF-8 byte order mark is dropped
//   - Ragged rows and loose quoting are accepted
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads a CSV file into a grid named after the file.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding of the export.
//
// RETURNS:
//   - The grid, one row per CSV record, cells classified by types.ParseCell.
//   - An error if the file cannot be read, the encoding is unknown or the
//     file holds no records.
func Parse(filePath string, settings config.CSVSettings) (types.Grid, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return types.Grid{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	grid, err := Read(file, name, settings)
	if err != nil {
		return types.Grid{}, fmt.Errorf("%s: %w", filepath.Base(filePath), err)
	}
	return grid, nil
}

// ParseWorkbook wraps Parse for callers that work in workbooks.
func ParseWorkbook(filePath string, settings config.CSVSettings) (types.Workbook, error) {
	grid, err := Parse(filePath, settings)
	if err != nil {
		return types.Workbook{}, err
	}
	return types.Workbook{Path: filePath, Sheets: []types.Grid{grid}}, nil
}

// Read parses CSV from r.
func Read(r io.Reader, name string, settings config.CSVSettings) (types.Grid, error) {
	decoded, err := decode(r, settings.Encoding)
	if err != nil {
		return types.Grid{}, err
	}

	reader := bufio.NewReader(decoded)
	if head, err := reader.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = reader.Discard(len(utf8BOM))
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	records, err := csvReader.ReadAll()
	if err != nil {
		return types.Grid{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return types.Grid{}, fmt.Errorf("CSV file is empty")
	}

	grid := types.Grid{Name: name, Rows: make([]types.Row, len(records))}
	for i, record := range records {
		row := make(types.Row, len(record))
		for j, value := range record {
			row[j] = types.ParseCell(value)
		}
		grid.Rows[i] = row
	}
	return grid, nil
}

// decode wraps r with a decoder for single-byte encodings.
func decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToUpper(strings.ReplaceAll(encoding, "_", "-")) {
	case "", "UTF-8", "UTF8":
		return r, nil
	case "WINDOWS-1252", "CP1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// configureReader applies the delimiter and the lenient parsing options.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Exports are ragged: summary rows carry fewer fields than data rows.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}
