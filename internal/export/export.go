// =============================================================================
// Finance Sheet Normalizer - Table Export
// =============================================================================
//
// This module writes canonical records back out as flat tables, one per
// logical table name, for people who want the normalized data in a
// spreadsheet rather than in the database.
//
// FORMATS:
//   - CSV: one file per table, UTF-8 with a byte order mark so spreadsheet
//     tools detect the encoding
//   - XLSX: one workbook, one sheet per table
//
// COLUMNS:
//   Columns are the union of the records' field names in first-seen order.
//   Service Fee hotel and flight rows share a table but not all columns; a
//   field a record does not have is left blank.
//
// =============================================================================

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options controls CSV output.
type Options struct {
	// Delimiter is the field separator. Default: ','
	Delimiter rune

	// BOM prefixes the output with a UTF-8 byte order mark.
	BOM bool
}

// DefaultOptions returns the spreadsheet-friendly defaults.
func DefaultOptions() Options {
	return Options{Delimiter: ',', BOM: true}
}

// =============================================================================
// TABLES
// =============================================================================

// Table is the records of one logical table with their resolved columns.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Group splits records by table name and flattens them. Tables come back
// sorted by name; rows keep input order.
func Group(records []types.Record) []Table {
	byName := make(map[string][]types.Record)
	var names []string
	for _, rec := range records {
		if _, ok := byName[rec.Table()]; !ok {
			names = append(names, rec.Table())
		}
		byName[rec.Table()] = append(byName[rec.Table()], rec)
	}
	sort.Strings(names)

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		tables = append(tables, flatten(name, byName[name]))
	}
	return tables
}

func flatten(name string, records []types.Record) Table {
	t := Table{Name: name}
	index := make(map[string]int)
	for _, rec := range records {
		for _, f := range rec.Fields() {
			if _, ok := index[f.Name]; !ok {
				index[f.Name] = len(t.Columns)
				t.Columns = append(t.Columns, f.Name)
			}
		}
	}

	for _, rec := range records {
		row := make([]string, len(t.Columns))
		for _, f := range rec.Fields() {
			row[index[f.Name]] = formatValue(f.Value)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// formatValue renders a field value as cell text. Nil is blank.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// =============================================================================
// CSV
// =============================================================================

// WriteCSV writes one table.
func WriteCSV(w io.Writer, t Table, opts Options) error {
	if opts.BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// WriteCSVFiles writes every table to dir, naming each file with name(table).
// It returns the paths written.
func WriteCSVFiles(dir string, records []types.Record, opts Options, name func(table string) string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for _, t := range Group(records) {
		path := filepath.Join(dir, name(t.Name))
		if err := writeCSVFile(path, t, opts); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, t Table, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, t, opts); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// =============================================================================
// XLSX
// =============================================================================

// WriteXLSX writes every table as a sheet of one workbook.
func WriteXLSX(path string, records []types.Record) error {
	tables := Group(records)
	if len(tables) == 0 {
		return fmt.Errorf("no records to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", t.Name, err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", t.Name, err)
		}

		if err := setRow(f, t.Name, 1, t.Columns); err != nil {
			return err
		}
		for r, row := range t.Rows {
			if err := setRow(f, t.Name, r+2, row); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}
