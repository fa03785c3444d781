// =============================================================================
// Finance Sheet Normalizer - XLSX Reader
// =============================================================================
//
// This module loads .xlsx workbooks into the in-memory grid the scanner and
// extractor work on. Every sheet is read in full; the files are monthly
// reports, small enough to hold in memory.
//
// CELL VALUES:
//   Cells are read with excelize's RawCellValue option, so numbers come back
//   unformatted ("1500000", not "1,500,000") and date cells come back as
//   serial day numbers ("45306"). types.ParseCell classifies each value; the
//   date and amount normalizers take it from there.
//
//   Long identifiers stored as numbers keep their raw digits because a
//   number cell carries its original text alongside the float.
//
// =============================================================================

package xlsxparser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

// ReadWorkbook reads every sheet of an .xlsx file, in workbook order.
//
// PARAMETERS:
//   - path: The path to the workbook.
//
// RETURNS:
//   - The workbook with one grid per sheet.
//   - An error if the file cannot be opened or a sheet cannot be read.
func ReadWorkbook(path string) (types.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return types.Workbook{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := types.Workbook{Path: path}
	for _, name := range f.GetSheetList() {
		grid, err := readSheet(f, name)
		if err != nil {
			return types.Workbook{}, err
		}
		wb.Sheets = append(wb.Sheets, grid)
	}

	if len(wb.Sheets) == 0 {
		return types.Workbook{}, fmt.Errorf("workbook has no sheets")
	}
	return wb, nil
}

// ReadSheet reads a single named sheet.
func ReadSheet(path, sheet string) (types.Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return types.Grid{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return types.Grid{}, fmt.Errorf("sheet %q not found", sheet)
	}
	return readSheet(f, sheet)
}

// SheetNames lists the sheets of a workbook without reading their cells.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func readSheet(f *excelize.File, name string) (types.Grid, error) {
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return types.Grid{}, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	grid := types.Grid{Name: name, Rows: make([]types.Row, len(rows))}
	for i, raw := range rows {
		row := make(types.Row, len(raw))
		for j, value := range raw {
			row[j] = types.ParseCell(value)
		}
		grid.Rows[i] = row
	}
	return grid, nil
}
