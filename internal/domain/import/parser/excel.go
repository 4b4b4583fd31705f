package parser

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateCellLayouts are the ISO 8601 forms excelize returns for cells stored with t="d".
var dateCellLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// readXLSX reads every sheet of an .xlsx workbook. Raw cell values are used so
// date serials come back as numbers instead of locale formatted strings.
func readXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	wb := &Workbook{Format: FormatXLSX}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}

		grid := make([][]Cell, len(rows))
		for r, row := range rows {
			cells := make([]Cell, len(row))
			for c, raw := range row {
				cells[c] = excelCell(f, name, c+1, r+1, raw)
			}
			grid[r] = cells
		}
		wb.sheets = append(wb.sheets, buildSheet(name, grid))
	}

	return wb, nil
}

func excelCell(f *excelize.File, sheet string, col, row int, raw string) Cell {
	if raw == "" {
		return Empty()
	}

	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Text(raw)
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return Text(raw)
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return Number(n)
		}
	case excelize.CellTypeDate:
		for _, layout := range dateCellLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return Date(t)
			}
		}
	case excelize.CellTypeBool:
		if raw == "1" {
			return Text("TRUE")
		}
		return Text("FALSE")
	}

	return Text(raw)
}
