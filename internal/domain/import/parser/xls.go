package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/shakinm/xlsReader/xls"
)

// xlsCellData is the subset of the xlsReader cell API used here.
type xlsCellData interface {
	GetString() string
	GetFloat64() float64
	GetType() string
}

// readXLS reads every sheet of a legacy BIFF8 (.xls) workbook. The reader only
// opens files by path, so the upload is spooled to a temp file first.
func readXLS(data []byte) (*Workbook, error) {
	tmp, err := os.CreateTemp("", "import-*.xls")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	tmp.Close()

	workbook, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to open xls file: %w", err)
	}

	wb := &Workbook{Format: FormatXLS}
	for i := 0; i < workbook.GetNumberSheets(); i++ {
		sheet, err := workbook.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		name := sheet.GetName()
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}

		var grid [][]Cell
		for r := 0; r <= int(sheet.GetNumberRows()); r++ {
			row, err := sheet.GetRow(r)
			if err != nil || row == nil {
				// keep row numbers aligned with the sheet
				grid = append(grid, nil)
				continue
			}
			var cells []Cell
			for _, col := range row.GetCols() {
				if col == nil {
					cells = append(cells, Empty())
					continue
				}
				cells = append(cells, xlsCell(col))
			}
			grid = append(grid, cells)
		}
		wb.sheets = append(wb.sheets, buildSheet(name, grid))
	}

	return wb, nil
}

// xlsCell maps BIFF record types onto cell kinds. Number and RK records carry
// numeric values (date serials included); blank records carry nothing.
func xlsCell(cell xlsCellData) Cell {
	typ := cell.GetType()
	switch {
	case strings.Contains(typ, "Blank"):
		return Empty()
	case strings.Contains(typ, "Number"), strings.Contains(typ, "Rk"):
		return Number(cell.GetFloat64())
	}
	return Text(cell.GetString())
}
