// Package parser reads uploaded spreadsheets (.xlsx, .xls, .csv) into typed,
// header-keyed rows that the import pipeline normalizes.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Supported workbook formats
const (
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
	FormatCSV  = "csv"
)

// emptyHeader names columns whose header cell is blank.
const emptyHeader = "__EMPTY"

var (
	ErrEmptyFile          = errors.New("file is empty")
	ErrUnsupportedFormat  = errors.New("unsupported file format, use .xlsx, .xls or .csv")
	ErrSheetNotFound      = errors.New("sheet not found")
	ErrWorkbookHasNoSheet = errors.New("workbook has no sheets")
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Row is one data row of a sheet, keyed by header.
type Row struct {
	Index int // 1-based row number in the sheet
	cells map[string]Cell
}

// NewRow builds a row from header-keyed cells.
func NewRow(index int, cells map[string]Cell) Row {
	return Row{Index: index, cells: cells}
}

// Get returns the cell under header, or an empty cell when the header is unset or unknown.
func (r Row) Get(header string) Cell {
	if header == "" || r.cells == nil {
		return Empty()
	}
	c, ok := r.cells[header]
	if !ok {
		return Empty()
	}
	return c
}

// Sheet is a parsed worksheet: its header row and the non-blank rows below it.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []Row
}

// HasHeader reports whether name is one of the sheet's headers.
func (s *Sheet) HasHeader(name string) bool {
	for _, h := range s.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Preview renders up to maxRows rows and maxCols columns as text.
func (s *Sheet) Preview(maxRows, maxCols int) (headers []string, rows [][]string) {
	headers = s.Headers
	if maxCols > 0 && len(headers) > maxCols {
		headers = headers[:maxCols]
	}

	n := len(s.Rows)
	if maxRows > 0 && n > maxRows {
		n = maxRows
	}

	rows = make([][]string, 0, n)
	for _, row := range s.Rows[:n] {
		values := make([]string, len(headers))
		for i, h := range headers {
			values[i] = row.Get(h).String()
		}
		rows = append(rows, values)
	}
	return headers, rows
}

// Workbook is an opened spreadsheet file.
type Workbook struct {
	Format string
	sheets []*Sheet
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the named sheet. An empty name selects the first sheet.
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	if len(w.sheets) == 0 {
		return nil, ErrWorkbookHasNoSheet
	}
	if name == "" {
		return w.sheets[0], nil
	}
	for _, s := range w.sheets {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
}

// Open parses a spreadsheet. The format is detected from the content first and
// the file extension second, so an .xls that is really an .xlsx still opens.
func Open(filename string, data []byte) (*Workbook, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	switch {
	case bytes.HasPrefix(data, zipMagic):
		return readXLSX(data)
	case bytes.HasPrefix(data, oleMagic):
		return readXLS(data)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".tsv":
		return readCSV(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// buildSheet turns a cell grid into a Sheet. The first non-blank row is the
// header row; blank headers become __EMPTY, __EMPTY_1, ... and repeated headers
// get a numeric suffix so every column has a distinct key.
func buildSheet(name string, grid [][]Cell) *Sheet {
	sheet := &Sheet{Name: name}

	headerIdx := -1
	for i, row := range grid {
		if !blankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return sheet
	}

	width := 0
	for _, row := range grid[headerIdx:] {
		if len(row) > width {
			width = len(row)
		}
	}

	seen := make(map[string]int, width)
	sheet.Headers = make([]string, width)
	for col := 0; col < width; col++ {
		h := ""
		if col < len(grid[headerIdx]) {
			h = grid[headerIdx][col].String()
		}
		if strings.TrimSpace(h) == "" {
			h = emptyHeader
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s_%d", h, n)
		} else {
			seen[h] = 1
		}
		sheet.Headers[col] = h
	}

	for i := headerIdx + 1; i < len(grid); i++ {
		row := grid[i]
		if blankRow(row) {
			continue
		}
		cells := make(map[string]Cell, width)
		for col, h := range sheet.Headers {
			if col < len(row) {
				cells[h] = row[col]
			} else {
				cells[h] = Empty()
			}
		}
		sheet.Rows = append(sheet.Rows, NewRow(i+1, cells))
	}

	return sheet
}

func blankRow(row []Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
