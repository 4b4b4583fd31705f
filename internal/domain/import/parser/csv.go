package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/FACorreiaa/casa-gastos/internal/domain/import/sniffer"
)

// csvSheetName is the name given to the single sheet of a CSV file.
const csvSheetName = "Sheet1"

// plainNumber matches literals that are unambiguous numbers. A dot followed by
// three digits is left as text because "1.234" is a thousands separator in pt-BR.
var plainNumber = regexp.MustCompile(`^-?\d+(\.\d{1,2})?$`)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV reads a delimited text file as a one-sheet workbook. Metadata lines
// above the header row (common in bank exports) are skipped.
func readCSV(data []byte) (*Workbook, error) {
	data, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	cfg, err := sniffer.DetectConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to detect CSV layout: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(skipLines(data, cfg.SkipLines)))
	reader.Comma = cfg.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var grid [][]Cell
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		cells := make([]Cell, len(record))
		for i, v := range record {
			cells[i] = csvCell(v)
		}
		grid = append(grid, cells)
	}

	return &Workbook{
		Format: FormatCSV,
		sheets: []*Sheet{buildSheet(csvSheetName, grid)},
	}, nil
}

func csvCell(v string) Cell {
	if v == "" {
		return Empty()
	}
	if plainNumber.MatchString(v) {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return Number(n)
		}
	}
	return Text(v)
}

// decodeText strips a UTF-8 BOM and decodes Windows-1252 input, which is what
// spreadsheet programs write when exporting CSV on pt-BR systems.
func decodeText(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}

	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode CSV text: %w", err)
	}
	return decoded, nil
}

// skipLines drops the first n lines of data.
func skipLines(data []byte, n int) []byte {
	for i := 0; i < n; i++ {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return nil
		}
		data = data[idx+1:]
	}
	return data
}
