// Package normalizer turns parsed spreadsheet rows into transaction drafts.
package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/casa-gastos/internal/domain/import/parser"
)

// ISODate is the layout of every date a draft carries.
const ISODate = "2006-01-02"

// maxSerial is 9999-12-31 in the 1900 date system.
const maxSerial = 2958465

var dayMonthYear = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// ParseDate converts a cell to YYYY-MM-DD. Numbers are spreadsheet serials,
// text must be day/month/year and native dates are formatted as is. Anything
// else, including dd/mm without a year, reports false.
func ParseDate(c parser.Cell) (string, bool) {
	switch c.Kind {
	case parser.CellNumber:
		if c.Number <= 0 || c.Number > maxSerial || math.IsNaN(c.Number) {
			return "", false
		}
		t, err := excelize.ExcelDateToTime(math.Floor(c.Number), false)
		if err != nil {
			return "", false
		}
		return formatDate(t)

	case parser.CellText:
		m := dayMonthYear.FindStringSubmatch(strings.TrimSpace(c.Text))
		if m == nil {
			return "", false
		}
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		// out of range days and months roll over, e.g. 31/04 becomes 1 May
		return formatDate(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))

	case parser.CellDate:
		return formatDate(c.Date)
	}
	return "", false
}

// formatDate reports false for years that do not fit in four digits.
func formatDate(t time.Time) (string, bool) {
	if t.Year() < 1 || t.Year() > 9999 {
		return "", false
	}
	return t.Format(ISODate), true
}
