package normalizer

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/casa-gastos/internal/domain/import/parser"
)

// ParseMoney reads an amount from a cell. Numbers pass through; text is read
// as pt-BR currency ("R$ 1.234,56").
func ParseMoney(c parser.Cell) (decimal.Decimal, bool) {
	switch c.Kind {
	case parser.CellNumber:
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(c.Number), true

	case parser.CellText:
		s := strings.ReplaceAll(c.Text, "R$", "")
		s = strings.TrimSpace(s)
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}
