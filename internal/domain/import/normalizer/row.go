package normalizer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
	"github.com/FACorreiaa/casa-gastos/internal/domain/import/mapping"
	"github.com/FACorreiaa/casa-gastos/internal/domain/import/parser"
)

const (
	DefaultCategory      = "Outros"
	DefaultPaymentMethod = "pix"
)

// ErrNoValidRows is returned when no row of a sheet has both a description and an amount.
var ErrNoValidRows = &domain.ErrValidation{Message: "nenhuma linha válida encontrada"}

// Draft is a normalized transaction that has not been stored yet.
type Draft struct {
	Row           int // sheet row it came from
	Description   string
	Amount        decimal.Decimal
	Category      string
	PaymentMethod string
	Date          string // YYYY-MM-DD
}

// NormalizeRow maps one sheet row onto a draft. Rows without a description or
// a readable amount are rejected. Category and payment method fall back to the
// defaults and the date to fallbackDate.
func NormalizeRow(row parser.Row, m mapping.ColumnMapping, fallbackDate string) (Draft, bool) {
	if m.Description == "" || m.Amount == "" {
		return Draft{}, false
	}

	description := strings.TrimSpace(row.Get(m.Description).String())
	if description == "" {
		return Draft{}, false
	}

	amount, ok := ParseMoney(row.Get(m.Amount))
	if !ok {
		return Draft{}, false
	}

	category := strings.TrimSpace(row.Get(m.Category).String())
	if category == "" {
		category = DefaultCategory
	}

	method := strings.ToLower(strings.TrimSpace(row.Get(m.PaymentMethod).String()))
	if method == "" {
		method = DefaultPaymentMethod
	}

	date, ok := ParseDate(row.Get(m.Date))
	if !ok {
		date = fallbackDate
	}

	return Draft{
		Row:           row.Index,
		Description:   description,
		Amount:        amount,
		Category:      category,
		PaymentMethod: method,
		Date:          date,
	}, true
}

// NormalizeRows normalizes every row, dropping the rejected ones.
func NormalizeRows(rows []parser.Row, m mapping.ColumnMapping, fallbackDate string) ([]Draft, error) {
	drafts := make([]Draft, 0, len(rows))
	for _, row := range rows {
		if d, ok := NormalizeRow(row, m, fallbackDate); ok {
			drafts = append(drafts, d)
		}
	}
	if len(drafts) == 0 {
		return nil, ErrNoValidRows
	}
	return drafts, nil
}
