// Package mapping assigns spreadsheet headers to transaction fields.
package mapping

import (
	"slices"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
)

// ColumnMapping maps each transaction field to a header. An empty value means
// the field is not mapped.
type ColumnMapping struct {
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Category      string `json:"category"`
	PaymentMethod string `json:"payment_method"`
}

// dateHeader is matched exactly; "data" is a substring of too many headers.
const dateHeader = "data"

// Substring patterns, indexed in the order the matcher reports them.
// "pgto" is the usual abbreviation of "pagamento".
var fieldPatterns = []string{"descr", "valor", "categ", "pag", "pgto"}

const (
	patternDescription = iota
	patternAmount
	patternCategory
	patternPayment
	patternPaymentAbbrev
)

var fieldMatcher = ahocorasick.NewStringMatcher(fieldPatterns)

// Suggest proposes a mapping from the header names. Headers are compared
// trimmed and lower-cased, and the first header that matches a field wins.
func Suggest(headers []string) ColumnMapping {
	var m ColumnMapping
	for _, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}

		if key == dateHeader && m.Date == "" {
			m.Date = h
		}

		for _, idx := range fieldMatcher.MatchThreadSafe([]byte(key)) {
			switch idx {
			case patternDescription:
				if m.Description == "" {
					m.Description = h
				}
			case patternAmount:
				if m.Amount == "" {
					m.Amount = h
				}
			case patternCategory:
				if m.Category == "" {
					m.Category = h
				}
			case patternPayment, patternPaymentAbbrev:
				if m.PaymentMethod == "" {
					m.PaymentMethod = h
				}
			}
		}
	}
	return m
}

// Complete reports whether the required fields are mapped.
func (m ColumnMapping) Complete() bool {
	return m.Description != "" && m.Amount != ""
}

// HeaderSet answers whether a header exists. *parser.Sheet implements it.
type HeaderSet interface {
	HasHeader(name string) bool
}

// Headers is a HeaderSet over a plain header list.
type Headers []string

func (h Headers) HasHeader(name string) bool {
	return slices.Contains(h, name)
}

// Validate checks that the required fields are mapped and that every mapped
// header exists in headers. A nil headers knows no header.
func (m ColumnMapping) Validate(headers HeaderSet) error {
	if m.Description == "" {
		return &domain.ErrValidation{Field: "description", Message: "selecione a coluna de descrição"}
	}
	if m.Amount == "" {
		return &domain.ErrValidation{Field: "amount", Message: "selecione a coluna de valor"}
	}

	fields := []struct {
		name   string
		header string
	}{
		{"description", m.Description},
		{"amount", m.Amount},
		{"date", m.Date},
		{"category", m.Category},
		{"payment_method", m.PaymentMethod},
	}
	for _, f := range fields {
		if f.header == "" {
			continue
		}
		if headers == nil || !headers.HasHeader(f.header) {
			return &domain.ErrValidation{Field: f.name, Message: "coluna não encontrada: " + f.header}
		}
	}
	return nil
}
