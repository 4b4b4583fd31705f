// Package money provides currency-safe amounts in integer cents on top of
// go-money, with shopspring/decimal at the boundaries.
package money

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// BRL is the currency household amounts are kept in.
const BRL = "BRL"

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// New creates a new Money value from cents (minor units) and currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{m: money.New(amountCents, currencyCode)}
}

// NewFromDecimal creates Money from a decimal, rounding half away from zero to
// the currency's minor unit.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(BRL)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()

	return New(cents, currency.Code)
}

// Zero returns a zero Money value for the given currency
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the amount in minor units (cents)
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsPositive returns true if the amount is greater than zero
func (m *Money) IsPositive() bool {
	return m != nil && m.m != nil && m.m.IsPositive()
}

// Add adds two Money values. Returns error if currencies don't match.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Sum adds decimal amounts in the given currency.
func Sum(currencyCode string, amounts ...decimal.Decimal) (*Money, error) {
	total := Zero(currencyCode)
	for _, a := range amounts {
		next, err := total.Add(NewFromDecimal(a, currencyCode))
		if err != nil {
			return nil, fmt.Errorf("failed to sum amounts: %w", err)
		}
		total = next
	}
	return total, nil
}

// Display returns the amount formatted for the currency, e.g. "R$1.234,56".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Display()
}

// String returns the amount as a decimal string (e.g., "1234.56")
func (m *Money) String() string {
	if m == nil || m.m == nil {
		return "0.00"
	}
	return m.ToDecimal().StringFixed(int32(m.m.Currency().Fraction))
}

// ToDecimal converts to decimal.Decimal for precise calculations
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	d := decimal.NewFromInt(m.m.Amount())
	divisor := decimal.New(1, int32(currency.Fraction))
	return d.Div(divisor)
}

// FormatBRL renders an amount the way pt-BR spreadsheets show it: "R$ 1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	m := NewFromDecimal(amount, BRL)
	f := money.GetCurrency(BRL).Formatter()
	f.Grapheme = ""
	f.Template = "1"
	return "R$ " + f.Format(m.Amount())
}
