// Package transaction stores household expenses: manual entries, monthly
// listings and the batched inserts of spreadsheet imports.
package transaction

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
)

// ISODate is the layout of transaction dates.
const ISODate = "2006-01-02"

// PaymentMethods are the accepted payment methods of a manual entry.
var PaymentMethods = []string{"pix", "cartao", "dinheiro", "boleto"}

const DefaultPaymentMethod = "pix"

var (
	ErrInvalidAmount        = &domain.ErrValidation{Field: "amount", Message: "Informe um valor válido"}
	ErrInvalidDate          = &domain.ErrValidation{Field: "date", Message: "data inválida, use AAAA-MM-DD"}
	ErrInvalidMonth         = &domain.ErrValidation{Field: "month", Message: "mês inválido, use AAAA-MM"}
	ErrInvalidPaymentMethod = &domain.ErrValidation{Field: "payment_method", Message: "forma de pagamento inválida"}
	ErrInvalidCategory      = &domain.ErrValidation{Field: "category_id", Message: "categoria inválida"}
)

// Transaction is a stored expense.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	FamilyID      uuid.UUID       `json:"family_id"`
	CreatedBy     uuid.UUID       `json:"created_by"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	PaymentMethod string          `json:"payment_method"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewTransaction is an expense about to be inserted. The json tags are the
// column names of the transactions table.
type NewTransaction struct {
	FamilyID      uuid.UUID       `json:"family_id"`
	CreatedBy     uuid.UUID       `json:"created_by"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	PaymentMethod string          `json:"payment_method"`
	Description   string          `json:"description"`
}

// Store is the transaction side of the data store.
type Store interface {
	// InsertTransactions inserts all rows in one call. It either stores every
	// row or returns an error.
	InsertTransactions(ctx context.Context, txs []NewTransaction) error
	// ListTransactions returns the family's transactions dated in [from, to),
	// newest first.
	ListTransactions(ctx context.Context, familyID uuid.UUID, from, to string) ([]Transaction, error)
}

func validPaymentMethod(method string) bool {
	return slices.Contains(PaymentMethods, method)
}
