package transaction

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/casa-gastos/internal/domain/category"
	"github.com/FACorreiaa/casa-gastos/internal/domain/family"
	"github.com/FACorreiaa/casa-gastos/pkg/money"
)

// CategoryReader lists a family's categories.
type CategoryReader interface {
	SelectCategories(ctx context.Context, familyID uuid.UUID) ([]category.Category, error)
}

// Service handles manual entries and monthly views.
type Service struct {
	store      Store
	categories CategoryReader
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new transaction service
func NewService(store Store, categories CategoryReader, logger *slog.Logger) *Service {
	return &Service{store: store, categories: categories, logger: logger, now: time.Now}
}

// AddInput is a manual entry as typed by the user. Amount uses the pt-BR
// notation ("1.234,56").
type AddInput struct {
	Amount        string     `json:"amount"`
	CategoryID    *uuid.UUID `json:"category_id"`
	PaymentMethod string     `json:"payment_method"`
	Date          string     `json:"date"`
	Description   string     `json:"description"`
}

// MonthSummary is a month of transactions and their total.
type MonthSummary struct {
	Month        string          `json:"month"`
	Transactions []Transaction   `json:"transactions"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"total_display"`
}

// parseAmount reads a typed amount: thousands dots dropped, decimal comma.
func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(raw, ".", ""), ",", "."))
	v, err := decimal.NewFromString(cleaned)
	if err != nil || !v.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return v, nil
}

// AddTransaction stores one manual entry for scope.
func (s *Service) AddTransaction(ctx context.Context, scope family.Scope, in AddInput) (*NewTransaction, error) {
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return nil, err
	}

	method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if method == "" {
		method = DefaultPaymentMethod
	}
	if !validPaymentMethod(method) {
		return nil, ErrInvalidPaymentMethod
	}

	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = s.now().Format(ISODate)
	} else if _, err := time.Parse(ISODate, date); err != nil {
		return nil, ErrInvalidDate
	}

	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, scope.FamilyID, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	tx := NewTransaction{
		FamilyID:      scope.FamilyID,
		CreatedBy:     scope.UserID,
		Amount:        amount,
		Date:          date,
		CategoryID:    in.CategoryID,
		PaymentMethod: method,
		Description:   strings.TrimSpace(in.Description),
	}
	if err := s.store.InsertTransactions(ctx, []NewTransaction{tx}); err != nil {
		return nil, fmt.Errorf("failed to add transaction: %w", err)
	}

	s.logger.Info("transaction added",
		slog.String("family_id", scope.FamilyID.String()),
		slog.String("amount", amount.String()),
	)
	return &tx, nil
}

// checkCategory rejects ids that are not categories of familyID.
func (s *Service) checkCategory(ctx context.Context, familyID, id uuid.UUID) error {
	categories, err := s.categories.SelectCategories(ctx, familyID)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	for _, c := range categories {
		if c.ID == id {
			return nil
		}
	}
	return ErrInvalidCategory
}

// monthRange returns [first day, first day of next month) of a YYYY-MM month.
// An empty month is the current one.
func (s *Service) monthRange(month string) (string, string, string, error) {
	var start time.Time
	if month == "" {
		now := s.now()
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		t, err := time.Parse("2006-01", month)
		if err != nil {
			return "", "", "", ErrInvalidMonth
		}
		start = t
	}
	end := start.AddDate(0, 1, 0)
	return start.Format("2006-01"), start.Format(ISODate), end.Format(ISODate), nil
}

// ListMonth returns the family's transactions of month, newest first.
func (s *Service) ListMonth(ctx context.Context, familyID uuid.UUID, month string) (*MonthSummary, error) {
	month, from, to, err := s.monthRange(month)
	if err != nil {
		return nil, err
	}

	txs, err := s.store.ListTransactions(ctx, familyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if txs == nil {
		txs = []Transaction{}
	}

	amounts := make([]decimal.Decimal, len(txs))
	for i, tx := range txs {
		amounts[i] = tx.Amount
	}
	total, err := money.Sum(money.BRL, amounts...)
	if err != nil {
		return nil, err
	}

	return &MonthSummary{
		Month:        month,
		Transactions: txs,
		Total:        total.ToDecimal(),
		TotalDisplay: money.FormatBRL(total.ToDecimal()),
	}, nil
}

type exportRow struct {
	Date          string `csv:"data"`
	Description   string `csv:"descricao"`
	Amount        string `csv:"valor"`
	Category      string `csv:"categoria"`
	PaymentMethod string `csv:"pagamento"`
}

// ExportMonthCSV writes month as a semicolon separated CSV with pt-BR amounts.
func (s *Service) ExportMonthCSV(ctx context.Context, familyID uuid.UUID, month string, w io.Writer) error {
	summary, err := s.ListMonth(ctx, familyID, month)
	if err != nil {
		return err
	}

	categories, err := s.categories.SelectCategories(ctx, familyID)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	rows := make([]exportRow, 0, len(summary.Transactions))
	for _, tx := range summary.Transactions {
		row := exportRow{
			Date:          tx.Date,
			Description:   tx.Description,
			Amount:        strings.Replace(tx.Amount.StringFixed(2), ".", ",", 1),
			PaymentMethod: tx.PaymentMethod,
		}
		if tx.CategoryID != nil {
			row.Category = names[*tx.CategoryID]
		}
		rows = append(rows, row)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
