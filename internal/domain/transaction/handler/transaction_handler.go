package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
	"github.com/FACorreiaa/casa-gastos/internal/domain/family"
	"github.com/FACorreiaa/casa-gastos/internal/domain/transaction"
	"github.com/FACorreiaa/casa-gastos/pkg/httpx"
)

// TransactionService is the part of transaction.Service the handler needs.
type TransactionService interface {
	AddTransaction(ctx context.Context, scope family.Scope, in transaction.AddInput) (*transaction.NewTransaction, error)
	ListMonth(ctx context.Context, familyID uuid.UUID, month string) (*transaction.MonthSummary, error)
	ExportMonthCSV(ctx context.Context, familyID uuid.UUID, month string, w io.Writer) error
}

// TransactionHandler serves the transaction endpoints
type TransactionHandler struct {
	svc    TransactionService
	logger *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(svc TransactionService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler behind family.RequireScope.
func (h *TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/v1/transactions", h.ListMonth)
	r.Post("/v1/transactions", h.AddTransaction)
	r.Get("/v1/transactions/export", h.ExportMonth)
}

func (h *TransactionHandler) scope(w http.ResponseWriter, r *http.Request) (family.Scope, bool) {
	scope, ok := family.ScopeFromContext(r.Context())
	if !ok {
		httpx.HandleServiceError(w, domain.ErrUnauthenticated, h.logger)
	}
	return scope, ok
}

// ListMonth returns ?month=YYYY-MM with its total
func (h *TransactionHandler) ListMonth(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.ListMonth(r.Context(), scope.FamilyID, r.URL.Query().Get("month"))
	if err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

// AddTransaction stores a manual entry
func (h *TransactionHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	var in transaction.AddInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}

	tx, err := h.svc.AddTransaction(r.Context(), scope, in)
	if err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tx)
}

// ExportMonth downloads ?month=YYYY-MM as CSV
func (h *TransactionHandler) ExportMonth(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	month := r.URL.Query().Get("month")
	filename := "gastos.csv"
	if month != "" {
		filename = "gastos-" + month + ".csv"
	}

	// Buffered so a store error can still be answered with JSON.
	var buf bytes.Buffer
	if err := h.svc.ExportMonthCSV(r.Context(), scope.FamilyID, month, &buf); err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
