package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
	"github.com/FACorreiaa/casa-gastos/internal/domain/category"
	"github.com/FACorreiaa/casa-gastos/internal/domain/family"
	"github.com/FACorreiaa/casa-gastos/pkg/httpx"
)

// CategoryLister lists a family's categories
type CategoryLister interface {
	ListCategories(ctx context.Context, familyID uuid.UUID) ([]category.Category, error)
}

// CategoryHandler serves the category endpoints
type CategoryHandler struct {
	svc    CategoryLister
	logger *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(svc CategoryLister, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler behind family.RequireScope.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/v1/categories", h.ListCategories)
}

// ListCategories returns the family's categories ordered by name
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	scope, ok := family.ScopeFromContext(r.Context())
	if !ok {
		httpx.HandleServiceError(w, domain.ErrUnauthenticated, h.logger)
		return
	}

	categories, err := h.svc.ListCategories(r.Context(), scope.FamilyID)
	if err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}
	if categories == nil {
		categories = []category.Category{}
	}
	httpx.WriteJSON(w, http.StatusOK, categories)
}
