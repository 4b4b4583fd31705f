package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
	"github.com/FACorreiaa/casa-gastos/internal/domain/family"
	"github.com/FACorreiaa/casa-gastos/pkg/httpx"
	"github.com/FACorreiaa/casa-gastos/pkg/interceptors"
)

// FamilyService is the part of family.Service the handler needs.
type FamilyService interface {
	EnsureProfileAndFamily(ctx context.Context, userID uuid.UUID, displayName string) (*family.Profile, error)
	JoinFamily(ctx context.Context, userID, familyID uuid.UUID) (*family.Profile, error)
	Profile(ctx context.Context, userID uuid.UUID) (*family.Profile, error)
}

// FamilyHandler serves profile and household endpoints
type FamilyHandler struct {
	svc    FamilyService
	logger *slog.Logger
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(svc FamilyService, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler. Routes only need an authenticated user.
func (h *FamilyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/v1/profile", h.GetProfile)
	r.Post("/v1/profile", h.EnsureProfile)
	r.Post("/v1/family/join", h.JoinFamily)
}

type ensureProfileRequest struct {
	DisplayName string `json:"display_name"`
}

type joinFamilyRequest struct {
	FamilyID string `json:"family_id"`
}

// GetProfile returns the caller's profile
func (h *FamilyHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := interceptors.UserID(r.Context())
	if err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}

	profile, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profile)
}

// EnsureProfile creates the caller's profile and family on first sign-in
func (h *FamilyHandler) EnsureProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := interceptors.UserID(r.Context())
	if err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}

	var req ensureProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}

	profile, err := h.svc.EnsureProfileAndFamily(r.Context(), userID, req.DisplayName)
	if err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profile)
}

// JoinFamily moves the caller into an existing family
func (h *FamilyHandler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	userID, err := interceptors.UserID(r.Context())
	if err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}

	var req joinFamilyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}

	familyID, err := uuid.Parse(req.FamilyID)
	if err != nil {
		httpx.HandleServiceError(w, &domain.ErrValidation{Field: "family_id", Message: "código da família inválido"}, h.logger)
		return
	}

	profile, err := h.svc.JoinFamily(r.Context(), userID, familyID)
	if err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profile)
}
