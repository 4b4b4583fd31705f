package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
	"github.com/FACorreiaa/casa-gastos/internal/domain/family"
	"github.com/FACorreiaa/casa-gastos/internal/domain/import/repository"
	importservice "github.com/FACorreiaa/casa-gastos/internal/domain/import/service"
	"github.com/FACorreiaa/casa-gastos/pkg/httpx"
)

// maxMultipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const maxMultipartMemory = 8 << 20

// ImportService is the part of the import service the handler needs.
type ImportService interface {
	Upload(ctx context.Context, scope family.Scope, filename, contentType string, r io.Reader) (*importservice.AnalyzeResult, error)
	Analyze(ctx context.Context, scope family.Scope, fileID uuid.UUID, sheet string) (*importservice.AnalyzeResult, error)
	Import(ctx context.Context, scope family.Scope, req importservice.ImportRequest) (*importservice.ImportResult, error)
	ListJobs(ctx context.Context, scope family.Scope) ([]repository.ImportJob, error)
}

// ImportHandler handles the spreadsheet import endpoints
type ImportHandler struct {
	importSvc ImportService
	logger    *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(importSvc ImportService, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		importSvc: importSvc,
		logger:    logger,
	}
}

// RegisterRoutes mounts the handler behind family.RequireScope.
func (h *ImportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/v1/imports/files", h.UploadFile)
	r.Get("/v1/imports/files/{fileID}", h.AnalyzeFile)
	r.Post("/v1/imports", h.Import)
	r.Get("/v1/imports", h.ListJobs)
}

func (h *ImportHandler) scope(w http.ResponseWriter, r *http.Request) (family.Scope, bool) {
	scope, ok := family.ScopeFromContext(r.Context())
	if !ok {
		httpx.HandleServiceError(w, domain.ErrUnauthenticated, h.logger)
	}
	return scope, ok
}

// UploadFile stores a multipart "file" field and analyzes its first sheet
func (h *ImportHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		httpx.HandleServiceError(w, &domain.ErrValidation{Field: "file", Message: "envie o arquivo no campo \"file\""}, h.logger)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = &domain.ErrValidation{Field: "file", Message: "nenhum arquivo enviado"}
		}
		httpx.HandleServiceError(w, err, h.logger)
		return
	}
	defer file.Close()

	result, err := h.importSvc.Upload(r.Context(), scope, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Error("failed to analyze upload",
			slog.String("file_name", header.Filename),
			slog.Any("error", err),
		)
		httpx.HandleServiceError(w, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, result)
}

// AnalyzeFile analyzes ?sheet= of a stored upload
func (h *ImportHandler) AnalyzeFile(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "fileID"))
	if err != nil {
		httpx.HandleServiceError(w, &domain.ErrValidation{Field: "file_id", Message: "identificador de arquivo inválido"}, h.logger)
		return
	}

	result, err := h.importSvc.Analyze(r.Context(), scope, fileID, r.URL.Query().Get("sheet"))
	if err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

// Import runs the import of a stored upload with the confirmed mapping
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req importservice.ImportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}

	result, err := h.importSvc.Import(r.Context(), scope, req)
	if err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

// ListJobs returns the family's recent import jobs
func (h *ImportHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	jobs, err := h.importSvc.ListJobs(r.Context(), scope)
	if err != nil {
		httpx.HandleServiceError(w, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, jobs)
}
