// Package httpx holds the JSON response helpers shared by the HTTP handlers.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes data as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorResponse{Error: msg})
}

// DecodeJSON reads a JSON request body into v.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &domain.ErrValidation{Message: "invalid request body: " + err.Error()}
	}
	return nil
}

// HandleServiceError maps domain errors to HTTP responses. Store failures keep
// the store's own message.
func HandleServiceError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var validation *domain.ErrValidation
	var notFound *domain.ErrNotFound
	var external *domain.ErrExternalService

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeLogged(w, logger, slog.LevelWarn, http.StatusUnauthorized, err)
	case errors.As(err, &validation):
		writeLogged(w, logger, slog.LevelDebug, http.StatusBadRequest, validation)
	case errors.As(err, &notFound):
		writeLogged(w, logger, slog.LevelDebug, http.StatusNotFound, notFound)
	case errors.As(err, &external):
		logger.Error("data store error", slog.String("service", external.Service), slog.Any("error", err))
		WriteError(w, http.StatusBadGateway, external.Err.Error())
	default:
		logger.Error("unhandled error", slog.Any("error", err))
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeLogged(w http.ResponseWriter, logger *slog.Logger, level slog.Level, status int, err error) {
	logger.Log(context.Background(), level, "request failed", slog.Int("status", status), slog.String("error", err.Error()))
	WriteError(w, status, err.Error())
}
