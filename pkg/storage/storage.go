// Package storage keeps uploaded spreadsheets between analysis and import.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
)

// DefaultMaxUploadBytes bounds a single upload.
const DefaultMaxUploadBytes = 10 << 20

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = &domain.ErrValidation{Field: "file", Message: "arquivo muito grande"}

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Owner       uuid.UUID `json:"owner"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the upload store. Files belong to an owner, the family that
// uploaded them, and are invisible to other owners.
type Storage interface {
	// Upload stores r and returns its metadata.
	Upload(ctx context.Context, owner uuid.UUID, filename, contentType string, r io.Reader) (*FileInfo, error)

	// ReadAll returns the content of a file.
	ReadAll(ctx context.Context, owner, fileID uuid.UUID) ([]byte, *FileInfo, error)

	// Delete removes a file.
	Delete(ctx context.Context, owner, fileID uuid.UUID) error

	// Purge removes every file created before the cutoff and reports how many.
	Purge(ctx context.Context, before time.Time) (int, error)
}

// Config holds storage configuration
type Config struct {
	Dir            string
	MaxUploadBytes int64
	Retention      time.Duration
}

// New creates the local filesystem storage described by cfg
func New(cfg Config) (*LocalStorage, error) {
	return NewLocalStorage(cfg.Dir, cfg.MaxUploadBytes)
}

func notFound(fileID uuid.UUID) error {
	return &domain.ErrNotFound{Resource: "upload", ID: fileID.String()}
}
