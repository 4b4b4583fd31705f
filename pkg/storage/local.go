package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const metaDir = ".meta"

// LocalStorage implements Storage using the local filesystem. Each owner gets
// a directory holding the files and a .meta directory with their FileInfo.
type LocalStorage struct {
	basePath string
	maxBytes int64
	now      func() time.Time
}

// NewLocalStorage creates a new local filesystem storage
func NewLocalStorage(basePath string, maxBytes int64) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "./uploads"
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, maxBytes: maxBytes, now: time.Now}, nil
}

// Upload stores a file and returns its metadata
func (s *LocalStorage) Upload(ctx context.Context, owner uuid.UUID, filename, contentType string, r io.Reader) (*FileInfo, error) {
	fileID := uuid.New()

	ownerDir := filepath.Join(s.basePath, owner.String())
	if err := os.MkdirAll(filepath.Join(ownerDir, metaDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	stored := fmt.Sprintf("%s_%s", fileID.String()[:8], sanitizeFilename(filename))
	filePath := filepath.Join(ownerDir, stored)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	// One byte past the limit tells an exact-size file from an oversized one.
	size, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if size > s.maxBytes {
		os.Remove(filePath)
		return nil, ErrFileTooLarge
	}

	info := &FileInfo{
		ID:          fileID,
		Owner:       owner,
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		Path:        stored,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.saveMetadata(info); err != nil {
		os.Remove(filePath)
		return nil, err
	}
	return info, nil
}

// ReadAll returns the content of a file
func (s *LocalStorage) ReadAll(ctx context.Context, owner, fileID uuid.UUID) ([]byte, *FileInfo, error) {
	info, err := s.info(owner, fileID)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.basePath, owner.String(), info.Path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, notFound(fileID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, info, nil
}

// Delete removes a file and its metadata
func (s *LocalStorage) Delete(ctx context.Context, owner, fileID uuid.UUID) error {
	info, err := s.info(owner, fileID)
	if err != nil {
		return err
	}
	return s.remove(info)
}

// Purge removes files created before the cutoff
func (s *LocalStorage) Purge(ctx context.Context, before time.Time) (int, error) {
	owners, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, fmt.Errorf("failed to list upload directory: %w", err)
	}

	purged := 0
	for _, entry := range owners {
		if err := ctx.Err(); err != nil {
			return purged, err
		}
		owner, err := uuid.Parse(entry.Name())
		if !entry.IsDir() || err != nil {
			continue
		}

		metas, err := os.ReadDir(filepath.Join(s.basePath, entry.Name(), metaDir))
		if err != nil {
			continue
		}
		for _, m := range metas {
			id, err := uuid.Parse(strings.TrimSuffix(m.Name(), ".json"))
			if err != nil {
				continue
			}
			info, err := s.info(owner, id)
			if err != nil || !info.CreatedAt.Before(before) {
				continue
			}
			if err := s.remove(info); err != nil {
				return purged, err
			}
			purged++
		}
	}
	return purged, nil
}

func (s *LocalStorage) metaPath(owner, fileID uuid.UUID) string {
	return filepath.Join(s.basePath, owner.String(), metaDir, fileID.String()+".json")
}

func (s *LocalStorage) info(owner, fileID uuid.UUID) (*FileInfo, error) {
	data, err := os.ReadFile(s.metaPath(owner, fileID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(fileID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	// Path is not serialized; it is derived from the stored name.
	info.Path = fmt.Sprintf("%s_%s", info.ID.String()[:8], sanitizeFilename(info.Name))
	return &info, nil
}

func (s *LocalStorage) remove(info *FileInfo) error {
	filePath := filepath.Join(s.basePath, info.Owner.String(), info.Path)
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := os.Remove(s.metaPath(info.Owner, info.ID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

func (s *LocalStorage) saveMetadata(info *FileInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(info.Owner, info.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// sanitizeFilename removes path separators and characters Windows rejects
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
