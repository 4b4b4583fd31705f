package category

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Service exposes category reads and seeding.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new category service
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ListCategories returns the family's categories ordered by name.
func (s *Service) ListCategories(ctx context.Context, familyID uuid.UUID) ([]Category, error) {
	categories, err := s.store.SelectCategories(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// SeedDefaults creates the starter categories of a new family.
func (s *Service) SeedDefaults(ctx context.Context, familyID uuid.UUID) error {
	created, err := s.store.InsertCategories(ctx, DefaultCategories(familyID))
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	s.logger.Debug("default categories seeded",
		slog.String("family_id", familyID.String()),
		slog.Int("count", len(created)),
	)
	return nil
}
