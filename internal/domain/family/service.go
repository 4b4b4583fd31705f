package family

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Service resolves and manages household membership.
type Service struct {
	store  Store
	seeder CategorySeeder
	logger *slog.Logger
}

// NewService creates a new family service
func NewService(store Store, seeder CategorySeeder, logger *slog.Logger) *Service {
	return &Service{store: store, seeder: seeder, logger: logger}
}

// familyName names the family created for a first-time user.
func familyName(displayName string) string {
	if displayName == "" {
		return "Minha Casa"
	}
	return "Casa " + displayName
}

// EnsureProfileAndFamily returns the user's profile, creating it on first use
// together with a new family and its starter categories. A seeding failure is
// logged and does not fail the call.
func (s *Service) EnsureProfileAndFamily(ctx context.Context, userID uuid.UUID, displayName string) (*Profile, error) {
	existing, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNoProfile) {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	displayName = strings.TrimSpace(displayName)
	fam, err := s.store.InsertFamily(ctx, familyName(displayName))
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	profile, err := s.store.InsertProfile(ctx, Profile{
		ID:          userID,
		DisplayName: displayName,
		FamilyID:    &fam.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if err := s.seeder.SeedDefaults(ctx, fam.ID); err != nil {
		s.logger.Warn("failed to seed default categories",
			slog.String("family_id", fam.ID.String()),
			slog.Any("error", err),
		)
	}

	s.logger.Info("family created",
		slog.String("user_id", userID.String()),
		slog.String("family_id", fam.ID.String()),
	)
	return profile, nil
}

// JoinFamily attaches the user to familyID, creating the profile if needed.
func (s *Service) JoinFamily(ctx context.Context, userID, familyID uuid.UUID) (*Profile, error) {
	if familyID == uuid.Nil {
		return nil, fmt.Errorf("join family: %w", ErrNoFamily)
	}

	existing, err := s.store.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, ErrNoProfile):
		profile, err := s.store.InsertProfile(ctx, Profile{ID: userID, FamilyID: &familyID})
		if err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		return profile, nil
	case err != nil:
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := s.store.UpdateProfileFamily(ctx, userID, familyID); err != nil {
		return nil, fmt.Errorf("failed to join family: %w", err)
	}
	existing.FamilyID = &familyID
	return existing, nil
}

// ResolveScope returns the family scope of userID.
func (s *Service) ResolveScope(ctx context.Context, userID uuid.UUID) (Scope, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return Scope{}, err
	}
	if profile.FamilyID == nil {
		return Scope{}, ErrNoFamily
	}
	return Scope{UserID: userID, FamilyID: *profile.FamilyID}, nil
}

// Profile returns the profile of userID.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.store.GetProfile(ctx, userID)
}
