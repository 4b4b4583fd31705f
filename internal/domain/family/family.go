// Package family manages households: the profile of each user and the family
// that scopes every category and transaction.
package family

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
)

var (
	// ErrNoProfile is returned when the user has not created a profile yet.
	ErrNoProfile = &domain.ErrNotFound{Resource: "profile"}
	// ErrNoFamily is returned when the profile is not attached to a family.
	ErrNoFamily = &domain.ErrNotFound{Resource: "family"}
)

// Scope identifies who is acting and which family the data belongs to.
type Scope struct {
	UserID   uuid.UUID
	FamilyID uuid.UUID
}

// Profile is the application profile of an authenticated user. Its ID is the
// auth user id.
type Profile struct {
	ID          uuid.UUID  `json:"id"`
	DisplayName string     `json:"display_name"`
	FamilyID    *uuid.UUID `json:"family_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Family is a household.
type Family struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the profile and family side of the data store.
type Store interface {
	// GetProfile returns ErrNoProfile when the user has no profile.
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	InsertFamily(ctx context.Context, name string) (*Family, error)
	InsertProfile(ctx context.Context, profile Profile) (*Profile, error)
	UpdateProfileFamily(ctx context.Context, userID, familyID uuid.UUID) error
}

// CategorySeeder creates the starter categories of a new family.
type CategorySeeder interface {
	SeedDefaults(ctx context.Context, familyID uuid.UUID) error
}

type scopeKey struct{}

// WithScope returns a context carrying scope.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFromContext returns the scope set by the scope middleware.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(Scope)
	return s, ok
}
