// Package category manages the per-family spending categories and makes sure
// every category an import references exists before its transactions do.
package category

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultIcon is the icon of categories created by an import.
const DefaultIcon = "💸"

// Category is a spending category owned by a family. Names are unique per
// family, compared case-insensitively.
type Category struct {
	ID        uuid.UUID `json:"id"`
	FamilyID  uuid.UUID `json:"family_id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	Color     *int64    `json:"color,omitempty"` // ARGB
	CreatedAt time.Time `json:"created_at"`
}

// NewCategory is a category to be created.
type NewCategory struct {
	FamilyID uuid.UUID `json:"family_id"`
	Name     string    `json:"name"`
	Icon     string    `json:"icon"`
	Color    *int64    `json:"color,omitempty"`
}

// Store is the category side of the data store.
type Store interface {
	// SelectCategories returns every category of the family, ordered by name.
	SelectCategories(ctx context.Context, familyID uuid.UUID) ([]Category, error)
	// InsertCategories creates all categories in one call and returns them with their ids.
	InsertCategories(ctx context.Context, categories []NewCategory) ([]Category, error)
}

func color(argb int64) *int64 {
	return &argb
}

// DefaultCategories are the categories a new family starts with.
func DefaultCategories(familyID uuid.UUID) []NewCategory {
	return []NewCategory{
		{FamilyID: familyID, Name: "Alimentação", Icon: "🍔", Color: color(0xFF14B8A6)},
		{FamilyID: familyID, Name: "Mercado", Icon: "🛒", Color: color(0xFF60A5FA)},
		{FamilyID: familyID, Name: "Transporte", Icon: "🚗", Color: color(0xFFA78BFA)},
		{FamilyID: familyID, Name: "Moradia", Icon: "🏠", Color: color(0xFFFB923C)},
		{FamilyID: familyID, Name: "Saúde", Icon: "🩺", Color: color(0xFFF87171)},
		{FamilyID: familyID, Name: "Lazer", Icon: "🎬", Color: color(0xFF34D399)},
	}
}
