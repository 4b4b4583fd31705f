package category

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/casa-gastos/pkg/db"
)

// PostgresRepository implements Store using PostgreSQL
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository creates a new PostgreSQL category repository
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// SelectCategories returns the family's categories ordered by name
func (r *PostgresRepository) SelectCategories(ctx context.Context, familyID uuid.UUID) ([]Category, error) {
	query := `
		SELECT id, family_id, name, COALESCE(icon, ''), color, created_at
		FROM categories
		WHERE family_id = $1
		ORDER BY name`

	rows, err := r.db.Query(ctx, query, familyID)
	if err != nil {
		return nil, db.StoreError("categories", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

// InsertCategories creates all categories with a single multi-row INSERT
func (r *PostgresRepository) InsertCategories(ctx context.Context, categories []NewCategory) ([]Category, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	values := make([]string, 0, len(categories))
	args := make([]any, 0, len(categories)*4)
	for i, c := range categories {
		n := i * 4
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4))
		args = append(args, c.FamilyID, c.Name, c.Icon, c.Color)
	}

	query := `
		INSERT INTO categories (family_id, name, icon, color)
		VALUES ` + strings.Join(values, ", ") + `
		RETURNING id, family_id, name, COALESCE(icon, ''), color, created_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, db.StoreError("categories", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

func scanCategories(rows pgx.Rows) ([]Category, error) {
	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.FamilyID, &c.Name, &c.Icon, &c.Color, &c.CreatedAt); err != nil {
			return nil, db.StoreError("categories", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, db.StoreError("categories", err)
	}
	return categories, nil
}
