package family

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/casa-gastos/pkg/db"
)

// PostgresRepository implements Store using PostgreSQL
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository creates a new PostgreSQL family repository
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetProfile retrieves the profile of userID
func (r *PostgresRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := `
		SELECT id, COALESCE(display_name, ''), family_id, created_at
		FROM profiles
		WHERE id = $1`

	var p Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(&p.ID, &p.DisplayName, &p.FamilyID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, db.StoreError("profiles", err)
	}
	return &p, nil
}

// InsertFamily creates a family
func (r *PostgresRepository) InsertFamily(ctx context.Context, name string) (*Family, error) {
	query := `
		INSERT INTO families (name)
		VALUES ($1)
		RETURNING id, name, created_at`

	var f Family
	if err := r.db.QueryRow(ctx, query, name).Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
		return nil, db.StoreError("families", err)
	}
	return &f, nil
}

// InsertProfile creates a profile
func (r *PostgresRepository) InsertProfile(ctx context.Context, profile Profile) (*Profile, error) {
	query := `
		INSERT INTO profiles (id, display_name, family_id)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id, COALESCE(display_name, ''), family_id, created_at`

	var p Profile
	err := r.db.QueryRow(ctx, query, profile.ID, profile.DisplayName, profile.FamilyID).
		Scan(&p.ID, &p.DisplayName, &p.FamilyID, &p.CreatedAt)
	if isForeignKeyViolation(err) {
		return nil, ErrNoFamily
	}
	if err != nil {
		return nil, db.StoreError("profiles", err)
	}
	return &p, nil
}

// UpdateProfileFamily moves the profile to another family
func (r *PostgresRepository) UpdateProfileFamily(ctx context.Context, userID, familyID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET family_id = $2 WHERE id = $1`, userID, familyID)
	if isForeignKeyViolation(err) {
		return ErrNoFamily
	}
	if err != nil {
		return db.StoreError("profiles", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoProfile
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
