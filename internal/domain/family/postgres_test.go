package family

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
)

var profileColumns = []string{"id", "display_name", "family_id", "created_at"}

func TestPostgresRepository_GetProfile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	familyID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles")).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(profileColumns).AddRow(userID, "Ana", &familyID, time.Now()))

	repo := NewPostgresRepository(mock)
	profile, err := repo.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.DisplayName)
	require.NotNil(t, profile.FamilyID)
	assert.Equal(t, familyID, *profile.FamilyID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetProfile_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles")).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgresRepository(mock).GetProfile(context.Background(), userID)
	assert.ErrorIs(t, err, ErrNoProfile)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_InsertFamily(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO families")).
		WithArgs("Casa Ana").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at"}).AddRow(id, "Casa Ana", time.Now()))

	fam, err := NewPostgresRepository(mock).InsertFamily(context.Background(), "Casa Ana")
	require.NoError(t, err)
	assert.Equal(t, id, fam.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_InsertFamily_StoreError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO families")).
		WithArgs("Casa Ana").
		WillReturnError(&pgconn.PgError{Code: "42501", Message: "permission denied for table families"})

	_, err = NewPostgresRepository(mock).InsertFamily(context.Background(), "Casa Ana")

	var external *domain.ErrExternalService
	require.ErrorAs(t, err, &external)
	assert.Equal(t, "postgres/families", external.Service)
	assert.Equal(t, "permission denied for table families", external.Err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateProfileFamily(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	familyID := uuid.New()
	repo := NewPostgresRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET family_id")).
		WithArgs(userID, familyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateProfileFamily(context.Background(), userID, familyID))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET family_id")).
		WithArgs(userID, familyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.UpdateProfileFamily(context.Background(), userID, familyID), ErrNoProfile)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET family_id")).
		WithArgs(userID, familyID).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	assert.ErrorIs(t, repo.UpdateProfileFamily(context.Background(), userID, familyID), ErrNoFamily)

	assert.NoError(t, mock.ExpectationsWereMet())
}
