package db

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
)

func TestStoreError_UsesServerMessage(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503", Message: `insert or update on table "transactions" violates foreign key constraint`}

	err := StoreError("transactions", pgErr)

	var external *domain.ErrExternalService
	require.ErrorAs(t, err, &external)
	assert.Equal(t, "postgres/transactions", external.Service)
	assert.Equal(t, pgErr.Message, external.Err.Error())

	var unwrapped *pgconn.PgError
	require.ErrorAs(t, err, &unwrapped)
	assert.Equal(t, "23503", unwrapped.Code)
}

func TestStoreError_PlainError(t *testing.T) {
	dbErr := errors.New("connection refused")

	err := StoreError("categories", dbErr)

	var external *domain.ErrExternalService
	require.ErrorAs(t, err, &external)
	assert.Equal(t, "connection refused", external.Err.Error())
	assert.ErrorIs(t, err, dbErr)
}

func TestStoreError_Nil(t *testing.T) {
	assert.NoError(t, StoreError("categories", nil))
}
