package transaction

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
	"github.com/FACorreiaa/casa-gastos/pkg/httpx"
)

func TestPostgresRepository_InsertTransactions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	familyID := uuid.New()
	userID := uuid.New()
	txs := []NewTransaction{
		{FamilyID: familyID, CreatedBy: userID, Amount: decimal.RequireFromString("1234.56"), Date: "2024-03-05", PaymentMethod: "pix", Description: "Mercado"},
		{FamilyID: familyID, CreatedBy: userID, Amount: decimal.RequireFromString("9.9"), Date: "2024-03-06", PaymentMethod: "cartao", Description: "Café"},
	}

	mock.ExpectExec(regexp.QuoteMeta("($8, $9, $10::numeric, $11::date, $12, $13, $14)")).
		WithArgs(
			familyID, userID, "1234.56", "2024-03-05", pgxmock.AnyArg(), "pix", "Mercado",
			familyID, userID, "9.9", "2024-03-06", pgxmock.AnyArg(), "cartao", "Café",
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	repo := NewPostgresRepository(mock)
	require.NoError(t, repo.InsertTransactions(context.Background(), txs))
	require.NoError(t, repo.InsertTransactions(context.Background(), nil))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_InsertTransactions_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(anyArgs(7)...).
		WillReturnError(errors.New("violates foreign key constraint"))

	err = NewPostgresRepository(mock).InsertTransactions(context.Background(), drafts(1))
	assert.ErrorContains(t, err, "violates foreign key constraint")

	var external *domain.ErrExternalService
	require.ErrorAs(t, err, &external)
	assert.Equal(t, "postgres/transactions", external.Service)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_RejectedBatchIsBadGateway(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	msg := `insert or update on table "transactions" violates foreign key constraint "transactions_category_id_fkey"`
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(anyArgs(21)...).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: msg})

	inserter := NewBatchInserter(NewPostgresRepository(mock), testLogger())
	_, err = inserter.Insert(context.Background(), drafts(3))
	require.Error(t, err)

	rec := httptest.NewRecorder()
	httpx.HandleServiceError(rec, err, testLogger())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "violates foreign key constraint")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// anyArgs returns n pgxmock.AnyArg matchers, one per bound parameter.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestPostgresRepository_ListTransactions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	familyID := uuid.New()
	categoryID := uuid.New()
	columns := []string{"id", "family_id", "created_by", "amount", "date", "category_id", "payment_method", "description", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY date DESC")).
		WithArgs(familyID, "2024-03-01", "2024-04-01").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(uuid.New(), familyID, uuid.New(), "52.30", "2024-03-20", &categoryID, "pix", "Feira", time.Now()).
			AddRow(uuid.New(), familyID, uuid.New(), "8.00", "2024-03-01", nil, "dinheiro", "", time.Now()))

	txs, err := NewPostgresRepository(mock).ListTransactions(context.Background(), familyID, "2024-03-01", "2024-04-01")
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.True(t, decimal.RequireFromString("52.3").Equal(txs[0].Amount))
	assert.Equal(t, "2024-03-20", txs[0].Date)
	require.NotNil(t, txs[0].CategoryID)
	assert.Equal(t, categoryID, *txs[0].CategoryID)
	assert.Nil(t, txs[1].CategoryID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
