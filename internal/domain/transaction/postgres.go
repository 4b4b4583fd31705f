package transaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/casa-gastos/pkg/db"
)

// PostgresRepository implements Store using PostgreSQL
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository creates a new PostgreSQL transaction repository
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const insertColumns = 7

// InsertTransactions inserts all rows with a single multi-row INSERT
func (r *PostgresRepository) InsertTransactions(ctx context.Context, txs []NewTransaction) error {
	if len(txs) == 0 {
		return nil
	}

	values := make([]string, 0, len(txs))
	args := make([]any, 0, len(txs)*insertColumns)
	for i, tx := range txs {
		n := i * insertColumns
		values = append(values, fmt.Sprintf("($%d, $%d, $%d::numeric, $%d::date, $%d, $%d, $%d)",
			n+1, n+2, n+3, n+4, n+5, n+6, n+7))
		args = append(args,
			tx.FamilyID,
			tx.CreatedBy,
			tx.Amount.String(),
			tx.Date,
			tx.CategoryID,
			tx.PaymentMethod,
			tx.Description,
		)
	}

	query := `
		INSERT INTO transactions (family_id, created_by, amount, date, category_id, payment_method, description)
		VALUES ` + strings.Join(values, ", ")

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return db.StoreError("transactions", err)
	}
	return nil
}

// ListTransactions returns transactions dated in [from, to), newest first
func (r *PostgresRepository) ListTransactions(ctx context.Context, familyID uuid.UUID, from, to string) ([]Transaction, error) {
	query := `
		SELECT id, family_id, created_by, amount::text, to_char(date, 'YYYY-MM-DD'),
		       category_id, payment_method, COALESCE(description, ''), created_at
		FROM transactions
		WHERE family_id = $1 AND date >= $2::date AND date < $3::date
		ORDER BY date DESC, created_at DESC`

	rows, err := r.db.Query(ctx, query, familyID, from, to)
	if err != nil {
		return nil, db.StoreError("transactions", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var tx Transaction
		var amount string
		if err := rows.Scan(
			&tx.ID,
			&tx.FamilyID,
			&tx.CreatedBy,
			&amount,
			&tx.Date,
			&tx.CategoryID,
			&tx.PaymentMethod,
			&tx.Description,
			&tx.CreatedAt,
		); err != nil {
			return nil, db.StoreError("transactions", err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, db.StoreError("transactions", err)
	}
	return txs, nil
}
