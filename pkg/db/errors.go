package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
)

// StoreError reports a failed query on table as a remote store failure. The
// error text is the server message when Postgres sent one.
func StoreError(table string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.ErrExternalService{Service: "postgres/" + table, Err: storeMessage{err: err}}
}

// storeMessage keeps the driver error in the chain for errors.Is/As.
type storeMessage struct {
	err error
}

func (m storeMessage) Error() string {
	var pgErr *pgconn.PgError
	if errors.As(m.err, &pgErr) && pgErr.Message != "" {
		return pgErr.Message
	}
	return m.err.Error()
}

func (m storeMessage) Unwrap() error {
	return m.err
}
