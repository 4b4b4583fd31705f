package supabase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/casa-gastos/internal/domain/transaction"
)

// InsertTransactions posts the batch as one JSON array. PostgREST runs it in a
// single statement, so the batch lands whole or not at all.
func (c *Client) InsertTransactions(ctx context.Context, txs []transaction.NewTransaction) (err error) {
	if len(txs) == 0 {
		return nil
	}
	ctx, span := startSpan(ctx, "InsertTransactions", attribute.Int("rows", len(txs)))
	defer func() { endSpan(span, err) }()

	return c.write(ctx, "supabase/transactions", http.MethodPost, "transactions", nil, txs, nil)
}

// ListTransactions returns the family's transactions dated in [from, to).
func (c *Client) ListTransactions(ctx context.Context, familyID uuid.UUID, from, to string) (txs []transaction.Transaction, err error) {
	ctx, span := startSpan(ctx, "ListTransactions",
		attribute.String("family_id", familyID.String()),
		attribute.String("from", from),
	)
	defer func() { endSpan(span, err) }()

	q := url.Values{}
	q.Set("select", "id,family_id,created_by,amount,date,category_id,payment_method,description,created_at")
	q.Set("family_id", eq(familyID))
	q.Add("date", "gte."+from)
	q.Add("date", "lt."+to)
	q.Set("order", "date.desc,created_at.desc")

	if err = c.read(ctx, "supabase/transactions", "transactions", q, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
