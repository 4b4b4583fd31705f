package supabase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/casa-gastos/internal/domain/category"
)

const categoryColumns = "id,family_id,name,icon,color,created_at"

// SelectCategories returns every category of the family, ordered by name. It
// is not retried.
func (c *Client) SelectCategories(ctx context.Context, familyID uuid.UUID) (categories []category.Category, err error) {
	ctx, span := startSpan(ctx, "SelectCategories", attribute.String("family_id", familyID.String()))
	defer func() { endSpan(span, err) }()

	q := url.Values{}
	q.Set("select", categoryColumns)
	q.Set("family_id", eq(familyID))
	q.Set("order", "name.asc")

	if err = c.readOnce(ctx, "supabase/categories", "categories", q, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// InsertCategories creates all categories in one call.
func (c *Client) InsertCategories(ctx context.Context, categories []category.NewCategory) (created []category.Category, err error) {
	if len(categories) == 0 {
		return nil, nil
	}
	ctx, span := startSpan(ctx, "InsertCategories", attribute.Int("count", len(categories)))
	defer func() { endSpan(span, err) }()

	q := url.Values{}
	q.Set("select", categoryColumns)
	if err = c.write(ctx, "supabase/categories", http.MethodPost, "categories", q, categories, &created); err != nil {
		return nil, err
	}
	return created, nil
}
