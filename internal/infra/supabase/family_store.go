package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/casa-gastos/internal/domain/family"
)

const profileColumns = "id,display_name,family_id,created_at"

// foreignKeyViolation is the Postgres code PostgREST forwards for a bad family id.
const foreignKeyViolation = "23503"

type profileRow struct {
	ID          uuid.UUID  `json:"id"`
	DisplayName *string    `json:"display_name"`
	FamilyID    *uuid.UUID `json:"family_id"`
}

func (c *Client) GetProfile(ctx context.Context, userID uuid.UUID) (p *family.Profile, err error) {
	ctx, span := startSpan(ctx, "GetProfile", attribute.String("user_id", userID.String()))
	defer func() { endSpan(span, err) }()

	q := url.Values{}
	q.Set("select", profileColumns)
	q.Set("id", eq(userID))
	q.Set("limit", "1")

	var rows []family.Profile
	if err = c.read(ctx, "supabase/profiles", "profiles", q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, family.ErrNoProfile
	}
	return &rows[0], nil
}

func (c *Client) InsertFamily(ctx context.Context, name string) (f *family.Family, err error) {
	ctx, span := startSpan(ctx, "InsertFamily")
	defer func() { endSpan(span, err) }()

	var rows []family.Family
	body := []map[string]string{{"name": name}}
	if err = c.write(ctx, "supabase/families", http.MethodPost, "families", nil, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, c.wrap("supabase/families", fmt.Errorf("families insert returned no rows"))
	}
	return &rows[0], nil
}

func (c *Client) InsertProfile(ctx context.Context, profile family.Profile) (p *family.Profile, err error) {
	ctx, span := startSpan(ctx, "InsertProfile", attribute.String("user_id", profile.ID.String()))
	defer func() { endSpan(span, err) }()

	row := profileRow{ID: profile.ID, FamilyID: profile.FamilyID}
	if profile.DisplayName != "" {
		row.DisplayName = &profile.DisplayName
	}

	q := url.Values{}
	q.Set("select", profileColumns)

	var rows []family.Profile
	err = c.write(ctx, "supabase/profiles", http.MethodPost, "profiles", q, []profileRow{row}, &rows)
	if storeCode(err) == foreignKeyViolation {
		return nil, family.ErrNoFamily
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, c.wrap("supabase/profiles", fmt.Errorf("profiles insert returned no rows"))
	}
	return &rows[0], nil
}

// UpdateProfileFamily moves the profile into familyID.
func (c *Client) UpdateProfileFamily(ctx context.Context, userID, familyID uuid.UUID) (err error) {
	ctx, span := startSpan(ctx, "UpdateProfileFamily",
		attribute.String("user_id", userID.String()),
		attribute.String("family_id", familyID.String()),
	)
	defer func() { endSpan(span, err) }()

	q := url.Values{}
	q.Set("id", eq(userID))
	q.Set("select", "id")

	var updated []struct {
		ID uuid.UUID `json:"id"`
	}
	err = c.write(ctx, "supabase/profiles", http.MethodPatch, "profiles", q, map[string]string{"family_id": familyID.String()}, &updated)
	if storeCode(err) == foreignKeyViolation {
		return family.ErrNoFamily
	}
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		return family.ErrNoProfile
	}
	return nil
}
