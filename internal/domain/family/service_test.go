package family

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/casa-gastos/pkg/interceptors"
)

type mockStore struct {
	profiles    map[uuid.UUID]*Profile
	families    []Family
	getErr      error
	insertErr   error
	updateCalls int
}

func newMockStore() *mockStore {
	return &mockStore{profiles: make(map[uuid.UUID]*Profile)}
}

func (m *mockStore) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNoProfile
	}
	cp := *p
	return &cp, nil
}

func (m *mockStore) InsertFamily(ctx context.Context, name string) (*Family, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	f := Family{ID: uuid.New(), Name: name}
	m.families = append(m.families, f)
	return &f, nil
}

func (m *mockStore) InsertProfile(ctx context.Context, profile Profile) (*Profile, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	m.profiles[profile.ID] = &profile
	cp := profile
	return &cp, nil
}

func (m *mockStore) UpdateProfileFamily(ctx context.Context, userID, familyID uuid.UUID) error {
	m.updateCalls++
	p, ok := m.profiles[userID]
	if !ok {
		return ErrNoProfile
	}
	p.FamilyID = &familyID
	return nil
}

type mockSeeder struct {
	seeded []uuid.UUID
	err    error
}

func (m *mockSeeder) SeedDefaults(ctx context.Context, familyID uuid.UUID) error {
	m.seeded = append(m.seeded, familyID)
	return m.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnsureProfileAndFamily_CreatesFamily(t *testing.T) {
	store := newMockStore()
	seeder := &mockSeeder{}
	svc := NewService(store, seeder, testLogger())
	userID := uuid.New()

	profile, err := svc.EnsureProfileAndFamily(context.Background(), userID, " Ana ")
	require.NoError(t, err)

	require.Len(t, store.families, 1)
	assert.Equal(t, "Casa Ana", store.families[0].Name)
	assert.Equal(t, userID, profile.ID)
	assert.Equal(t, "Ana", profile.DisplayName)
	require.NotNil(t, profile.FamilyID)
	assert.Equal(t, store.families[0].ID, *profile.FamilyID)
	assert.Equal(t, []uuid.UUID{store.families[0].ID}, seeder.seeded)
}

func TestEnsureProfileAndFamily_DefaultName(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockSeeder{}, testLogger())

	_, err := svc.EnsureProfileAndFamily(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	require.Len(t, store.families, 1)
	assert.Equal(t, "Minha Casa", store.families[0].Name)
}

func TestEnsureProfileAndFamily_ExistingProfile(t *testing.T) {
	store := newMockStore()
	seeder := &mockSeeder{}
	svc := NewService(store, seeder, testLogger())
	userID := uuid.New()
	familyID := uuid.New()
	store.profiles[userID] = &Profile{ID: userID, DisplayName: "Bia", FamilyID: &familyID}

	profile, err := svc.EnsureProfileAndFamily(context.Background(), userID, "Outro Nome")
	require.NoError(t, err)
	assert.Equal(t, "Bia", profile.DisplayName)
	assert.Empty(t, store.families)
	assert.Empty(t, seeder.seeded)
}

func TestEnsureProfileAndFamily_SeedFailureIgnored(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockSeeder{err: errors.New("seed failed")}, testLogger())

	profile, err := svc.EnsureProfileAndFamily(context.Background(), uuid.New(), "Ana")
	require.NoError(t, err)
	assert.NotNil(t, profile.FamilyID)
}

func TestEnsureProfileAndFamily_StoreErrors(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("connection refused")
	svc := NewService(store, &mockSeeder{}, testLogger())

	_, err := svc.EnsureProfileAndFamily(context.Background(), uuid.New(), "Ana")
	assert.ErrorContains(t, err, "connection refused")

	store = newMockStore()
	store.insertErr = errors.New("insert failed")
	svc = NewService(store, &mockSeeder{}, testLogger())

	_, err = svc.EnsureProfileAndFamily(context.Background(), uuid.New(), "Ana")
	assert.ErrorContains(t, err, "failed to create family")
}

func TestJoinFamily(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockSeeder{}, testLogger())
	familyID := uuid.New()

	newUser := uuid.New()
	profile, err := svc.JoinFamily(context.Background(), newUser, familyID)
	require.NoError(t, err)
	assert.Equal(t, familyID, *profile.FamilyID)
	assert.Zero(t, store.updateCalls)

	existing := uuid.New()
	oldFamily := uuid.New()
	store.profiles[existing] = &Profile{ID: existing, DisplayName: "Caio", FamilyID: &oldFamily}

	profile, err = svc.JoinFamily(context.Background(), existing, familyID)
	require.NoError(t, err)
	assert.Equal(t, familyID, *profile.FamilyID)
	assert.Equal(t, "Caio", profile.DisplayName)
	assert.Equal(t, 1, store.updateCalls)

	_, err = svc.JoinFamily(context.Background(), existing, uuid.Nil)
	assert.ErrorIs(t, err, ErrNoFamily)
}

func TestResolveScope(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockSeeder{}, testLogger())

	_, err := svc.ResolveScope(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNoProfile)

	orphan := uuid.New()
	store.profiles[orphan] = &Profile{ID: orphan}
	_, err = svc.ResolveScope(context.Background(), orphan)
	assert.ErrorIs(t, err, ErrNoFamily)

	member := uuid.New()
	familyID := uuid.New()
	store.profiles[member] = &Profile{ID: member, FamilyID: &familyID}
	scope, err := svc.ResolveScope(context.Background(), member)
	require.NoError(t, err)
	assert.Equal(t, Scope{UserID: member, FamilyID: familyID}, scope)
}

func TestRequireScope(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockSeeder{}, testLogger())
	member := uuid.New()
	familyID := uuid.New()
	store.profiles[member] = &Profile{ID: member, FamilyID: &familyID}

	var got Scope
	handler := RequireScope(svc, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ScopeFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		userID string
		want   int
	}{
		{"member", member.String(), http.StatusNoContent},
		{"no profile", uuid.NewString(), http.StatusNotFound},
		{"unauthenticated", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
			if tt.userID != "" {
				req = req.WithContext(interceptors.WithUserID(req.Context(), tt.userID))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Equal(t, Scope{UserID: member, FamilyID: familyID}, got)
}
