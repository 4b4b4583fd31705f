package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/casa-gastos/internal/domain/category"
	"github.com/FACorreiaa/casa-gastos/internal/domain/family"
	"github.com/FACorreiaa/casa-gastos/internal/domain/import/repository"
	"github.com/FACorreiaa/casa-gastos/internal/domain/transaction"
)

var (
	_ category.Store              = (*Store)(nil)
	_ transaction.Store           = (*Store)(nil)
	_ family.Store                = (*Store)(nil)
	_ repository.ImportRepository = (*Store)(nil)
)

func TestStore_Families(t *testing.T) {
	ctx := context.Background()
	s := New()
	userID := uuid.New()

	_, err := s.GetProfile(ctx, userID)
	assert.ErrorIs(t, err, family.ErrNoProfile)

	missing := uuid.New()
	_, err = s.InsertProfile(ctx, family.Profile{ID: userID, FamilyID: &missing})
	assert.ErrorIs(t, err, family.ErrNoFamily)

	f, err := s.InsertFamily(ctx, "Casa Ana")
	require.NoError(t, err)
	_, err = s.InsertProfile(ctx, family.Profile{ID: userID, DisplayName: "Ana", FamilyID: &f.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, s.UpdateProfileFamily(ctx, userID, uuid.New()), family.ErrNoFamily)
	assert.ErrorIs(t, s.UpdateProfileFamily(ctx, uuid.New(), f.ID), family.ErrNoProfile)

	p, err := s.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, *p.FamilyID)
}

func TestStore_CategoriesUniquePerFamily(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, b := uuid.New(), uuid.New()

	_, err := s.InsertCategories(ctx, []category.NewCategory{{FamilyID: a, Name: "Mercado"}, {FamilyID: b, Name: "Mercado"}})
	require.NoError(t, err)

	_, err = s.InsertCategories(ctx, []category.NewCategory{{FamilyID: a, Name: "Lazer"}, {FamilyID: a, Name: "MERCADO"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key")

	got, err := s.SelectCategories(ctx, a)
	require.NoError(t, err)
	require.Len(t, got, 1, "rejected batch stores nothing")
	assert.Equal(t, "Mercado", got[0].Name)
}

func TestStore_Transactions(t *testing.T) {
	ctx := context.Background()
	s := New()
	familyID := uuid.New()
	other := uuid.New()

	cats, err := s.InsertCategories(ctx, []category.NewCategory{{FamilyID: other, Name: "Outros"}})
	require.NoError(t, err)

	err = s.InsertTransactions(ctx, []transaction.NewTransaction{
		{FamilyID: familyID, Amount: decimal.NewFromInt(1), Date: "2024-03-01"},
		{FamilyID: familyID, Amount: decimal.NewFromInt(2), Date: "2024-03-02", CategoryID: &cats[0].ID},
	})
	require.Error(t, err, "category of another family")

	require.NoError(t, s.InsertTransactions(ctx, []transaction.NewTransaction{
		{FamilyID: familyID, Amount: decimal.NewFromInt(1), Date: "2024-03-01", Description: "a"},
		{FamilyID: familyID, Amount: decimal.NewFromInt(2), Date: "2024-03-15", Description: "b"},
		{FamilyID: familyID, Amount: decimal.NewFromInt(3), Date: "2024-03-15", Description: "c"},
		{FamilyID: familyID, Amount: decimal.NewFromInt(4), Date: "2024-04-01", Description: "d"},
		{FamilyID: other, Amount: decimal.NewFromInt(5), Date: "2024-03-10", Description: "e"},
	}))

	txs, err := s.ListTransactions(ctx, familyID, "2024-03-01", "2024-04-01")
	require.NoError(t, err)
	var got []string
	for _, tx := range txs {
		got = append(got, tx.Description)
	}
	assert.Equal(t, []string{"c", "b", "a"}, got)
}

func TestStore_ImportJobs(t *testing.T) {
	ctx := context.Background()
	s := New()
	familyID := uuid.New()

	for _, name := range []string{"jan.csv", "fev.csv", "mar.csv"} {
		require.NoError(t, s.CreateImportJob(ctx, &repository.ImportJob{FamilyID: familyID, FileName: name, Status: repository.StatusRunning}))
	}
	jobs, err := s.ListImportJobs(ctx, familyID, 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "mar.csv", jobs[0].FileName)

	require.NoError(t, s.FinishImportJob(ctx, jobs[0].ID, repository.JobResult{Status: repository.StatusSucceeded, RowsImported: 7}))
	jobs, err = s.ListImportJobs(ctx, familyID, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, repository.StatusSucceeded, jobs[0].Status)
	assert.Equal(t, 7, jobs[0].RowsImported)
	assert.NotNil(t, jobs[0].FinishedAt)

	assert.Error(t, s.FinishImportJob(ctx, uuid.New(), repository.JobResult{}))

	empty, err := s.ListImportJobs(ctx, uuid.New(), 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
