// Package memory is an in-process data store for local development and
// end-to-end tests. It keeps the same constraints the Postgres schema enforces.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
	"github.com/FACorreiaa/casa-gastos/internal/domain/category"
	"github.com/FACorreiaa/casa-gastos/internal/domain/family"
	"github.com/FACorreiaa/casa-gastos/internal/domain/import/repository"
	"github.com/FACorreiaa/casa-gastos/internal/domain/transaction"
)

type storedTx struct {
	tx  transaction.Transaction
	seq int
}

// Store implements every store interface of the app.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	seq        int
	families   map[uuid.UUID]family.Family
	profiles   map[uuid.UUID]family.Profile
	categories []category.Category
	txs        []storedTx
	jobs       []repository.ImportJob
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:      time.Now,
		families: make(map[uuid.UUID]family.Family),
		profiles: make(map[uuid.UUID]family.Profile),
	}
}

func rejected(service string, format string, args ...any) error {
	return &domain.ErrExternalService{Service: "memory/" + service, Err: fmt.Errorf(format, args...)}
}

func (s *Store) GetProfile(_ context.Context, userID uuid.UUID) (*family.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, family.ErrNoProfile
	}
	return &p, nil
}

func (s *Store) InsertFamily(_ context.Context, name string) (*family.Family, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := family.Family{ID: uuid.New(), Name: name, CreatedAt: s.now()}
	s.families[f.ID] = f
	return &f, nil
}

func (s *Store) InsertProfile(_ context.Context, profile family.Profile) (*family.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.ID]; exists {
		return nil, rejected("profiles", `duplicate key value violates unique constraint "profiles_pkey"`)
	}
	if profile.FamilyID != nil {
		if _, ok := s.families[*profile.FamilyID]; !ok {
			return nil, family.ErrNoFamily
		}
	}
	profile.CreatedAt = s.now()
	s.profiles[profile.ID] = profile
	return &profile, nil
}

func (s *Store) UpdateProfileFamily(_ context.Context, userID, familyID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return family.ErrNoProfile
	}
	if _, ok := s.families[familyID]; !ok {
		return family.ErrNoFamily
	}
	p.FamilyID = &familyID
	s.profiles[userID] = p
	return nil
}

func (s *Store) SelectCategories(_ context.Context, familyID uuid.UUID) ([]category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []category.Category
	for _, c := range s.categories {
		if c.FamilyID == familyID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// InsertCategories inserts all categories or none. Names are unique per family,
// ignoring case.
func (s *Store) InsertCategories(_ context.Context, categories []category.NewCategory) ([]category.Category, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	taken := make(map[string]bool)
	for _, c := range s.categories {
		taken[c.FamilyID.String()+"/"+strings.ToLower(c.Name)] = true
	}
	for _, nc := range categories {
		key := nc.FamilyID.String() + "/" + strings.ToLower(nc.Name)
		if taken[key] {
			return nil, rejected("categories", `duplicate key value violates unique constraint "categories_family_name_key"`)
		}
		taken[key] = true
	}

	created := make([]category.Category, 0, len(categories))
	for _, nc := range categories {
		created = append(created, category.Category{
			ID:        uuid.New(),
			FamilyID:  nc.FamilyID,
			Name:      nc.Name,
			Icon:      nc.Icon,
			Color:     nc.Color,
			CreatedAt: s.now(),
		})
	}
	s.categories = append(s.categories, created...)
	return created, nil
}

// InsertTransactions stores every row or none. A category id must belong to
// the row's family.
func (s *Store) InsertTransactions(_ context.Context, txs []transaction.NewTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := make(map[uuid.UUID]uuid.UUID, len(s.categories))
	for _, c := range s.categories {
		owner[c.ID] = c.FamilyID
	}
	for _, t := range txs {
		if t.CategoryID != nil && owner[*t.CategoryID] != t.FamilyID {
			return rejected("transactions", `insert or update on table "transactions" violates foreign key constraint "transactions_category_id_fkey"`)
		}
	}

	for _, t := range txs {
		s.seq++
		s.txs = append(s.txs, storedTx{seq: s.seq, tx: transaction.Transaction{
			ID:            uuid.New(),
			FamilyID:      t.FamilyID,
			CreatedBy:     t.CreatedBy,
			Amount:        t.Amount,
			Date:          t.Date,
			CategoryID:    t.CategoryID,
			PaymentMethod: t.PaymentMethod,
			Description:   t.Description,
			CreatedAt:     s.now(),
		}})
	}
	return nil
}

// ListTransactions returns rows dated in [from, to), newest first.
func (s *Store) ListTransactions(_ context.Context, familyID uuid.UUID, from, to string) ([]transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []storedTx
	for _, st := range s.txs {
		if st.tx.FamilyID == familyID && st.tx.Date >= from && st.tx.Date < to {
			matched = append(matched, st)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].tx.Date != matched[j].tx.Date {
			return matched[i].tx.Date > matched[j].tx.Date
		}
		return matched[i].seq > matched[j].seq
	})

	out := make([]transaction.Transaction, len(matched))
	for i, st := range matched {
		out[i] = st.tx
	}
	return out, nil
}

func (s *Store) CreateImportJob(_ context.Context, job *repository.ImportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job.ID = uuid.New()
	job.CreatedAt = s.now()
	s.jobs = append(s.jobs, *job)
	return nil
}

func (s *Store) FinishImportJob(_ context.Context, id uuid.UUID, result repository.JobResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.jobs {
		if s.jobs[i].ID != id {
			continue
		}
		finished := s.now()
		j := &s.jobs[i]
		j.Status = result.Status
		j.RowsImported = result.RowsImported
		j.RowsSkipped = result.RowsSkipped
		j.CategoriesCreated = result.CategoriesCreated
		j.ErrorMessage = result.ErrorMessage
		j.FinishedAt = &finished
		return nil
	}
	return &domain.ErrNotFound{Resource: "import job", ID: id.String()}
}

// ListImportJobs returns the family's latest jobs, newest first.
func (s *Store) ListImportJobs(_ context.Context, familyID uuid.UUID, limit int) ([]repository.ImportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []repository.ImportJob{}
	for i := len(s.jobs) - 1; i >= 0; i-- {
		if s.jobs[i].FamilyID != familyID {
			continue
		}
		out = append(out, s.jobs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
