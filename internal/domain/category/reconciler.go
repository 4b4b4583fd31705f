package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// MaxReconciledNames caps the distinct category names one import may reference.
const MaxReconciledNames = 200

// Lookup maps lower-cased category names to ids.
type Lookup map[string]uuid.UUID

func lookupKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ID returns the id of the named category, ignoring case.
func (l Lookup) ID(name string) (uuid.UUID, bool) {
	id, ok := l[lookupKey(name)]
	return id, ok
}

// Reconciliation is the outcome of a Reconcile call.
type Reconciliation struct {
	Lookup  Lookup
	Created []Category
}

// DistinctNames dedupes names ignoring case, keeping the first spelling and
// the first-seen order. Blank names are dropped and at most limit names are
// returned when limit > 0.
func DistinctNames(names []string, limit int) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := lookupKey(n)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Reconciler creates the categories an import references but the family lacks.
type Reconciler struct {
	store  Store
	logger *slog.Logger
}

// NewReconciler creates a reconciler over store.
func NewReconciler(store Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// Reconcile returns a lookup covering every name. Existing categories are
// fetched once; the missing ones are created in a single call with
// DefaultIcon. Either store call failing aborts the reconciliation.
func (r *Reconciler) Reconcile(ctx context.Context, familyID uuid.UUID, names []string) (*Reconciliation, error) {
	names = DistinctNames(names, MaxReconciledNames)

	existing, err := r.store.SelectCategories(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	lookup := make(Lookup, len(existing)+len(names))
	for _, c := range existing {
		lookup[lookupKey(c.Name)] = c.ID
	}

	var missing []NewCategory
	for _, n := range names {
		if _, ok := lookup[lookupKey(n)]; ok {
			continue
		}
		missing = append(missing, NewCategory{FamilyID: familyID, Name: n, Icon: DefaultIcon})
	}

	result := &Reconciliation{Lookup: lookup}
	if len(missing) == 0 {
		return result, nil
	}

	created, err := r.store.InsertCategories(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to create categories: %w", err)
	}
	for _, c := range created {
		lookup[lookupKey(c.Name)] = c.ID
	}
	result.Created = created

	r.logger.Info("categories created for import",
		slog.String("family_id", familyID.String()),
		slog.Int("created", len(created)),
	)
	return result, nil
}
