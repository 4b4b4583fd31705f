package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/casa-gastos/internal/domain/category"
	"github.com/FACorreiaa/casa-gastos/internal/domain/import/parser"
)

// categoryHints lists the category values of the sheet the family does not
// have yet, each with the closest existing category when one is close enough.
func (s *ImportService) categoryHints(ctx context.Context, familyID uuid.UUID, sh *parser.Sheet, header string) ([]CategoryHint, error) {
	hints := []CategoryHint{}
	if header == "" {
		return hints, nil
	}

	values := make([]string, 0, len(sh.Rows))
	for _, row := range sh.Rows {
		values = append(values, row.Get(header).String())
	}
	values = category.DistinctNames(values, category.MaxReconciledNames)
	if len(values) == 0 {
		return hints, nil
	}

	existing, err := s.categories.SelectCategories(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	names := make([]string, 0, len(existing))
	for _, c := range existing {
		known[strings.ToLower(c.Name)] = struct{}{}
		names = append(names, c.Name)
	}

	for _, v := range values {
		if _, ok := known[strings.ToLower(v)]; ok {
			continue
		}
		hints = append(hints, CategoryHint{Name: v, Suggestion: closestCategory(v, names)})
	}
	return hints, nil
}

// closestCategory returns the existing name that fuzzy-matches value with the
// smallest distance, in either direction, ignoring case and accents.
func closestCategory(value string, names []string) string {
	best, bestDistance := "", -1
	for _, name := range names {
		d := fuzzy.RankMatchNormalizedFold(value, name)
		if d < 0 {
			d = fuzzy.RankMatchNormalizedFold(name, value)
		}
		if d < 0 {
			continue
		}
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = name, d
		}
	}
	return best
}
