package service

import (
	"sort"

	"github.com/mindcove/mindex/internal/domain"
)

// RoleWeightTable maps role and content class to a positive score multiplier.
// Missing entries default to 1.0. The table is built once at startup and
// never mutated afterwards.
type RoleWeightTable map[domain.Role]map[domain.ContentClass]float64

// DefaultRoleWeightTable returns the built-in weighting policy. The
// multipliers are product-tuned constants, not derived values.
func DefaultRoleWeightTable() RoleWeightTable {
	return RoleWeightTable{
		domain.RoleDeveloper: {
			domain.ContentClassCode:           1.5,
			domain.ContentClassDatabaseSchema: 1.2,
			domain.ContentClassMarkdown:       1.1,
			domain.ContentClassDocument:       1.0,
		},
		domain.RoleProductManager: {
			domain.ContentClassDocument:       1.4,
			domain.ContentClassMarkdown:       1.2,
			domain.ContentClassDatabaseSchema: 0.9,
			domain.ContentClassCode:           0.8,
		},
		domain.RoleTester: {
			domain.ContentClassCode:           1.3,
			domain.ContentClassDocument:       1.2,
			domain.ContentClassMarkdown:       1.0,
			domain.ContentClassDatabaseSchema: 1.0,
		},
		domain.RoleArchitect: {
			domain.ContentClassDatabaseSchema: 1.4,
			domain.ContentClassMarkdown:       1.3,
			domain.ContentClassCode:           1.1,
			domain.ContentClassDocument:       1.0,
		},
	}
}

// Weight returns the multiplier for a role and content class, defaulting to 1.0.
func (t RoleWeightTable) Weight(role domain.Role, class domain.ContentClass) float64 {
	weights, ok := t[role]
	if !ok {
		return 1.0
	}
	w, ok := weights[class]
	if !ok {
		return 1.0
	}
	return w
}

// applyRoleWeights re-ranks results for the given role. With no role (or a
// role absent from the table) the results pass through untouched: they are
// already similarity-sorted and no weighting fields are set.
//
// The sort is stable so equal weighted scores keep their original relative
// order, which makes repeated searches deterministic.
func applyRoleWeights(results []*domain.SearchResult, role domain.Role, table RoleWeightTable) {
	if role == "" {
		return
	}
	if _, ok := table[role]; !ok {
		return
	}

	for _, r := range results {
		weight := table.Weight(role, domain.ClassifyContentType(r.ContentType))
		original := r.Score
		r.OriginalScore = &original
		r.RoleWeight = &weight
		r.Score = original * weight
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
