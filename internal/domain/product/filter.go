// internal/domain/product/filter.go
package product

import "strings"

// FilterParams describes the catalog filters. Zero values mean "no filter";
// Category accepts the CategoryAll wildcard.
type FilterParams struct {
	Category    string
	Search      string
	MinPrice    *int64 // inclusive
	MaxPrice    *int64 // inclusive
	InStockOnly bool
	Featured    bool
	New         bool
}

// Filter applies the params to a product list. The catalog is small and
// session-immutable, so filtering is done in memory on every call.
func Filter(products []Product, params FilterParams) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !Matches(p, params) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Matches reports whether a single product satisfies the filter params
func Matches(p Product, params FilterParams) bool {
	if params.Category != "" && params.Category != CategoryAll && string(p.Category) != params.Category {
		return false
	}
	if params.Search != "" && !MatchesSearch(p, params.Search) {
		return false
	}
	if params.MinPrice != nil && p.Price < *params.MinPrice {
		return false
	}
	if params.MaxPrice != nil && p.Price > *params.MaxPrice {
		return false
	}
	if params.InStockOnly && !p.InStock() {
		return false
	}
	if params.Featured && !p.IsFeatured {
		return false
	}
	if params.New && !p.IsNew {
		return false
	}
	return true
}

// MatchesSearch does a case-insensitive substring match over name and description
func MatchesSearch(p Product, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

// Related returns products in the same category as current, excluding
// current itself, capped at limit
func Related(products []Product, current Product, limit int) []Product {
	out := make([]Product, 0, limit)
	for _, p := range products {
		if p.ID == current.ID || p.Category != current.Category {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}
