package catalog

import (
	"sort"
	"strings"

	"github.com/ovenlight/bakery-api/internal/models"
)

// Filter holds the active storefront narrowing predicates. Zero values mean
// "not active": empty category/query match everything, nil price bounds are
// unbounded.
type Filter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Query    string
}

// Sort keys accepted by Apply. SortNone keeps the original fetch order.
const (
	SortNone      = ""
	SortPopular   = "popular"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
	SortRating    = "rating"
	SortNewest    = "newest"
)

// Apply produces a filtered-then-sorted view of the products. The input
// slice is never mutated; with no filters and no sort the result is the
// collection in its original order.
func Apply(products []models.Product, f Filter, sortKey string) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.matches(p) {
			out = append(out, p)
		}
	}

	less := comparator(sortKey)
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func (f Filter) matches(p models.Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!strings.Contains(strings.ToLower(p.Tags), q) {
			return false
		}
	}
	return true
}

func comparator(sortKey string) func(a, b models.Product) bool {
	switch sortKey {
	case SortPopular:
		return func(a, b models.Product) bool { return a.Popularity > b.Popularity }
	case SortPriceAsc:
		return func(a, b models.Product) bool { return a.Price < b.Price }
	case SortPriceDesc:
		return func(a, b models.Product) bool { return a.Price > b.Price }
	case SortName:
		return func(a, b models.Product) bool { return a.Name < b.Name }
	case SortRating:
		return func(a, b models.Product) bool { return a.RatingAvg > b.RatingAvg }
	case SortNewest:
		return func(a, b models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return nil
	}
}
