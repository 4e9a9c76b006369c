package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ovenlight/bakery-api/internal/models"
)

func sampleProducts() []models.Product {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	return []models.Product{
		{ID: 1, Name: "Classic Chocolate Cake", Description: "Rich dark chocolate layers", Category: "Birthday", Price: 95, Popularity: 40, RatingAvg: 4.6, Tags: "chocolate,birthday", CreatedAt: base},
		{ID: 2, Name: "Vanilla Bean Cupcakes", Description: "Box of six", Category: "Cupcakes", Price: 30, Popularity: 75, RatingAvg: 4.2, Tags: "vanilla,cupcake", CreatedAt: base.Add(24 * time.Hour)},
		{ID: 3, Name: "Red Velvet Cake", Description: "Cream cheese frosting", Category: "Birthday", Price: 110, Popularity: 60, RatingAvg: 4.9, Tags: "red velvet", CreatedAt: base.Add(48 * time.Hour)},
		{ID: 4, Name: "Sourdough Loaf", Description: "48h fermented", Category: "Bread", Price: 12, Popularity: 90, RatingAvg: 4.8, Tags: "bread,sourdough", CreatedAt: base.Add(72 * time.Hour)},
	}
}

func ids(products []models.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterByCategory(t *testing.T) {
	got := Apply(sampleProducts(), Filter{Category: "Birthday"}, SortNone)
	assert.Equal(t, []int64{1, 3}, ids(got))
}

func TestClearingFiltersRestoresOriginalOrder(t *testing.T) {
	products := sampleProducts()

	filtered := Apply(products, Filter{Category: "Birthday"}, SortNone)
	assert.Len(t, filtered, 2)

	// Clearing every filter with no sort must return the collection
	// exactly as fetched.
	cleared := Apply(products, Filter{}, SortNone)
	assert.Equal(t, ids(products), ids(cleared))
}

func TestPriceRange(t *testing.T) {
	min, max := 20.0, 100.0
	got := Apply(sampleProducts(), Filter{MinPrice: &min, MaxPrice: &max}, SortNone)
	assert.Equal(t, []int64{1, 2}, ids(got))
}

func TestQueryMatchesNameDescriptionAndTags(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"name match, case-insensitive", "red velvet", []int64{3}},
		{"description match", "frosting", []int64{3}},
		{"tag match", "sourdough", []int64{4}},
		{"no match", "macaron", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(sampleProducts(), Filter{Query: tt.query}, SortNone)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSortKeys(t *testing.T) {
	tests := []struct {
		sortKey string
		want    []int64
	}{
		{SortPopular, []int64{4, 2, 3, 1}},
		{SortPriceAsc, []int64{4, 2, 1, 3}},
		{SortPriceDesc, []int64{3, 1, 2, 4}},
		{SortName, []int64{1, 3, 4, 2}},
		{SortRating, []int64{3, 4, 1, 2}},
		{SortNewest, []int64{4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.sortKey, func(t *testing.T) {
			got := Apply(sampleProducts(), Filter{}, tt.sortKey)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	products := sampleProducts()
	products[0].Price = 30 // now equal to product 2

	got := Apply(products, Filter{}, SortPriceAsc)
	// Products 1 and 2 share a price; fetch order breaks the tie.
	assert.Equal(t, []int64{4, 1, 2, 3}, ids(got))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	products := sampleProducts()
	_ = Apply(products, Filter{}, SortPriceDesc)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(products))
}
