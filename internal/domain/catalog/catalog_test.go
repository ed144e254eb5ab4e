package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func product(id int64, title, category string) Product {
	return Product{
		ID:       id,
		Title:    title,
		Price:    decimal.NewFromInt(10),
		Category: category,
	}
}

func TestFiltersMatch(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		product Product
		want    bool
	}{
		{"no filters", Filters{}, product(1, "Red Shirt", "clothing"), true},
		{"category match", Filters{Category: "clothing"}, product(1, "Red Shirt", "clothing"), true},
		{"category mismatch", Filters{Category: "home"}, product(1, "Red Shirt", "clothing"), false},
		{"category is exact, not substring", Filters{Category: "cloth"}, product(1, "Red Shirt", "clothing"), false},
		{"search case-insensitive", Filters{Search: "ShIrT"}, product(1, "Red Shirt", "clothing"), true},
		{"search substring", Filters{Search: "ed sh"}, product(1, "Red Shirt", "clothing"), true},
		{"search mismatch", Filters{Search: "mug"}, product(1, "Red Shirt", "clothing"), false},
		{"both must match", Filters{Category: "clothing", Search: "mug"}, product(1, "Red Shirt", "clothing"), false},
		{"both matching", Filters{Category: "clothing", Search: "red"}, product(1, "Red Shirt", "clothing"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.Match(tt.product))
		})
	}
}

func TestFiltersApply_PreservesOrder(t *testing.T) {
	products := []Product{
		product(1, "USB Cable", "electronics"),
		product(2, "Mug", "home"),
		product(3, "USB Hub", "electronics"),
	}

	got := Filters{Search: "usb"}.Apply(products)

	assert.Equal(t, []int64{1, 3}, []int64{got[0].ID, got[1].ID})
	// Input slice untouched.
	assert.Len(t, products, 3)
}

func TestCategories(t *testing.T) {
	assert.Empty(t, Categories(nil))

	got := Categories([]Product{
		product(1, "a", "clothing"),
		product(2, "b", "home"),
		product(3, "c", "clothing"),
		product(4, "d", "electronics"),
	})
	assert.Equal(t, []string{"clothing", "home", "electronics"}, got)
}
