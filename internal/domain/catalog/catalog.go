package catalog

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a single catalog entry. Products are immutable once
// fetched from the remote catalog.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// Rating holds the average review score and the number of reviews.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Source defines read operations against the remote product catalog.
type Source interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// Filters describes the user-selected constraints on the product list.
// Empty fields are inactive; active fields are combined with AND.
type Filters struct {
	// Category must match the product category exactly.
	Category string `json:"category"`
	// Search matches case-insensitively against a substring of the title.
	Search string `json:"search"`
}

// Match reports whether p satisfies every active filter.
func (f Filters) Match(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// Apply returns the products that satisfy every active filter. The input
// slice is never modified; the returned slice preserves input order.
func (f Filters) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct product categories in first-seen order.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
