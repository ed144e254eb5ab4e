package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/quickshop/storefront/internal/domain/catalog"
)

// Item is a single cart line: a product plus a positive quantity. A cart
// holds at most one Item per product ID.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Items is an ordered cart. Order is insertion order; aggregates are always
// derived from the items themselves.
type Items []Item

// Count returns the total number of units across all lines.
func (items Items) Count() int {
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return count
}

// Total returns the sum of price times quantity over all lines.
func (items Items) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Find returns the index of the line holding productID, or -1.
func (items Items) Find(productID int64) int {
	for i, it := range items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no backing array with items.
func (items Items) Clone() Items {
	if items == nil {
		return nil
	}
	out := make(Items, len(items))
	copy(out, items)
	return out
}

// Store persists the cart across sessions. Load returns (nil, nil) when
// nothing has been stored yet. Implementations must tolerate concurrent
// callers serializing their own access; the store itself is last-write-wins.
type Store interface {
	Load(ctx context.Context) (Items, error)
	Save(ctx context.Context, items Items) error
	Clear(ctx context.Context) error
}
