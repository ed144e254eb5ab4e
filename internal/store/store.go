// Package store holds the in-memory state for the storefront: the product
// catalog, its filtered view, the shopping cart, and request status. All
// mutation goes through named actions; derived values (filtered products,
// categories, cart aggregates) are recomputed inside the action that changes
// their inputs, so readers never observe stale derived state.
package store

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/quickshop/storefront/internal/domain/cart"
	"github.com/quickshop/storefront/internal/domain/catalog"
)

// APIState records the status of the catalog bootstrap request.
type APIState struct {
	Loading bool   `json:"loading"`
	Err     string `json:"error,omitempty"`
}

// APIStatePatch is a partial APIState update. Nil fields keep the current
// value; to clear the error, point Err at an empty string.
type APIStatePatch struct {
	Loading *bool
	Err     *string
}

// FiltersPatch is a partial filter update; nil fields keep the current value.
type FiltersPatch struct {
	Category *string
	Search   *string
}

// ProductStore is the single source of truth for catalog and cart state.
//
// Actions are serialized by an internal mutex: each one runs to completion,
// including the recomputation of every derived value, before the next starts.
// Cart-mutating actions additionally write the cart through the configured
// cart.Store; a persistence failure is logged and swallowed, leaving the
// in-memory cart authoritative for the session.
type ProductStore struct {
	mu sync.Mutex

	products   []catalog.Product
	filtered   []catalog.Product
	categories []string
	items      cart.Items
	cartCount  int
	cartTotal  decimal.Decimal
	filters    catalog.Filters
	apiState   APIState
	selected   *catalog.Product

	persist cart.Store
	lg      *zap.Logger
}

// New creates an empty ProductStore. Both persist and lg may be nil; a nil
// persist drops cart writes and loads nothing, matching an environment with
// no storage backend.
func New(persist cart.Store, lg *zap.Logger) *ProductStore {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &ProductStore{
		cartTotal: decimal.Zero,
		persist:   persist,
		lg:        lg,
	}
}

// Hydrate restores the persisted cart, recomputing both aggregates from the
// restored items rather than trusting anything the backend stored. A read
// failure leaves the cart empty and is not surfaced beyond a log line.
func (s *ProductStore) Hydrate(ctx context.Context) {
	if s.persist == nil {
		return
	}
	items, err := s.persist.Load(ctx)
	if err != nil {
		s.lg.Warn("Cart restore failed, starting empty", zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.recomputeAggregates()
}

// SetProducts replaces the product list, then recomputes the category set
// and re-applies the current filters. An empty list is valid.
func (s *ProductStore) SetProducts(products []catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.categories = catalog.Categories(products)
	s.filtered = s.filters.Apply(s.products)
}

// SetFilters merges the patch into the current filters and re-applies them.
func (s *ProductStore) SetFilters(patch FiltersPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.Category != nil {
		s.filters.Category = *patch.Category
	}
	if patch.Search != nil {
		s.filters.Search = *patch.Search
	}
	s.filtered = s.filters.Apply(s.products)
}

// SetAPIState merges the patch into the request status. No derived state
// depends on it.
func (s *ProductStore) SetAPIState(patch APIStatePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.Loading != nil {
		s.apiState.Loading = *patch.Loading
	}
	if patch.Err != nil {
		s.apiState.Err = *patch.Err
	}
}

// SetSelectedProduct sets or clears (nil) the currently viewed product.
func (s *ProductStore) SetSelectedProduct(p *catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.selected = nil
		return
	}
	cp := *p
	s.selected = &cp
}

// AddToCart adds one unit of the product. When a line for the product
// already exists its quantity is bumped through the same path UpdateQuantity
// uses, so a product never occupies two lines.
func (s *ProductStore) AddToCart(ctx context.Context, p catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.items.Find(p.ID); i >= 0 {
		s.setQuantityLocked(ctx, p.ID, s.items[i].Quantity+1)
		return
	}
	s.items = append(s.items.Clone(), cart.Item{Product: p, Quantity: 1})
	s.recomputeAggregates()
	s.persistLocked(ctx)
}

// RemoveFromCart deletes the line for productID. A missing line is a no-op,
// not an error.
func (s *ProductStore) RemoveFromCart(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, productID)
}

// UpdateQuantity replaces the quantity of the line for productID. A quantity
// of zero or less removes the line entirely.
func (s *ProductStore) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setQuantityLocked(ctx, productID, quantity)
}

// ClearCart empties the cart and zeroes both aggregates.
func (s *ProductStore) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.recomputeAggregates()
	s.persistLocked(ctx)
}

func (s *ProductStore) setQuantityLocked(ctx context.Context, productID int64, quantity int) {
	if quantity <= 0 {
		s.removeLocked(ctx, productID)
		return
	}
	i := s.items.Find(productID)
	if i < 0 {
		return
	}
	items := s.items.Clone()
	items[i].Quantity = quantity
	s.items = items
	s.recomputeAggregates()
	s.persistLocked(ctx)
}

func (s *ProductStore) removeLocked(ctx context.Context, productID int64) {
	i := s.items.Find(productID)
	if i < 0 {
		return
	}
	items := make(cart.Items, 0, len(s.items)-1)
	items = append(items, s.items[:i]...)
	items = append(items, s.items[i+1:]...)
	s.items = items
	s.recomputeAggregates()
	s.persistLocked(ctx)
}

// recomputeAggregates re-derives cartCount and cartTotal from the items.
// Must hold s.mu.
func (s *ProductStore) recomputeAggregates() {
	s.cartCount = s.items.Count()
	s.cartTotal = s.items.Total()
}

// persistLocked writes the cart through the persistence port. Must hold
// s.mu. Backend failures never fail the mutation that triggered them.
func (s *ProductStore) persistLocked(ctx context.Context) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(ctx, s.items.Clone()); err != nil {
		s.lg.Warn("Cart persist failed, in-memory state kept", zap.Error(err))
	}
}

// Products returns a copy of the full product list.
func (s *ProductStore) Products() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Product(nil), s.products...)
}

// FilteredProducts returns a copy of the products matching the current
// filters.
func (s *ProductStore) FilteredProducts() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Product(nil), s.filtered...)
}

// Categories returns a copy of the distinct category set in first-seen order.
func (s *ProductStore) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.categories...)
}

// Cart returns a copy of the cart items.
func (s *ProductStore) Cart() cart.Items {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

// CartCount returns the cached sum of quantities.
func (s *ProductStore) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartCount
}

// CartTotal returns the cached sum of price times quantity.
func (s *ProductStore) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartTotal
}

// Filters returns the current filter values.
func (s *ProductStore) Filters() catalog.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// APIState returns the current request status.
func (s *ProductStore) APIState() APIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiState
}

// SelectedProduct returns the currently viewed product, or nil.
func (s *ProductStore) SelectedProduct() *catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return nil
	}
	cp := *s.selected
	return &cp
}

// Snapshot is a point-in-time copy of the whole store, taken under one lock
// so the invariants between fields hold within it.
type Snapshot struct {
	Products         []catalog.Product `json:"products"`
	FilteredProducts []catalog.Product `json:"filteredProducts"`
	Categories       []string          `json:"categories"`
	Cart             cart.Items        `json:"cart"`
	CartCount        int               `json:"cartCount"`
	CartTotal        decimal.Decimal   `json:"cartTotal"`
	Filters          catalog.Filters   `json:"filters"`
	APIState         APIState          `json:"apiState"`
	SelectedProduct  *catalog.Product  `json:"selectedProduct,omitempty"`
}

// Snapshot returns a consistent copy of the full store state.
func (s *ProductStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var selected *catalog.Product
	if s.selected != nil {
		cp := *s.selected
		selected = &cp
	}
	return Snapshot{
		Products:         append([]catalog.Product(nil), s.products...),
		FilteredProducts: append([]catalog.Product(nil), s.filtered...),
		Categories:       append([]string(nil), s.categories...),
		Cart:             s.items.Clone(),
		CartCount:        s.cartCount,
		CartTotal:        s.cartTotal,
		Filters:          s.filters,
		APIState:         s.apiState,
		SelectedProduct:  selected,
	}
}
