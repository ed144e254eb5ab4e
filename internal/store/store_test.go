package store

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickshop/storefront/internal/domain/cart"
	"github.com/quickshop/storefront/internal/domain/catalog"
	"github.com/quickshop/storefront/internal/storage"
)

// --- Mock implementations ---

// recordingStore records every Save so tests can assert the persistence
// side effect of each mutation.
type recordingStore struct {
	loaded  cart.Items
	loadErr error
	saveErr error
	saves   []cart.Items
	clears  int
}

func (m *recordingStore) Load(_ context.Context) (cart.Items, error) {
	return m.loaded, m.loadErr
}

func (m *recordingStore) Save(_ context.Context, items cart.Items) error {
	m.saves = append(m.saves, items)
	return m.saveErr
}

func (m *recordingStore) Clear(_ context.Context) error {
	m.clears++
	return nil
}

// --- Helpers ---

func newTestProduct(id int64, title, category string, price int64) catalog.Product {
	return catalog.Product{
		ID:       id,
		Title:    title,
		Price:    decimal.NewFromInt(price),
		Category: category,
		Image:    "https://img.example/product.jpg",
		Rating:   catalog.Rating{Rate: 4.2, Count: 100},
	}
}

// requireAggregates asserts the invariant that both cached aggregates equal
// the values recomputed from the cart items.
func requireAggregates(t *testing.T, s *ProductStore) {
	t.Helper()
	items := s.Cart()
	require.Equal(t, items.Count(), s.CartCount())
	require.True(t, items.Total().Equal(s.CartTotal()),
		"cartTotal %s != recomputed %s", s.CartTotal(), items.Total())
}

// --- Cart action tests ---

func TestAddToCart_NewAndExisting(t *testing.T) {
	s := New(nil, nil)
	ctx := context.Background()
	shirt := newTestProduct(1, "Red Shirt", "clothing", 20)

	s.AddToCart(ctx, shirt)
	require.Len(t, s.Cart(), 1)
	assert.Equal(t, 1, s.CartCount())

	// Adding the same product again merges into one line with quantity 2.
	s.AddToCart(ctx, shirt)
	items := s.Cart()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, s.CartCount())
	assert.True(t, decimal.NewFromInt(40).Equal(s.CartTotal()))
	requireAggregates(t, s)
}

func TestAggregates_NeverStale(t *testing.T) {
	s := New(nil, nil)
	ctx := context.Background()
	shirt := newTestProduct(1, "Red Shirt", "clothing", 20)
	mug := newTestProduct(2, "Blue Mug", "home", 10)

	steps := []func(){
		func() { s.AddToCart(ctx, shirt) },
		func() { s.AddToCart(ctx, mug) },
		func() { s.AddToCart(ctx, shirt) },
		func() { s.UpdateQuantity(ctx, 2, 5) },
		func() { s.RemoveFromCart(ctx, 1) },
		func() { s.UpdateQuantity(ctx, 2, 1) },
		func() { s.RemoveFromCart(ctx, 999) },
		func() { s.ClearCart(ctx) },
	}
	for _, step := range steps {
		step()
		requireAggregates(t, s)
	}
}

func TestUpdateQuantity_NonPositiveRemoves(t *testing.T) {
	ctx := context.Background()
	for _, quantity := range []int{0, -1} {
		s := New(nil, nil)
		s.AddToCart(ctx, newTestProduct(1, "Red Shirt", "clothing", 20))

		s.UpdateQuantity(ctx, 1, quantity)

		assert.Empty(t, s.Cart())
		assert.Equal(t, 0, s.CartCount())
		assert.True(t, s.CartTotal().IsZero())
	}
}

func TestUpdateQuantity_UnknownProductIsNoop(t *testing.T) {
	s := New(nil, nil)
	ctx := context.Background()
	s.AddToCart(ctx, newTestProduct(1, "Red Shirt", "clothing", 20))

	s.UpdateQuantity(ctx, 42, 3)

	require.Len(t, s.Cart(), 1)
	assert.Equal(t, 1, s.CartCount())
}

func TestRemoveFromCart_AbsentIsNoop(t *testing.T) {
	s := New(nil, nil)
	ctx := context.Background()
	s.AddToCart(ctx, newTestProduct(1, "Red Shirt", "clothing", 20))

	s.RemoveFromCart(ctx, 42)

	require.Len(t, s.Cart(), 1)
	requireAggregates(t, s)
}

func TestClearCart(t *testing.T) {
	s := New(nil, nil)
	ctx := context.Background()
	s.AddToCart(ctx, newTestProduct(1, "Red Shirt", "clothing", 20))
	s.AddToCart(ctx, newTestProduct(2, "Blue Mug", "home", 10))

	s.ClearCart(ctx)

	assert.Empty(t, s.Cart())
	assert.Equal(t, 0, s.CartCount())
	assert.True(t, s.CartTotal().IsZero())
}

// --- Filter tests ---

func TestSetFilters_CategoryAndSearchAreANDed(t *testing.T) {
	s := New(nil, nil)
	s.SetProducts([]catalog.Product{
		newTestProduct(1, "USB Cable", "electronics", 5),
		newTestProduct(2, "USB Hub", "electronics", 25),
		newTestProduct(3, "USB Mug", "home", 10),
		newTestProduct(4, "Keyboard", "electronics", 50),
	})

	category := "electronics"
	s.SetFilters(FiltersPatch{Category: &category})
	require.Len(t, s.FilteredProducts(), 3)

	// The search patch keeps the category filter; both must match.
	search := "usb"
	s.SetFilters(FiltersPatch{Search: &search})
	filtered := s.FilteredProducts()
	require.Len(t, filtered, 2)
	for _, p := range filtered {
		assert.Equal(t, "electronics", p.Category)
	}
}

func TestSetFilters_SearchIsCaseInsensitive(t *testing.T) {
	s := New(nil, nil)
	s.SetProducts([]catalog.Product{
		newTestProduct(1, "Red Shirt", "clothing", 20),
		newTestProduct(2, "Blue Mug", "home", 10),
	})

	search := "SHIRT"
	s.SetFilters(FiltersPatch{Search: &search})
	filtered := s.FilteredProducts()
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(1), filtered[0].ID)

	// Clearing the search restores both products.
	empty := ""
	s.SetFilters(FiltersPatch{Search: &empty})
	assert.Len(t, s.FilteredProducts(), 2)
}

func TestSetProducts_EmptyList(t *testing.T) {
	s := New(nil, nil)
	s.SetProducts(nil)

	assert.Empty(t, s.FilteredProducts())
	assert.Empty(t, s.Categories())
}

func TestSetProducts_RecomputesCategoriesAndFilteredView(t *testing.T) {
	s := New(nil, nil)
	search := "shirt"
	s.SetFilters(FiltersPatch{Search: &search})

	s.SetProducts([]catalog.Product{
		newTestProduct(1, "Red Shirt", "clothing", 20),
		newTestProduct(2, "Blue Mug", "home", 10),
		newTestProduct(3, "Green Shirt", "clothing", 22),
	})

	assert.Equal(t, []string{"clothing", "home"}, s.Categories())
	assert.Len(t, s.FilteredProducts(), 2)
}

// --- API state and selection ---

func TestSetAPIState_PartialMerge(t *testing.T) {
	s := New(nil, nil)

	loading := true
	s.SetAPIState(APIStatePatch{Loading: &loading})
	assert.True(t, s.APIState().Loading)
	assert.Empty(t, s.APIState().Err)

	msg := "boom"
	s.SetAPIState(APIStatePatch{Err: &msg})
	// Loading survives a patch that only sets the error.
	assert.True(t, s.APIState().Loading)
	assert.Equal(t, "boom", s.APIState().Err)
}

func TestSetSelectedProduct(t *testing.T) {
	s := New(nil, nil)
	p := newTestProduct(1, "Red Shirt", "clothing", 20)

	s.SetSelectedProduct(&p)
	require.NotNil(t, s.SelectedProduct())
	assert.Equal(t, int64(1), s.SelectedProduct().ID)

	s.SetSelectedProduct(nil)
	assert.Nil(t, s.SelectedProduct())

	// Selection never touches the cart.
	assert.Empty(t, s.Cart())
}

// --- Persistence behaviour ---

func TestCartMutationsPersist(t *testing.T) {
	rec := &recordingStore{}
	s := New(rec, nil)
	ctx := context.Background()
	shirt := newTestProduct(1, "Red Shirt", "clothing", 20)

	s.AddToCart(ctx, shirt)
	s.AddToCart(ctx, shirt)
	s.UpdateQuantity(ctx, 1, 5)
	s.RemoveFromCart(ctx, 1)

	require.Len(t, rec.saves, 4)
	assert.Equal(t, 1, rec.saves[0].Count())
	assert.Equal(t, 2, rec.saves[1].Count())
	assert.Equal(t, 5, rec.saves[2].Count())
	assert.Equal(t, 0, rec.saves[3].Count())
}

func TestPersistFailureDoesNotFailMutation(t *testing.T) {
	rec := &recordingStore{saveErr: errors.New("disk full")}
	s := New(rec, nil)
	ctx := context.Background()

	s.AddToCart(ctx, newTestProduct(1, "Red Shirt", "clothing", 20))

	// In-memory state stays authoritative.
	require.Len(t, s.Cart(), 1)
	requireAggregates(t, s)
}

func TestHydrate_RecomputesAggregates(t *testing.T) {
	shirt := newTestProduct(1, "Red Shirt", "clothing", 20)
	rec := &recordingStore{loaded: cart.Items{{Product: shirt, Quantity: 3}}}
	s := New(rec, nil)

	s.Hydrate(context.Background())

	assert.Equal(t, 3, s.CartCount())
	assert.True(t, decimal.NewFromInt(60).Equal(s.CartTotal()))
}

func TestHydrate_LoadFailureStartsEmpty(t *testing.T) {
	rec := &recordingStore{loadErr: errors.New("corrupt")}
	s := New(rec, nil)

	s.Hydrate(context.Background())

	assert.Empty(t, s.Cart())
	assert.Equal(t, 0, s.CartCount())
}

// TestHydrate_RoundTripThroughBackend drives the cart through the real wire
// codec and a storage backend, then restores it into a fresh store the way a
// process restart would.
func TestHydrate_RoundTripThroughBackend(t *testing.T) {
	backend := storage.NewMemory()
	ctx := context.Background()

	shirt := newTestProduct(1, "Red Shirt", "clothing", 20)
	first := New(storage.NewCartStore(backend, ""), nil)
	first.AddToCart(ctx, shirt)
	first.AddToCart(ctx, shirt)
	first.AddToCart(ctx, newTestProduct(2, "Blue Mug", "home", 9))
	first.UpdateQuantity(ctx, 1, 3)

	second := New(storage.NewCartStore(backend, ""), nil)
	second.Hydrate(ctx)

	items := second.Cart()
	require.Len(t, items, 2)
	assert.Equal(t, "Red Shirt", items[0].Product.Title)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 4, second.CartCount())
	assert.True(t, decimal.NewFromInt(69).Equal(second.CartTotal()))
	requireAggregates(t, second)
}

func TestSnapshot_Consistent(t *testing.T) {
	s := New(nil, nil)
	ctx := context.Background()
	s.SetProducts([]catalog.Product{
		newTestProduct(1, "Red Shirt", "clothing", 20),
		newTestProduct(2, "Blue Mug", "home", 10),
	})
	s.AddToCart(ctx, newTestProduct(1, "Red Shirt", "clothing", 20))

	snap := s.Snapshot()

	assert.Len(t, snap.Products, 2)
	assert.Equal(t, snap.Cart.Count(), snap.CartCount)
	assert.True(t, snap.Cart.Total().Equal(snap.CartTotal))
}
