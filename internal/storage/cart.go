package storage

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/quickshop/storefront/internal/domain/cart"
)

// DefaultCartKey is the storage key the cart record lives under. Changing
// the wire format requires renaming the key; there is no migration.
const DefaultCartKey = "product-store"

var _ cart.Store = (*CartStore)(nil)

// CartStore implements cart.Store on top of any Backend, serializing the
// cart with the cart package's wire codec under a fixed key.
type CartStore struct {
	backend Backend
	key     string
}

// NewCartStore returns a CartStore writing under key. An empty key selects
// DefaultCartKey.
func NewCartStore(backend Backend, key string) *CartStore {
	if key == "" {
		key = DefaultCartKey
	}
	return &CartStore{backend: backend, key: key}
}

// Load reads and decodes the stored cart. A missing key means nothing has
// been stored yet and yields (nil, nil).
func (s *CartStore) Load(ctx context.Context) (cart.Items, error) {
	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load cart")
	}
	items, err := cart.Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return items, nil
}

// Save stores the cart. Saving an empty cart removes the stored value
// instead of writing an empty record.
func (s *CartStore) Save(ctx context.Context, items cart.Items) error {
	if len(items) == 0 {
		return s.Clear(ctx)
	}
	if err := s.backend.Set(ctx, s.key, cart.Encode(items)); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}

// Clear removes the stored cart record.
func (s *CartStore) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}
