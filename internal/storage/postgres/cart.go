package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickshop/storefront/internal/domain/cart"
	"github.com/quickshop/storefront/internal/storage"
)

var _ cart.Store = (*CartStore)(nil)

// CartStore implements cart.Store against the cart_snapshots table. The
// items column holds the same wire record the key-value backends store;
// item_count and total are written alongside for SQL-level visibility but
// are never read back — aggregates are recomputed from the items on load.
type CartStore struct {
	pool *pgxpool.Pool
	key  string
}

// NewCartStore returns a CartStore writing under key. An empty key selects
// the default cart key.
func NewCartStore(pool *pgxpool.Pool, key string) *CartStore {
	if key == "" {
		key = storage.DefaultCartKey
	}
	return &CartStore{pool: pool, key: key}
}

// Load reads and decodes the stored cart, or (nil, nil) when no row exists.
func (s *CartStore) Load(ctx context.Context) (cart.Items, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT items FROM cart_snapshots WHERE key = $1`, s.key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

// Save upserts the cart snapshot. An empty cart removes the row.
func (s *CartStore) Save(ctx context.Context, items cart.Items) error {
	if len(items) == 0 {
		return s.Clear(ctx)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO cart_snapshots (key, items, item_count, total, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (key) DO UPDATE
		SET items = EXCLUDED.items,
		    item_count = EXCLUDED.item_count,
		    total = EXCLUDED.total,
		    updated_at = now()`,
		s.key, cart.Encode(items), items.Count(), items.Total(),
	)
	if err != nil {
		return errors.Wrapf(err, "save cart %q", s.key)
	}
	return nil
}

// Clear deletes the snapshot row. A missing row is not an error.
func (s *CartStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM cart_snapshots WHERE key = $1`, s.key,
	); err != nil {
		return errors.Wrapf(err, "clear cart %q", s.key)
	}
	return nil
}
