package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/quickshop/storefront/internal/domain/catalog"
)

// Loader performs the guarded catalog bootstrap: one fetch per session, with
// the request status mirrored into the store's APIState. There is no retry
// and no timeout beyond the context; a failed fetch leaves the product list
// as it was and records the error message for readers.
type Loader struct {
	store  *ProductStore
	source catalog.Source
	lg     *zap.Logger
}

// NewLoader creates a Loader over the given store and catalog source.
func NewLoader(store *ProductStore, source catalog.Source, lg *zap.Logger) *Loader {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Loader{store: store, source: source, lg: lg}
}

// Load fetches the catalog into the store unless products are already
// present. The guard makes repeated calls idempotent; it is not a lock, so a
// second call racing the first may fetch again, with last-write-wins on a
// catalog that does not change between fetches.
func (l *Loader) Load(ctx context.Context) error {
	if len(l.store.Products()) > 0 {
		return nil
	}

	loading := true
	noErr := ""
	l.store.SetAPIState(APIStatePatch{Loading: &loading, Err: &noErr})

	products, err := l.source.List(ctx)

	loading = false
	if err != nil {
		msg := err.Error()
		l.store.SetAPIState(APIStatePatch{Loading: &loading, Err: &msg})
		l.lg.Warn("Catalog fetch failed", zap.Error(err))
		return err
	}

	l.store.SetProducts(products)
	l.store.SetAPIState(APIStatePatch{Loading: &loading})
	l.lg.Info("Catalog loaded", zap.Int("products", len(products)))
	return nil
}
