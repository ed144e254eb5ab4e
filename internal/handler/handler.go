// Package handler exposes the product store over HTTP. Handlers are thin:
// they translate requests into store actions and store reads into JSON, with
// no business logic of their own.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quickshop/storefront/internal/domain/catalog"
	"github.com/quickshop/storefront/internal/store"
)

// Handler wires the store, the catalog source, and the bootstrap loader into
// an HTTP API under /api.
type Handler struct {
	store  *store.ProductStore
	source catalog.Source
	loader *store.Loader
}

// New constructs a Handler.
func New(s *store.ProductStore, source catalog.Source, loader *store.Loader) *Handler {
	return &Handler{store: s, source: source, loader: loader}
}

// Routes returns the /api router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/categories", h.listCategories)
	r.Put("/filters", h.setFilters)

	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addToCart)
	r.Put("/cart/items/{id}", h.updateQuantity)
	r.Delete("/cart/items/{id}", h.removeFromCart)
	r.Delete("/cart", h.clearCart)

	r.Get("/selection", h.getSelection)
	r.Put("/selection", h.setSelection)
	r.Delete("/selection", h.clearSelection)

	r.Get("/status", h.getStatus)
	r.Get("/state", h.getState)
	r.Post("/catalog/refresh", h.refreshCatalog)

	return r
}
