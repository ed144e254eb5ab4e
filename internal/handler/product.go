package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/quickshop/storefront/internal/domain/catalog"
	"github.com/quickshop/storefront/internal/store"
)

// listProducts returns the products matching the current filters. Before the
// bootstrap has loaded anything the list is empty, not null.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products := h.store.FilteredProducts()
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, r, http.StatusOK, products)
}

// getProduct looks the product up in the store and falls back to the remote
// source for products the bootstrap has not loaded.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	p, err := h.findProduct(r, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		zctx.From(r.Context()).Error("Product lookup failed", zap.Int64("id", id), zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "catalog unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.store.Categories())
}

// setFilters merges a partial filter update and answers with the resulting
// filtered view.
func (h *Handler) setFilters(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category *string `json:"category"`
		Search   *string `json:"search"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	h.store.SetFilters(store.FiltersPatch{Category: req.Category, Search: req.Search})
	writeJSON(w, r, http.StatusOK, struct {
		Filters  catalog.Filters   `json:"filters"`
		Products []catalog.Product `json:"products"`
	}{
		Filters:  h.store.Filters(),
		Products: h.store.FilteredProducts(),
	})
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.store.APIState())
}

func (h *Handler) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.store.Snapshot())
}

// refreshCatalog triggers the guarded bootstrap fetch. When products are
// already loaded this is a no-op by design.
func (h *Handler) refreshCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.loader.Load(r.Context()); err != nil {
		writeError(w, r, http.StatusBadGateway, h.store.APIState().Err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Products int `json:"products"`
	}{Products: len(h.store.Products())})
}

// findProduct resolves a product from the loaded catalog first, then the
// remote source.
func (h *Handler) findProduct(r *http.Request, id int64) (*catalog.Product, error) {
	for _, p := range h.store.Products() {
		if p.ID == id {
			return &p, nil
		}
	}
	return h.source.GetByID(r.Context(), id)
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}
