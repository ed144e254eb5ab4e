package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/quickshop/storefront/internal/domain/catalog"
)

func (h *Handler) getSelection(w http.ResponseWriter, r *http.Request) {
	p := h.store.SelectedProduct()
	if p == nil {
		writeError(w, r, http.StatusNotFound, "no product selected")
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

// setSelection marks a product as the one currently being viewed. Selecting
// has no effect on the cart.
func (h *Handler) setSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64 `json:"productId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.findProduct(r, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		zctx.From(r.Context()).Error("Product lookup failed", zap.Int64("id", req.ProductID), zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "catalog unavailable")
		return
	}
	h.store.SetSelectedProduct(p)
	writeJSON(w, r, http.StatusOK, p)
}

func (h *Handler) clearSelection(w http.ResponseWriter, r *http.Request) {
	h.store.SetSelectedProduct(nil)
	w.WriteHeader(http.StatusNoContent)
}
