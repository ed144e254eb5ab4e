package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/quickshop/storefront/internal/domain/cart"
	"github.com/quickshop/storefront/internal/domain/catalog"
)

// cartResponse mirrors the store's cart view: the lines plus both cached
// aggregates, which are consistent with the lines by construction.
type cartResponse struct {
	Items cart.Items      `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func (h *Handler) cartView() cartResponse {
	snap := h.store.Snapshot()
	items := snap.Cart
	if items == nil {
		items = cart.Items{}
	}
	return cartResponse{Items: items, Count: snap.CartCount, Total: snap.CartTotal}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.cartView())
}

// addToCart adds one unit of the requested product, resolving it through the
// loaded catalog or the remote source.
func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64 `json:"productId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.findProduct(r, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusUnprocessableEntity, "product not found")
			return
		}
		zctx.From(r.Context()).Error("Product lookup failed", zap.Int64("id", req.ProductID), zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "catalog unavailable")
		return
	}
	h.store.AddToCart(r.Context(), *p)
	writeJSON(w, r, http.StatusOK, h.cartView())
}

// updateQuantity replaces a line's quantity. Zero and negative quantities
// remove the line, matching the store's semantics.
func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	h.store.UpdateQuantity(r.Context(), id, req.Quantity)
	writeJSON(w, r, http.StatusOK, h.cartView())
}

// removeFromCart deletes a line. Removing an absent line succeeds.
func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	h.store.RemoveFromCart(r.Context(), id)
	writeJSON(w, r, http.StatusOK, h.cartView())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCart(r.Context())
	writeJSON(w, r, http.StatusOK, h.cartView())
}
