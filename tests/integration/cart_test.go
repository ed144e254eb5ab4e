//go:build integration

package integration

import (
	"net/http"
	"testing"
)

// TestCartLifecycle walks a cart through every mutation, checking the count
// and total aggregates the server reports after each step.
func TestCartLifecycle(t *testing.T) {
	getCart := func() cartResponse {
		resp := doGet(t, "/api/cart")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET /api/cart: expected 200, got %d", resp.StatusCode)
		}
		return decodeJSON[cartResponse](t, resp)
	}

	// Start clean.
	resp := doDelete(t, "/api/cart")
	resp.Body.Close()
	if cart := getCart(); len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(cart.Items))
	}

	// Add the same product twice: one line, quantity 2.
	resp = doPost(t, "/api/cart/items", map[string]any{"productId": 1})
	resp.Body.Close()
	resp = doPost(t, "/api/cart/items", map[string]any{"productId": 1})
	cart := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Errorf("quantity: got %d, want 2", cart.Items[0].Quantity)
	}
	if cart.Count != 2 {
		t.Errorf("count: got %d, want 2", cart.Count)
	}
	if cart.Total != "25.98" {
		t.Errorf("total: got %q, want %q", cart.Total, "25.98")
	}

	// Set the quantity directly.
	resp = doPut(t, "/api/cart/items/1", map[string]any{"quantity": 5})
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if cart.Count != 5 || cart.Total != "64.95" {
		t.Errorf("after update: count=%d total=%q, want 5 and 64.95", cart.Count, cart.Total)
	}

	// Second product.
	resp = doPost(t, "/api/cart/items", map[string]any{"productId": 5})
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(cart.Items) != 2 || cart.Count != 6 || cart.Total != "88.95" {
		t.Errorf("after second product: lines=%d count=%d total=%q", len(cart.Items), cart.Count, cart.Total)
	}

	// Quantity zero removes the line.
	resp = doPut(t, "/api/cart/items/1", map[string]any{"quantity": 0})
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line after zero-quantity update, got %d", len(cart.Items))
	}
	if cart.Items[0].Product.ID != 5 {
		t.Errorf("remaining line: got product %d, want 5", cart.Items[0].Product.ID)
	}

	// Removing an absent line succeeds and changes nothing.
	resp = doDelete(t, "/api/cart/items/999")
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || len(cart.Items) != 1 {
		t.Errorf("remove absent: status=%d lines=%d", resp.StatusCode, len(cart.Items))
	}

	resp = doDelete(t, "/api/cart")
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(cart.Items) != 0 || cart.Count != 0 || cart.Total != "0" {
		t.Errorf("after clear: lines=%d count=%d total=%q", len(cart.Items), cart.Count, cart.Total)
	}
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	resp := doPost(t, "/api/cart/items", map[string]any{"productId": 424242})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Message == "" {
		t.Error("error message is empty")
	}
}

func TestSelection(t *testing.T) {
	resp := doDelete(t, "/api/selection")
	resp.Body.Close()

	resp = doGet(t, "/api/selection")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 with no selection, got %d", resp.StatusCode)
	}

	resp = doPut(t, "/api/selection", map[string]any{"productId": 2})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set selection: expected 200, got %d", resp.StatusCode)
	}

	resp = doGet(t, "/api/selection")
	product := decodeJSON[productResponse](t, resp)
	resp.Body.Close()
	if product.ID != 2 {
		t.Errorf("selection: got product %d, want 2", product.ID)
	}

	resp = doDelete(t, "/api/selection")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear selection: expected 204, got %d", resp.StatusCode)
	}
}
