package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickshop/storefront/internal/domain/catalog"
)

const productsJSON = `[
	{"id": 1, "title": "Red Shirt", "description": "A red shirt", "price": 19.99,
	 "category": "clothing", "image": "https://img.example/1.jpg",
	 "rating": {"rate": 4.3, "count": 120}},
	{"id": 2, "title": "Blue Mug", "description": "A blue mug", "price": 9.5,
	 "category": "home", "image": "https://img.example/2.jpg",
	 "rating": {"rate": 3.8, "count": 40}}
]`

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productsJSON))
	})
	mux.HandleFunc("GET /products/categories", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["clothing", "home"]`))
	})
	mux.HandleFunc("GET /products/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 1, "title": "Red Shirt", "price": 19.99, "category": "clothing"}`))
	})
	mux.HandleFunc("GET /products/999", func(w http.ResponseWriter, _ *http.Request) {
		// The upstream API answers unknown IDs with an empty 200 body.
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := NewClient(ClientConfig{BaseURL: baseURL})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClientList(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestClient(t, srv.URL)

	products, err := c.List(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, "Red Shirt", products[0].Title)
	assert.Equal(t, "19.99", products[0].Price.String())
	assert.Equal(t, 4.3, products[0].Rating.Rate)
}

func TestClientGetByID(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestClient(t, srv.URL)

	p, err := c.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Red Shirt", p.Title)

	_, err = c.GetByID(context.Background(), 999)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestClientCategories(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestClient(t, srv.URL)

	categories, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"clothing", "home"}, categories)
}

func TestClientNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL)

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClientContextCancelled(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
