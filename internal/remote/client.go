// Package remote implements the catalog.Source contract against the remote
// product API, plus a local snapshot form of the same catalog.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"resty.dev/v3"

	"github.com/quickshop/storefront/internal/domain/catalog"
)

// ClientConfig controls the HTTP behaviour of the catalog client.
type ClientConfig struct {
	// BaseURL is the catalog API root, e.g. https://fakestoreapi.com.
	BaseURL string
	// Timeout bounds a single request including retries wait.
	Timeout time.Duration
	// RetryCount is the number of retries after the first failed attempt.
	RetryCount int
}

var _ catalog.Source = (*Client)(nil)

// Client fetches products and categories over HTTP. A non-2xx response is a
// fetch failure; there is no response caching here, that is the remote
// service's concern.
type Client struct {
	http *resty.Client
}

// NewClient builds a Client with retry and timeout defaults suitable for a
// catalog that is fetched once per session.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: client}
}

// Close releases idle connections held by the underlying client.
func (c *Client) Close() error {
	return c.http.Close()
}

// List fetches the full product list.
func (c *Client) List(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := c.getJSON(ctx, "/products", &products); err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

// GetByID fetches a single product. The API answers an unknown ID with an
// empty body, which is mapped to catalog.ErrNotFound.
func (c *Client) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var p catalog.Product
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%d", id), &p); err != nil {
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	if p.ID == 0 {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

// Categories fetches the category list.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, "/products/categories", &categories); err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "request cancelled")
		}
		return errors.Wrap(err, "fetch")
	}
	if resp.IsError() {
		return errors.Errorf("unexpected status %d %s", resp.StatusCode(), resp.Status())
	}
	body := resp.String()
	if body == "" || body == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
