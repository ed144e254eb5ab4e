// Package storage provides the key-value backends the cart is persisted
// through, and the adapter that binds a backend to the cart wire format.
package storage

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by Backend.Get when no value is stored under the
// requested key.
var ErrNotFound = errors.New("key not found")

// Backend is a minimal key-value store. Implementations must treat Set as
// a full replace and Delete of a missing key as a no-op.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
