package storage

import (
	"context"
	"sync"
)

var (
	_ Backend = (*Memory)(nil)
	_ Backend = Noop{}
)

// Memory is an in-process Backend for tests and ephemeral runs.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

func (b *Memory) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (b *Memory) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = append([]byte(nil), value...)
	return nil
}

func (b *Memory) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, key)
	return nil
}

func (b *Memory) Ping(_ context.Context) error { return nil }

// Noop is the degraded backend used when no storage is available: every read
// reports absence and writes are dropped silently, so the in-memory cart
// stays authoritative for the session and nothing survives a restart.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, error) { return nil, ErrNotFound }

func (Noop) Set(context.Context, string, []byte) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

func (Noop) Ping(context.Context) error { return nil }
