package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/storefront/internal/entity"
	"github.com/roach88/storefront/internal/kv"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTestAdapter returns an adapter over a fresh in-memory backend.
func newTestAdapter(t *testing.T) (*kv.Adapter, *kv.MemoryBackend) {
	t.Helper()
	backend := kv.NewMemoryBackend()
	return kv.New(backend, kv.WithLogger(quiet)), backend
}

func newTestCart(t *testing.T, adapter *kv.Adapter, opts ...Option) *Cart {
	t.Helper()
	opts = append([]Option{WithLogger(quiet)}, opts...)
	c := NewCart(context.Background(), adapter, opts...)
	t.Cleanup(c.Close)
	return c
}

func line(id string, price int64, quantity int) entity.CartItem {
	return entity.CartItem{ID: id, Name: id, Price: price, Quantity: quantity}
}
