package store

import (
	"fmt"
	"log/slog"

	"github.com/roach88/storefront/internal/bus"
)

// Default storage keys, before namespacing by the adapter.
const (
	CartKey     = "cart"
	WishlistKey = "wishlist"
)

// Rejection describes a mutation that was refused because of invalid input.
type Rejection struct {
	Store string
	Op    string
	ID    string
	Err   error
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s.%s(%q): %v", r.Store, r.Op, r.ID, r.Err)
}

// Option configures a Cart or Wishlist.
type Option func(*options)

type options struct {
	key      string
	bus      *bus.Bus
	logger   *slog.Logger
	onReject func(Rejection)
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithBus publishes a bus.CollectionChanged after every mutation.
func WithBus(b *bus.Bus) Option {
	return func(o *options) {
		o.bus = b
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRejectHook registers a diagnostic callback for refused mutations.
func WithRejectHook(fn func(Rejection)) Option {
	return func(o *options) {
		o.onReject = fn
	}
}

func buildOptions(defaultKey string, opts []Option) options {
	o := options{
		key:    defaultKey,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
