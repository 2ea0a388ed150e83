// Package banner persists the promo banner's dismissal and height and keeps
// layout consumers in step with it over the bus.
package banner

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/storefront/internal/bus"
	"github.com/roach88/storefront/internal/kv"
)

// Storage keys, before namespacing by the adapter.
const (
	DismissedKey = "promo-banner-dismissed"
	HeightKey    = "promo-banner-height"
)

// State is the persisted banner state.
type State struct {
	Dismissed bool `json:"dismissed"`
	Height    int  `json:"height"`
}

// Visibility converts the state into the bus payload.
func (s State) Visibility() bus.BannerVisibility {
	if s.Dismissed {
		return bus.BannerVisibility{}
	}
	return bus.BannerVisibility{Visible: true, Height: s.Height}
}

// Option configures a Banner.
type Option func(*Banner)

// WithBus sets the bus visibility changes are published on.
func WithBus(b *bus.Bus) Option {
	return func(bn *Banner) {
		bn.bus = b
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(bn *Banner) {
		bn.logger = l
	}
}

// Banner is the producer side of banner-visibility-changed.
type Banner struct {
	mu      sync.Mutex
	adapter *kv.Adapter
	bus     *bus.Bus
	logger  *slog.Logger
	state   State
}

// New loads the banner state through adapter.
func New(ctx context.Context, adapter *kv.Adapter, opts ...Option) *Banner {
	b := &Banner{adapter: adapter, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	b.state.Dismissed, _ = kv.Load(ctx, adapter, DismissedKey, false)
	b.state.Height, _ = kv.Load(ctx, adapter, HeightKey, 0)
	if b.state.Height < 0 {
		b.state.Height = 0
	}
	return b
}

// State returns the current state.
func (b *Banner) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Show records the measured height and announces the banner. It does nothing
// once the banner has been dismissed. Negative heights are clamped to 0.
func (b *Banner) Show(ctx context.Context, height int) bool {
	if height < 0 {
		height = 0
	}
	b.mu.Lock()
	if b.state.Dismissed {
		b.mu.Unlock()
		b.logger.Debug("banner show skipped", "reason", "dismissed")
		return false
	}
	b.state.Height = height
	b.adapter.Save(ctx, HeightKey, height)
	v := b.state.Visibility()
	b.mu.Unlock()

	b.publish(v)
	return true
}

// Dismiss hides the banner for good and announces a zero height. Returns
// false if it was already dismissed.
func (b *Banner) Dismiss(ctx context.Context) bool {
	b.mu.Lock()
	if b.state.Dismissed {
		b.mu.Unlock()
		return false
	}
	b.state.Dismissed = true
	b.adapter.Save(ctx, DismissedKey, true)
	v := b.state.Visibility()
	b.mu.Unlock()

	b.publish(v)
	return true
}

// Reset forgets a previous dismissal. The banner reappears on the next Show.
func (b *Banner) Reset(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Dismissed = false
	b.adapter.Remove(ctx, DismissedKey)
}

func (b *Banner) publish(v bus.BannerVisibility) {
	n := bus.Publish(b.bus, bus.BannerVisibilityChanged, v)
	b.logger.Debug("banner visibility published", "visible", v.Visible, "height", v.Height, "delivered", n)
}
