package banner

import (
	"sync"

	"github.com/roach88/storefront/internal/bus"
)

// follower tracks the latest banner payload while mounted.
type follower struct {
	mu          sync.Mutex
	latest      bus.BannerVisibility
	mounted     bool
	unsubscribe bus.Unsubscribe
}

func (f *follower) mount(b *bus.Bus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mounted {
		return
	}
	f.mounted = true
	f.unsubscribe = bus.Subscribe(b, bus.BannerVisibilityChanged, f.receive)
}

func (f *follower) unmount() {
	f.mu.Lock()
	unsubscribe := f.unsubscribe
	f.mounted = false
	f.unsubscribe = nil
	f.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// receive drops deliveries that race with unmount.
func (f *follower) receive(v bus.BannerVisibility) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.mounted {
		return
	}
	f.latest = v
}

func (f *follower) bannerHeight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.latest.Visible {
		return 0
	}
	return f.latest.Height
}

// NavBar is pushed down by the height of a visible banner.
type NavBar struct {
	f follower
}

// Mount starts following banner-visibility-changed on b.
func (n *NavBar) Mount(b *bus.Bus) { n.f.mount(b) }

// Unmount stops following. Safe to call more than once.
func (n *NavBar) Unmount() { n.f.unmount() }

// Offset returns the navigation bar's top offset in pixels.
func (n *NavBar) Offset() int { return n.f.bannerHeight() }

// Content is the main content area below the navigation bar.
type Content struct {
	// NavHeight is the fixed navigation bar height added to the padding.
	NavHeight int
	f         follower
}

// Mount starts following banner-visibility-changed on b.
func (c *Content) Mount(b *bus.Bus) { c.f.mount(b) }

// Unmount stops following. Safe to call more than once.
func (c *Content) Unmount() { c.f.unmount() }

// PaddingTop returns the top padding in pixels.
func (c *Content) PaddingTop() int { return c.NavHeight + c.f.bannerHeight() }
