package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/storefront/internal/aggregate"
	"github.com/roach88/storefront/internal/bus"
	"github.com/roach88/storefront/internal/entity"
	"github.com/roach88/storefront/internal/kv"
)

var errDuplicateID = errors.New("duplicate id")

// collection is the ordered, persisted core shared by Cart and Wishlist.
// Mutations hold mu through the write-through so persisted order matches
// mutation order; subscribers run after mu is released.
type collection[E aggregate.Line] struct {
	mu      sync.Mutex
	name    string
	items   []E
	adapter *kv.Adapter
	opts    options
	topic   bus.Topic[bus.CollectionChanged]
	changed *bus.Signal[[]E]
}

type shape[E any] struct {
	normalize func(E) E
	validate  func(E) error
	schema    kv.Schema
}

func newCollection[E aggregate.Line](
	ctx context.Context,
	name string,
	adapter *kv.Adapter,
	topic bus.Topic[bus.CollectionChanged],
	sh shape[E],
	opts options,
) *collection[E] {
	c := &collection[E]{
		name:    name,
		adapter: adapter,
		opts:    opts,
		topic:   topic,
		changed: bus.NewSignal[[]E](opts.logger),
	}
	c.items = c.load(ctx, sh)
	return c
}

// load reads the persisted collection. A malformed payload is discarded and
// the collection starts empty.
func (c *collection[E]) load(ctx context.Context, sh shape[E]) []E {
	stored, ok := kv.Load[[]E](ctx, c.adapter, c.opts.key, nil, kv.WithSchema(sh.schema))
	if !ok {
		return []E{}
	}

	items := make([]E, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))
	for i, it := range stored {
		it = sh.normalize(it)
		err := sh.validate(it)
		if err == nil {
			if _, dup := seen[it.Key()]; dup {
				err = fmt.Errorf("%w: %q", errDuplicateID, it.Key())
			}
		}
		if err != nil {
			c.opts.logger.Warn("discarding malformed collection",
				"store", c.name,
				"key", c.adapter.Key(c.opts.key),
				"index", i,
				"error", err,
			)
			c.adapter.Remove(ctx, c.opts.key)
			return []E{}
		}
		seen[it.Key()] = struct{}{}
		items = append(items, it)
	}

	c.opts.logger.Debug("collection loaded", "store", c.name, "items", len(items))
	return items
}

// mutate applies fn under the lock. When fn reports a change, the new
// collection is persisted, subscribers are notified, and the change is
// published on the bus.
func (c *collection[E]) mutate(ctx context.Context, fn func(items []E) ([]E, bool)) bool {
	c.mu.Lock()
	next, changed := fn(c.items)
	if !changed {
		c.mu.Unlock()
		return false
	}
	c.items = next
	snap := clone(next)
	c.adapter.Save(ctx, c.opts.key, snap)
	c.mu.Unlock()

	c.changed.Emit(snap)
	bus.Publish(c.opts.bus, c.topic, bus.CollectionChanged{
		Items: aggregate.TotalItemCount(snap),
		Total: aggregate.TotalPrice(snap),
	})
	return true
}

func (c *collection[E]) reject(op, id string, err error) {
	c.opts.logger.Debug("mutation rejected", "store", c.name, "op", op, "id", id, "error", err)
	if c.opts.onReject != nil {
		c.opts.onReject(Rejection{Store: c.name, Op: op, ID: id, Err: err})
	}
}

// Remove deletes the item with id. Returns false if it was not present.
func (c *collection[E]) Remove(ctx context.Context, id string) bool {
	id = entity.NormalizeID(id)
	if id == "" {
		c.reject("remove", id, entity.ErrEmptyID)
		return false
	}
	return c.mutate(ctx, func(items []E) ([]E, bool) {
		i := indexOf(items, id)
		if i < 0 {
			return items, false
		}
		return append(items[:i], items[i+1:]...), true
	})
}

// Clear empties the collection. It always persists and notifies.
func (c *collection[E]) Clear(ctx context.Context) {
	c.mutate(ctx, func([]E) ([]E, bool) {
		return []E{}, true
	})
}

// Has reports whether an item with id is present.
func (c *collection[E]) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// Get returns the item with id.
func (c *collection[E]) Get(id string) (E, bool) {
	id = entity.NormalizeID(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := indexOf(c.items, id); i >= 0 {
		return c.items[i], true
	}
	var zero E
	return zero, false
}

// All returns a copy of the collection in insertion order.
func (c *collection[E]) All() []E {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.items)
}

// Len returns the number of distinct items.
func (c *collection[E]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Subscribe calls fn with a copy of the collection after every mutation.
// Each subscriber gets its own copy.
func (c *collection[E]) Subscribe(fn func([]E)) bus.Unsubscribe {
	return c.changed.Subscribe(func(items []E) {
		fn(clone(items))
	})
}

// Close releases every local subscriber. The collection stays usable.
func (c *collection[E]) Close() {
	c.changed.Reset()
}

func indexOf[E aggregate.Line](items []E, id string) int {
	for i, it := range items {
		if it.Key() == id {
			return i
		}
	}
	return -1
}

func clone[E any](items []E) []E {
	out := make([]E, len(items))
	copy(out, items)
	return out
}
