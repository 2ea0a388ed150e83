package store

import (
	"context"

	"github.com/roach88/storefront/internal/bus"
	"github.com/roach88/storefront/internal/entity"
	"github.com/roach88/storefront/internal/kv"
)

// Wishlist is the saved-for-later collection.
type Wishlist struct {
	*collection[entity.WishlistItem]
}

// NewWishlist loads the persisted wishlist from adapter.
func NewWishlist(ctx context.Context, adapter *kv.Adapter, opts ...Option) *Wishlist {
	o := buildOptions(WishlistKey, opts)
	return &Wishlist{newCollection(ctx, "wishlist", adapter, bus.WishlistChanged, shape[entity.WishlistItem]{
		normalize: entity.WishlistItem.Normalize,
		validate:  entity.WishlistItem.Validate,
		schema:    entity.WishlistSchema,
	}, o)}
}

// Add appends item. Adding an id that is already saved is a no-op.
// Returns true only if the wishlist changed.
func (w *Wishlist) Add(ctx context.Context, item entity.WishlistItem) bool {
	item = item.Normalize()
	if err := item.Validate(); err != nil {
		w.reject("add", item.ID, err)
		return false
	}
	return w.mutate(ctx, func(items []entity.WishlistItem) ([]entity.WishlistItem, bool) {
		if indexOf(items, item.ID) >= 0 {
			return items, false
		}
		return append(items, item), true
	})
}

// Toggle removes item if it is saved and adds it otherwise.
// Returns true if the item is saved afterwards.
func (w *Wishlist) Toggle(ctx context.Context, item entity.WishlistItem) bool {
	item = item.Normalize()
	if err := item.Validate(); err != nil {
		w.reject("toggle", item.ID, err)
		return w.Has(item.ID)
	}
	saved := false
	w.mutate(ctx, func(items []entity.WishlistItem) ([]entity.WishlistItem, bool) {
		if i := indexOf(items, item.ID); i >= 0 {
			return append(items[:i], items[i+1:]...), true
		}
		saved = true
		return append(items, item), true
	})
	return saved
}
