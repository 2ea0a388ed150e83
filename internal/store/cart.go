package store

import (
	"context"
	"fmt"
	"math"

	"github.com/roach88/storefront/internal/bus"
	"github.com/roach88/storefront/internal/entity"
	"github.com/roach88/storefront/internal/kv"
)

// Cart is the shopping cart collection.
type Cart struct {
	*collection[entity.CartItem]
}

// NewCart loads the persisted cart from adapter.
func NewCart(ctx context.Context, adapter *kv.Adapter, opts ...Option) *Cart {
	o := buildOptions(CartKey, opts)
	return &Cart{newCollection(ctx, "cart", adapter, bus.CartChanged, shape[entity.CartItem]{
		normalize: entity.CartItem.Normalize,
		validate:  entity.CartItem.Validate,
		schema:    entity.CartSchema,
	}, o)}
}

// Add appends item, or merges it into the line with the same id: the
// quantities add up and the line takes the incoming price and plan.
// A zero quantity counts as 1. Returns false if item is invalid or the
// merged quantity would not fit in an int.
func (c *Cart) Add(ctx context.Context, item entity.CartItem) bool {
	item = item.Normalize()
	if err := item.Validate(); err != nil {
		c.reject("add", item.ID, err)
		return false
	}
	overflow := false
	changed := c.mutate(ctx, func(items []entity.CartItem) ([]entity.CartItem, bool) {
		i := indexOf(items, item.ID)
		if i < 0 {
			return append(items, item), true
		}
		if item.Quantity > math.MaxInt-items[i].Quantity {
			overflow = true
			return items, false
		}
		items[i].Quantity += item.Quantity
		items[i].Price = item.Price
		items[i].Plan = item.Plan
		return items, true
	})
	if overflow {
		c.reject("add", item.ID, fmt.Errorf("%w: merged quantity overflows", entity.ErrInvalidQuantity))
	}
	return changed
}

// SetQuantity sets the quantity of the line with id exactly.
// A quantity of zero or less removes the line.
// Returns false if the line is absent or already has that quantity.
func (c *Cart) SetQuantity(ctx context.Context, id string, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(ctx, id)
	}
	id = entity.NormalizeID(id)
	if id == "" {
		c.reject("setQuantity", id, entity.ErrEmptyID)
		return false
	}
	return c.mutate(ctx, func(items []entity.CartItem) ([]entity.CartItem, bool) {
		i := indexOf(items, id)
		if i < 0 || items[i].Quantity == quantity {
			return items, false
		}
		items[i].Quantity = quantity
		return items, true
	})
}
