// Package aggregate computes totals, counts and membership over a snapshot
// of a collection. Every call recomputes from the slice it is given; nothing
// is cached, so results always match the latest mutation.
package aggregate

import (
	"math"

	"github.com/roach88/storefront/internal/entity"
)

// Line is anything that contributes a quantity and a unit price.
type Line interface {
	Key() string
	UnitPrice() int64
	Count() int
}

// TotalItemCount sums quantities. For a wishlist it equals len(items).
// The sum saturates at math.MaxInt instead of wrapping.
func TotalItemCount[L Line](items []L) int {
	var n int64
	for _, it := range items {
		n = addSat(n, int64(it.Count()))
	}
	if n > math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}

// TotalPrice sums price * quantity, in minor currency units.
// Products and sums saturate at math.MaxInt64 instead of wrapping.
func TotalPrice[L Line](items []L) int64 {
	var total int64
	for _, it := range items {
		total = addSat(total, mulSat(it.UnitPrice(), int64(it.Count())))
	}
	return total
}

// Contains reports whether an item with id is present.
// The id is normalized the same way stores normalize identities.
func Contains[L Line](items []L, id string) bool {
	id = entity.NormalizeID(id)
	for _, it := range items {
		if it.Key() == id {
			return true
		}
	}
	return false
}

// SubtotalByPlan splits a cart total by purchase plan.
func SubtotalByPlan(items []entity.CartItem) map[entity.Plan]int64 {
	out := make(map[entity.Plan]int64, 2)
	for _, it := range items {
		out[it.Plan] = addSat(out[it.Plan], mulSat(it.Price, int64(it.Quantity)))
	}
	return out
}

// addSat adds a and b, clamping to the int64 range.
func addSat(a, b int64) int64 {
	c := a + b
	if (c > a) == (b > 0) {
		return c
	}
	if b > 0 {
		return math.MaxInt64
	}
	return math.MinInt64
}

// mulSat multiplies a and b, clamping to the int64 range.
func mulSat(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	c := a * b
	if c/b == a && !(a == math.MinInt64 && b == -1) && !(b == math.MinInt64 && a == -1) {
		return c
	}
	if (a < 0) == (b < 0) {
		return math.MaxInt64
	}
	return math.MinInt64
}
