package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/storefront/internal/entity"
)

func cart() []entity.CartItem {
	return []entity.CartItem{
		{ID: "zinc", Name: "Zinc", Price: 1990, Quantity: 3, Plan: entity.PlanOneTime},
		{ID: "maca", Name: "Maca", Price: 1290, Quantity: 1, Plan: entity.PlanSubscription},
	}
}

func TestTotalItemCount(t *testing.T) {
	assert.Equal(t, 4, TotalItemCount(cart()))
	assert.Equal(t, 0, TotalItemCount([]entity.CartItem{}))

	wishlist := []entity.WishlistItem{{ID: "a"}, {ID: "b"}}
	assert.Equal(t, len(wishlist), TotalItemCount(wishlist))
}

func TestTotalPrice(t *testing.T) {
	assert.Equal(t, int64(1990*3+1290), TotalPrice(cart()))
	assert.Equal(t, int64(0), TotalPrice[entity.CartItem](nil))

	wishlist := []entity.WishlistItem{{ID: "a", Price: 100}, {ID: "b", Price: 250}}
	assert.Equal(t, int64(350), TotalPrice(wishlist))
}

func TestContains(t *testing.T) {
	items := cart()
	assert.True(t, Contains(items, "zinc"))
	assert.True(t, Contains(items, " maca "))
	assert.False(t, Contains(items, "ashwagandha"))
	assert.False(t, Contains([]entity.CartItem{}, "zinc"))
}

func TestSubtotalByPlan(t *testing.T) {
	got := SubtotalByPlan(cart())
	assert.Equal(t, map[entity.Plan]int64{
		entity.PlanOneTime:      5970,
		entity.PlanSubscription: 1290,
	}, got)
}

func TestRecomputesFromSnapshot(t *testing.T) {
	items := cart()
	before := TotalPrice(items)
	items[0].Quantity = 1
	assert.NotEqual(t, before, TotalPrice(items))
}

func TestTotals_SaturateInsteadOfWrapping(t *testing.T) {
	huge := []entity.CartItem{
		{ID: "zinc", Price: math.MaxInt64 / 2, Quantity: 3, Plan: entity.PlanOneTime},
		{ID: "maca", Price: 1, Quantity: math.MaxInt, Plan: entity.PlanOneTime},
	}
	assert.Equal(t, math.MaxInt, TotalItemCount(huge))
	assert.Equal(t, int64(math.MaxInt64), TotalPrice(huge))
	assert.Equal(t, int64(math.MaxInt64), SubtotalByPlan(huge)[entity.PlanOneTime])
}

func TestSaturatingArithmetic(t *testing.T) {
	assert.Equal(t, int64(7), addSat(3, 4))
	assert.Equal(t, int64(math.MaxInt64), addSat(math.MaxInt64, 1))
	assert.Equal(t, int64(math.MinInt64), addSat(math.MinInt64, -1))
	assert.Equal(t, int64(-1), addSat(math.MaxInt64, math.MinInt64))

	assert.Equal(t, int64(5970), mulSat(1990, 3))
	assert.Equal(t, int64(0), mulSat(math.MaxInt64, 0))
	assert.Equal(t, int64(math.MaxInt64), mulSat(math.MaxInt64, 2))
	assert.Equal(t, int64(math.MinInt64), mulSat(math.MaxInt64, -2))
	assert.Equal(t, int64(math.MaxInt64), mulSat(math.MinInt64, -1))
}
