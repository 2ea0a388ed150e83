package entity

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Validation errors. Use errors.Is to classify a rejected item.
var (
	ErrEmptyID         = errors.New("empty id")
	ErrNegativePrice   = errors.New("negative price")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrUnknownPlan     = errors.New("unknown plan")
)

// Plan is the purchase mode of a cart line.
type Plan string

const (
	PlanOneTime      Plan = "one-time"
	PlanSubscription Plan = "subscription"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	return p == PlanOneTime || p == PlanSubscription
}

// CartItem is a cart line. Price is in minor currency units.
type CartItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Plan     Plan   `json:"plan"`
}

// NewCartItem builds a normalized, validated cart line.
// A zero quantity defaults to 1 and an empty plan to PlanOneTime.
func NewCartItem(id, name string, price int64, quantity int, plan Plan) (CartItem, error) {
	item := CartItem{ID: id, Name: name, Price: price, Quantity: quantity, Plan: plan}.Normalize()
	if err := item.Validate(); err != nil {
		return CartItem{}, err
	}
	return item, nil
}

// Normalize returns a copy with NFC identity and name and defaults applied.
func (c CartItem) Normalize() CartItem {
	c.ID = NormalizeID(c.ID)
	c.Name = norm.NFC.String(c.Name)
	if c.Quantity == 0 {
		c.Quantity = 1
	}
	if c.Plan == "" {
		c.Plan = PlanOneTime
	}
	return c
}

// Validate checks the item invariants. It does not apply defaults.
func (c CartItem) Validate() error {
	if c.ID == "" {
		return ErrEmptyID
	}
	if c.Price < 0 {
		return fmt.Errorf("%w: %d", ErrNegativePrice, c.Price)
	}
	if c.Quantity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, c.Quantity)
	}
	if !c.Plan.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPlan, c.Plan)
	}
	return nil
}

func (c CartItem) Key() string      { return c.ID }
func (c CartItem) UnitPrice() int64 { return c.Price }
func (c CartItem) Count() int       { return c.Quantity }

// WishlistItem is a saved product.
type WishlistItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// NewWishlistItem builds a normalized, validated wishlist item.
func NewWishlistItem(id, name string, price int64) (WishlistItem, error) {
	item := WishlistItem{ID: id, Name: name, Price: price}.Normalize()
	if err := item.Validate(); err != nil {
		return WishlistItem{}, err
	}
	return item, nil
}

// Normalize returns a copy with NFC identity and name.
func (w WishlistItem) Normalize() WishlistItem {
	w.ID = NormalizeID(w.ID)
	w.Name = norm.NFC.String(w.Name)
	return w
}

// Validate checks the item invariants.
func (w WishlistItem) Validate() error {
	if w.ID == "" {
		return ErrEmptyID
	}
	if w.Price < 0 {
		return fmt.Errorf("%w: %d", ErrNegativePrice, w.Price)
	}
	return nil
}

func (w WishlistItem) Key() string      { return w.ID }
func (w WishlistItem) UnitPrice() int64 { return w.Price }

// Count is always 1: a wishlist holds each product once.
func (w WishlistItem) Count() int { return 1 }

// NormalizeID trims surrounding whitespace and applies NFC normalization.
func NormalizeID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}
