package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/storefront/internal/aggregate"
	"github.com/roach88/storefront/internal/banner"
	"github.com/roach88/storefront/internal/entity"
)

// formatPrice renders minor currency units as "19.90".
func formatPrice(p int64) string {
	sign := ""
	if p < 0 {
		sign, p = "-", -p
	}
	return fmt.Sprintf("%s%d.%02d", sign, p/100, p%100)
}

// CartView is the output of cart list.
type CartView struct {
	Items     []entity.CartItem     `json:"items"`
	Count     int                   `json:"count"`
	Total     int64                 `json:"total"`
	Subtotals map[entity.Plan]int64 `json:"subtotals,omitempty"`
}

func newCartView(items []entity.CartItem) CartView {
	v := CartView{
		Items: items,
		Count: aggregate.TotalItemCount(items),
		Total: aggregate.TotalPrice(items),
	}
	if len(items) > 0 {
		v.Subtotals = aggregate.SubtotalByPlan(items)
	}
	return v
}

func (v CartView) String() string {
	if len(v.Items) == 0 {
		return "Cart is empty."
	}
	var b strings.Builder
	for _, it := range v.Items {
		fmt.Fprintf(&b, "%-16s %-24s x%-3d %8s  %s\n", it.ID, it.Name, it.Quantity, formatPrice(it.Price), it.Plan)
	}
	fmt.Fprintf(&b, "%d items, total %s", v.Count, formatPrice(v.Total))
	return b.String()
}

// WishlistView is the output of wishlist list.
type WishlistView struct {
	Items []entity.WishlistItem `json:"items"`
	Count int                   `json:"count"`
	Total int64                 `json:"total"`
}

func newWishlistView(items []entity.WishlistItem) WishlistView {
	return WishlistView{
		Items: items,
		Count: aggregate.TotalItemCount(items),
		Total: aggregate.TotalPrice(items),
	}
}

func (v WishlistView) String() string {
	if len(v.Items) == 0 {
		return "Wishlist is empty."
	}
	var b strings.Builder
	for _, it := range v.Items {
		fmt.Fprintf(&b, "%-16s %-24s %8s\n", it.ID, it.Name, formatPrice(it.Price))
	}
	fmt.Fprintf(&b, "%d saved, total %s", v.Count, formatPrice(v.Total))
	return b.String()
}

// MutationView reports the effect of a cart or wishlist command.
type MutationView struct {
	Op      string   `json:"op"`
	ID      string   `json:"id,omitempty"`
	Changed bool     `json:"changed"`
	Saved   *bool    `json:"saved,omitempty"`
	Count   int      `json:"count"`
	Total   int64    `json:"total"`
	Toasts  []string `json:"toasts,omitempty"`
}

func (v MutationView) String() string {
	var b strings.Builder
	status := "unchanged"
	if v.Changed {
		status = "changed"
	}
	target := v.Op
	if v.ID != "" {
		target += " " + v.ID
	}
	fmt.Fprintf(&b, "%s: %s (%d items, total %s)", target, status, v.Count, formatPrice(v.Total))
	for _, t := range v.Toasts {
		fmt.Fprintf(&b, "\n%s", t)
	}
	return b.String()
}

// BannerView is the output of the banner commands.
type BannerView struct {
	Dismissed bool `json:"dismissed"`
	Visible   bool `json:"visible"`
	Height    int  `json:"height"`
	Changed   bool `json:"changed"`
}

func newBannerView(st banner.State, changed bool) BannerView {
	v := st.Visibility()
	return BannerView{Dismissed: st.Dismissed, Visible: v.Visible, Height: st.Height, Changed: changed}
}

func (v BannerView) String() string {
	if v.Dismissed {
		return "Promo banner: dismissed"
	}
	return fmt.Sprintf("Promo banner: visible, height %dpx", v.Height)
}
