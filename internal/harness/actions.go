package harness

import (
	"fmt"
	"time"

	"github.com/roach88/storefront/internal/bus"
	"github.com/roach88/storefront/internal/entity"
	"github.com/roach88/storefront/internal/toast"
)

type actionFunc func(h *Harness, a stepArgs) (string, map[string]interface{}, error)

var actions = map[string]actionFunc{
	"cart.add":         (*Harness).cartAdd,
	"cart.remove":      (*Harness).cartRemove,
	"cart.setQuantity": (*Harness).cartSetQuantity,
	"cart.clear":       (*Harness).cartClear,
	"wishlist.add":     (*Harness).wishlistAdd,
	"wishlist.remove":  (*Harness).wishlistRemove,
	"wishlist.toggle":  (*Harness).wishlistToggle,
	"wishlist.clear":   (*Harness).wishlistClear,
	"toast.push":       (*Harness).toastPush,
	"toast.dismiss":    (*Harness).toastDismiss,
	"banner.show":      (*Harness).bannerShow,
	"banner.dismiss":   (*Harness).bannerDismiss,
	"banner.reset":     (*Harness).bannerReset,
	"bus.publish":      (*Harness).busPublish,
	"clock.advance":    (*Harness).clockAdvance,
	"reload":           (*Harness).reload,
}

func changed(ok bool) string {
	if ok {
		return CaseChanged
	}
	return CaseUnchanged
}

func (h *Harness) cartAdd(a stepArgs) (string, map[string]interface{}, error) {
	id, name, plan := a.str("id"), a.str("name"), a.str("plan")
	price, err := a.int("price")
	if err != nil {
		return "", nil, err
	}
	qty, err := a.int("quantity")
	if err != nil {
		return "", nil, err
	}
	item := entity.CartItem{ID: id, Name: name, Price: int64(price), Quantity: qty, Plan: entity.Plan(plan)}
	return changed(h.cart.Add(h.ctx, item)), nil, nil
}

func (h *Harness) cartRemove(a stepArgs) (string, map[string]interface{}, error) {
	return changed(h.cart.Remove(h.ctx, a.str("id"))), nil, nil
}

func (h *Harness) cartSetQuantity(a stepArgs) (string, map[string]interface{}, error) {
	qty, err := a.int("quantity")
	if err != nil {
		return "", nil, err
	}
	return changed(h.cart.SetQuantity(h.ctx, a.str("id"), qty)), nil, nil
}

func (h *Harness) cartClear(stepArgs) (string, map[string]interface{}, error) {
	h.cart.Clear(h.ctx)
	return CaseChanged, nil, nil
}

func (h *Harness) wishlistItem(a stepArgs) (entity.WishlistItem, error) {
	price, err := a.int("price")
	if err != nil {
		return entity.WishlistItem{}, err
	}
	return entity.WishlistItem{ID: a.str("id"), Name: a.str("name"), Price: int64(price)}, nil
}

func (h *Harness) wishlistAdd(a stepArgs) (string, map[string]interface{}, error) {
	item, err := h.wishlistItem(a)
	if err != nil {
		return "", nil, err
	}
	return changed(h.wishlist.Add(h.ctx, item)), nil, nil
}

func (h *Harness) wishlistRemove(a stepArgs) (string, map[string]interface{}, error) {
	return changed(h.wishlist.Remove(h.ctx, a.str("id"))), nil, nil
}

func (h *Harness) wishlistToggle(a stepArgs) (string, map[string]interface{}, error) {
	item, err := h.wishlistItem(a)
	if err != nil {
		return "", nil, err
	}
	saved := h.wishlist.Toggle(h.ctx, item)
	return CaseChanged, map[string]interface{}{"saved": saved}, nil
}

func (h *Harness) wishlistClear(stepArgs) (string, map[string]interface{}, error) {
	h.wishlist.Clear(h.ctx)
	return CaseChanged, nil, nil
}

func (h *Harness) toastPush(a stepArgs) (string, map[string]interface{}, error) {
	ttl, err := a.int("ttl_ms")
	if err != nil {
		return "", nil, err
	}
	opts := []toast.PushOption{toast.WithTTL(time.Duration(ttl) * time.Millisecond)}
	if level := a.str("level"); level != "" {
		opts = append(opts, toast.WithLevel(toast.Level(level)))
	}
	id := h.toasts.Push(a.str("message"), opts...)
	if id == "" {
		return CaseRejected, nil, nil
	}
	return CaseChanged, map[string]interface{}{"id": id}, nil
}

func (h *Harness) toastDismiss(a stepArgs) (string, map[string]interface{}, error) {
	return changed(h.toasts.Dismiss(a.str("id"))), nil, nil
}

func (h *Harness) bannerShow(a stepArgs) (string, map[string]interface{}, error) {
	height, err := a.int("height")
	if err != nil {
		return "", nil, err
	}
	return changed(h.banner.Show(h.ctx, height)), nil, nil
}

func (h *Harness) bannerDismiss(stepArgs) (string, map[string]interface{}, error) {
	return changed(h.banner.Dismiss(h.ctx)), nil, nil
}

func (h *Harness) bannerReset(stepArgs) (string, map[string]interface{}, error) {
	h.banner.Reset(h.ctx)
	return CaseOK, nil, nil
}

func (h *Harness) busPublish(a stepArgs) (string, map[string]interface{}, error) {
	var delivered int
	switch topic := a.str("topic"); topic {
	case bus.BannerVisibilityChanged.Name():
		height, err := a.int("height")
		if err != nil {
			return "", nil, err
		}
		delivered = bus.Publish(h.bus, bus.BannerVisibilityChanged, bus.BannerVisibility{
			Visible: a.bool("visible"),
			Height:  height,
		})
	case bus.CartChanged.Name(), bus.WishlistChanged.Name():
		items, err := a.int("items")
		if err != nil {
			return "", nil, err
		}
		total, err := a.int("total")
		if err != nil {
			return "", nil, err
		}
		t := bus.CartChanged
		if topic == bus.WishlistChanged.Name() {
			t = bus.WishlistChanged
		}
		delivered = bus.Publish(h.bus, t, bus.CollectionChanged{Items: items, Total: int64(total)})
	default:
		return "", nil, fmt.Errorf("unknown topic %q", topic)
	}
	return CaseOK, map[string]interface{}{"delivered": delivered}, nil
}

func (h *Harness) clockAdvance(a stepArgs) (string, map[string]interface{}, error) {
	ms, err := a.int("ms")
	if err != nil {
		return "", nil, err
	}
	if ms < 0 {
		return "", nil, fmt.Errorf("ms must not be negative")
	}
	h.clock.Advance(time.Duration(ms) * time.Millisecond)
	return CaseOK, nil, nil
}

// reload simulates a page reload: persisted components are rebuilt from
// storage while toasts, being ephemeral, are left alone.
func (h *Harness) reload(stepArgs) (string, map[string]interface{}, error) {
	h.unload()
	h.load()
	return CaseOK, map[string]interface{}{
		"cart":     h.cart.Len(),
		"wishlist": h.wishlist.Len(),
	}, nil
}

// stepArgs reads YAML-decoded arguments. Missing keys read as zero values.
type stepArgs map[string]interface{}

func (a stepArgs) str(key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (a stepArgs) int(key string) (int, error) {
	switch v := a[key].(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("arg %q: %v is not an integer", key, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("arg %q: expected integer, got %T", key, v)
	}
}

func (a stepArgs) bool(key string) bool {
	v, _ := a[key].(bool)
	return v
}
