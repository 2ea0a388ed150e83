// Package bus provides synchronous publish/subscribe for storefront
// components that share no parent.
//
// A producer (the promo banner closing) notifies unrelated consumers (the
// navigation bar, the content area) through a Bus:
//
//	unsubscribe := bus.Subscribe(b, bus.BannerVisibilityChanged, func(v bus.BannerVisibility) {
//	    nav.setOffset(v.Height)
//	})
//	defer unsubscribe()
//
//	bus.Publish(b, bus.BannerVisibilityChanged, bus.BannerVisibility{Visible: false})
//
// # Delivery
//
//   - Synchronous, in subscription order, inside Publish.
//   - No queueing: a message published before anyone subscribes is dropped.
//   - Handlers subscribed or unsubscribed during a delivery take effect for
//     the next Publish, except that an unsubscribed handler is never called
//     again, even later in the same delivery.
//   - A panicking handler is recovered and logged; the remaining handlers
//     still run.
//
// # Lifetime
//
// Subscribe returns an Unsubscribe that a consumer must call when it is torn
// down. Forgetting to do so keeps the handler alive; handlers should
// therefore tolerate being invoked after their owner stopped caring.
//
// Topics form a closed set declared in this package, each bound to one
// payload type, so subscribers never assert a payload shape at runtime.
package bus
