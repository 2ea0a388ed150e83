// Package harness runs storefront scenarios and records a deterministic trace.
//
// A scenario wires a cart, a wishlist, a promo banner with its layout
// consumers, and a toast scheduler to one in-memory KV backend and one bus,
// then drives them step by step.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	namespace: storefront
//	seed:
//	  - key: cart
//	    value: '[{"id":"zinc","name":"Zinc","price":1990,"quantity":1,"plan":"one-time"}]'
//	flow:
//	  - invoke: cart.add
//	    args: { id: zinc, name: Zinc, price: 1990, quantity: 2 }
//	    expect:
//	      case: changed
//	assertions:
//	  - type: final_state
//	    target: cart
//	    where: { id: zinc }
//	    expect: { quantity: 3 }
//	  - type: totals
//	    target: cart
//	    expect: { items: 3, total: 5970 }
//
// # Actions
//
//   - cart.add, cart.remove, cart.setQuantity, cart.clear
//   - wishlist.add, wishlist.remove, wishlist.toggle, wishlist.clear
//   - toast.push, toast.dismiss
//   - banner.show, banner.dismiss, banner.reset
//   - bus.publish: publishes a payload on a named topic
//   - clock.advance: moves the manual clock, firing due toast timers
//   - reload: rebuilds the cart, wishlist and banner from storage
//
// Each step records an invocation, then every bus delivery and toast list
// change it caused, then a completion whose case is one of changed,
// unchanged, rejected or ok.
//
// # Assertion Types
//
//   - trace_contains: an invocation of action with matching args exists
//   - trace_order: actions were invoked in the given order
//   - trace_count: action (or topic) appears exactly count times
//   - final_state: rows of a target (cart, wishlist, toasts, banner,
//     layout, storage) match where/expect, or count rows
//   - totals: derived item count and price of cart or wishlist
//
// # Deterministic Testing
//
// Every run uses a fresh backend, a manual clock starting at Epoch, and
// sequential toast ids (toast-1, toast-2, ...), so traces are identical
// across runs and can be compared with golden files.
package harness
