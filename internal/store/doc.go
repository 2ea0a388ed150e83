// Package store owns the storefront's shared collections.
//
// A Cart or Wishlist is the single source of truth for its items. UI code
// never edits a collection directly; it calls the store, which:
//
//  1. validates the input (invalid input is a silent no-op, reported only
//     through the optional reject hook),
//  2. updates the ordered in-memory collection,
//  3. writes the collection through the kv.Adapter,
//  4. notifies local subscribers with a copy of the new collection,
//  5. publishes a bus.CollectionChanged summary when a Bus is attached.
//
// Reads (All, Get, Has, Len) never have side effects and All returns a copy.
//
// Cart and Wishlist merge duplicate adds differently: the cart accumulates
// quantity and takes the incoming price and plan, the wishlist ignores the
// duplicate.
package store
