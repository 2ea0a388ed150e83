// Package entity defines the items held by storefront collections.
//
// Items are validated at construction: a CartItem or WishlistItem that
// passes Validate is safe to store. Identities and display names are
// NFC-normalized so that visually identical ids resolve to one entry.
//
// # Persisted Shapes
//
// Collections persist as JSON arrays. CartSchema and WishlistSchema check a
// stored payload against CUE definitions before it is decoded, so partially
// shaped objects never reach a store:
//
//	#CartItem: {
//	    id:       string & !=""
//	    name:     string
//	    price:    int & >=0
//	    quantity: int & >=1
//	    plan:     "one-time" | "subscription"
//	}
//
// Unknown extra fields are tolerated for forward compatibility.
package entity
