// Package localstore persists anonymous-session collections. It is the
// source of truth for the cart and wishlist until a user logs in, at which
// point its contents are merged into the backend and cleared.
package localstore

// Well-known keys. The manager owning a key is its sole writer.
const (
	CartKey     = "storefront.cart"
	WishlistKey = "storefront.wishlist"
)

// Store is a durable key-value blob store. Implementations must treat
// missing data as empty (nil, nil) rather than an error; corrupt payloads
// are the caller's concern and are likewise decoded as empty.
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
}
