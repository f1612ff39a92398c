package item

import "strings"

// WishlistItem is one saved product. Identity is the normalized product ID;
// a wishlist holds at most one entry per product.
type WishlistItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Price      int    `json:"price"`
	Brand      string `json:"brand,omitempty"`
	Image      string `json:"image,omitempty"`
	Category   string `json:"category,omitempty"`
	SalesCount int    `json:"sales_count,omitempty"`
}

// NormalizeProductID maps the string and numeric forms of a product ID onto
// one canonical string. Upstream feeds are inconsistent about the type, so
// every identity comparison must pass both sides through here.
func NormalizeProductID(id string) string {
	id = strings.TrimSpace(id)
	// A numeric ID that went through a float stage picks up a ".0" suffix.
	if i := strings.IndexByte(id, '.'); i > 0 && isDigits(id[:i]) && isZeros(id[i+1:]) {
		return id[:i]
	}
	return id
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isZeros(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			return false
		}
	}
	return true
}

// WishlistContains reports membership after normalizing both sides.
func WishlistContains(items []WishlistItem, productID string) bool {
	want := NormalizeProductID(productID)
	for _, it := range items {
		if NormalizeProductID(it.ProductID) == want {
			return true
		}
	}
	return false
}
