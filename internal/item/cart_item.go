package item

import "strings"

// CartItem is one line in a cart. While the session is anonymous its identity
// is the (product, size, color) combination; once the backend owns the cart
// the server-assigned LineItemID takes over.
type CartItem struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	Price         int    `json:"price"` // minor currency units
	OriginalPrice int    `json:"original_price,omitempty"`
	Brand         string `json:"brand,omitempty"`
	Image         string `json:"image,omitempty"`
	Quantity      int    `json:"quantity"`
	Size          string `json:"size,omitempty"`
	Color         string `json:"color,omitempty"`
	SKU           string `json:"sku,omitempty"`
	LineItemID    string `json:"line_item_id,omitempty"`
}

// VariantKey identifies a line item before the server has assigned an ID.
// At most one line item may exist per key within a cart.
func (c CartItem) VariantKey() string {
	return VariantKey(c.ProductID, c.Size, c.Color)
}

// VariantKey builds the composite (product, size, color) identity key.
func VariantKey(productID, size, color string) string {
	return NormalizeProductID(productID) + "|" + strings.TrimSpace(size) + "|" + strings.TrimSpace(color)
}

// LineTotal is the price of the line at its current quantity.
func (c CartItem) LineTotal() int {
	return c.Price * c.Quantity
}

// CartCount sums quantities across all lines.
func CartCount(items []CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// CartSubtotal sums line totals across all lines.
func CartSubtotal(items []CartItem) int {
	total := 0
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}
