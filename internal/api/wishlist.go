package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/example/storefront-sync/internal/item"
)

// WishlistSnapshot is the backend's view of a user's wishlist.
type WishlistSnapshot struct {
	Items      []item.WishlistItem `json:"items"`
	TotalItems int                 `json:"total_items"`
}

func (c *Client) GetWishlist(ctx context.Context, userID int64) (WishlistSnapshot, error) {
	var snap WishlistSnapshot
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/wishlist", userID), nil, &snap)
	return snap, err
}

// AddWishlistItem saves a product. The backend treats a duplicate add as a
// no-op and returns the unchanged snapshot.
func (c *Client) AddWishlistItem(ctx context.Context, userID int64, productID string) (WishlistSnapshot, error) {
	body := struct {
		ProductID string `json:"product_id"`
	}{ProductID: productID}

	var snap WishlistSnapshot
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%d/wishlist/items", userID), body, &snap)
	return snap, err
}

func (c *Client) RemoveWishlistItem(ctx context.Context, userID int64, productID string) (WishlistSnapshot, error) {
	var snap WishlistSnapshot
	path := fmt.Sprintf("/users/%d/wishlist/items/%s", userID, url.PathEscape(productID))
	err := c.do(ctx, http.MethodDelete, path, nil, &snap)
	return snap, err
}

func (c *Client) ClearWishlist(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d/wishlist", userID), nil, nil)
}
