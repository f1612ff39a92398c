package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/example/storefront-sync/internal/item"
)

// CartSnapshot is the backend's authoritative view of a user's cart.
// Line totals and the grand total are computed server-side.
type CartSnapshot struct {
	Items      []item.CartItem `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice int             `json:"total_price"`
}

func (c *Client) GetCart(ctx context.Context, userID int64) (CartSnapshot, error) {
	var snap CartSnapshot
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/cart", userID), nil, &snap)
	return snap, err
}

// AddCartItem upserts a line by SKU. The backend merges duplicates itself,
// so adding an already-present SKU bumps its quantity.
func (c *Client) AddCartItem(ctx context.Context, userID int64, skuID string, quantity int) (CartSnapshot, error) {
	body := struct {
		SKUID    string `json:"sku_id"`
		Quantity int    `json:"quantity"`
	}{SKUID: skuID, Quantity: quantity}

	var snap CartSnapshot
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%d/cart/items", userID), body, &snap)
	return snap, err
}

func (c *Client) UpdateCartItem(ctx context.Context, userID int64, lineItemID string, quantity int) (CartSnapshot, error) {
	body := struct {
		Quantity int `json:"quantity"`
	}{Quantity: quantity}

	var snap CartSnapshot
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/users/%d/cart/items/%s", userID, lineItemID), body, &snap)
	return snap, err
}

func (c *Client) RemoveCartItem(ctx context.Context, userID int64, lineItemID string) (CartSnapshot, error) {
	var snap CartSnapshot
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d/cart/items/%s", userID, lineItemID), nil, &snap)
	return snap, err
}

func (c *Client) ClearCart(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d/cart", userID), nil, nil)
}
