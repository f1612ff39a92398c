package cart

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/example/storefront-sync/internal/api"
	"github.com/example/storefront-sync/internal/item"
)

// skuVariant is the concrete variant a SKU resolves to in the fake
// backend's catalog.
type skuVariant struct {
	ProductID string
	Size      string
	Color     string
	Price     int
}

// fakeRemote behaves like the backend's cart endpoints: per-user carts,
// server-assigned line item IDs, duplicate SKUs merged into one line.
// Individual calls can be failed through the Err fields, and every call is
// recorded for assertions.
type fakeRemote struct {
	mu       sync.Mutex
	catalog  map[string]skuVariant
	carts    map[int64][]item.CartItem
	nextLine int

	AddCalls    []string // SKU IDs in call order
	GetCalls    int
	UpdateCalls int
	RemoveCalls int
	ClearCalls  int

	GetErr    error
	AddErr    error
	AddErrFor map[string]error // per-SKU failures
	UpdateErr error
	RemoveErr error
	ClearErr  error
}

func newFakeRemote(catalog map[string]skuVariant) *fakeRemote {
	return &fakeRemote{
		catalog: catalog,
		carts:   make(map[int64][]item.CartItem),
	}
}

func (f *fakeRemote) snapshot(userID int64) api.CartSnapshot {
	items := make([]item.CartItem, len(f.carts[userID]))
	copy(items, f.carts[userID])
	return api.CartSnapshot{
		Items:      items,
		TotalItems: item.CartCount(items),
		TotalPrice: item.CartSubtotal(items),
	}
}

func (f *fakeRemote) GetCart(ctx context.Context, userID int64) (api.CartSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCalls++
	if f.GetErr != nil {
		return api.CartSnapshot{}, f.GetErr
	}
	return f.snapshot(userID), nil
}

func (f *fakeRemote) AddCartItem(ctx context.Context, userID int64, skuID string, quantity int) (api.CartSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AddCalls = append(f.AddCalls, skuID)
	if f.AddErr != nil {
		return api.CartSnapshot{}, f.AddErr
	}
	if err := f.AddErrFor[skuID]; err != nil {
		return api.CartSnapshot{}, err
	}

	variant, ok := f.catalog[skuID]
	if !ok {
		return api.CartSnapshot{}, &api.Error{StatusCode: http.StatusNotFound, Message: "unknown sku"}
	}

	cart := f.carts[userID]
	for i := range cart {
		if cart[i].SKU == skuID {
			cart[i].Quantity += quantity
			f.carts[userID] = cart
			return f.snapshot(userID), nil
		}
	}
	f.nextLine++
	f.carts[userID] = append(cart, item.CartItem{
		ProductID:  variant.ProductID,
		Price:      variant.Price,
		Quantity:   quantity,
		Size:       variant.Size,
		Color:      variant.Color,
		SKU:        skuID,
		LineItemID: fmt.Sprintf("line-%d", f.nextLine),
	})
	return f.snapshot(userID), nil
}

func (f *fakeRemote) UpdateCartItem(ctx context.Context, userID int64, lineItemID string, quantity int) (api.CartSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.UpdateErr != nil {
		return api.CartSnapshot{}, f.UpdateErr
	}
	cart := f.carts[userID]
	for i := range cart {
		if cart[i].LineItemID == lineItemID {
			cart[i].Quantity = quantity
			f.carts[userID] = cart
			return f.snapshot(userID), nil
		}
	}
	return api.CartSnapshot{}, &api.Error{StatusCode: http.StatusNotFound, Message: "line item not found"}
}

func (f *fakeRemote) RemoveCartItem(ctx context.Context, userID int64, lineItemID string) (api.CartSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RemoveCalls++
	if f.RemoveErr != nil {
		return api.CartSnapshot{}, f.RemoveErr
	}
	cart := f.carts[userID]
	kept := cart[:0]
	for _, it := range cart {
		if it.LineItemID != lineItemID {
			kept = append(kept, it)
		}
	}
	f.carts[userID] = kept
	return f.snapshot(userID), nil
}

func (f *fakeRemote) ClearCart(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ClearCalls++
	if f.ClearErr != nil {
		return f.ClearErr
	}
	f.carts[userID] = nil
	return nil
}
