package wishlist

import (
	"context"
	"sync"

	"github.com/example/storefront-sync/internal/api"
	"github.com/example/storefront-sync/internal/item"
)

// fakeRemote behaves like the backend's wishlist endpoints: per-user lists,
// duplicate adds are no-ops. Calls are recorded and individually failable.
type fakeRemote struct {
	mu    sync.Mutex
	lists map[int64][]item.WishlistItem

	AddCalls   []string
	GetCalls   int
	ClearCalls int

	GetErr    error
	AddErr    error
	RemoveErr error
	ClearErr  error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{lists: make(map[int64][]item.WishlistItem)}
}

func (f *fakeRemote) snapshot(userID int64) api.WishlistSnapshot {
	items := make([]item.WishlistItem, len(f.lists[userID]))
	copy(items, f.lists[userID])
	return api.WishlistSnapshot{Items: items, TotalItems: len(items)}
}

func (f *fakeRemote) GetWishlist(ctx context.Context, userID int64) (api.WishlistSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCalls++
	if f.GetErr != nil {
		return api.WishlistSnapshot{}, f.GetErr
	}
	return f.snapshot(userID), nil
}

func (f *fakeRemote) AddWishlistItem(ctx context.Context, userID int64, productID string) (api.WishlistSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AddCalls = append(f.AddCalls, productID)
	if f.AddErr != nil {
		return api.WishlistSnapshot{}, f.AddErr
	}
	if !item.WishlistContains(f.lists[userID], productID) {
		f.lists[userID] = append(f.lists[userID], item.WishlistItem{ProductID: productID})
	}
	return f.snapshot(userID), nil
}

func (f *fakeRemote) RemoveWishlistItem(ctx context.Context, userID int64, productID string) (api.WishlistSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RemoveErr != nil {
		return api.WishlistSnapshot{}, f.RemoveErr
	}
	want := item.NormalizeProductID(productID)
	kept := f.lists[userID][:0]
	for _, it := range f.lists[userID] {
		if item.NormalizeProductID(it.ProductID) != want {
			kept = append(kept, it)
		}
	}
	f.lists[userID] = kept
	return f.snapshot(userID), nil
}

func (f *fakeRemote) ClearWishlist(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ClearCalls++
	if f.ClearErr != nil {
		return f.ClearErr
	}
	f.lists[userID] = nil
	return nil
}
