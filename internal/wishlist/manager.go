// Package wishlist mirrors the cart's local/remote reconciliation for saved
// products. Identity is a single product ID, normalized before every
// comparison because upstream feeds disagree about its type, and adding a
// product twice is a distinct no-op rather than an error.
package wishlist

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/example/storefront-sync/internal/api"
	"github.com/example/storefront-sync/internal/item"
	"github.com/example/storefront-sync/internal/localstore"
	"github.com/example/storefront-sync/internal/notify"
	"github.com/example/storefront-sync/internal/session"
)

type State string

const (
	StateLocal   State = "local"
	StateMerging State = "merging"
	StateRemote  State = "remote"
)

// Remote is the backend surface the manager needs. *api.Client satisfies it.
type Remote interface {
	GetWishlist(ctx context.Context, userID int64) (api.WishlistSnapshot, error)
	AddWishlistItem(ctx context.Context, userID int64, productID string) (api.WishlistSnapshot, error)
	RemoveWishlistItem(ctx context.Context, userID int64, productID string) (api.WishlistSnapshot, error)
	ClearWishlist(ctx context.Context, userID int64) error
}

// MergeResult summarizes one login merge.
type MergeResult struct {
	Merged  int
	Dropped int // items with an empty product ID
	Failed  int
}

// Manager presents one surface over whichever store currently owns the
// wishlist. Mutations hold the lock across their backend round trip.
type Manager struct {
	mu        sync.Mutex
	state     State
	userID    int64
	items     []item.WishlistItem
	lastMerge MergeResult

	local       localstore.Store
	remote      Remote
	notifier    notify.Publisher
	unsubscribe func()
}

// NewManager builds a manager in local mode and subscribes to identity
// transitions exactly once. Call Close to unsubscribe.
func NewManager(local localstore.Store, remote Remote, sess *session.Session, notifier notify.Publisher) *Manager {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	m := &Manager{
		state:    StateLocal,
		local:    local,
		remote:   remote,
		notifier: notifier,
	}
	m.items = m.readLocal()

	m.unsubscribe = sess.Subscribe(func(e session.Event) {
		switch e.Type {
		case session.EventLoggedIn:
			m.handleLogin(context.Background(), e.Identity.UserID)
		case session.EventLoggedOut:
			m.handleLogout()
		}
	})
	return m
}

// Start reconciles against an identity authenticated before the manager
// existed.
func (m *Manager) Start(ctx context.Context, id session.Identity) {
	if id.Authenticated {
		m.handleLogin(ctx, id.UserID)
	}
}

func (m *Manager) Close() {
	m.unsubscribe()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Items() []item.WishlistItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]item.WishlistItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Contains normalizes both sides before comparing, so "42" and "42.0" name
// the same product.
func (m *Manager) Contains(productID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return item.WishlistContains(m.items, productID)
}

func (m *Manager) LastMerge() MergeResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastMerge
}

// Add saves a product. The boolean distinguishes a fresh add (true) from
// the already-present no-op (false) so the UI can show a different notice
// for each.
func (m *Manager) Add(ctx context.Context, it item.WishlistItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item.WishlistContains(m.items, it.ProductID) {
		return false, nil
	}

	if m.state != StateRemote {
		m.items = append(m.items, it)
		if err := m.writeLocal(); err != nil {
			return false, err
		}
		m.publish("add")
		return true, nil
	}

	snap, err := m.remote.AddWishlistItem(ctx, m.userID, item.NormalizeProductID(it.ProductID))
	if err != nil {
		m.resync(ctx)
		return false, err
	}
	m.items = snap.Items
	m.publish("add")
	return true, nil
}

// Remove deletes a product by its normalized ID.
func (m *Manager) Remove(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := item.NormalizeProductID(productID)

	if m.state != StateRemote {
		kept := m.items[:0]
		for _, it := range m.items {
			if item.NormalizeProductID(it.ProductID) != want {
				kept = append(kept, it)
			}
		}
		m.items = kept
		if err := m.writeLocal(); err != nil {
			return err
		}
		m.publish("remove")
		return nil
	}

	snap, err := m.remote.RemoveWishlistItem(ctx, m.userID, want)
	if err != nil {
		m.resync(ctx)
		return err
	}
	m.items = snap.Items
	m.publish("remove")
	return nil
}

// Clear empties the wishlist.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateRemote {
		if err := m.remote.ClearWishlist(ctx, m.userID); err != nil {
			m.resync(ctx)
			return err
		}
	}
	m.items = nil
	if m.state != StateRemote {
		if err := m.writeLocal(); err != nil {
			return err
		}
	}
	m.publish("clear")
	return nil
}

// Refresh reloads from whichever store owns the wishlist.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateRemote {
		m.items = m.readLocal()
		m.publish("reload")
		return nil
	}

	snap, err := m.remote.GetWishlist(ctx, m.userID)
	if err != nil {
		return err
	}
	m.items = snap.Items
	m.publish("reload")
	return nil
}

// handleLogin drains local items into the backend by product ID, best
// effort per item, then hands ownership over.
func (m *Manager) handleLogin(ctx context.Context, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = StateMerging
	m.userID = userID

	if len(m.items) == 0 {
		snap, err := m.remote.GetWishlist(ctx, userID)
		if err != nil {
			log.Printf("[Wishlist] Initial load for user %d failed, staying local: %v", userID, err)
			m.state = StateLocal
			return
		}
		m.state = StateRemote
		m.items = snap.Items
		m.lastMerge = MergeResult{}
		m.publish("reload")
		return
	}

	var result MergeResult
	for _, it := range m.items {
		productID := item.NormalizeProductID(it.ProductID)
		if productID == "" {
			result.Dropped++
			log.Printf("[Wishlist] Dropping item %q from merge: empty product ID", it.Name)
			continue
		}
		if _, err := m.remote.AddWishlistItem(ctx, userID, productID); err != nil {
			result.Failed++
			log.Printf("[Wishlist] Failed to merge %q: %v", productID, err)
			continue
		}
		result.Merged++
	}
	m.lastMerge = result

	m.items = nil
	if err := m.writeLocal(); err != nil {
		log.Printf("[Wishlist] Failed to clear local store after merge: %v", err)
	}

	m.state = StateRemote
	snap, err := m.remote.GetWishlist(ctx, userID)
	if err != nil {
		log.Printf("[Wishlist] Reload after merge failed: %v", err)
	} else {
		m.items = snap.Items
	}
	m.publish("reload")
}

func (m *Manager) handleLogout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = StateLocal
	m.userID = 0
	m.items = m.readLocal()
	m.publish("reload")
}

func (m *Manager) resync(ctx context.Context) {
	snap, err := m.remote.GetWishlist(ctx, m.userID)
	if err != nil {
		log.Printf("[Wishlist] Resync for user %d failed: %v", m.userID, err)
		return
	}
	m.items = snap.Items
	m.publish("reload")
}

func (m *Manager) readLocal() []item.WishlistItem {
	data, err := m.local.Read(localstore.WishlistKey)
	if err != nil {
		log.Printf("[Wishlist] Failed to read local store: %v", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var items []item.WishlistItem
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("[Wishlist] Discarding corrupt local wishlist: %v", err)
		return nil
	}
	return items
}

func (m *Manager) writeLocal() error {
	data, err := json.Marshal(m.items)
	if err != nil {
		return err
	}
	return m.local.Write(localstore.WishlistKey, data)
}

func (m *Manager) publish(op string) {
	m.notifier.Publish(notify.Change{
		Collection: "wishlist",
		Op:         op,
		Count:      len(m.items),
		At:         time.Now(),
	})
}
