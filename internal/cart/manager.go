// Package cart keeps one shopping cart consistent across anonymous and
// authenticated sessions. While nobody is logged in the durable local store
// owns the cart; after login the backend owns it; the transition between the
// two is a one-time merge.
package cart

import (
	"context"
	"encoding/json"
	"errors"
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

var ErrNoSKU = errors.New("item has no resolvable sku")

// Remote is the slice of the backend the manager needs. *api.Client
// satisfies it.
type Remote interface {
	GetCart(ctx context.Context, userID int64) (api.CartSnapshot, error)
	AddCartItem(ctx context.Context, userID int64, skuID string, quantity int) (api.CartSnapshot, error)
	UpdateCartItem(ctx context.Context, userID int64, lineItemID string, quantity int) (api.CartSnapshot, error)
	RemoveCartItem(ctx context.Context, userID int64, lineItemID string) (api.CartSnapshot, error)
	ClearCart(ctx context.Context, userID int64) error
}

// MergeResult summarizes one login merge so the caller can surface a notice
// when items could not be carried over.
type MergeResult struct {
	Merged  int
	Dropped int // items without a SKU, not representable server-side
	Failed  int // per-item backend failures, merge continued past them
}

// Manager presents one CRUD surface over whichever store currently owns the
// cart. All mutations hold the manager lock across their backend round trip,
// so operations are observably serialized: an add followed by a remove can
// never interleave into a stale final state.
type Manager struct {
	mu        sync.Mutex
	state     State
	userID    int64
	items     []item.CartItem
	lastMerge MergeResult

	local       localstore.Store
	remote      Remote
	notifier    notify.Publisher
	unsubscribe func()
}

// NewManager builds a manager in local mode, loads whatever the local store
// holds, and subscribes to identity transitions exactly once. Call Close to
// unsubscribe. If the session is already authenticated, call Start next.
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

// Start reconciles against an identity that was already authenticated
// before the manager existed.
func (m *Manager) Start(ctx context.Context, id session.Identity) {
	if id.Authenticated {
		m.handleLogin(ctx, id.UserID)
	}
}

// Close detaches the manager from the session. The manager remains usable
// but no longer reacts to login or logout.
func (m *Manager) Close() {
	m.unsubscribe()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Items returns a copy of the current collection.
func (m *Manager) Items() []item.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]item.CartItem, len(m.items))
	copy(out, m.items)
	return out
}

// Count is the sum of line quantities.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return item.CartCount(m.items)
}

// Subtotal is the sum of line totals.
func (m *Manager) Subtotal() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return item.CartSubtotal(m.items)
}

// LastMerge reports the outcome of the most recent login merge.
func (m *Manager) LastMerge() MergeResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastMerge
}

// Add puts an item in the cart. Anonymous: a line already holding the same
// (product, size, color) has its quantity incremented instead of a second
// line appearing. Authenticated: the backend does the merging and its
// returned snapshot replaces the in-memory view.
func (m *Manager) Add(ctx context.Context, it item.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	qty := it.Quantity
	if qty <= 0 {
		qty = 1
	}

	if m.state != StateRemote {
		key := it.VariantKey()
		found := false
		for i := range m.items {
			if m.items[i].VariantKey() == key {
				m.items[i].Quantity += qty
				found = true
				break
			}
		}
		if !found {
			it.Quantity = qty
			m.items = append(m.items, it)
		}
		if err := m.writeLocal(); err != nil {
			return err
		}
		m.publish("add")
		return nil
	}

	if it.SKU == "" {
		return ErrNoSKU
	}
	snap, err := m.remote.AddCartItem(ctx, m.userID, it.SKU, qty)
	if err != nil {
		m.resync(ctx)
		return err
	}
	m.items = snap.Items
	m.publish("add")
	return nil
}

// UpdateQuantity sets a line's quantity. The key is the variant key while
// anonymous and the server-assigned line item ID once authenticated; a
// quantity of zero or below removes the line.
func (m *Manager) UpdateQuantity(ctx context.Context, key string, quantity int) error {
	if quantity <= 0 {
		return m.Remove(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateRemote {
		for i := range m.items {
			if m.items[i].VariantKey() == key {
				m.items[i].Quantity = quantity
			}
		}
		if err := m.writeLocal(); err != nil {
			return err
		}
		m.publish("update")
		return nil
	}

	snap, err := m.remote.UpdateCartItem(ctx, m.userID, key, quantity)
	if err != nil {
		// Server truth wins over whatever we thought the cart held.
		m.resync(ctx)
		return err
	}
	m.items = snap.Items
	m.publish("update")
	return nil
}

// Remove deletes a line by its key.
func (m *Manager) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateRemote {
		kept := m.items[:0]
		for _, it := range m.items {
			if it.VariantKey() != key {
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

	snap, err := m.remote.RemoveCartItem(ctx, m.userID, key)
	if err != nil {
		m.resync(ctx)
		return err
	}
	m.items = snap.Items
	m.publish("remove")
	return nil
}

// Clear empties the cart.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateRemote {
		if err := m.remote.ClearCart(ctx, m.userID); err != nil {
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

// Refresh reloads the collection from whichever store owns it.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateRemote {
		m.items = m.readLocal()
		m.publish("reload")
		return nil
	}

	snap, err := m.remote.GetCart(ctx, m.userID)
	if err != nil {
		return err
	}
	m.items = snap.Items
	m.publish("reload")
	return nil
}

// handleLogin drains the local cart into the backend and hands ownership
// over. The merge is best effort per item: one line failing, or lacking a
// SKU the server could resolve, never blocks the rest.
func (m *Manager) handleLogin(ctx context.Context, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = StateMerging
	m.userID = userID

	if len(m.items) == 0 {
		snap, err := m.remote.GetCart(ctx, userID)
		if err != nil {
			// Backend unreachable: stay local for this cycle rather
			// than presenting a cart we cannot read.
			log.Printf("[Cart] Initial load for user %d failed, staying local: %v", userID, err)
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
		if it.SKU == "" {
			result.Dropped++
			log.Printf("[Cart] Dropping %q from merge: no resolvable SKU", it.VariantKey())
			continue
		}
		if _, err := m.remote.AddCartItem(ctx, userID, it.SKU, it.Quantity); err != nil {
			result.Failed++
			log.Printf("[Cart] Failed to merge %q: %v", it.SKU, err)
			continue
		}
		result.Merged++
	}
	m.lastMerge = result

	// Local data has been flushed; the backend owns the cart now.
	m.items = nil
	if err := m.writeLocal(); err != nil {
		log.Printf("[Cart] Failed to clear local store after merge: %v", err)
	}

	m.state = StateRemote
	snap, err := m.remote.GetCart(ctx, userID)
	if err != nil {
		log.Printf("[Cart] Reload after merge failed: %v", err)
	} else {
		m.items = snap.Items
	}
	m.publish("reload")
}

// handleLogout reloads from the local store. Whatever the backend holds
// stays associated with the user for their next login.
func (m *Manager) handleLogout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = StateLocal
	m.userID = 0
	m.items = m.readLocal()
	m.publish("reload")
}

// resync pulls server truth after a failed remote write so the in-memory
// view never drifts into an assumed-successful state. Best effort.
func (m *Manager) resync(ctx context.Context) {
	snap, err := m.remote.GetCart(ctx, m.userID)
	if err != nil {
		log.Printf("[Cart] Resync for user %d failed: %v", m.userID, err)
		return
	}
	m.items = snap.Items
	m.publish("reload")
}

func (m *Manager) readLocal() []item.CartItem {
	data, err := m.local.Read(localstore.CartKey)
	if err != nil {
		log.Printf("[Cart] Failed to read local store: %v", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var items []item.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("[Cart] Discarding corrupt local cart: %v", err)
		return nil
	}
	return items
}

func (m *Manager) writeLocal() error {
	data, err := json.Marshal(m.items)
	if err != nil {
		return err
	}
	return m.local.Write(localstore.CartKey, data)
}

func (m *Manager) publish(op string) {
	m.notifier.Publish(notify.Change{
		Collection: "cart",
		Op:         op,
		Count:      item.CartCount(m.items),
		Total:      item.CartSubtotal(m.items),
		At:         time.Now(),
	})
}
