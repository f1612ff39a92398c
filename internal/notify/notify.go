// Package notify broadcasts collection-changed events. The UI layer
// subscribes to repaint badges and totals; optional publishers forward the
// same events to external sinks.
package notify

import (
	"sync"
	"time"
)

// Change describes one observable mutation of a collection.
type Change struct {
	Collection string    `json:"collection"` // "cart" or "wishlist"
	Op         string    `json:"op"`         // "add", "update", "remove", "clear", "reload"
	Count      int       `json:"count"`      // item count after the mutation
	Total      int       `json:"total"`      // subtotal after the mutation, carts only
	At         time.Time `json:"at"`
}

// Publisher receives changes. Implementations must not block the caller;
// a mutation's latency never depends on who is listening.
type Publisher interface {
	Publish(Change)
}

// Bus fans changes out to channel subscribers. Publish never blocks: a
// subscriber that falls behind its buffer misses intermediate changes and
// catches up on the next one.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan Change
	nextID int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Change)}
}

// Subscribe returns a change channel and an unsubscribe function. The
// channel is closed on unsubscribe.
func (b *Bus) Subscribe() (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Change, 16)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

func (b *Bus) Publish(change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

// Multi forwards each change to every publisher in order.
type Multi []Publisher

func (m Multi) Publish(change Change) {
	for _, p := range m {
		p.Publish(change)
	}
}

// Discard drops all changes. Useful anywhere a manager is built without an
// interested UI, most tests included.
type Discard struct{}

func (Discard) Publish(Change) {}
