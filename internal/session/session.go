package session

import (
	"log"
	"sync"
)

// Identity is the current authentication state as seen by collection
// managers. UserID is only meaningful when Authenticated is true.
type Identity struct {
	Authenticated bool
	UserID        int64
}

type EventType string

const (
	EventLoggedIn  EventType = "logged_in"
	EventLoggedOut EventType = "logged_out"
)

// Event is delivered to subscribers on every identity transition.
type Event struct {
	Type     EventType
	Identity Identity
}

// Handler receives identity events. Handlers run synchronously on the
// goroutine that triggered the transition, so collection managers observe
// login and logout in program order.
type Handler func(Event)

// Session tracks the authenticated identity and broadcasts transitions.
// It is the single source of identity truth for all managers.
type Session struct {
	mu       sync.Mutex
	current  Identity
	handlers map[int]Handler
	nextID   int
}

func NewSession() *Session {
	return &Session{handlers: make(map[int]Handler)}
}

// Current returns the identity snapshot.
func (s *Session) Current() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers a handler for identity events and returns an
// unsubscribe function. Each manager subscribes exactly once; calling the
// returned function more than once is a no-op.
func (s *Session) Subscribe(h Handler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.handlers[id] = h

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
	}
}

// Login parses a backend access token and, if it carries a usable numeric
// user ID, transitions to the authenticated state. A token without a
// parseable ID leaves the session anonymous rather than failing the caller
// into a broken half-authenticated state.
func (s *Session) Login(token string) (Identity, error) {
	userID, err := userIDFromToken(token)
	if err != nil {
		log.Printf("[Session] Ignoring login with unusable token: %v", err)
		return Identity{}, err
	}
	return s.LoginAs(userID), nil
}

// LoginAs transitions directly to an authenticated identity.
func (s *Session) LoginAs(userID int64) Identity {
	id := Identity{Authenticated: true, UserID: userID}
	s.transition(id, EventLoggedIn)
	return id
}

// Logout drops the identity. Server-side data tied to the previous user is
// left untouched.
func (s *Session) Logout() {
	s.transition(Identity{}, EventLoggedOut)
}

func (s *Session) transition(id Identity, typ EventType) {
	s.mu.Lock()
	s.current = id
	handlers := make([]Handler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	// Handlers run outside the lock so they may read Current or mutate
	// their own state without deadlocking.
	for _, h := range handlers {
		h(Event{Type: typ, Identity: id})
	}
}
