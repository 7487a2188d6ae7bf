package auth

import (
	"sync"

	"github.com/iliyamo/propconsole/internal/model"
)

// EventType names a session change.
type EventType string

const (
	SignedIn       EventType = "SIGNED_IN"
	SignedOut      EventType = "SIGNED_OUT"
	TokenRefreshed EventType = "TOKEN_REFRESHED"
)

// Event is delivered to subscribers on every session change.  Session is
// nil for SignedOut.
type Event struct {
	Type      EventType
	SessionID string
	UserID    string
	Session   *model.Session
}

// Subscription is the handle returned by Subscribe.  Unsubscribe is safe
// to call more than once.
type Subscription struct {
	b    *broker
	id   uint64
	once sync.Once
}

// Unsubscribe stops delivery to the subscription's listener.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.b.remove(s.id) })
}

type listener struct {
	id uint64
	fn func(Event)
}

// broker fans events out to listeners synchronously, in subscription
// order, on the publishing goroutine.  A listener that is removed while a
// publish is in flight may still receive that one event.
type broker struct {
	mu        sync.Mutex
	next      uint64
	listeners []listener
}

func (b *broker) add(fn func(Event)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.listeners = append(b.listeners, listener{id: b.next, fn: fn})
	return &Subscription{b: b, id: b.next}
}

func (b *broker) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

func (b *broker) publish(ev Event) {
	b.mu.Lock()
	snapshot := make([]listener, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()
	for _, l := range snapshot {
		l.fn(ev)
	}
}

func (b *broker) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
