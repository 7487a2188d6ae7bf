// Package session holds the console's authentication state.  The Store
// is created once per process and handed to the routing layer; it is kept
// current by the auth service's change-event stream rather than written
// to directly by handlers.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iliyamo/propconsole/internal/auth"
	"github.com/iliyamo/propconsole/internal/model"
)

// Authenticator is the part of auth.Service the store depends on.
type Authenticator interface {
	Subscribe(fn func(auth.Event)) *auth.Subscription
	Refresh(ctx context.Context, sessionID, rawRefresh string) (*model.Session, error)
}

// Store resolves session ids to sessions.
//
// Lifecycle: New → Start (subscribes, resolves the backend) → Close
// (releases the subscription).  Ready reports false until Start returns.
type Store struct {
	backend Backend
	auth    Authenticator
	now     func() time.Time

	ready  atomic.Bool
	mu     sync.Mutex
	sub    *auth.Subscription
	flight singleflight.Group
}

func New(backend Backend, a Authenticator) *Store {
	if backend == nil || a == nil {
		panic("nil dependency passed to session.New")
	}
	return &Store{backend: backend, auth: a, now: time.Now}
}

// Start subscribes to session changes and checks the backend.  A backend
// that cannot be reached is logged and not fatal: lookups then fail and
// every request is treated as signed out.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	if s.sub == nil {
		s.sub = s.auth.Subscribe(s.apply)
	}
	s.mu.Unlock()

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.backend.Ping(pingCtx); err != nil {
		log.Printf("session: backend unavailable at start: %v", err)
	}
	s.ready.Store(true)
}

// Ready reports whether the initial resolution has completed.
func (s *Store) Ready() bool { return s.ready.Load() }

// Close releases the event subscription.  It is safe to call twice.
func (s *Store) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()
	sub.Unsubscribe()
}

// Lookup returns the session stored under id, or nil when there is none.
// A session whose access token has expired is refreshed first; concurrent
// lookups of the same id share one refresh.  Backend errors are logged and
// reported as no session.
func (s *Store) Lookup(ctx context.Context, id string) *model.Session {
	if id == "" {
		return nil
	}
	sess, err := s.backend.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			log.Printf("session: lookup failed: %v", err)
		}
		return nil
	}
	if !sess.AccessExpired(s.now()) {
		return sess
	}
	v, err, _ := s.flight.Do(id, func() (any, error) {
		return s.refresh(ctx, sess)
	})
	if err != nil {
		log.Printf("session: refresh for %s failed: %v", shortID(id), err)
		return nil
	}
	return v.(*model.Session)
}

// refresh exchanges stale's refresh token.  When the exchange fails because
// another request already rotated the token, the session that request
// stored is returned.  The session is deleted only while the backend still
// holds the token that failed.
func (s *Store) refresh(ctx context.Context, stale *model.Session) (*model.Session, error) {
	// Refresh publishes TOKEN_REFRESHED, which apply() persists.
	fresh, err := s.auth.Refresh(ctx, stale.ID, stale.RefreshToken)
	if err == nil {
		return fresh, nil
	}
	cur, gerr := s.backend.Get(ctx, stale.ID)
	if gerr != nil {
		return nil, err
	}
	if cur.RefreshToken != stale.RefreshToken {
		if !cur.AccessExpired(s.now()) {
			return cur, nil
		}
		return nil, err
	}
	_ = s.backend.Delete(ctx, stale.ID)
	return nil, err
}

// apply mirrors one auth event into the backend.
func (s *Store) apply(ev auth.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	switch ev.Type {
	case auth.SignedIn, auth.TokenRefreshed:
		if ev.Session == nil {
			return
		}
		ttl := ev.Session.RefreshExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return
		}
		if err := s.backend.Put(ctx, ev.Session, ttl); err != nil {
			log.Printf("session: store %s failed: %v", shortID(ev.SessionID), err)
		}
	case auth.SignedOut:
		if err := s.backend.Delete(ctx, ev.SessionID); err != nil {
			log.Printf("session: delete %s failed: %v", shortID(ev.SessionID), err)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
