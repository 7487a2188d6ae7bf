package handler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/propconsole/internal/auth"
	"github.com/iliyamo/propconsole/internal/model"
	"github.com/iliyamo/propconsole/internal/repository"
	"github.com/iliyamo/propconsole/internal/view"
)

// tables is an in-memory stand-in for the repositories.
type tables struct {
	mu         sync.Mutex
	seq        int
	properties []model.Property
	clients    []model.Client
	leases     []model.Lease
	reads      int

	// clientGate, when set, holds client inserts until it is closed.
	clientGate    chan struct{}
	clientEntered chan struct{}
}

type propertyTable struct{ *tables }
type clientTable struct{ *tables }
type leaseTable struct{ *tables }

func (t *tables) deps() view.Deps {
	return view.Deps{Properties: propertyTable{t}, Clients: clientTable{t}, Leases: leaseTable{t}}
}

func (t *tables) id(prefix string) string {
	t.seq++
	return fmt.Sprintf("%s%d", prefix, t.seq)
}

func (s propertyTable) List(context.Context) ([]model.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return append([]model.Property(nil), s.properties...), nil
}

func (s propertyTable) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.properties), nil
}

func (s propertyTable) ListOptionsByStatus(_ context.Context, status string) ([]model.PropertyOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	var out []model.PropertyOption
	for _, p := range s.properties {
		if p.Status == status {
			out = append(out, model.PropertyOption{ID: p.ID, Address: p.Address, Status: p.Status})
		}
	}
	return out, nil
}

func (s propertyTable) Create(_ context.Context, p *model.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id("p")
	p.CreatedAt = time.Now()
	s.properties = append([]model.Property{*p}, s.properties...)
	return nil
}

func (s clientTable) List(context.Context) ([]model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return append([]model.Client(nil), s.clients...), nil
}

func (s clientTable) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients), nil
}

func (s clientTable) ListOptions(context.Context) ([]model.ClientOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	var out []model.ClientOption
	for _, c := range s.clients {
		out = append(out, model.ClientOption{ID: c.ID, FullName: c.FullName})
	}
	return out, nil
}

func (s clientTable) Create(_ context.Context, c *model.Client) error {
	if s.clientGate != nil {
		s.clientEntered <- struct{}{}
		<-s.clientGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id("c")
	c.CreatedAt = time.Now()
	s.clients = append([]model.Client{*c}, s.clients...)
	return nil
}

func (s leaseTable) ListDetailed(context.Context) ([]model.Lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return append([]model.Lease(nil), s.leases...), nil
}

func (s leaseTable) ListAmounts(context.Context) ([]model.LeaseAmount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.LeaseAmount
	for _, l := range s.leases {
		v := fmt.Sprint(l.TotalAmount)
		out = append(out, model.LeaseAmount{Status: l.Status, TotalAmount: &v})
	}
	return out, nil
}

func (s leaseTable) Create(_ context.Context, l *model.Lease) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.properties {
		if p.ID != l.PropertyID {
			continue
		}
		if l.Status == model.LeaseActive {
			s.properties[i].Status = model.PropertyLeased
		}
		l.ID = s.id("l")
		l.CreatedAt = time.Now()
		s.leases = append([]model.Lease{*l}, s.leases...)
		return nil
	}
	return repository.ErrInvalidReference
}

// fakeAuth accepts a@b.c / pw and keeps the sessions it issued, playing
// the part of both the auth service and the session store.
type fakeAuth struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	signOuts int
	seq      int
}

func newFakeAuth() *fakeAuth { return &fakeAuth{sessions: map[string]*model.Session{}} }

func (a *fakeAuth) issue(email string) *model.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	s := &model.Session{
		ID:               fmt.Sprintf("sid-%d", a.seq),
		User:             model.SessionUser{ID: "u1", Email: email},
		AccessToken:      "access",
		AccessExpiresAt:  time.Now().Add(time.Hour),
		RefreshToken:     "refresh",
		RefreshExpiresAt: time.Now().Add(24 * time.Hour),
	}
	a.sessions[s.ID] = s
	return s
}

func (a *fakeAuth) SignIn(_ context.Context, email, password string) (*model.Session, error) {
	if email == "" || password == "" {
		return nil, auth.ErrMissingCredentials
	}
	if email != "a@b.c" || password != "pw" {
		return nil, auth.ErrInvalidCredentials
	}
	return a.issue(email), nil
}

func (a *fakeAuth) SignUp(_ context.Context, email, password string) (*model.Session, error) {
	if email == "a@b.c" {
		return nil, auth.ErrUserExists
	}
	return a.issue(email), nil
}

func (a *fakeAuth) Refresh(_ context.Context, sid, raw string) (*model.Session, error) {
	if raw != "refresh" {
		return nil, auth.ErrInvalidRefresh
	}
	return a.issue("a@b.c"), nil
}

func (a *fakeAuth) SignOut(_ context.Context, s *model.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signOuts++
	if s != nil {
		delete(a.sessions, s.ID)
	}
	return nil
}

func (a *fakeAuth) SignOutAll(ctx context.Context, s *model.Session) error { return a.SignOut(ctx, s) }

func (a *fakeAuth) Ready() bool { return true }

func (a *fakeAuth) Lookup(_ context.Context, id string) *model.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions[id]
}
