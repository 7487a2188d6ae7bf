package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/propconsole/internal/model"
)

// memDB is an in-memory stand-in for the three tables.  Lists come back
// newest first, like the repositories.
type memDB struct {
	mu         sync.Mutex
	seq        int
	properties []model.Property
	clients    []model.Client
	leases     []model.Lease

	reads     int
	listErr   error
	createErr error
	gate      chan struct{}
	entered   chan struct{}
}

func newMemDB() *memDB { return &memDB{} }

func (m *memDB) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s%d", prefix, m.seq)
}

// wait blocks a Create until gate is closed, when a gate is set.
func (m *memDB) wait(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	select {
	case <-m.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type memProperties struct{ *memDB }
type memClients struct{ *memDB }
type memLeases struct{ *memDB }

func (s memProperties) List(context.Context) ([]model.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]model.Property(nil), s.properties...), nil
}

func (s memProperties) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.properties), s.listErr
}

func (s memProperties) ListOptionsByStatus(_ context.Context, status string) ([]model.PropertyOption, error) {
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

func (s memProperties) Create(ctx context.Context, p *model.Property) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	p.ID = s.nextID("p")
	p.CreatedAt = time.Now()
	s.properties = append([]model.Property{*p}, s.properties...)
	return nil
}

func (s memClients) List(context.Context) ([]model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]model.Client(nil), s.clients...), nil
}

func (s memClients) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients), nil
}

func (s memClients) ListOptions(context.Context) ([]model.ClientOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	var out []model.ClientOption
	for _, c := range s.clients {
		out = append(out, model.ClientOption{ID: c.ID, FullName: c.FullName})
	}
	return out, nil
}

func (s memClients) Create(ctx context.Context, c *model.Client) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	c.ID = s.nextID("c")
	c.CreatedAt = time.Now()
	s.clients = append([]model.Client{*c}, s.clients...)
	return nil
}

func (s memLeases) ListDetailed(context.Context) ([]model.Lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]model.Lease(nil), s.leases...), nil
}

func (s memLeases) ListAmounts(context.Context) ([]model.LeaseAmount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LeaseAmount, 0, len(s.leases))
	for _, l := range s.leases {
		v := fmt.Sprintf("%.2f", l.TotalAmount)
		out = append(out, model.LeaseAmount{Status: l.Status, TotalAmount: &v})
	}
	return out, nil
}

var errNoParent = errors.New("referenced record does not exist")

func (s memLeases) Create(ctx context.Context, l *model.Lease) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	idx := -1
	for i, p := range s.properties {
		if p.ID == l.PropertyID {
			idx = i
		}
	}
	if idx < 0 {
		return errNoParent
	}
	if l.Status == model.LeaseActive {
		s.properties[idx].Status = model.PropertyLeased
	}
	l.ID = s.nextID("l")
	l.CreatedAt = time.Now()
	l.Property = &model.LeaseProperty{Address: s.properties[idx].Address, PropertyType: s.properties[idx].PropertyType}
	s.leases = append([]model.Lease{*l}, s.leases...)
	return nil
}

func (m *memDB) deps() Deps {
	return Deps{Properties: memProperties{m}, Clients: memClients{m}, Leases: memLeases{m}}
}

// recorder is an Observer that remembers what it saw.
type recorder struct {
	mu      sync.Mutex
	fetches []string
	creates []string
	loads   int
}

func (r *recorder) FetchDone(view string, st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches = append(r.fetches, view+":"+st.String())
}

func (r *recorder) CreateDone(view string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.creates = append(r.creates, view+":"+outcome)
}

func (r *recorder) DashboardLoaded(time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
}
