package view

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/propconsole/internal/auth"
)

// Screen names one of the console's routed views.
type Screen string

const (
	ScreenDashboard  Screen = "dashboard"
	ScreenProperties Screen = "properties"
	ScreenClients    Screen = "clients"
	ScreenLeases     Screen = "leases"
)

// Workspace is the set of views that belong to one signed-in browser
// session.  Only one screen is mounted at a time.
type Workspace struct {
	Dashboard  *Dashboard
	Properties *PropertiesPage
	Clients    *ClientsPage
	Leases     *LeasesPage

	mu       sync.Mutex
	current  Screen
	lastSeen time.Time
}

func NewWorkspace(d Deps) *Workspace {
	return &Workspace{
		Dashboard:  NewDashboard(d.Properties, d.Clients, d.Leases, d.Observer),
		Properties: NewPropertiesPage(d.Properties, d.Observer),
		Clients:    NewClientsPage(d.Clients, d.Observer),
		Leases:     NewLeasesPage(d.Leases, d.Properties, d.Clients, d.Notifier, d.Observer),
		lastSeen:   time.Now(),
	}
}

// Navigate unmounts the current screen if it differs from s and mounts s,
// which always triggers a fresh fetch.
func (w *Workspace) Navigate(ctx context.Context, s Screen) error {
	w.mu.Lock()
	prev := w.current
	w.current = s
	w.lastSeen = time.Now()
	w.mu.Unlock()

	if prev != "" && prev != s {
		w.unmount(prev)
	}
	switch s {
	case ScreenDashboard:
		return w.Dashboard.Mount(ctx)
	case ScreenProperties:
		return w.Properties.Mount(ctx)
	case ScreenClients:
		return w.Clients.Mount(ctx)
	case ScreenLeases:
		return w.Leases.Mount(ctx)
	}
	return nil
}

// Current returns the mounted screen, or "" before the first Navigate.
func (w *Workspace) Current() Screen {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Close unmounts everything.
func (w *Workspace) Close() {
	w.mu.Lock()
	w.current = ""
	w.mu.Unlock()
	w.Dashboard.Unmount()
	w.Properties.Unmount()
	w.Clients.Unmount()
	w.Leases.Unmount()
}

func (w *Workspace) unmount(s Screen) {
	switch s {
	case ScreenDashboard:
		w.Dashboard.Unmount()
	case ScreenProperties:
		w.Properties.Unmount()
	case ScreenClients:
		w.Clients.Unmount()
	case ScreenLeases:
		w.Leases.Unmount()
	}
}

func (w *Workspace) idleSince(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return now.Sub(w.lastSeen)
}

// Subscriber is the part of the auth service the registry listens to.
type Subscriber interface {
	Subscribe(fn func(auth.Event)) *auth.Subscription
}

// Registry keeps one Workspace per session id.
type Registry struct {
	deps Deps

	mu  sync.Mutex
	ws  map[string]*Workspace
	sub *auth.Subscription
}

func NewRegistry(d Deps) *Registry {
	return &Registry{deps: d, ws: make(map[string]*Workspace)}
}

// Attach evicts a session's workspace as soon as it signs out.
func (r *Registry) Attach(s Subscriber) {
	r.sub = s.Subscribe(func(ev auth.Event) {
		if ev.Type == auth.SignedOut {
			r.Evict(ev.SessionID)
		}
	})
}

// For returns the workspace for sid, creating it on first use.
func (r *Registry) For(sid string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.ws[sid]
	if !ok {
		w = NewWorkspace(r.deps)
		r.ws[sid] = w
	}
	return w
}

// Evict closes and forgets the workspace for sid.
func (r *Registry) Evict(sid string) {
	r.mu.Lock()
	w, ok := r.ws[sid]
	delete(r.ws, sid)
	r.mu.Unlock()
	if ok {
		w.Close()
	}
}

// Len reports the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ws)
}

// Sweep evicts workspaces not navigated for longer than idle and returns
// how many were removed.
func (r *Registry) Sweep(idle time.Duration) int {
	now := time.Now()
	r.mu.Lock()
	var stale []*Workspace
	for sid, w := range r.ws {
		if w.idleSince(now) > idle {
			stale = append(stale, w)
			delete(r.ws, sid)
		}
	}
	r.mu.Unlock()
	for _, w := range stale {
		w.Close()
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep(idle)
		}
	}
}

// Close detaches from the auth service and closes every workspace.
func (r *Registry) Close() {
	r.sub.Unsubscribe()
	r.mu.Lock()
	all := r.ws
	r.ws = make(map[string]*Workspace)
	r.mu.Unlock()
	for _, w := range all {
		w.Close()
	}
}
