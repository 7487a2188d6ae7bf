package view

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// FormScope is the overlay-scoped state of a creation form: the alert
// shown inside the dialog after a failed submit.  It starts empty every
// time the dialog opens.
type FormScope struct {
	Alert string
}

// Page combines a list with a creation overlay and the lifted form state
// behind it.
type Page[T any, F any] struct {
	List  *ListView[T]
	Modal *Overlay[FormScope]

	name     string
	defaults func() F
	insert   func(ctx context.Context, form F) (T, error)
	reload   func(ctx context.Context) error
	obs      Observer

	busy atomic.Bool
	mu   sync.Mutex
	form F
}

func newPage[T any, F any](name, title string, fetch FetchFunc[T], defaults func() F, insert func(context.Context, F) (T, error), obs Observer) *Page[T, F] {
	if obs == nil {
		obs = nopObserver{}
	}
	p := &Page[T, F]{
		List:     NewListView(name, fetch, obs),
		Modal:    NewOverlay(title, func() FormScope { return FormScope{} }),
		name:     name,
		defaults: defaults,
		insert:   insert,
		obs:      obs,
		form:     defaults(),
	}
	p.Modal.OnClose = func() { p.Modal.SetOpen(false) }
	return p
}

// Mount fetches the list (and any reference data) for display.
func (p *Page[T, F]) Mount(ctx context.Context) error {
	err := p.List.Mount(ctx)
	if p.reload != nil {
		if rerr := p.reload(ctx); err == nil {
			err = rerr
		}
	}
	return err
}

// Unmount cancels outstanding fetches, closes the overlay and drops any
// unsaved form input.
func (p *Page[T, F]) Unmount() {
	p.List.Unmount()
	p.Modal.SetOpen(false)
	p.mu.Lock()
	p.form = p.defaults()
	p.mu.Unlock()
}

// Form returns the current (lifted) form values.
func (p *Page[T, F]) Form() F {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

// Busy reports whether a submit is in flight; the submit control is
// disabled while it is.
func (p *Page[T, F]) Busy() bool { return p.busy.Load() }

// Submit performs one insert of form and returns the created record.
//
// On failure the overlay stays open, form keeps the submitted values and
// the error message is stored as the overlay's alert and returned.  On
// success the overlay closes, the form resets to its defaults and the list
// is refetched; Submit returns only after that refetch completed, so the
// new row is visible in the next snapshot.  Refetch failures leave the
// list in Failed and are not reported as submit failures.  An unmounted
// page only inserts: neither the list nor any reference data is read.
//
// A submit that arrives while another is in flight returns ErrBusy and
// leaves the in-flight values alone; only the alert reports it.
func (p *Page[T, F]) Submit(ctx context.Context, form F) (T, error) {
	var zero T
	if !p.busy.CompareAndSwap(false, true) {
		p.Modal.SetOpen(true)
		p.Modal.Update(func(s *FormScope) { s.Alert = ErrBusy.Error() })
		return zero, ErrBusy
	}
	defer p.busy.Store(false)

	p.mu.Lock()
	p.form = form
	p.mu.Unlock()
	p.Modal.SetOpen(true)
	p.Modal.Update(func(s *FormScope) { s.Alert = "" })

	created, err := p.insert(ctx, form)
	if err != nil {
		p.Modal.Update(func(s *FormScope) { s.Alert = err.Error() })
		p.obs.CreateDone(p.name, err)
		return zero, err
	}
	p.obs.CreateDone(p.name, nil)

	p.Modal.Dismiss()
	p.mu.Lock()
	p.form = p.defaults()
	p.mu.Unlock()

	if err := p.List.Fetch(ctx); errors.Is(err, ErrUnmounted) {
		return created, nil
	}
	if p.reload != nil {
		_ = p.reload(ctx)
	}
	return created, nil
}
