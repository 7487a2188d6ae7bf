package view

import (
	"html/template"
	"sync"
)

// Overlay is a modal container shown or hidden by an open flag.
//
// While closed it renders nothing and holds no scoped state.  Each
// closed→open transition creates a fresh scope from the factory, so any
// state kept in the scope (as opposed to state lifted into the owning
// page) starts over every time the overlay reopens.  Dismiss only
// notifies OnClose; the owner decides whether to actually close.
type Overlay[S any] struct {
	Title   string
	OnClose func()

	newScope func() S

	mu    sync.Mutex
	open  bool
	scope *S
}

func NewOverlay[S any](title string, newScope func() S) *Overlay[S] {
	return &Overlay[S]{Title: title, newScope: newScope}
}

// SetOpen changes the open flag.
func (o *Overlay[S]) SetOpen(open bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case open && !o.open:
		s := o.newScope()
		o.scope = &s
	case !open && o.open:
		o.scope = nil
	}
	o.open = open
}

// IsOpen reports the open flag.
func (o *Overlay[S]) IsOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

// Scope returns the scoped state, nil while closed.
func (o *Overlay[S]) Scope() *S {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.scope
}

// Update runs fn against the scope while holding the overlay's lock.  It
// is a no-op while closed.
func (o *Overlay[S]) Update(fn func(*S)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.scope != nil {
		fn(o.scope)
	}
}

// Dismiss invokes the close callback.
func (o *Overlay[S]) Dismiss() {
	if o.OnClose != nil {
		o.OnClose()
	}
}

// Render returns content(scope) while open and the empty string while
// closed; content is never invoked for a closed overlay.
func (o *Overlay[S]) Render(content func(scope S) template.HTML) template.HTML {
	o.mu.Lock()
	if !o.open || o.scope == nil {
		o.mu.Unlock()
		return ""
	}
	s := *o.scope
	o.mu.Unlock()
	return content(s)
}
