package view

import (
	"context"
	"sync"
)

// FetchFunc reads the full current contents of a list.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// ListView owns one disposable snapshot of a remote list.  The snapshot is
// replaced wholesale by every successful fetch and never patched.
//
// Fetches are guarded by a generation counter and by the mount context:
// a result that arrives after a newer fetch started, or after Unmount, is
// dropped instead of being applied.
type ListView[T any] struct {
	name  string
	fetch FetchFunc[T]
	obs   Observer

	mu      sync.Mutex
	state   State
	items   []T
	err     error
	gen     uint64
	mounted bool
	base    context.Context
	cancel  context.CancelFunc
}

// Snapshot is a copy of a ListView's state at one instant.
type Snapshot[T any] struct {
	State State
	Items []T
	Err   error
}

func NewListView[T any](name string, fetch FetchFunc[T], obs Observer) *ListView[T] {
	if obs == nil {
		obs = nopObserver{}
	}
	return &ListView[T]{name: name, fetch: fetch, obs: obs}
}

// Mount marks the view mounted (if it is not already) and fetches.
func (v *ListView[T]) Mount(ctx context.Context) error {
	v.mu.Lock()
	if !v.mounted {
		v.mounted = true
		v.base, v.cancel = context.WithCancel(context.Background())
	}
	v.mu.Unlock()
	return v.Fetch(ctx)
}

// Unmount cancels in-flight fetches; their results will be discarded.
func (v *ListView[T]) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return
	}
	v.mounted = false
	v.cancel()
	v.gen++
}

// Mounted reports whether the view is mounted.
func (v *ListView[T]) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

// Fetch re-reads the list.  On success the whole list is replaced and the
// state becomes Populated or Empty.  On failure the state becomes Failed
// and the previous items are kept so the screen can still show them next
// to the error.
func (v *ListView[T]) Fetch(ctx context.Context) error {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return ErrUnmounted
	}
	v.gen++
	gen := v.gen
	v.state = Loading
	fctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(v.base, cancel)
	v.mu.Unlock()

	items, err := v.fetch(fctx)
	stop()
	cancel()

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted || gen != v.gen {
		return ErrStale
	}
	if err != nil {
		v.state = Failed
		v.err = err
		v.obs.FetchDone(v.name, Failed)
		return err
	}
	if items == nil {
		items = []T{}
	}
	v.items = items
	v.err = nil
	if len(items) == 0 {
		v.state = Empty
	} else {
		v.state = Populated
	}
	v.obs.FetchDone(v.name, v.state)
	return nil
}

// Snapshot returns a copy of the current state.
func (v *ListView[T]) Snapshot() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	items := make([]T, len(v.items))
	copy(items, v.items)
	return Snapshot[T]{State: v.state, Items: items, Err: v.err}
}
