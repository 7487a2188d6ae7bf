// Package view holds the console's per-screen state: entity lists with
// their fetch state machine, creation forms, the overlay that hosts them,
// and the dashboard aggregates.  Views talk to the data layer only through
// the small store interfaces declared in this package.
package view

import (
	"errors"
	"time"
)

// State is a view's position in idle → loading → {populated|empty|failed}.
type State int

const (
	Idle State = iota
	Loading
	Populated
	Empty
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Populated:
		return "populated"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrBusy is returned when a submit arrives while the previous one
	// for the same form is still in flight.
	ErrBusy = errors.New("a submission is already in progress")
	// ErrUnmounted is returned by Fetch on a view that is not mounted.
	ErrUnmounted = errors.New("view is not mounted")
	// ErrStale is returned when a fetch finished after a newer fetch (or
	// an unmount) superseded it; its result was discarded.
	ErrStale = errors.New("fetch result discarded")
)

// Observer receives outcome notifications, e.g. for metrics.  Every
// method must be safe for concurrent use.
type Observer interface {
	FetchDone(view string, st State)
	CreateDone(view string, err error)
	DashboardLoaded(took time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) FetchDone(string, State) {}
func (nopObserver) CreateDone(string, error) {}
func (nopObserver) DashboardLoaded(time.Duration, error) {}
