// Package guard decides what the console shows for a path given the
// current authentication phase.  It holds no state; the HTTP layer feeds it
// the session store's view of the request.
package guard

// Phase is the authentication state seen by the guard.
type Phase int

const (
	// Loading means the session store has not finished its initial
	// resolution; nothing is navigable yet.
	Loading Phase = iota
	SignedOut
	SignedIn
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case SignedOut:
		return "signed-out"
	case SignedIn:
		return "signed-in"
	}
	return "unknown"
}

// Action is what the caller must do with the request.
type Action int

const (
	Allow Action = iota
	Redirect
	Block
	NotFound
)

// Decision is the guard's answer.  Location is set for Redirect only.
type Decision struct {
	Action   Action
	Location string
}

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// AppPaths are the routes rendered beneath the navigation shell.
var AppPaths = []string{"/", "/properties", "/clients", "/leases"}

func isAppPath(path string) bool {
	for _, p := range AppPaths {
		if p == path {
			return true
		}
	}
	return false
}

// Decide returns the decision for path in phase.
//
//   - Loading blocks every path.
//   - Signed out, only the login route is reachable; everything else
//     redirects to it.
//   - Signed in, the login route redirects home and the app routes are
//     allowed; unknown paths are not found.
func Decide(path string, phase Phase) Decision {
	path = normalize(path)
	switch phase {
	case Loading:
		return Decision{Action: Block}
	case SignedOut:
		if path == LoginPath {
			return Decision{Action: Allow}
		}
		return Decision{Action: Redirect, Location: LoginPath}
	}
	if path == LoginPath {
		return Decision{Action: Redirect, Location: HomePath}
	}
	if isAppPath(path) {
		return Decision{Action: Allow}
	}
	return Decision{Action: NotFound}
}

// normalize drops a trailing slash so "/leases/" and "/leases" match.
func normalize(path string) string {
	if path == "" {
		return HomePath
	}
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
