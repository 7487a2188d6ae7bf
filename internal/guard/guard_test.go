package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		path  string
		phase Phase
		want  Decision
	}{
		{"/properties", Loading, Decision{Action: Block}},
		{"/login", Loading, Decision{Action: Block}},
		{"/properties", SignedOut, Decision{Action: Redirect, Location: "/login"}},
		{"/", SignedOut, Decision{Action: Redirect, Location: "/login"}},
		{"/nowhere", SignedOut, Decision{Action: Redirect, Location: "/login"}},
		{"/login", SignedOut, Decision{Action: Allow}},
		{"/login", SignedIn, Decision{Action: Redirect, Location: "/"}},
		{"/login/", SignedIn, Decision{Action: Redirect, Location: "/"}},
		{"/", SignedIn, Decision{Action: Allow}},
		{"", SignedIn, Decision{Action: Allow}},
		{"/leases/", SignedIn, Decision{Action: Allow}},
		{"/clients", SignedIn, Decision{Action: Allow}},
		{"/nowhere", SignedIn, Decision{Action: NotFound}},
	}
	for _, tc := range tests {
		t.Run(tc.phase.String()+tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.path, tc.phase))
		})
	}
}
