package middleware

// identity.go holds the context keys shared by the middleware in this
// package and the accessors handlers use to read them.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/propconsole/internal/model"
)

const (
	ctxSession = "session"
	ctxUserID  = "user_id"
	ctxEmail   = "email"
	ctxSID     = "sid"
)

// SessionFrom returns the session attached by SessionGuard, or nil.
func SessionFrom(c echo.Context) *model.Session {
	s, _ := c.Get(ctxSession).(*model.Session)
	return s
}

// UserID returns the authenticated user's id from either the console
// session or the API bearer token, or "" when neither is present.
func UserID(c echo.Context) string {
	if s := SessionFrom(c); s != nil {
		return s.User.ID
	}
	if v, ok := c.Get(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// currentUserID is UserID with a fixed placeholder for anonymous callers
// so rate-limit keys never collapse to an empty segment.
func currentUserID(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}
