package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/propconsole/internal/guard"
	"github.com/iliyamo/propconsole/internal/model"
)

// SessionCookie carries the console session id.
const SessionCookie = "sid"

// SessionSource is what SessionGuard reads: the session store.
type SessionSource interface {
	Ready() bool
	Lookup(ctx context.Context, id string) *model.Session
}

// SessionGuard gates the HTML console.
//
// Navigations (GET/HEAD) are routed through guard.Decide.  While the store
// is still starting, loading renders the blocking page with a 503 and a
// Retry-After.  Form posts other than the login form require a session and
// otherwise redirect to the login route.  The resolved session is attached
// to the context for SessionFrom.
func SessionGuard(src SessionSource, loading echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			phase, sess := resolve(c, src)
			if sess != nil {
				c.Set(ctxSession, sess)
			}
			if phase == guard.Loading {
				c.Response().Header().Set("Retry-After", "1")
				return loading(c)
			}

			method := c.Request().Method
			path := c.Request().URL.Path
			if method != http.MethodGet && method != http.MethodHead && path != guard.LoginPath {
				if phase != guard.SignedIn {
					return c.Redirect(http.StatusSeeOther, guard.LoginPath)
				}
				return next(c)
			}

			d := guard.Decide(path, phase)
			switch d.Action {
			case guard.Redirect:
				return c.Redirect(http.StatusSeeOther, d.Location)
			case guard.NotFound:
				return echo.ErrNotFound
			case guard.Block:
				c.Response().Header().Set("Retry-After", "1")
				return loading(c)
			}
			return next(c)
		}
	}
}

func resolve(c echo.Context, src SessionSource) (guard.Phase, *model.Session) {
	if !src.Ready() {
		return guard.Loading, nil
	}
	ck, err := c.Cookie(SessionCookie)
	if err != nil || ck.Value == "" {
		return guard.SignedOut, nil
	}
	sess := src.Lookup(c.Request().Context(), ck.Value)
	if sess == nil {
		ClearSessionCookie(c)
		return guard.SignedOut, nil
	}
	return guard.SignedIn, sess
}

// SetSessionCookie writes the session id cookie.  It lives as long as the
// refresh token; the store decides whether the session is still valid.
func SetSessionCookie(c echo.Context, sess *model.Session, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session id cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}
