package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/propconsole/internal/utils"
)

// JWTAuth validates a Bearer access token and exposes its claims to
// handlers as "user_id", "email" and "sid".
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(ctxUserID, claims.Subject)
			c.Set(ctxEmail, claims.Email)
			c.Set(ctxSID, claims.SessionID)
			return next(c)
		}
	}
}

// BearerClaims returns the email and session id JWTAuth stored.
func BearerClaims(c echo.Context) (email, sid string) {
	email, _ = c.Get(ctxEmail).(string)
	sid, _ = c.Get(ctxSID).(string)
	return email, sid
}

// OptionalJWT is JWTAuth for routes that also serve anonymous callers: a
// valid bearer token populates the context, anything else is ignored.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				if claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
					c.Set(ctxUserID, claims.Subject)
					c.Set(ctxEmail, claims.Email)
					c.Set(ctxSID, claims.SessionID)
				}
			}
			return next(c)
		}
	}
}
