// Package router registers every HTTP route on an echo instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/propconsole/internal/handler"
	"github.com/iliyamo/propconsole/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication: the health
// check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc, metrics http.Handler) {
	e.GET("/healthz", health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}

// RegisterConsole registers the HTML console.  Every route sits behind the
// session guard; writes also bump the cache generation so cached API reads
// never outlive a mutation made from the console.
func RegisterConsole(e *echo.Echo, h *handler.ConsoleHandler, sessions middleware.SessionSource, loginLimit, invalidate echo.MiddlewareFunc) {
	g := e.Group("", middleware.SessionGuard(sessions, h.Loading), invalidate)

	g.GET("/login", h.LoginPage)
	g.POST("/login", h.Login, loginLimit)
	g.POST("/logout", h.Logout)

	g.GET("/", h.Dashboard)
	g.GET("/properties", h.Properties)
	g.POST("/properties", h.CreateProperty)
	g.GET("/clients", h.Clients)
	g.POST("/clients", h.CreateClient)
	g.GET("/leases", h.Leases)
	g.POST("/leases", h.CreateLease)
}

// RegisterAuth registers the token endpoints.  Register, login and refresh
// are public; logout accepts either a refresh token or a bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, loginLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register, loginLimit)
	g.POST("/login", a.Login, loginLimit)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.OptionalJWT(jwtSecret))

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterAPI registers the entity endpoints.  They require a bearer token;
// GETs are served through the response cache and writes invalidate it.
func RegisterAPI(e *echo.Echo, h *handler.APIHandler, jwtSecret string, cache *middleware.Cache) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), cache.Invalidate(), cache.Serve())

	g.GET("/properties", h.ListProperties)
	g.POST("/properties", h.CreateProperty)
	g.GET("/clients", h.ListClients)
	g.POST("/clients", h.CreateClient)
	g.GET("/leases", h.ListLeases)
	g.POST("/leases", h.CreateLease)
	g.GET("/lease-options", h.LeaseOptions)
	g.GET("/dashboard", h.Dashboard)
}
