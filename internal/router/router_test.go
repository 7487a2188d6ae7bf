package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/propconsole/internal/config"
	"github.com/iliyamo/propconsole/internal/handler"
	"github.com/iliyamo/propconsole/internal/middleware"
)

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newEcho() *echo.Echo {
	e := echo.New()
	health := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})
	RegisterRoutes(e, health, metrics)
	RegisterConsole(e, &handler.ConsoleHandler{}, nil, passthrough, passthrough)
	RegisterAuth(e, &handler.AuthHandler{}, "secret", passthrough)
	RegisterAPI(e, &handler.APIHandler{}, "secret", middleware.NewCache(config.CacheConfig{}, nil))
	return e
}

func TestRoutesRegistered(t *testing.T) {
	e := newEcho()
	got := map[string]bool{}
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"GET /metrics",
		"GET /login",
		"POST /login",
		"POST /logout",
		"GET /",
		"GET /properties",
		"POST /properties",
		"GET /clients",
		"POST /clients",
		"GET /leases",
		"POST /leases",
		"POST /v1/auth/register",
		"POST /v1/auth/login",
		"POST /v1/auth/refresh",
		"POST /v1/auth/logout",
		"GET /v1/me",
		"GET /v1/properties",
		"POST /v1/properties",
		"GET /v1/clients",
		"POST /v1/clients",
		"GET /v1/leases",
		"POST /v1/leases",
		"GET /v1/lease-options",
		"GET /v1/dashboard",
	} {
		assert.True(t, got[want], "missing route %s", want)
	}
}

func TestPublicEndpoints(t *testing.T) {
	e := newEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics\n", rec.Body.String())
}

func TestAPIRequiresBearer(t *testing.T) {
	e := newEcho()
	for _, path := range []string{"/v1/properties", "/v1/dashboard", "/v1/me"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String(), path)
	}
}
