package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is anything Health can probe, e.g. *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports "ok" when every dependency answers within a second and
// 503 naming one that does not.
func Health(deps map[string]Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
		defer cancel()
		for name, p := range deps {
			if p == nil {
				continue
			}
			if err := p.PingContext(ctx); err != nil {
				return c.String(http.StatusServiceUnavailable, name+" unavailable")
			}
		}
		return c.String(http.StatusOK, "ok")
	}
}
