package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/propconsole/internal/repository"
	"github.com/iliyamo/propconsole/internal/view"
)

// APIHandler serves the entity API under /v1.  Each request builds its own
// short-lived view, so API calls never disturb a browser session's
// workspace.
type APIHandler struct {
	Deps view.Deps
}

func NewAPIHandler(d view.Deps) *APIHandler {
	return &APIHandler{Deps: d}
}

// createStatus maps a submit error to a status code.
func createStatus(err error) int {
	var fe *view.FieldError
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrInvalidReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, view.ErrBusy):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func listResp[T any](c echo.Context, lv *view.ListView[T], err error) error {
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": lv.Snapshot().Items})
}

func (h *APIHandler) ListProperties(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	p := view.NewPropertiesPage(h.Deps.Properties, h.Deps.Observer)
	defer p.Unmount()
	return listResp(c, p.List, p.Mount(ctx))
}

func (h *APIHandler) CreateProperty(c echo.Context) error {
	form := view.DefaultPropertyForm()
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	p := view.NewPropertiesPage(h.Deps.Properties, h.Deps.Observer)
	defer p.Unmount()
	created, err := p.Submit(ctx, form)
	if err != nil {
		return c.JSON(createStatus(err), echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *APIHandler) ListClients(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	p := view.NewClientsPage(h.Deps.Clients, h.Deps.Observer)
	defer p.Unmount()
	return listResp(c, p.List, p.Mount(ctx))
}

func (h *APIHandler) CreateClient(c echo.Context) error {
	form := view.DefaultClientForm()
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	p := view.NewClientsPage(h.Deps.Clients, h.Deps.Observer)
	defer p.Unmount()
	created, err := p.Submit(ctx, form)
	if err != nil {
		return c.JSON(createStatus(err), echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *APIHandler) leasesPage() *view.LeasesPage {
	return view.NewLeasesPage(h.Deps.Leases, h.Deps.Properties, h.Deps.Clients, h.Deps.Notifier, h.Deps.Observer)
}

func (h *APIHandler) ListLeases(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	p := h.leasesPage()
	defer p.Unmount()
	return listResp(c, p.List, p.List.Mount(ctx))
}

func (h *APIHandler) CreateLease(c echo.Context) error {
	form := view.DefaultLeaseForm()
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	p := h.leasesPage()
	defer p.Unmount()
	created, err := p.Submit(ctx, form)
	if err != nil {
		return c.JSON(createStatus(err), echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, created)
}

// LeaseOptions returns the reference lists offered by the lease form:
// available properties and all clients.
func (h *APIHandler) LeaseOptions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	p := h.leasesPage()
	defer p.Unmount()
	errProps := p.AvailableProperties.Mount(ctx)
	errClients := p.ClientOptions.Mount(ctx)
	if err := errors.Join(errProps, errClients); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"properties": p.AvailableProperties.Snapshot().Items,
		"clients":    p.ClientOptions.Snapshot().Items,
	})
}

func (h *APIHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	d := view.NewDashboard(h.Deps.Properties, h.Deps.Clients, h.Deps.Leases, h.Deps.Observer)
	defer d.Unmount()
	if err := d.Mount(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, d.Snapshot().Stats)
}
