package handler

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/propconsole/internal/guard"
	"github.com/iliyamo/propconsole/internal/middleware"
	"github.com/iliyamo/propconsole/internal/model"
	"github.com/iliyamo/propconsole/internal/view"
	"github.com/iliyamo/propconsole/internal/web"
)

// Partials renders HTML fragments; *web.Renderer implements it.
type Partials interface {
	Partial(name string, data any) (template.HTML, error)
}

// ConsoleHandler serves the HTML console.  Every signed-in browser session
// works against its own view.Workspace from Views.
type ConsoleHandler struct {
	Auth         Authenticator
	Views        *view.Registry
	Partials     Partials
	CookieSecure bool
}

func NewConsoleHandler(a Authenticator, views *view.Registry, p Partials, secure bool) *ConsoleHandler {
	return &ConsoleHandler{Auth: a, Views: views, Partials: p, CookieSecure: secure}
}

// Loading is shown while the session store has not resolved yet.
func (h *ConsoleHandler) Loading(c echo.Context) error {
	return c.Render(http.StatusServiceUnavailable, "loading", web.Page{Title: "Loading"})
}

func loginMode(m string) string {
	if m == "signup" {
		return "signup"
	}
	return "signin"
}

// LoginPage renders the sign-in form, or the sign-up form for ?mode=signup.
func (h *ConsoleHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login", web.Page{
		Title: "Sign In",
		Data:  web.Login{Mode: loginMode(c.QueryParam("mode"))},
	})
}

// Login signs in or signs up depending on the posted mode.  On success the
// session cookie is set and the browser is sent home; the session store has
// already seen the SIGNED_IN event by then, so the guard lets it through.
func (h *ConsoleHandler) Login(c echo.Context) error {
	mode := loginMode(c.FormValue("mode"))
	email := c.FormValue("email")

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	var (
		sess *model.Session
		err  error
	)
	if mode == "signup" {
		sess, err = h.Auth.SignUp(ctx, email, c.FormValue("password"))
	} else {
		sess, err = h.Auth.SignIn(ctx, email, c.FormValue("password"))
	}
	if err != nil {
		status, msg := authStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("console: %s failed: %v", mode, err)
		}
		return c.Render(status, "login", web.Page{
			Title: "Sign In",
			Data:  web.Login{Mode: mode, Email: email, Error: msg},
		})
	}
	middleware.SetSessionCookie(c, sess, h.CookieSecure)
	return c.Redirect(http.StatusSeeOther, guard.HomePath)
}

// Logout ends the session.  The SIGNED_OUT event removes it from the store
// and evicts the workspace before the redirect is sent.
func (h *ConsoleHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Auth.SignOut(ctx, middleware.SessionFrom(c)); err != nil {
		log.Printf("console: sign out: %v", err)
	}
	middleware.ClearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, guard.LoginPath)
}

func (h *ConsoleHandler) workspace(c echo.Context) (*view.Workspace, *model.Session) {
	sess := middleware.SessionFrom(c)
	return h.Views.For(sess.ID), sess
}

func (h *ConsoleHandler) page(c echo.Context, status int, name, title string, sess *model.Session, data any) error {
	return c.Render(status, name, web.Page{Title: title, Active: activePath(name), User: &sess.User, Data: data})
}

func activePath(name string) string {
	if name == "dashboard" {
		return guard.HomePath
	}
	return "/" + name
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func table[T any](snap view.Snapshot[T], retry string, modal template.HTML) web.Table {
	return web.Table{
		State: snap.State.String(),
		Error: errText(snap.Err),
		Retry: retry,
		Items: snap.Items,
		Modal: modal,
	}
}

// overlay wraps a rendered form partial in the dialog chrome.
func (h *ConsoleHandler) overlay(title, closeURL, partial string, data web.Form) template.HTML {
	body, err := h.Partials.Partial(partial, data)
	if err != nil {
		log.Printf("console: render %s: %v", partial, err)
		return ""
	}
	out, err := h.Partials.Partial("overlay", web.Overlay{Title: title, CloseURL: closeURL, Body: body})
	if err != nil {
		log.Printf("console: render overlay: %v", err)
		return ""
	}
	return out
}

// openFromQuery opens the page's overlay for ?new=1 and closes it for any
// other navigation.
func openFromQuery[S any](c echo.Context, o *view.Overlay[S]) {
	if c.QueryParam("new") == "1" {
		o.SetOpen(true)
		return
	}
	if o.IsOpen() {
		o.Dismiss()
	}
}

// ----- dashboard -----

func (h *ConsoleHandler) Dashboard(c echo.Context) error {
	ws, sess := h.workspace(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := ws.Navigate(ctx, view.ScreenDashboard); err != nil && !errors.Is(err, view.ErrStale) {
		log.Printf("console: dashboard: %v", err)
	}
	snap := ws.Dashboard.Snapshot()
	return h.page(c, http.StatusOK, "dashboard", "Dashboard", sess, web.Dashboard{
		State: snap.State.String(),
		Error: errText(snap.Err),
		Retry: guard.HomePath,
		Tiles: snap.Stats.Tiles(),
	})
}

// ----- properties -----

func (h *ConsoleHandler) Properties(c echo.Context) error {
	ws, sess := h.workspace(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	_ = ws.Navigate(ctx, view.ScreenProperties)
	openFromQuery(c, ws.Properties.Modal)
	return h.renderProperties(c, http.StatusOK, ws, sess)
}

func (h *ConsoleHandler) renderProperties(c echo.Context, status int, ws *view.Workspace, sess *model.Session) error {
	p := ws.Properties
	modal := p.Modal.Render(func(s view.FormScope) template.HTML {
		return h.overlay(p.Modal.Title, "/properties", "property_form", web.Form{
			Action: "/properties",
			Values: p.Form(),
			Alert:  s.Alert,
			Busy:   p.Busy(),
			Types:  view.PropertyTypes,
		})
	})
	return h.page(c, status, "properties", "Properties", sess, table(p.List.Snapshot(), "/properties", modal))
}

func (h *ConsoleHandler) CreateProperty(c echo.Context) error {
	ws, sess := h.workspace(c)
	form := view.DefaultPropertyForm()
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if ws.Current() != view.ScreenProperties {
		_ = ws.Navigate(ctx, view.ScreenProperties)
	}
	if _, err := ws.Properties.Submit(ctx, form); err != nil {
		return h.renderProperties(c, formStatus(err), ws, sess)
	}
	return c.Redirect(http.StatusSeeOther, "/properties")
}

// ----- clients -----

func (h *ConsoleHandler) Clients(c echo.Context) error {
	ws, sess := h.workspace(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	_ = ws.Navigate(ctx, view.ScreenClients)
	openFromQuery(c, ws.Clients.Modal)
	return h.renderClients(c, http.StatusOK, ws, sess)
}

func (h *ConsoleHandler) renderClients(c echo.Context, status int, ws *view.Workspace, sess *model.Session) error {
	p := ws.Clients
	modal := p.Modal.Render(func(s view.FormScope) template.HTML {
		return h.overlay(p.Modal.Title, "/clients", "client_form", web.Form{
			Action: "/clients",
			Values: p.Form(),
			Alert:  s.Alert,
			Busy:   p.Busy(),
		})
	})
	return h.page(c, status, "clients", "Clients", sess, table(p.List.Snapshot(), "/clients", modal))
}

func (h *ConsoleHandler) CreateClient(c echo.Context) error {
	ws, sess := h.workspace(c)
	form := view.DefaultClientForm()
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if ws.Current() != view.ScreenClients {
		_ = ws.Navigate(ctx, view.ScreenClients)
	}
	if _, err := ws.Clients.Submit(ctx, form); err != nil {
		return h.renderClients(c, formStatus(err), ws, sess)
	}
	return c.Redirect(http.StatusSeeOther, "/clients")
}

// ----- leases -----

func (h *ConsoleHandler) Leases(c echo.Context) error {
	ws, sess := h.workspace(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	_ = ws.Navigate(ctx, view.ScreenLeases)
	openFromQuery(c, ws.Leases.Modal)
	return h.renderLeases(c, http.StatusOK, ws, sess)
}

func (h *ConsoleHandler) renderLeases(c echo.Context, status int, ws *view.Workspace, sess *model.Session) error {
	p := ws.Leases
	modal := p.Modal.Render(func(s view.FormScope) template.HTML {
		return h.overlay(p.Modal.Title, "/leases", "lease_form", web.Form{
			Action:     "/leases",
			Values:     p.Form(),
			Alert:      s.Alert,
			Busy:       p.Busy(),
			Statuses:   model.LeaseStatuses,
			Properties: p.AvailableProperties.Snapshot().Items,
			Clients:    p.ClientOptions.Snapshot().Items,
		})
	})
	return h.page(c, status, "leases", "Leases", sess, table(p.List.Snapshot(), "/leases", modal))
}

func (h *ConsoleHandler) CreateLease(c echo.Context) error {
	ws, sess := h.workspace(c)
	form := view.DefaultLeaseForm()
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if ws.Current() != view.ScreenLeases {
		_ = ws.Navigate(ctx, view.ScreenLeases)
	}
	if _, err := ws.Leases.Submit(ctx, form); err != nil {
		return h.renderLeases(c, formStatus(err), ws, sess)
	}
	return c.Redirect(http.StatusSeeOther, "/leases")
}

// formStatus is createStatus for HTML forms: remote failures are still
// reported inside the page, so they use 422 rather than 500.
func formStatus(err error) int {
	if s := createStatus(err); s != http.StatusInternalServerError {
		return s
	}
	return http.StatusUnprocessableEntity
}

// ErrorHandler renders console errors as HTML and leaves API and metrics
// errors to echo's JSON handler.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if wantsHTML(c) {
			code := http.StatusInternalServerError
			msg := "Something went wrong."
			var he *echo.HTTPError
			if errors.As(err, &he) {
				code = he.Code
				if m, ok := he.Message.(string); ok {
					msg = m
				}
			}
			if code == http.StatusNotFound {
				msg = "Page not found."
			}
			title := http.StatusText(code)
			var user *model.SessionUser
			if s := middleware.SessionFrom(c); s != nil {
				user = &s.User
			}
			if rerr := c.Render(code, "error", web.Page{Title: title, User: user, Data: msg}); rerr == nil {
				return
			}
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}

func wantsHTML(c echo.Context) bool {
	p := c.Request().URL.Path
	if len(p) >= 4 && p[:4] == "/v1/" {
		return false
	}
	return p != "/metrics" && p != "/healthz"
}
