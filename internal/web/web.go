// Package web renders the console's HTML.  Every page is the shared layout
// plus one page template; fragments such as creation forms are rendered
// separately through Partial so views can place them inside an overlay.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/propconsole/internal/model"
	"github.com/iliyamo/propconsole/internal/view"
)

//go:embed templates/*.html
var files embed.FS

var pageNames = []string{"login", "loading", "dashboard", "properties", "clients", "leases", "error"}

// Page is the data every full page receives.
type Page struct {
	Title  string
	Active string
	User   *model.SessionUser
	Data   any
}

// NavItem is one entry of the shell navigation.
type NavItem struct {
	Path  string
	Label string
}

// Nav lists the shell navigation in display order.
var Nav = []NavItem{
	{Path: "/", Label: "Dashboard"},
	{Path: "/properties", Label: "Properties"},
	{Path: "/clients", Label: "Clients"},
	{Path: "/leases", Label: "Leases"},
}

// Login is the data of the login page.  Mode is "signin" or "signup".
type Login struct {
	Mode  string
	Email string
	Error string
}

// Table is the data of an entity list page.
type Table struct {
	State string
	Error string
	Retry string
	Items any
	Modal template.HTML
}

// Dashboard is the data of the dashboard page.
type Dashboard struct {
	State string
	Error string
	Retry string
	Tiles []view.Tile
}

// Form is the data of a creation form fragment.
type Form struct {
	Action     string
	Values     any
	Alert      string
	Busy       bool
	Types      []string
	Statuses   []string
	Properties []model.PropertyOption
	Clients    []model.ClientOption
}

// Overlay is the data of the dialog wrapper.
type Overlay struct {
	Title    string
	CloseURL string
	Body     template.HTML
}

var funcs = template.FuncMap{
	"currency": view.Currency,
	"count":    view.Count,
	"date":     view.Date,
	"optional": view.Optional,
	"optint":   view.OptionalInt,
	"badge":    func(status string) string { return "status-badge status-" + status },
	"nav":      func() []NavItem { return Nav },
}

// Renderer implements echo.Renderer.
type Renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	partials, err := template.New("partials").Funcs(funcs).ParseFS(files, "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames)), partials: partials}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(files,
			"templates/layout.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the layout with the named page's content.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("web: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Partial renders one fragment defined in partials.html.
func (r *Renderer) Partial(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.partials.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
