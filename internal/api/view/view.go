// Package view renders the HTML pages of the back office from embedded
// templates. Every page is executed inside one of two shells: the main shell
// with header and side navigation, or the bare auth shell.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mboutique/backoffice/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded stylesheet and script, rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page names.
const (
	PageLogin   = "login"
	PageHome    = "home"
	PageList    = "list"
	PageForm    = "form"
	PageConfirm = "confirm"
	PageError   = "error"
)

// pages maps each page to the shell it is rendered in.
var pages = map[string]string{
	PageLogin:   "auth",
	PageHome:    "shell",
	PageList:    "shell",
	PageForm:    "shell",
	PageConfirm: "shell",
	PageError:   "auth",
}

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot dismissible notification.
type Flash struct {
	Kind    FlashKind `json:"k"`
	Message string    `json:"m"`
}

type NavItem struct {
	Label  string
	Icon   string
	Link   string
	Active bool
}

// Navigation lists the side navigation entries.
var Navigation = []NavItem{
	{Label: "Home", Icon: "home", Link: "/home"},
	{Label: "Type produit", Icon: "category", Link: "/type-produits"},
}

// Page is the data every template receives.
type Page struct {
	Title string
	User  *domain.Principal
	Nav   []NavItem
	Flash *Flash
	CSRF  string
	Data  any
}

// UserLabel is the header label: name, else email, else "User".
func (p Page) UserLabel() string {
	if p.User == nil {
		return "User"
	}
	return p.User.DisplayLabel()
}

// NavFor marks the entry whose link prefixes path as active.
func NavFor(path string) []NavItem {
	items := make([]NavItem, len(Navigation))
	copy(items, Navigation)
	for i := range items {
		items[i].Active = path == items[i].Link || strings.HasPrefix(path, items[i].Link+"/")
	}
	return items
}

// Renderer is an echo.Renderer over the embedded templates.
type Renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

// NewRenderer parses every page with its shell and the shared partials.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for page, shell := range pages {
		t, err := template.New(page).ParseFS(templateFS,
			"templates/base.html",
			"templates/partials.html",
			"templates/"+shell+".html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render executes page name. data must be a Page.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}
