// Package view renders the server-side HTML pages.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/session"
)

//go:embed templates
var files embed.FS

// Page is the data every template receives.
type Page struct {
	Title   string
	Session *session.Session
	Flashes []string
	CSRF    string
	Data    any
}

// ImageURL maps a stored image name to a public URL.
type ImageURL func(name string) string

type Renderer struct {
	pages map[string]*template.Template
}

func New(imageURL ImageURL) (*Renderer, error) {
	funcs := template.FuncMap{
		"image": func(name string) string {
			if name == "" {
				return ""
			}
			return imageURL(name)
		},
		"money": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 2, 64)
		},
	}

	base, err := template.New("layout").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	names, err := fs.Glob(files, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, n := range names {
		t, err := template.Must(base.Clone()).ParseFS(files, n)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", n, err)
		}
		r.pages[strings.TrimSuffix(path.Base(n), ".html")] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}
