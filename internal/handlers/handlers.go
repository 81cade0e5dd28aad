// Package handlers serves the storefront HTML pages and form posts.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/view"
)

// Base carries what every page handler needs to render and flash.
type Base struct {
	Sessions *session.Manager
}

func (b *Base) render(c echo.Context, status int, page, title string, data any) error {
	return c.Render(status, page, view.Page{
		Title:   title,
		Session: session.From(c),
		Flashes: b.Sessions.TakeFlashes(c),
		CSRF:    csrf.Token(c),
		Data:    data,
	})
}

// renderBare renders without consuming pending flashes, so stray asset
// misses and error pages leave them for the next real page.
func (b *Base) renderBare(c echo.Context, status int, page, title string, data any) error {
	return c.Render(status, page, view.Page{
		Title:   title,
		Session: session.From(c),
		CSRF:    csrf.Token(c),
		Data:    data,
	})
}

func (b *Base) redirect(c echo.Context, msg, to string) error {
	if msg != "" {
		b.Sessions.AddFlash(c, msg)
	}
	return c.Redirect(http.StatusFound, to)
}

func (b *Base) notFound(c echo.Context, msg string) error {
	return b.renderBare(c, http.StatusNotFound, "not_found", "Not found", msg)
}

// fail maps a service error onto the response. User errors are flashed and
// redirected back to the form; anything unexpected becomes a 500.
func (b *Base) fail(c echo.Context, l *slog.Logger, event string, err error, back string) error {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrAuth):
		l.Warn(event, "status", http.StatusFound, "reason", "rejected input", "error", err)
		return b.redirect(c, userMessage(err), back)
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", http.StatusNotFound, "reason", "not found", "error", err)
		return b.notFound(c, notFoundMessage(err))
	default:
		l.Error(event, "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error.")
	}
}

// ErrorHandler renders errors that reach echo as HTML pages.
func (b *Base) ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "Internal server error."
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	page := "error"
	if code == http.StatusNotFound {
		page, msg = "not_found", ""
	}
	if rerr := b.renderBare(c, code, page, http.StatusText(code), msg); rerr != nil {
		logging.FromContext(c.Request().Context()).Error("render_error", "page", page, "error", rerr)
		_ = c.String(code, msg)
	}
}

func userMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if msg == "" {
		return "Invalid request."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

// notFoundMessage turns "not found: product" into "Product not found.".
func notFoundMessage(err error) string {
	msg := err.Error()
	i := strings.Index(msg, ": ")
	if i < 0 || i+2 >= len(msg) {
		return "Not found."
	}
	what := msg[i+2:]
	return strings.ToUpper(what[:1]) + what[1:] + " not found."
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("id is not a positive integer")
	}
	return uint(id), nil
}

// formUpload returns the uploaded file for field, or nil when none was sent.
// The caller must run the returned close func.
func formUpload(c echo.Context, field string) (*service.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	if fh.Filename == "" || fh.Size == 0 {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &service.Upload{Filename: fh.Filename, Body: f}, func() { f.Close() }, nil
}
