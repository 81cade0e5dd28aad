// Package auth loads the cookie session and guards member and admin routes.
package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/session"
)

const (
	LoginPath = "/login"

	msgLoginRequired = "Please log in first."
	msgAccessDenied  = "Access denied."
)

type CartCounter interface {
	Count(ctx context.Context, userID uint) (int64, error)
}

// LoadSession resolves the caller from the session cookie and fills in the
// cart badge count for every page.
func LoadSession(m *session.Manager, carts CartCounter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx)

			s, err := m.Load(c)
			if err != nil {
				l.Warn("session_invalid", "reason", "cookie rejected", "error", err)
			}
			if s.Authenticated() && carts != nil {
				n, err := carts.Count(ctx, s.UserID)
				if err != nil {
					l.Error("cart_count_error", "user_id", s.UserID, "error", err)
				}
				s.CartCount = n
			}
			return next(c)
		}
	}
}

func RequireLogin(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !session.From(c).Authenticated() {
				m.AddFlash(c, msgLoginRequired)
				return c.Redirect(http.StatusFound, LoginPath)
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects non-admin callers before the handler runs.
func RequireAdmin(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := session.From(c)
			if !s.Authenticated() || !s.IsAdmin {
				logging.FromContext(c.Request().Context()).Warn("access_denied", "status", http.StatusFound, "path", c.Path(), "user_id", s.UserID)
				m.AddFlash(c, msgAccessDenied)
				return c.Redirect(http.StatusFound, LoginPath)
			}
			return next(c)
		}
	}
}
