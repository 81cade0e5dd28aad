package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
)

type AuthHandler struct {
	*Base
	Svc *service.AuthService
}

func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "register", "Register", nil)
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	user, err := h.Svc.Register(ctx, service.RegisterInput{
		Name:     c.FormValue("name"),
		Surname:  c.FormValue("surname"),
		Email:    c.FormValue("email"),
		Address:  c.FormValue("address"),
		Password: c.FormValue("password"),
		Confirm:  c.FormValue("confirm_password"),
	})
	if err != nil {
		return h.fail(c, l, "register_error", err, "/create_user")
	}

	l.Info("register_success", "user_id", user.ID)
	return h.redirect(c, "Account created. You can now log in.", "/login")
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "login", "Log in", nil)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	user, err := h.Svc.Login(ctx, c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		return h.fail(c, l, "login_error", err, "/login")
	}

	if err := h.Sessions.Login(c, user.ID, user.Email, user.IsAdmin); err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot sign session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create session")
	}

	l.Info("login_success", "user_id", user.ID, "admin", user.IsAdmin)
	return h.redirect(c, "Logged in.", "/")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.Sessions.Logout(c)
	return h.redirect(c, "Logged out.", "/")
}
