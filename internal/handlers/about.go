package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
)

type AboutHandler struct {
	*Base
	Svc *service.AboutService
}

func (h *AboutHandler) Show(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "about.show")

	entries, err := h.Svc.List(ctx)
	if err != nil {
		return h.fail(c, l, "list_about_error", err, "/")
	}
	return h.render(c, http.StatusOK, "about", "About", map[string]any{"Entries": entries})
}
