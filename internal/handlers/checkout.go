package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
)

type CheckoutHandler struct {
	*Base
	Svc *service.OrderService
}

func (h *CheckoutHandler) View(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.view")

	co, err := h.Svc.CheckoutView(ctx, session.From(c).UserID)
	if err != nil {
		return h.fail(c, l, "checkout_view_error", err, "/cart")
	}
	if len(co.Cart.Lines) == 0 {
		return h.redirect(c, "Your cart is empty.", "/cart")
	}
	return h.render(c, http.StatusOK, "checkout", "Checkout", co)
}

func (h *CheckoutHandler) Finalize(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.finalize")
	s := session.From(c)

	orders, err := h.Svc.Finalize(ctx, s.UserID, c.FormValue("phone"))
	if err != nil {
		return h.fail(c, l, "finalize_error", err, "/checkout")
	}
	if len(orders) == 0 {
		return h.redirect(c, "Your cart is empty.", "/cart")
	}

	s.CartCount = 0
	l.Info("finalize_success", "orders", len(orders))
	return h.redirect(c, "Order placed successfully!", "/")
}
