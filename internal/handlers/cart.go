package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
)

type CartHandler struct {
	*Base
	Svc *service.CartService
}

func (h *CartHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")
	s := session.From(c)

	id, err := parseID(c, "id")
	if err != nil {
		return h.redirect(c, "Product not found.", "/")
	}

	item, p, err := h.Svc.Add(ctx, s.UserID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("cart_add_error", "status", 302, "reason", "unknown product", "product_id", id)
			return h.redirect(c, "Product not found.", "/")
		}
		return h.fail(c, l, "cart_add_error", err, "/")
	}

	msg := "Product added to cart."
	if item.Quantity > 1 {
		msg = "Quantity updated in cart."
	}
	l.Info("cart_add_success", "product_id", id, "quantity", item.Quantity)
	return h.redirect(c, msg, fmt.Sprintf("/produit/%d", p.ID))
}

func (h *CartHandler) View(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.view")

	cart, err := h.Svc.View(ctx, session.From(c).UserID)
	if err != nil {
		return h.fail(c, l, "cart_view_error", err, "/")
	}
	return h.render(c, http.StatusOK, "cart", "Cart", map[string]any{"Cart": cart})
}

func (h *CartHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	id, err := parseID(c, "id")
	if err != nil {
		return h.redirect(c, "Cart line not found.", "/cart")
	}
	qty, err := service.ParseQuantity(c.FormValue("quantity"))
	if err != nil {
		return h.fail(c, l, "cart_update_error", err, "/cart")
	}

	if err := h.Svc.UpdateQuantity(ctx, session.From(c).UserID, id, qty); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return h.redirect(c, "Cart line not found.", "/cart")
		}
		return h.fail(c, l, "cart_update_error", err, "/cart")
	}
	return h.redirect(c, "Quantity updated.", "/cart")
}

func (h *CartHandler) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	id, err := parseID(c, "id")
	if err != nil {
		return h.redirect(c, "Cart line not found.", "/cart")
	}
	if err := h.Svc.Remove(ctx, session.From(c).UserID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return h.redirect(c, "Cart line not found.", "/cart")
		}
		return h.fail(c, l, "cart_remove_error", err, "/cart")
	}
	return h.redirect(c, "Product removed from cart.", "/cart")
}
