package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
)

type CatalogHandler struct {
	*Base
	Svc *service.CatalogService
}

func (h *CatalogHandler) Index(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.index")

	items, err := h.Svc.List(ctx)
	if err != nil {
		return h.fail(c, l, "list_products_error", err, "/")
	}
	cats, err := h.Svc.Categories(ctx)
	if err != nil {
		return h.fail(c, l, "list_categories_error", err, "/")
	}
	return h.render(c, http.StatusOK, "index", "", map[string]any{
		"Products":   items,
		"Categories": cats,
	})
}

func (h *CatalogHandler) Category(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.category")

	name := c.Param("name")
	if u, err := url.PathUnescape(name); err == nil {
		name = u
	}

	items, err := h.Svc.ListByCategory(ctx, name)
	if err != nil {
		return h.fail(c, l, "list_category_error", err, "/")
	}
	return h.render(c, http.StatusOK, "category", name, map[string]any{
		"Category": name,
		"Products": items,
	})
}

// Search lists products matching q. A blank query goes back to the shop.
func (h *CatalogHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.Redirect(http.StatusFound, "/")
	}

	items, err := h.Svc.Search(ctx, q)
	if err != nil {
		return h.fail(c, l, "search_error", err, "/")
	}
	return h.render(c, http.StatusOK, "search", "Search", map[string]any{
		"Query":    q,
		"Products": items,
	})
}

func (h *CatalogHandler) Product(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.product")

	id, err := parseID(c, "id")
	if err != nil {
		return h.notFound(c, "Product not found.")
	}
	p, err := h.Svc.Get(ctx, id)
	if err != nil {
		return h.fail(c, l, "get_product_error", err, "/")
	}
	return h.render(c, http.StatusOK, "product", p.Name, map[string]any{"Product": p})
}

// ProductPost acknowledges the quantity picked on the detail page.
// Nothing is stored; the cart is filled through /add_to_cart.
func (h *CatalogHandler) ProductPost(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.product_post")

	id, err := parseID(c, "id")
	if err != nil {
		return h.notFound(c, "Product not found.")
	}
	p, err := h.Svc.Get(ctx, id)
	if err != nil {
		return h.fail(c, l, "get_product_error", err, "/")
	}

	qty, err := strconv.Atoi(strings.TrimSpace(c.FormValue("quantity")))
	if err != nil || qty < 1 {
		qty = 1
	}
	return h.redirect(c, fmt.Sprintf("%d x %s added to cart!", qty, p.Name), fmt.Sprintf("/produit/%d", p.ID))
}
