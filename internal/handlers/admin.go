package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
)

// AdminHandler serves the admin-only pages. Access is checked by middleware.
type AdminHandler struct {
	*Base
	Catalog *service.CatalogService
	Orders  *service.OrderService
	About   *service.AboutService
}

func (h *AdminHandler) Products(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.products")

	items, err := h.Catalog.List(ctx)
	if err != nil {
		return h.fail(c, l, "list_products_error", err, "/")
	}
	return h.render(c, http.StatusOK, "admin", "Products", map[string]any{"Products": items})
}

func (h *AdminHandler) productInput(c echo.Context) (service.ProductInput, func(), error) {
	img, closeFn, err := formUpload(c, "image")
	if err != nil {
		return service.ProductInput{}, closeFn, err
	}
	return service.ProductInput{
		Name:        c.FormValue("name"),
		Category:    c.FormValue("category"),
		Price:       c.FormValue("price"),
		Description: c.FormValue("description"),
		Image:       img,
	}, closeFn, nil
}

func (h *AdminHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_product")

	in, closeFn, err := h.productInput(c)
	defer closeFn()
	if err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid upload", "error", err)
		return h.redirect(c, "Invalid image upload.", "/admin")
	}

	p, err := h.Catalog.Create(ctx, in)
	if err != nil {
		return h.fail(c, l, "product_create_error", err, "/admin")
	}

	l.Info("product_create_success", "product_id", p.ID)
	return h.redirect(c, "Product added.", "/admin")
}

func (h *AdminHandler) EditForm(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.edit_form")

	id, err := parseID(c, "id")
	if err != nil {
		return h.notFound(c, "Product not found.")
	}
	p, err := h.Catalog.Get(ctx, id)
	if err != nil {
		return h.fail(c, l, "get_product_error", err, "/admin")
	}
	return h.render(c, http.StatusOK, "edit", "Edit "+p.Name, map[string]any{"Product": p})
}

func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_product")

	id, err := parseID(c, "id")
	if err != nil {
		return h.notFound(c, "Product not found.")
	}

	in, closeFn, err := h.productInput(c)
	defer closeFn()
	if err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid upload", "error", err)
		return h.redirect(c, "Invalid image upload.", c.Request().URL.Path)
	}

	if _, err := h.Catalog.Update(ctx, id, in); err != nil {
		return h.fail(c, l, "product_update_error", err, c.Request().URL.Path)
	}

	l.Info("product_update_success", "product_id", id)
	return h.redirect(c, "Product updated.", "/admin")
}

func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	id, err := parseID(c, "id")
	if err != nil {
		return h.notFound(c, "Product not found.")
	}
	if err := h.Catalog.Delete(ctx, id); err != nil {
		return h.fail(c, l, "product_delete_error", err, "/admin")
	}

	l.Info("product_delete_success", "product_id", id)
	return h.redirect(c, "Product deleted.", "/admin")
}

func (h *AdminHandler) OrdersList(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders")

	orders, err := h.Orders.List(ctx)
	if err != nil {
		return h.fail(c, l, "list_orders_error", err, "/admin")
	}
	return h.render(c, http.StatusOK, "admin_orders", "Orders", map[string]any{"Orders": orders})
}

func (h *AdminHandler) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_order")

	id, err := parseID(c, "id")
	if err != nil {
		return h.notFound(c, "Order not found.")
	}
	if err := h.Orders.Delete(ctx, id); err != nil {
		return h.fail(c, l, "order_delete_error", err, "/admin_orders")
	}

	l.Info("order_delete_success", "order_id", id)
	return h.redirect(c, "Order deleted.", "/admin_orders")
}

func (h *AdminHandler) AboutList(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.about")

	entries, err := h.About.List(ctx)
	if err != nil {
		return h.fail(c, l, "list_about_error", err, "/admin")
	}
	return h.render(c, http.StatusOK, "admin_about", "About page", map[string]any{"Entries": entries})
}

func (h *AdminHandler) CreateAbout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_about")

	img, closeFn, err := formUpload(c, "image")
	defer closeFn()
	if err != nil {
		l.Warn("about_create_error", "status", 400, "reason", "invalid upload", "error", err)
		return h.redirect(c, "Invalid image upload.", "/admin_apropos")
	}

	e, err := h.About.Create(ctx, c.FormValue("text"), img)
	if err != nil {
		return h.fail(c, l, "about_create_error", err, "/admin_apropos")
	}

	l.Info("about_create_success", "entry_id", e.ID)
	return h.redirect(c, "Entry published.", "/admin_apropos")
}

func (h *AdminHandler) DeleteAbout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_about")

	id, err := parseID(c, "id")
	if err != nil {
		return h.notFound(c, "Entry not found.")
	}
	if err := h.About.Delete(ctx, id); err != nil {
		return h.fail(c, l, "about_delete_error", err, "/admin_apropos")
	}

	l.Info("about_delete_success", "entry_id", id)
	return h.redirect(c, "Entry deleted.", "/admin_apropos")
}
