package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/handlers"
	"github.com/Skotchmaster/storefront/internal/middleware"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/view"
)

type Deps struct {
	DB        *gorm.DB
	Logger    *slog.Logger
	Sessions  *session.Manager
	Renderer  *view.Renderer
	CSRF      csrf.Config
	BodyLimit string
	StaticDir string

	Auth    *service.AuthService
	Catalog *service.CatalogService
	Cart    *service.CartService
	Orders  *service.OrderService
	About   *service.AboutService
}

func Register(e *echo.Echo, d *Deps) {
	base := &handlers.Base{Sessions: d.Sessions}
	e.Renderer = d.Renderer
	e.HTTPErrorHandler = base.ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := d.DB.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.StaticDir != "" {
		e.Static("/static", d.StaticDir)
	}

	bodyLimit := d.BodyLimit
	if bodyLimit == "" {
		bodyLimit = "10M"
	}
	pages := e.Group("")
	for _, m := range middleware.Common(bodyLimit) {
		pages.Use(m)
	}
	pages.Use(
		loggingmw.RequestLogger(d.Logger),
		auth.LoadSession(d.Sessions, d.Cart),
		csrf.Middleware(d.CSRF),
	)

	authH := &handlers.AuthHandler{Base: base, Svc: d.Auth}
	catalog := &handlers.CatalogHandler{Base: base, Svc: d.Catalog}
	cart := &handlers.CartHandler{Base: base, Svc: d.Cart}
	checkout := &handlers.CheckoutHandler{Base: base, Svc: d.Orders}
	about := &handlers.AboutHandler{Base: base, Svc: d.About}
	admin := &handlers.AdminHandler{Base: base, Catalog: d.Catalog, Orders: d.Orders, About: d.About}

	pages.GET("/create_user", authH.RegisterForm)
	pages.POST("/create_user", authH.Register)
	pages.GET("/login", authH.LoginForm)
	pages.POST("/login", authH.Login)
	pages.GET("/logout", authH.Logout)

	pages.GET("/", catalog.Index)
	pages.GET("/categorie/:name", catalog.Category)
	pages.GET("/recherche", catalog.Search)
	pages.GET("/produit/:id", catalog.Product)
	pages.POST("/produit/:id", catalog.ProductPost)
	pages.GET("/apropos", about.Show)

	// Guards are attached per route: a guarded Group("") would also claim the
	// catch-all not-found route.
	login := auth.RequireLogin(d.Sessions)
	pages.GET("/add_to_cart/:id", cart.Add, login)
	pages.GET("/cart", cart.View, login)
	pages.POST("/update_cart/:id", cart.Update, login)
	pages.GET("/delete_cart/:id", cart.Remove, login)
	pages.GET("/checkout", checkout.View, login)
	pages.POST("/checkout", checkout.Finalize, login)
	pages.POST("/finalize_order", checkout.Finalize, login)

	adm := auth.RequireAdmin(d.Sessions)
	pages.GET("/admin", admin.Products, adm)
	pages.POST("/admin", admin.CreateProduct, adm)
	pages.GET("/edit/:id", admin.EditForm, adm)
	pages.POST("/edit/:id", admin.UpdateProduct, adm)
	pages.GET("/delete/:id", admin.DeleteProduct, adm)
	pages.GET("/admin_orders", admin.OrdersList, adm)
	pages.GET("/delete_order/:id", admin.DeleteOrder, adm)
	pages.GET("/admin_apropos", admin.AboutList, adm)
	pages.POST("/admin_apropos", admin.CreateAbout, adm)
	pages.GET("/delete_apropos/:id", admin.DeleteAbout, adm)
}
