package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/storage"
	httpserver "github.com/Skotchmaster/storefront/internal/transport/http"
	"github.com/Skotchmaster/storefront/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}

	l := logging.New(cfg.LogLevel)
	slog.SetDefault(l)

	if err := run(cfg, l); err != nil {
		l.Error("server_error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, l *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, l)

	if cfg.DevSecret {
		l.Warn("config_fallback", "key", "SECRET_KEY", "reason", "using development secret")
	}
	if cfg.DevAdminPassword {
		l.Warn("config_fallback", "key", "ADMIN_PASSWORD", "reason", "using development admin password")
	}

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				l.Error("db_close_error", "error", err)
			}
		}
	}()

	created, err := db.Bootstrap(ctx, gdb, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		l.Info("admin_seeded", "email", cfg.AdminEmail)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaProducer(cfg.KafkaBrokers, l)
		if err != nil {
			return err
		}
		publisher = kp
		l.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			l.Error("kafka_close_error", "error", err)
		}
	}()

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	users := &repo.UserRepo{DB: gdb}
	products := &repo.ProductRepo{DB: gdb}
	cart := &repo.CartRepo{DB: gdb}

	catalog := &service.CatalogService{Products: products, Images: images, Events: publisher}
	if cfg.ESURL != "" {
		es, err := search.NewClient(search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex})
		if err != nil {
			return err
		}
		idx := &search.ProductIndex{ES: es, Index: cfg.ESIndex}
		if err := idx.EnsureIndex(ctx); err != nil {
			l.Warn("search_disabled", "reason", "cannot prepare index", "error", err)
		} else {
			catalog.Index = idx
			n, err := catalog.Reindex(ctx)
			if err != nil {
				l.Warn("search_reindex_error", "indexed", n, "error", err)
			} else {
				l.Info("search_enabled", "index", cfg.ESIndex, "indexed", n)
			}
		}
	}

	renderer, err := view.New(images.URL)
	if err != nil {
		return err
	}

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = cfg.CookieSecure

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())

	httpserver.Register(e, &httpserver.Deps{
		DB:        gdb,
		Logger:    l,
		Sessions:  &session.Manager{Secret: []byte(cfg.SecretKey), TTL: cfg.SessionTTL, Secure: cfg.CookieSecure},
		Renderer:  renderer,
		CSRF:      csrfCfg,
		BodyLimit: cfg.MaxUploadSize,
		StaticDir: cfg.StaticDir,

		Auth:    &service.AuthService{Users: users, Events: publisher},
		Catalog: catalog,
		Cart:    &service.CartService{Cart: cart, Products: products, Events: publisher},
		Orders:  &service.OrderService{Orders: &repo.OrderRepo{DB: gdb}, Users: users, Cart: cart, Events: publisher},
		About:   &service.AboutService{Entries: &repo.AboutRepo{DB: gdb}, Images: images, Events: publisher},
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("server_started", "addr", srv.Addr, "env", cfg.Env, "db", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("shutdown_error", "error", err)
	}
	l.Info("shutdown_complete")
	return nil
}

func newImageStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.S3Bucket != "" {
		return storage.NewS3(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessID:  cfg.S3AccessKeyID,
			AccessKey: cfg.S3SecretAccessKey,
			KeyPrefix: cfg.S3KeyPrefix,
			PublicURL: cfg.S3PublicURL,
		})
	}
	return storage.NewLocal(cfg.UploadDir, cfg.UploadURL)
}
