// Package app wires the storefront: configuration, backend client, session,
// stores, services and the fiber routes.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"storefront/internal/apiclient"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/session"
	"storefront/internal/store"
	"storefront/pkg/logger"
	"storefront/pkg/rabbitmq"
)

// Core is the part of the storefront shared by the server and the CLI: the
// backend client and the persisted admin session.
type Core struct {
	Config    config.Config
	Client    *apiclient.Client
	Session   *session.Store
	Auth      *services.AuthService
	Collector *metrics.Collector

	db *gorm.DB
}

// NewCore opens the session storage and connects the backend client to the
// session. The session is left unknown until Restore is called.
func NewCore(cfg config.Config) (*Core, error) {
	db, err := repositories.OpenPreferenceDB(cfg.SessionDBDriver, cfg.SessionDBDSN)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector()
	client := apiclient.New(cfg.BackendURL, apiclient.WithObserver(collector))
	sess := session.New(repositories.NewGORMPreferenceRepository(db), session.APIVerifier{Client: client})
	client.SetTokenSource(sess)

	return &Core{
		Config:    cfg,
		Client:    client,
		Session:   sess,
		Auth:      services.NewAuthService(client, sess),
		Collector: collector,
		db:        db,
	}, nil
}

// Close releases the session storage.
func (c *Core) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// App is the HTTP server.
type App struct {
	*Core
	Fiber *fiber.App

	events *rabbitmq.Client
}

// New builds the server. Events are published only when RABBITMQ_URL is set
// and the broker is reachable.
func New(cfg config.Config) (*App, error) {
	core, err := NewCore(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{Core: core}
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			logger.Warn(context.Background()).Err(err).Msg("RabbitMQ unavailable, events disabled")
		} else {
			a.events = mq
			publisher = mq
		}
	}

	productStore := store.New[models.Product, models.ProductDraft]("products", repositories.NewHTTPProductRepository(core.Client))
	categoryStore := store.New[models.Category, models.NameDraft]("categories", repositories.NewHTTPCategoryRepository(core.Client))
	colorStore := store.New[models.Color, models.NameDraft]("colors", repositories.NewHTTPColorRepository(core.Client))
	views := metrics.NewViewCounter(core.Collector.ProductViewed)

	catalogService := services.NewCatalogService(productStore, categoryStore, cfg.BackendURL, cfg.CatalogPageSize)
	productService := services.NewProductService(productStore, views, publisher, cfg.BackendURL, cfg.AdminPageSize, cfg.RelatedLimit)
	metadataService := services.NewMetadataService(categoryStore, colorStore, publisher)
	contactService := services.NewContactService(core.Client, publisher)

	a.Fiber = fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: errorHandler,
	})
	a.Fiber.Use(recover.New())
	a.Fiber.Use(fiberlogger.New())
	a.Fiber.Use(cors.New())

	a.Fiber.Get("/health", a.handleHealth)
	a.Fiber.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(core.Collector.Registry(), promhttp.HandlerOpts{})))

	apiV1 := a.Fiber.Group("/api/v1")
	handlers.NewCatalogHandler(catalogService, productService).RegisterRoutes(apiV1)
	handlers.NewContactHandler(contactService).RegisterRoutes(apiV1)
	handlers.NewAuthHandler(core.Auth).RegisterRoutes(apiV1)

	admin := apiV1.Group("/admin", middleware.AdminRequired(core.Session))
	handlers.NewAdminProductHandler(productService, core.Session).RegisterRoutes(admin)
	handlers.NewMetadataHandler(metadataService, core.Session).RegisterRoutes(admin)
	handlers.NewMetricsHandler(productService, core.Session).RegisterRoutes(admin)

	return a, nil
}

// Serve restores the session, then listens until ctx is done and shuts the
// server down.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Session.Restore(ctx); err != nil {
		logger.Warn(ctx).Err(err).Msg("Starting without a persisted session")
	}
	logger.Info(ctx).
		Str("port", a.Config.AppPort).
		Str("backend", a.Config.BackendURL).
		Str("session", a.Session.State().String()).
		Msg("Starting server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Fiber.Listen(a.Config.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	logger.Info(ctx).Msg("Shutting down server...")
	if err := a.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error(ctx).Err(err).Msg("Error during Fiber shutdown")
	}
	logger.Info(ctx).Msg("Server gracefully stopped")
	return nil
}

// Close releases the broker connection and the session storage.
func (a *App) Close() error {
	var errs []error
	if a.events != nil {
		errs = append(errs, a.events.Close())
	}
	errs = append(errs, a.Core.Close())
	return errors.Join(errs...)
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	events := "disabled"
	if a.events != nil {
		events = "enabled"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Format(time.RFC3339),
		"backend": a.Config.BackendURL,
		"session": a.Session.State().String(),
		"events":  events,
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logger.Error(c.UserContext()).Err(err).Str("path", c.Path()).Msg("Unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}
