// Package app assembles the catalog service from its configuration.
package app

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"catalog/internal/apidoc"
	"catalog/internal/audit"
	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/handlers"
	"catalog/internal/logger"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"
)

// App owns the HTTP server and the resources behind it.
type App struct {
	Fiber *fiber.App

	cfg      config.Config
	log      *logger.Logger
	db       *gorm.DB
	mq       *rabbitmq.Client
	consumer *audit.Consumer
}

// New opens the store and audit transport selected by cfg and registers
// every route.
func New(cfg config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Std()
	}
	a := &App{cfg: cfg, log: log}

	// --- Repositories ---
	var (
		productRepo repositories.ProductRepository
		userRepo    repositories.UserRepository
	)
	if cfg.Database.Driver == "memory" {
		productRepo = repositories.NewInMemoryProductRepository()
		userRepo = repositories.NewInMemoryUserRepository()
	} else {
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		a.db = db
		productRepo = repositories.NewGORMProductRepository(db)
		userRepo = repositories.NewGORMUserRepository(db)
	}

	// --- Audit sink ---
	var publisher services.AuditPublisher
	if cfg.RabbitMQ.URL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.mq = mq
		a.consumer = audit.NewConsumer(audit.NewLogPublisher(log))
		publisher = audit.NewAMQPPublisher(mq)
	} else {
		publisher = audit.NewLogPublisher(log)
	}

	// --- Services ---
	productService := services.NewProductService(productRepo, publisher)
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	if err := authService.EnsureAdmin(cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create admin account: %w", err)
	}

	// --- Fiber ---
	a.Fiber = fiber.New(fiber.Config{
		AppName:               apidoc.Title,
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})
	a.Fiber.Use(requestid.New())
	a.Fiber.Use(middleware.RequestLogger(log))
	a.Fiber.Use(recover.New())

	handlers.NewMetaHandler(a.healthChecks()...).RegisterRoutes(a.Fiber)

	apiV1 := a.Fiber.Group(apidoc.BasePath)
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1, middleware.AuthRequired(authService))

	return a, nil
}

func (a *App) healthChecks() []handlers.HealthCheck {
	checks := []handlers.HealthCheck{{
		Name: "store",
		Check: func() error {
			if a.db == nil {
				return nil
			}
			return database.Ping(a.db)
		},
	}}
	if a.mq != nil {
		checks = append(checks, handlers.HealthCheck{Name: "audit", Check: a.mq.Ping})
	}
	return checks
}

// StartAuditConsumer drains the audit queue into the audit log. It does
// nothing when audit events are logged directly.
func (a *App) StartAuditConsumer() error {
	if a.mq == nil {
		return nil
	}
	return a.mq.Consume(a.consumer.Handle)
}

// Listen serves HTTP on the configured port until Shutdown.
func (a *App) Listen() error {
	a.log.Info("starting server", logger.Fields{"port": a.cfg.App.Port, "driver": a.cfg.Database.Driver})
	return a.Fiber.Listen(a.cfg.App.Port)
}

// Shutdown stops the HTTP server and releases the store and broker.
func (a *App) Shutdown() error {
	var errs []error
	if a.Fiber != nil {
		if err := a.Fiber.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
		}
	}
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close releases the store and broker without touching the HTTP server.
func (a *App) Close() error {
	var errs []error
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			errs = append(errs, err)
		}
		a.mq = nil
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
		a.db = nil
	}
	return errors.Join(errs...)
}
