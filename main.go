package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ayuta/internal/config"
	"ayuta/internal/events"
	"ayuta/internal/handlers"
	"ayuta/internal/metrics"
	"ayuta/internal/middleware"
	"ayuta/internal/models"
	"ayuta/internal/payment"
	"ayuta/internal/repositories"
	"ayuta/internal/services"
	"ayuta/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	// --- RabbitMQ signal relay (optional) ---
	var publisher events.Publisher
	if cfg.RelayEnabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, logger)
		if err != nil {
			logger.Warn("signal relay disabled", zap.Error(err))
		} else {
			defer mqClient.Close()
			publisher = mqClient
			consumeSignals(mqClient, logger)
		}
	}

	a, err := newApp(cfg, logger, publisher)
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}
	defer a.close()

	// --- Start HTTP Server ---
	logger.Info("starting server", zap.String("port", cfg.AppPort), zap.String("driver", cfg.DatabaseDriver))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := a.app.Listen(cfg.AppPort); err != nil {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")
	if err := a.app.ShutdownWithTimeout(cfg.GatewayTimeout + 5*time.Second); err != nil {
		logger.Error("error during fiber shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}

// application bundles the HTTP app with the resources it owns.
type application struct {
	app      *fiber.App
	tabs     *services.TabRegistry
	db       *gorm.DB
	registry *prometheus.Registry
}

func (a *application) close() {
	a.tabs.Close()
	if a.db == nil {
		return
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}

// newApp wires storage, catalog, gateway, metrics and handlers into a Fiber app.
// publisher may be nil.
func newApp(cfg *config.Config, logger *zap.Logger, publisher events.Publisher) (*application, error) {
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	storage := repositories.NewMockStorageFactory()
	var productRepo repositories.ProductRepository = repositories.NewMockProductRepository()
	if db != nil {
		if err := db.AutoMigrate(&models.KVEntry{}, &models.Product{}); err != nil {
			return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
		}
		storage = repositories.NewGORMStorageFactory(db)
		productRepo = repositories.NewGORMProductRepository(db)
	}

	catalog := services.NewCatalogService(productRepo)
	seeded, err := catalog.Seed(services.DefaultCatalog())
	if err != nil {
		return nil, err
	}
	logger.Info("catalog ready", zap.Int("seeded", seeded))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	tabs := services.NewTabRegistry(services.Dependencies{
		Storage:   storage,
		Catalog:   catalog,
		Gateway:   payment.NewMockGateway(cfg.GatewayCreateDelay, cfg.GatewayConfirmDelay),
		Publisher: publisher,
		Logger:    logger,
		Metrics:   collector,
	}, services.TabConfig{
		TaxRate:        cfg.TaxRate,
		ShippingCost:   cfg.ShippingCost,
		GatewayTimeout: cfg.GatewayTimeout,
		IssueResults:   cfg.IssueResults,
		IdleTTL:        cfg.TabIdleTTL,
	})

	// Parsed bodies and params end up in tab state, so they must not alias request buffers.
	app := fiber.New(fiber.Config{AppName: "ayuta", Immutable: true})
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		broker := "disabled"
		if publisher != nil {
			broker = "connected"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"storage": cfg.DatabaseDriver,
			"broker":  broker,
			"tabs":    tabs.Len(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	apiV1 := app.Group("/api/v1", middleware.ClientScope(logger))
	handlers.NewShopHandler(tabs, logger).RegisterRoutes(apiV1)
	handlers.NewAccountHandler(tabs, logger).RegisterRoutes(apiV1)
	handlers.NewPagesHandler(tabs, catalog, logger).RegisterRoutes(apiV1)

	return &application{app: app, tabs: tabs, db: db, registry: registry}, nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverMemory:
		return nil, nil
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DatabaseDriver, err)
	}
	return db, nil
}

// consumeSignals logs every signal the relay publishes, from this or any other instance.
func consumeSignals(client *rabbitmq.Client, logger *zap.Logger) {
	err := client.ConsumeSignals(func(msg events.SignalMessage) error {
		logger.Info("signal observed",
			zap.String("client_id", msg.ClientID),
			zap.String("signal", string(msg.Signal)),
			zap.Int("cart_items", msg.CartItems),
			zap.Int("orders", msg.Orders),
			zap.Bool("signed_in", msg.SignedIn))
		return nil
	})
	if err != nil {
		logger.Warn("failed to start signal consumer", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
