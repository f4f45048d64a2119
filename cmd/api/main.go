package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"stockflow/internal/config"
	"stockflow/internal/database"
	"stockflow/internal/database/migration"
	handlers "stockflow/internal/http/handler"
	"stockflow/internal/http/middleware"
	"stockflow/internal/logger"
	"stockflow/internal/metrics"
	"stockflow/internal/otel"
	"stockflow/internal/repository/postgres"
	"stockflow/internal/service"
	"stockflow/internal/session"
	"stockflow/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// @title Stockflow API
// @version 1.0
// @description Multi-tenant inventory and order management.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "stockflow: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		ServiceName: cfg.ServiceName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
		Location:    cfg.Location(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, cfg.ServiceName, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := migration.Run(ctx, db, log); err != nil {
			return multierr.Append(err, db.Close())
		}
	}

	redisClient, err := session.NewClient(ctx, cfg.Redis)
	if err != nil {
		return multierr.Append(fmt.Errorf("connect redis: %w", err), db.Close())
	}
	sessions := session.NewRedisStore(redisClient)

	var objStore storage.Storage
	if cfg.MinIO.Enabled() {
		objStore, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return multierr.Combine(fmt.Errorf("init object storage: %w", err), sessions.Close(), db.Close())
		}
	} else {
		log.Warn(ctx, "minio endpoint not configured, export archiving disabled")
	}

	orderMetrics, err := metrics.NewOrders(prometheus.DefaultRegisterer)
	if err != nil {
		return multierr.Combine(fmt.Errorf("register order metrics: %w", err), sessions.Close(), db.Close())
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return multierr.Combine(fmt.Errorf("register http metrics: %w", err), sessions.Close(), db.Close())
	}

	// Initialize repositories and services
	skuRepo := postgres.NewSKUPostgres(db)
	orderRepo := postgres.NewOrderPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	profileRepo := postgres.NewProfilePostgres(db)

	deps := handlers.Deps{
		DB:        db,
		Auth:      service.NewAuthService(userRepo, profileRepo, sessions, cfg.JWT, log),
		Inventory: service.NewInventoryService(skuRepo),
		Orders:    service.NewOrderService(orderRepo, skuRepo, orderMetrics, log),
		Dashboard: service.NewDashboardService(skuRepo, orderRepo),
		Settings:  service.NewSettingsService(userRepo, profileRepo),
		Exports:   service.NewExportService(orderRepo, skuRepo, objStore, cfg.MinIO.PresignExpiry),
		Metrics:   otelhttp.NewHandler(promhttp.Handler(), "metrics"),
		Log:       log,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: cfg.Env != "dev",
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, deps)

	addr := ":" + cfg.Port
	serveErr := make(chan error, 1)
	go func() {
		log.Event(ctx).Str("addr", addr).Msg("http_server_start")
		serveErr <- app.Listen(addr)
	}()

	select {
	case err = <-serveErr:
		if err != nil {
			err = fmt.Errorf("serve http: %w", err)
		}
	case <-ctx.Done():
		log.Info(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := multierr.Combine(
		app.ShutdownWithContext(shutdownCtx),
		shutdownTracing(shutdownCtx),
		sessions.Close(),
		db.Close(),
	)
	if shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) {
		log.Error(shutdownCtx, "shutdown incomplete", shutdownErr)
	}
	return multierr.Append(err, shutdownErr)
}
