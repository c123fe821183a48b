package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"sessionvault/docs"
	"sessionvault/internal/config"
	"sessionvault/internal/database"
	"sessionvault/internal/database/migration"
	handlers "sessionvault/internal/http/handler"
	"sessionvault/internal/http/middleware"
	"sessionvault/internal/logger"
	"sessionvault/internal/otel"
	"sessionvault/internal/repository/postgres"
	"sessionvault/internal/service"
	"sessionvault/internal/storage"
)

// @title Session Vault API
// @version 1.0
// @BasePath /
func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.Location)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// A misconfigured blob backend must not stop the bot routes from serving.
	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Error("blob storage unavailable",
			zap.String("component", "storage"),
			zap.String("backend", cfg.Storage.Backend),
			zap.Error(err),
		)
	} else {
		log.Info("blob storage connected", zap.String("component", "storage"), zap.String("backend", store.Backend()))
	}

	statusSvc := service.NewStatusService(postgres.NewStatusPostgres(db), logger.Component(log, "status"))
	sessionSvc := service.NewSessionService(
		store,
		postgres.NewSessionPostgres(db),
		statusSvc,
		service.SessionConfig{DownloadDir: cfg.DownloadDir, LinkExpiry: cfg.Storage.LinkExpiry},
		logger.Component(log, "sessions"),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		BodyLimit:    cfg.HTTP.BodyLimitMB * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: strings.Join([]string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodPut,
			fiber.MethodDelete, fiber.MethodPatch, fiber.MethodHead, fiber.MethodOptions,
		}, ","),
		AllowHeaders: "*",
	}))
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())
	app.Use(middleware.Logger(log))

	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:       db,
		Store:    store,
		Sessions: sessionSvc,
		Status:   statusSvc,
		Gatherer: reg,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", addr), zap.String("app_host", cfg.AppHost))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("http server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("tracing shutdown", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("database close", zap.Error(err))
	} else {
		log.Info("database connection closed")
	}
}
