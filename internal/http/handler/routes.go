package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sessionvault/internal/database"
	"sessionvault/internal/service"
	"sessionvault/internal/storage"
)

// Dependencies are the collaborators the HTTP layer talks to.
type Dependencies struct {
	DB       *sql.DB
	Store    storage.BlobStore
	Sessions service.SessionService
	Status   service.StatusService
	// Gatherer backs /metrics. Defaults to the global Prometheus registry.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api")

	api.Get("/health", HealthCheck(deps.DB, deps.Store))

	api.Post("/sessions/upload", UploadSession(deps.Sessions))
	api.Get("/sessions", ListSessions(deps.Sessions))
	api.Get("/sessions/download/:file_id", DownloadSession(deps.Sessions))
	api.Delete("/sessions/:file_id", DeleteSession(deps.Sessions))

	api.Get("/bot/status", GetBotStatus(deps.Status))
	api.Post("/bot/status", SetBotStatus(deps.Status))
	api.Post("/bot/restore-session", RestoreSession(deps.Sessions))
	api.Post("/bot/generate-qr", GenerateQR(deps.Status))
	api.Post("/bot/connect", ConnectBot(deps.Status))
}

// HealthCheck reports process health plus blob store and database connectivity.
// It always answers 200; the *_connected flags carry dependency state.
//
// @Summary  Health check
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]interface{}
// @Router   /api/health [get]
func HealthCheck(db *sql.DB, store storage.BlobStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		backend := "none"
		storeOK := false
		if store != nil {
			backend = store.Backend()
			storeOK = store.Ping(ctx) == nil
		}

		return c.JSON(fiber.Map{
			"status":               "healthy",
			"storage_backend":      backend,
			backend + "_connected": storeOK,
			"database_connected":   database.Ping(ctx, db) == nil,
			"timestamp":            time.Now().UTC(),
		})
	}
}

// LivenessProbe answers as long as the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
