package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facemoji/facemoji/internal/api/docs"
	"github.com/facemoji/facemoji/internal/api/handler"
	"github.com/facemoji/facemoji/internal/api/middleware"
	"github.com/facemoji/facemoji/internal/database"
	"github.com/facemoji/facemoji/internal/emoji"
	"github.com/facemoji/facemoji/internal/job"
	"github.com/facemoji/facemoji/internal/pipeline"
	"github.com/facemoji/facemoji/internal/stream"
	swagger "github.com/go-swagno/swagno-fiber/swagger"
)

type Dependencies struct {
	Pipeline    *pipeline.Pipeline
	Catalog     *emoji.Catalog
	Tracker     *job.Tracker
	Coordinator *stream.Coordinator
	DB          *pgxpool.Pool
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "FaceMoji API",
		BodyLimit:    32 * 1024 * 1024,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	var checkDB handler.ReadinessChecker
	if r.deps != nil && r.deps.DB != nil {
		pool := r.deps.DB
		checkDB = func(ctx context.Context) error {
			return database.HealthCheck(ctx, pool)
		}
	}
	healthHandler := handler.NewHealthHandler(checkDB)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	v1 := r.app.Group("/v1")

	processHandler := handler.NewProcessHandler(r.deps.Pipeline, r.logger)
	v1.Post("/detect-face", processHandler.DetectFace)
	v1.Post("/process-image", processHandler.ProcessImage)

	emojiHandler := handler.NewEmojiHandler(r.deps.Catalog, r.logger)
	v1.Get("/emojis", emojiHandler.List)
	v1.Get("/emojis/:expression", emojiHandler.ByExpression)

	jobHandler := handler.NewJobHandler(r.deps.Tracker, r.logger)
	v1.Post("/jobs", jobHandler.Create)
	v1.Get("/jobs/:id", jobHandler.Status)

	// WebSocket streaming endpoint
	r.app.Get("/ws/:device_id", stream.UpgradeMiddleware(), stream.Handler(r.deps.Coordinator, r.logger))
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
