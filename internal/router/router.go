package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/keyscope/keyscope/internal/command"
	"github.com/keyscope/keyscope/internal/config"
	"github.com/keyscope/keyscope/internal/coordinator"
	"github.com/keyscope/keyscope/internal/handlers"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/middleware"
	"github.com/keyscope/keyscope/internal/queue"
	"github.com/keyscope/keyscope/internal/recorder"
	"github.com/keyscope/keyscope/internal/services"
	"github.com/keyscope/keyscope/internal/utils"
)

// Dependencies are the long-lived components the routes are served from.
type Dependencies struct {
	Deployments []services.Deployment
	Recorder    recorder.Recorder
	Publisher   queue.Publisher
}

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, deps Dependencies, cfg config.Config) *handlers.Handler {
	databaseService := services.NewDatabaseService(deps.Deployments)
	keysService := services.NewKeysService(logger, databaseService, coordinator.ScanOptions{
		DefaultCount: cfg.Scan.DefaultCount,
		Threshold:    cfg.Scan.Threshold,
	})
	workbenchService := services.NewWorkbenchService(
		logger,
		databaseService,
		command.NewClassifier(cfg.Workbench.UnsupportedCommands, cfg.Workbench.BlockingCommands),
		deps.Recorder,
		services.NewEventPublisher(logger, deps.Publisher, cfg.Queue.SubjectPrefix),
		cfg.Store.CommandTimeout,
	)

	h := handlers.New(logger, databaseService, keysService, workbenchService)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
		ExposeHeaders: handlers.ScanCursorHeader + "," + logging.RequestIDHeader,
	}))
	app.Use(logging.FiberMiddlewareWithConfig(logger, logging.DefaultMiddlewareConfig()))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled))

	v1.Get("/databases", h.ListDatabases)
	v1.Get("/databases/:database", h.GetDatabase)

	v1.Get("/databases/:database/keys", h.ScanKeys)

	executions := v1.Group("/databases/:database/workbench/command-executions")
	executions.Post("", h.CreateCommandExecution)
	executions.Get("", h.ListCommandExecutions)
	executions.Get("/:id", h.GetCommandExecution)
	executions.Delete("/:id", h.DeleteCommandExecution)

	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, deps Dependencies, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Keyscope Gateway",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.IsDevelopment(),
		ReadTimeout:           utils.DefaultRequestTimeout,
		WriteTimeout:          utils.DefaultRequestTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, deps, cfg)

	return app
}
