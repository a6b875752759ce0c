// Package main provides the Tracy API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/loadwise/tracy/pkg/services"
	"github.com/loadwise/tracy/pkg/web"
)

type API struct {
	logger     *slog.Logger
	runService *services.Runs
	validate   *validator.Validate
}

func NewAPI(logger *slog.Logger, runService *services.Runs) *API {
	return &API{
		logger:     logger,
		runService: runService,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.runService, a.validate)
	actions := web.NewActionHandlers(a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Tracy API")
	})

	runs := app.Group("/runs")
	runs.Post("/", handlers.CreateRun)
	runs.Get("/:id", handlers.GetRun)

	app.Get("/documents", handlers.GetDocuments)
	app.Get("/health", handlers.HealthCheck)

	actions.RegisterRoutes(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
