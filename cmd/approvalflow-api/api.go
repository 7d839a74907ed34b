// Package main provides the Approvalflow API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/bigbit/approvalflow/pkg/engine"
	"github.com/bigbit/approvalflow/pkg/eventbus"
	"github.com/bigbit/approvalflow/pkg/notify"
	"github.com/bigbit/approvalflow/pkg/persistence"
	"github.com/bigbit/approvalflow/pkg/services"
	"github.com/bigbit/approvalflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	notifier    notify.Notifier
	validate    *validator.Validate
	sweeper     *services.Sweeper
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	notifier notify.Notifier,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		notifier:    notifier,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	taskService := services.NewTask(a.persistence, engine.New(), a.eventBus, a.notifier, a.logger)
	matrixService := services.NewMatrix(a.persistence, a.eventBus, a.logger)

	handlers := web.NewAPIHandlers(taskService, matrixService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Approvalflow API")
	})

	handlers.RegisterRoutes(app)

	return app
}

// StartSweeper schedules the overdue task sweep alongside the server.
func (a *API) StartSweeper(ctx context.Context, cronExpr string) error {
	sweeper, err := services.NewSweeper(a.persistence, a.eventBus, cronExpr, a.logger)
	if err != nil {
		return err
	}

	a.sweeper = sweeper

	return a.sweeper.Start(ctx)
}

func (a *API) StopSweeper(ctx context.Context) {
	if a.sweeper != nil {
		if err := a.sweeper.Stop(ctx); err != nil {
			a.logger.ErrorContext(ctx, "Failed to stop sweeper", "error", err)
		}
	}
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
