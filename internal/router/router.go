package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/grademetrix-api/internal/config"
	"github.com/noah-isme/grademetrix-api/internal/handler"
	"github.com/noah-isme/grademetrix-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler     *handler.CourseHandler
	CalculatorHandler *handler.CalculatorHandler
	SummaryHandler    *handler.SummaryHandler
	TransferHandler   *handler.TransferHandler
	BackupHandler     *handler.BackupHandler
	EventsHandler     *handler.EventsHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(api.Group("/courses"))
	}

	if deps.CalculatorHandler != nil {
		deps.CalculatorHandler.Register(api.Group("/calculator"))
	}

	if deps.SummaryHandler != nil {
		deps.SummaryHandler.Register(api.Group("/summaries"))
	}

	if deps.TransferHandler != nil {
		deps.TransferHandler.Register(api.Group("/transfer"))
	}

	if deps.BackupHandler != nil {
		deps.BackupHandler.Register(api.Group("/backup"))
	}

	if deps.EventsHandler != nil {
		deps.EventsHandler.Register(api.Group("/events"))
	}
}
