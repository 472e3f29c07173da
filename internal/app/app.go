// Package app assembles the Fiber application serving the catalog API.
package app

import (
	"errors"
	"time"

	"katalog/internal/handlers"
	"katalog/internal/metrics"
	"katalog/internal/middleware"
	"katalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the application is built from.
type Deps struct {
	ProductService *services.ProductService
	// Publisher is optional; leave nil to disable product events.
	Publisher handlers.EventPublisher
	Registry  *prometheus.Registry
	Logger    *zerolog.Logger
}

// NewApp creates the Fiber app with middleware, the product API under /api/v1,
// and the /health and /metrics endpoints.
func NewApp(deps Deps) *fiber.App {
	m := metrics.New(deps.Registry)

	app := fiber.New(fiber.Config{
		AppName:      "katalog",
		ErrorHandler: jsonErrorHandler,
	})

	// recover sits inside the logger so a panic is still logged and counted as a 500.
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(deps.Logger, m))
	app.Use(recover.New())

	apiV1 := app.Group("/api/v1")
	productHandler := handlers.NewProductHandler(deps.ProductService, deps.Publisher, m, deps.Logger)
	productHandler.RegisterRoutes(apiV1)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": deps.Publisher != nil,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	return app
}

func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}
