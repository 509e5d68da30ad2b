package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"baymap/internal/metrics"
)

const requestTimeout = 15 * time.Second

// NewApp creates the fiber app with the API's error handler.
func NewApp(readTimeout, writeTimeout time.Duration) *fiber.App {
	return fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           readTimeout,
		WriteTimeout:          writeTimeout,
		ErrorHandler:          ErrorHandler,
	})
}

// SetupRoutes registers the bay API, health checks and /metrics.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(recover.New())

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(requestid.New())
	app.Use(AccessLogMiddleware())

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-API-Version", "1")
		return c.Next()
	})

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/zones", timeout.NewWithContext(ListZonesHandler(deps), requestTimeout))
	v1.Get("/bays", timeout.NewWithContext(ListBaysHandler(deps), requestTimeout))
	v1.Post("/bays", timeout.NewWithContext(CreateBayHandler(deps), requestTimeout))
	v1.Put("/bays/:id", timeout.NewWithContext(UpdateBayHandler(deps), requestTimeout))
	v1.Delete("/bays/:id", timeout.NewWithContext(DeleteBayHandler(deps), requestTimeout))
}
