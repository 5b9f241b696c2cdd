package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pixelpath-dev/pixelpath-api/internal/config"
	"github.com/pixelpath-dev/pixelpath-api/internal/handler"
	"github.com/pixelpath-dev/pixelpath-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	FeedbackHandler *handler.FeedbackHandler
	JWTMiddleware   fiber.Handler
	GenerateLimit   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.FeedbackHandler != nil {
		feedback := app.Group("/api/v1/feedback", jwtMiddleware)
		deps.FeedbackHandler.Register(feedback, deps.GenerateLimit)
	}
}
