package middlewares

import (
	"github.com/gofiber/fiber/v2"
)

// SetupMiddlewares wires the baseline chain. Route-specific limiters are
// attached where the routes are registered.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(LoggerMiddleware())
	app.Use(GlobalRateLimiter())
}
