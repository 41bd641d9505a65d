package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"workforce_backend/internals/middlewares/logger"
)

// SetupMiddlewares installs the app-wide chain, outermost first.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestID(5 * time.Second))
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware())
	app.Use(GlobalRateLimiter())
}
