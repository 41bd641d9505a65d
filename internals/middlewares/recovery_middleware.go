package middlewares

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a panic into a 500 and logs it with the stack.
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			zap.S().Errorw("panic recovered",
				"method", c.Method(),
				"path", c.Path(),
				"request_id", c.Locals(LocRequestID),
				"panic", fmt.Sprint(e),
				zap.StackSkip("stack", 3))
		},
	})
}
