// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workforce_backend/internals/configs"
	"workforce_backend/internals/features/attendance/sessions/broadcast"
	attRoute "workforce_backend/internals/features/attendance/sessions/route"
	"workforce_backend/internals/features/attendance/sessions/service"
	authMiddleware "workforce_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, svc *service.AttendanceService, hub *broadcast.Hub) {
	startTime = time.Now()

	zap.S().Info("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db)

	// ===================== PRIVATE (USER) =====================
	zap.S().Info("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api/u",
		authMiddleware.AuthMiddleware(authMiddleware.Options{
			Secret:              configs.JWTSecret,
			AllowCookieFallback: true,
		}),
	)

	// ===================== MOUNT ROUTES =====================
	zap.S().Info("[INFO] Mounting Attendance routes...")
	attRoute.AttendanceUserRoutes(private, svc, hub)
}
