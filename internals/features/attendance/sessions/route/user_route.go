// file: internals/features/attendance/sessions/route/user_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"workforce_backend/internals/features/attendance/sessions/broadcast"
	attCtrl "workforce_backend/internals/features/attendance/sessions/controller"
	"workforce_backend/internals/features/attendance/sessions/service"
	"workforce_backend/internals/middlewares"
)

// AttendanceUserRoutes mounts under an authenticated group (e.g. /api/u).
func AttendanceUserRoutes(r fiber.Router, svc *service.AttendanceService, hub *broadcast.Hub) {
	v := validator.New()
	att := attCtrl.NewAttendanceController(svc, v)
	vio := attCtrl.NewViolationController(svc, v)
	dash := attCtrl.NewDashboardController(svc, hub, v)

	g := r.Group("/attendance")

	// transitions share one per-user limiter
	limit := middlewares.TransitionRateLimiter()
	g.Post("/check-in", limit, att.CheckIn)
	g.Post("/check-out", limit, att.CheckOut)
	g.Post("/break/start", limit, att.StartBreak)
	g.Post("/break/end", limit, att.EndBreak)

	// sessions
	g.Get("/sessions", att.ListSessions)
	g.Get("/sessions/today", att.Today)

	// violations
	g.Get("/violations", vio.List)
	g.Patch("/violations/:id/resolve", vio.Resolve)

	// live
	g.Get("/dashboard/live", dash.Live)
	g.Get("/stream", dash.Stream)
}
