// internals/features/attendance/sessions/controller/dashboard_controller.go
package controller

import (
	"bufio"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"workforce_backend/internals/features/attendance/sessions/broadcast"
	attDTO "workforce_backend/internals/features/attendance/sessions/dto"
	"workforce_backend/internals/features/attendance/sessions/service"
	helper "workforce_backend/internals/helpers"
)

const (
	streamBuffer    = 32
	streamHeartbeat = 25 * time.Second
)

type DashboardController struct {
	Svc       *service.AttendanceService
	Hub       *broadcast.Hub
	Validator *validator.Validate
	Loc       *time.Location
}

func NewDashboardController(svc *service.AttendanceService, hub *broadcast.Hub, v *validator.Validate) *DashboardController {
	if v == nil {
		v = validator.New()
	}
	return &DashboardController{Svc: svc, Hub: hub, Validator: v, Loc: svc.Loc}
}

// GET /attendance/dashboard/live?department_id=
func (ctl *DashboardController) Live(c *fiber.Ctx) error {
	callerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	var q attDTO.DashboardQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	if err := ctl.Validator.Struct(&q); err != nil {
		return helper.ValidationError(c, err)
	}

	dash, err := ctl.Svc.LiveDashboard(c.UserContext(), callerID, q.Department())
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", attDTO.NewDashboardResponse(dash, ctl.Loc))
}

// GET /attendance/stream
// Server-Sent Events of session/violation changes within the caller's read
// scope. Events are hints; clients re-fetch.
func (ctl *DashboardController) Stream(c *fiber.Ctx) error {
	callerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	caller, err := ctl.Svc.Gate.Resolve(c.UserContext(), callerID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	scope, err := ctl.Svc.Gate.ReadScope(c.UserContext(), caller)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	sub := ctl.Hub.Subscribe(streamBuffer, func(ev broadcast.Event) bool {
		return scope.Contains(ev.EmployeeID)
	})

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()
		streamEvents(w, sub.C(), callerID)
	}))
	return nil
}

// streamEvents writes until the subscription closes or the client goes away.
func streamEvents(w *bufio.Writer, events <-chan broadcast.Event, callerID uuid.UUID) {
	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	if _, err := w.WriteString(": connected\n\n"); err != nil || w.Flush() != nil {
		return
	}
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := sonic.Marshal(ev)
			if err != nil {
				zap.S().Warnw("stream: encode event", "kind", ev.Kind, "error", err)
				continue
			}
			if err := writeSSE(w, string(ev.Kind), payload); err != nil {
				zap.S().Debugw("stream: client gone", "user_id", callerID, "error", err)
				return
			}
		case <-heartbeat.C:
			if _, err := w.WriteString(": ping\n\n"); err != nil || w.Flush() != nil {
				return
			}
		}
	}
}

func writeSSE(w *bufio.Writer, event string, data []byte) error {
	if _, err := w.WriteString("event: " + event + "\ndata: "); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.WriteString("\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
