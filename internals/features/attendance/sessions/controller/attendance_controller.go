// internals/features/attendance/sessions/controller/attendance_controller.go
package controller

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	attDTO "workforce_backend/internals/features/attendance/sessions/dto"
	"workforce_backend/internals/features/attendance/sessions/service"
	helper "workforce_backend/internals/helpers"
)

type AttendanceController struct {
	Svc       *service.AttendanceService
	Validator *validator.Validate
	Loc       *time.Location
}

func NewAttendanceController(svc *service.AttendanceService, v *validator.Validate) *AttendanceController {
	if v == nil {
		v = validator.New()
	}
	return &AttendanceController{Svc: svc, Validator: v, Loc: svc.Loc}
}

// ===============================
// Transitions
// ===============================

// POST /attendance/check-in
func (ctl *AttendanceController) CheckIn(c *fiber.Ctx) error {
	return ctl.contextTransition(c, ctl.Svc.CheckIn, "checked in")
}

// POST /attendance/check-out
func (ctl *AttendanceController) CheckOut(c *fiber.Ctx) error {
	return ctl.contextTransition(c, ctl.Svc.CheckOut, "checked out")
}

// POST /attendance/break/start
func (ctl *AttendanceController) StartBreak(c *fiber.Ctx) error {
	return ctl.breakTransition(c, ctl.Svc.StartBreak, "break started")
}

// POST /attendance/break/end
func (ctl *AttendanceController) EndBreak(c *fiber.Ctx) error {
	return ctl.breakTransition(c, ctl.Svc.EndBreak, "break ended")
}

type contextFn func(ctx context.Context, callerID uuid.UUID, req service.TransitionRequest) (*service.TransitionResult, error)

func (ctl *AttendanceController) contextTransition(c *fiber.Ctx, fn contextFn, msg string) error {
	callerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	var req attDTO.TransitionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := fn(c.UserContext(), callerID, req.ToService(c.IP()))
	if err != nil {
		return helper.FromAppError(c, err)
	}
	if res.Created {
		return helper.JsonCreated(c, msg, attDTO.NewTransitionResponse(res, ctl.Loc))
	}
	return helper.JsonOK(c, msg, attDTO.NewTransitionResponse(res, ctl.Loc))
}

type breakFn func(ctx context.Context, callerID uuid.UUID, employeeID *uuid.UUID) (*service.TransitionResult, error)

func (ctl *AttendanceController) breakTransition(c *fiber.Ctx, fn breakFn, msg string) error {
	callerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	var req attDTO.BreakRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := fn(c.UserContext(), callerID, req.Target())
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, msg, attDTO.NewTransitionResponse(res, ctl.Loc))
}

// ===============================
// Reads
// ===============================

// GET /attendance/sessions/today?employee_id=
func (ctl *AttendanceController) Today(c *fiber.Ctx) error {
	callerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	req := attDTO.BreakRequest{}
	if v := c.Query("employee_id"); v != "" {
		req.EmployeeID = &v
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	view, err := ctl.Svc.Today(c.UserContext(), callerID, req.Target())
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", attDTO.NewTodayResponse(view, ctl.Loc))
}

// GET /attendance/sessions
func (ctl *AttendanceController) ListSessions(c *fiber.Ctx) error {
	callerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	var q attDTO.ListSessionsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	if err := ctl.Validator.Struct(&q); err != nil {
		return helper.ValidationError(c, err)
	}

	p := helper.ResolvePaging(c, 20, 200)
	items, total, err := ctl.Svc.ListSessions(c.UserContext(), callerID, q.ToFilter(p.Offset, p.Limit))
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonList(c, "ok", attDTO.FromSessionModels(items, ctl.Loc),
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}
