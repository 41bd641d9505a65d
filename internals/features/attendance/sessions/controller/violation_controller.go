// internals/features/attendance/sessions/controller/violation_controller.go
package controller

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	attDTO "workforce_backend/internals/features/attendance/sessions/dto"
	"workforce_backend/internals/features/attendance/sessions/service"
	helper "workforce_backend/internals/helpers"
)

type ViolationController struct {
	Svc       *service.AttendanceService
	Validator *validator.Validate
	Loc       *time.Location
}

func NewViolationController(svc *service.AttendanceService, v *validator.Validate) *ViolationController {
	if v == nil {
		v = validator.New()
	}
	return &ViolationController{Svc: svc, Validator: v, Loc: svc.Loc}
}

// GET /attendance/violations
func (ctl *ViolationController) List(c *fiber.Ctx) error {
	callerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	var q attDTO.ListViolationsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	if err := ctl.Validator.Struct(&q); err != nil {
		return helper.ValidationError(c, err)
	}

	p := helper.ResolvePaging(c, 20, 200)
	items, total, err := ctl.Svc.ListViolations(c.UserContext(), callerID, q.ToFilter(p.Offset, p.Limit, ctl.Loc))
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonList(c, "ok", attDTO.FromViolationModels(items, ctl.Loc),
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// PATCH /attendance/violations/:id/resolve
func (ctl *ViolationController) Resolve(c *fiber.Ctx) error {
	callerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid violation id")
	}

	var req attDTO.ResolveViolationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	v, err := ctl.Svc.ResolveViolation(c.UserContext(), callerID, id, req.ResolutionNotes)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "violation resolved", attDTO.FromViolationModel(v, ctl.Loc))
}
