package helper

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"workforce_backend/internals/helpers/apperr"
)

// ValidationError renders validator.v10 errors as 422, anything else as 400.
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return JsonError(c, fiber.StatusBadRequest, "invalid input")
	}

	fields := make(map[string][]string, len(ve))
	for _, fe := range ve {
		name := toSnake(fe.Field())
		fields[name] = append(fields[name], fe.Tag())
	}
	return JsonValidationError(c, fields)
}

// FromAppError maps the apperr taxonomy to HTTP. Internal errors are logged
// with their cause and answered with a generic message.
func FromAppError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return JsonError(c, fiber.StatusNotFound, apperr.PublicMessage(err))
	case apperr.KindConflict:
		return JsonError(c, fiber.StatusConflict, apperr.PublicMessage(err))
	case apperr.KindAuthorization:
		return JsonError(c, fiber.StatusForbidden, apperr.PublicMessage(err))
	case apperr.KindValidation:
		return JsonError(c, fiber.StatusUnprocessableEntity, apperr.PublicMessage(err))
	default:
		zap.S().Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return JsonError(c, fiber.StatusInternalServerError, apperr.PublicMessage(err))
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
