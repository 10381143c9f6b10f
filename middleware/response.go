package middleware

import (
	"errors"

	"maitree/apperr"
	"maitree/utils"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindInvalidState:
		return fiber.StatusConflict
	case apperr.KindVerificationFailed:
		return fiber.StatusPaymentRequired
	case apperr.KindValidation:
		return fiber.StatusUnprocessableEntity
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindTransient:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// ErrorResponse writes err in the standard envelope with data.kind set.
// Errors from outside apperr are reported and hidden behind "Server error".
func ErrorResponse(c *fiber.Ctx, err error) error {
	var kindErr *apperr.Error
	if !errors.As(err, &kindErr) {
		utils.ReportError(err, map[string]interface{}{"path": c.Path(), "method": c.Method()})
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error", nil)
	}
	if kindErr.Kind == apperr.KindTransient {
		utils.ReportError(err, map[string]interface{}{"path": c.Path(), "method": c.Method()})
	}
	return JsonResponse(c, StatusFor(kindErr.Kind), false, kindErr.Message, fiber.Map{"kind": kindErr.Kind})
}
