package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	autherror "github.com/agrwalh/aidfusion-auth/internal/errors"
)

// statusForError maps the service error taxonomy onto HTTP status codes.
// Anything unrecognized is a storage or signing failure and surfaces as 503
// with a generic message.
func statusForError(err error) int {
	switch {
	case errors.Is(err, autherror.ErrInvalidEmail),
		errors.Is(err, autherror.ErrWeakPassword),
		errors.Is(err, autherror.ErrInvalidRole),
		errors.Is(err, autherror.ErrNoPendingEnrollment),
		errors.Is(err, autherror.ErrInvalidTwoFactorCode):
		return fiber.StatusBadRequest
	case errors.Is(err, autherror.ErrInvalidCredentials),
		errors.Is(err, autherror.ErrTwoFactorRequired):
		return fiber.StatusUnauthorized
	case errors.Is(err, autherror.ErrSelfDemotion):
		return fiber.StatusForbidden
	case errors.Is(err, autherror.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, autherror.ErrEmailAlreadyRegistered):
		return fiber.StatusConflict
	default:
		return fiber.StatusServiceUnavailable
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	if status == fiber.StatusServiceUnavailable {
		return c.Status(status).JSON(fiber.Map{"error": "service unavailable"})
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
