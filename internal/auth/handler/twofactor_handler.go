package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrwalh/aidfusion-auth/internal/auth/dto"
	"github.com/agrwalh/aidfusion-auth/internal/auth/service"
)

type TwoFactorHandler struct {
	twoFactorService *service.TwoFactorService
}

func NewTwoFactorHandler(twoFactorService *service.TwoFactorService) *TwoFactorHandler {
	return &TwoFactorHandler{twoFactorService: twoFactorService}
}

// Setup mints a fresh secret and backup codes for the logged-in user. The
// enrollment stays unverified until the first valid code is confirmed.
func (h *TwoFactorHandler) Setup(c *fiber.Ctx) error {
	claims := ClaimsFromContext(c)

	out, err := h.twoFactorService.Begin(c.Context(), claims.Subject, claims.Email)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(out)
}

// Verify confirms the pending enrollment with a code from the user's
// authenticator. The code is checked against the stored secret only; a
// secret supplied by the request is never trusted.
func (h *TwoFactorHandler) Verify(c *fiber.Ctx) error {
	var input dto.TwoFactorVerifyInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid payload",
		})
	}

	claims := ClaimsFromContext(c)

	if err := h.twoFactorService.Confirm(c.Context(), claims.Subject, input.Code); err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"enabled": true,
	})
}
