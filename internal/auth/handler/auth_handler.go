package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/agrwalh/aidfusion-auth/internal/auth/dto"
	"github.com/agrwalh/aidfusion-auth/internal/auth/service"
	autherror "github.com/agrwalh/aidfusion-auth/internal/errors"
)

type AuthHandler struct {
	userService  *service.UserService
	sessions     service.SessionIssuer
	secureCookie bool
}

func NewAuthHandler(userService *service.UserService, sessions service.SessionIssuer, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		sessions:     sessions,
		secureCookie: secureCookie,
	}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var input dto.SignupInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid payload",
		})
	}

	user, token, err := h.userService.Signup(c.Context(), input)
	if err != nil {
		return errorJSON(c, err)
	}

	c.Cookie(sessionCookie(token, h.sessions.Lifetime(), h.secureCookie))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": dto.NewUserOutput(user),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid payload",
		})
	}

	user, token, err := h.userService.Login(c.Context(), input)
	if err != nil {
		// A wrong two-factor code at login is an authentication failure,
		// not a validation one.
		if errors.Is(err, autherror.ErrInvalidTwoFactorCode) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		return errorJSON(c, err)
	}

	c.Cookie(sessionCookie(token, h.sessions.Lifetime(), h.secureCookie))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": dto.NewUserOutput(user),
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(expiredSessionCookie(h.secureCookie))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

// Me resolves the current session. An anonymous or stale session is not an
// error: the response is 200 with a null user either way.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims := h.sessions.Parse(c.Cookies(SessionCookieName))
	if claims == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": nil})
	}

	user, err := h.userService.GetByID(c.Context(), claims.Subject)
	if err != nil {
		return errorJSON(c, err)
	}
	if user == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": nil})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": dto.NewUserOutput(user),
	})
}
