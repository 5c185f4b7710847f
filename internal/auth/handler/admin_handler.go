package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrwalh/aidfusion-auth/internal/auth/dto"
	"github.com/agrwalh/aidfusion-auth/internal/auth/service"
)

type AdminHandler struct {
	userService *service.UserService
}

func NewAdminHandler(userService *service.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userService.List(c.Context())
	if err != nil {
		return errorJSON(c, err)
	}

	out := make([]dto.UserDetailOutput, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserDetailOutput(&users[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"users": out,
	})
}

func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	var input dto.UpdateRoleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid payload",
		})
	}

	claims := ClaimsFromContext(c)

	if err := h.userService.UpdateRole(c.Context(), claims, c.Params("id"), input.Role); err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}
