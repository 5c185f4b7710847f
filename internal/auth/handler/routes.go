package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrwalh/aidfusion-auth/internal/auth/domain"
	"github.com/agrwalh/aidfusion-auth/internal/auth/service"
)

func RegisterRoutes(app *fiber.App, sessions service.SessionIssuer, auth *AuthHandler, twoFactor *TwoFactorHandler, admin *AdminHandler) {
	api := app.Group("/api")

	api.Post("/auth/signup", auth.Signup)
	api.Post("/auth/login", auth.Login)
	api.Post("/auth/logout", auth.Logout)
	api.Get("/auth/me", auth.Me)

	// Two-factor enrollment is gated by an already-valid session.
	twofa := api.Group("/auth/2fa", RequireSession(sessions))
	twofa.Get("/setup", twoFactor.Setup)
	twofa.Post("/verify", twoFactor.Verify)

	// Admin-only endpoints
	adminGroup := api.Group("/admin", RequireSession(sessions), RequireRole(domain.RoleAdmin))
	adminGroup.Get("/users", admin.ListUsers)
	adminGroup.Patch("/users/:id", admin.UpdateUserRole)
}
