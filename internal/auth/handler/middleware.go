package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrwalh/aidfusion-auth/internal/auth/domain"
	"github.com/agrwalh/aidfusion-auth/internal/auth/service"
)

const claimsLocalKey = "sessionClaims"

// RequireSession parses the session cookie and rejects anonymous requests.
// Valid claims are stored on the request for downstream handlers.
func RequireSession(sessions service.SessionIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := sessions.Parse(c.Cookies(SessionCookieName))
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		c.Locals(claimsLocalKey, claims)

		return c.Next()
	}
}

// RequireRole runs after RequireSession and rejects sessions whose role does
// not match.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := ClaimsFromContext(c)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		if claims.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}

		return c.Next()
	}
}

func ClaimsFromContext(c *fiber.Ctx) *service.SessionClaims {
	claims, _ := c.Locals(claimsLocalKey).(*service.SessionClaims)
	return claims
}
