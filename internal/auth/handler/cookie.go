package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the sole carrier of authentication state.
const SessionCookieName = "aidfusion_token"

func sessionCookie(token string, lifetime time.Duration, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(lifetime.Seconds()),
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// expiredSessionCookie instructs the client to discard its token. This is
// advisory only: with no server-side revocation store, a token cached
// elsewhere stays valid until natural expiry.
func expiredSessionCookie(secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
