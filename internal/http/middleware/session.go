package middleware

import (
	"github.com/gofiber/fiber/v2"

	"ga4dash/internal/auth"
)

const accessTokenKey = "access_token"

// RequireAccessToken resolves the request's Google access token and stores it
// in the context. Expects: Authorization: Bearer <token>, or the session
// cookie set by the sign-in callback.
func RequireAccessToken(authenticator *auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := authenticator.Token(c.Get(fiber.HeaderAuthorization), c.Cookies(auth.SessionCookie))
		if err != nil {
			return err
		}

		c.Locals(accessTokenKey, token)
		return c.Next()
	}
}

// AccessToken returns the token stored by RequireAccessToken.
func AccessToken(c *fiber.Ctx) string {
	token, _ := c.Locals(accessTokenKey).(string)
	return token
}
