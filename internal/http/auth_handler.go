package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"ga4dash/internal/apperrors"
	"ga4dash/internal/auth"
)

const stateCookiePath = "/auth"

// LoginAction starts the Google sign-in flow
func (h *Handlers) LoginAction(c *fiber.Ctx) error {
	state := auth.NewState()

	c.Cookie(&fiber.Cookie{
		Name:     auth.StateCookie,
		Value:    state,
		Path:     stateCookiePath,
		MaxAge:   int(auth.StateTTL / time.Second),
		HTTPOnly: true,
		Secure:   h.Config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect(h.OAuth.AuthCodeURL(state), fiber.StatusFound)
}

// CallbackAction completes the Google sign-in flow and stores the session
func (h *Handlers) CallbackAction(c *fiber.Ctx) error {
	expected := c.Cookies(auth.StateCookie)
	h.clearCookie(c, auth.StateCookie, stateCookiePath)

	if reason := c.Query("error"); reason != "" {
		h.Logger.Warn("Google sign-in was not completed", slog.String("reason", reason))
		return apperrors.NewAuthError("Google sign-in was cancelled", nil)
	}

	if expected == "" || c.Query("state") != expected {
		return apperrors.NewAuthError("Invalid sign-in state. Please try again.", nil)
	}

	session, err := h.OAuth.Exchange(c.UserContext(), c.Query("code"))
	if err != nil {
		return err
	}

	value, err := h.Sealer.Seal(session)
	if err != nil {
		return apperrors.WithFallback(err, "Failed to create session")
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.Config.SessionTimeout() / time.Second),
		HTTPOnly: true,
		Secure:   h.Config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	h.Logger.Info("User signed in")
	return c.Redirect("/", fiber.StatusFound)
}

// LogoutAction drops the session cookie
func (h *Handlers) LogoutAction(c *fiber.Ctx) error {
	h.clearCookie(c, auth.SessionCookie, "/")
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) clearCookie(c *fiber.Ctx, name, path string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.Config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
