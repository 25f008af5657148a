package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ga4dash/internal/apperrors"
	"ga4dash/internal/auth"
	"ga4dash/internal/testsupport"
)

func statusErrorHandler(c *fiber.Ctx, err error) error {
	return c.Status(apperrors.StatusCode(err)).SendString(apperrors.Code(err))
}

func TestRequireAccessToken(t *testing.T) {
	sealer, err := auth.NewSealer("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	cookie, err := sealer.Seal(auth.Session{AccessToken: "cookie-token", Expiry: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: statusErrorHandler})
	app.Get("/", RequireAccessToken(auth.NewAuthenticator(sealer, nil)), func(c *fiber.Ctx) error {
		return c.SendString(AccessToken(c))
	})

	testCases := []struct {
		name   string
		header string
		cookie string
		status int
		body   string
	}{
		{name: "bearer", header: "Bearer header-token", status: fiber.StatusOK, body: "header-token"},
		{name: "cookie", cookie: cookie, status: fiber.StatusOK, body: "cookie-token"},
		{name: "bearer wins", header: "Bearer header-token", cookie: cookie, status: fiber.StatusOK, body: "header-token"},
		{name: "missing", status: fiber.StatusUnauthorized, body: apperrors.CodeAuth},
		{name: "bad cookie", cookie: "nope", status: fiber.StatusUnauthorized, body: apperrors.CodeAuth},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			if tc.cookie != "" {
				req.Header.Set(fiber.HeaderCookie, auth.SessionCookie+"="+tc.cookie)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.body, testsupport.ReadBody(t, resp))
		})
	}
}

func TestRateLimiter(t *testing.T) {
	newApp := func(enabled bool) *fiber.App {
		app := fiber.New(fiber.Config{ErrorHandler: statusErrorHandler})
		app.Use(RateLimiter(enabled, 2, time.Minute))
		app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
		return app
	}

	t.Run("enabled", func(t *testing.T) {
		app := newApp(true)
		for i := 0; i < 2; i++ {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, apperrors.CodeRateLimit, testsupport.ReadBody(t, resp))
	})

	t.Run("disabled", func(t *testing.T) {
		app := newApp(false)
		for i := 0; i < 5; i++ {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}
	})
}

func TestRequestLoggerPassesErrorsThrough(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: statusErrorHandler})
	app.Use(RequestLogger(testsupport.DiscardLogger()))
	app.Get("/fail", func(c *fiber.Ctx) error {
		return apperrors.NewValidationError(apperrors.MsgPropertyMissing, "propertyId")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
