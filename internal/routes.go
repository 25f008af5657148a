package internal

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"ga4dash/internal/auth"
	"ga4dash/internal/config"
	"ga4dash/internal/http"
	"ga4dash/internal/http/middleware"
)

// Stricter limit for the sign-in endpoints
const authRateLimitMax = 10

// MountAppRoutes registers middleware and every route on app.
func MountAppRoutes(app *fiber.App, cfg *config.Config, h *http.Handlers, authenticator *auth.Authenticator) {
	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(middleware.RequestLogger(h.Logger))

	if origins := cfg.Origins(); len(origins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(origins, ","),
			AllowMethods:     "GET,POST,HEAD,OPTIONS",
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowCredentials: true,
		}))
	}

	// Rate limiting only applies in production
	apiRateLimiter := middleware.RateLimiter(cfg.IsProduction(), cfg.RateLimitMax, cfg.RateLimitWindow())
	authRateLimiter := middleware.RateLimiter(cfg.IsProduction(), authRateLimitMax, time.Minute)

	// Health check endpoint (fiber registers HEAD alongside GET)
	app.Get("/_health", h.HealthIndexAction)

	// === AUTHENTICATION ROUTES ===
	authGroup := app.Group("/auth", authRateLimiter)
	authGroup.Get("/login", h.LoginAction)
	authGroup.Get("/callback", h.CallbackAction)
	authGroup.Post("/logout", h.LogoutAction)

	// === ANALYTICS API ===
	api := app.Group("/api/analytics", apiRateLimiter, middleware.RequireAccessToken(authenticator))
	api.Get("/summary", h.AnalyticsSummaryAction)
	api.Get("/properties", h.PropertiesAction)
	api.Get("/insights", h.InsightsAction)
	api.Get("/export", h.ExportAction)
}
