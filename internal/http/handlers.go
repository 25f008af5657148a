package http

import (
	"log/slog"
	"time"

	"ga4dash/internal/auth"
	"ga4dash/internal/config"
	"ga4dash/internal/dashboard"
)

// Cache-Control values for successful analytics responses
const (
	SummaryCacheControl    = "public, s-maxage=300, stale-while-revalidate=600"
	PropertiesCacheControl = "public, s-maxage=3600, stale-while-revalidate=7200"
)

// Handlers holds the dependencies shared by all actions
type Handlers struct {
	Service *dashboard.Service
	OAuth   *auth.OAuth
	Sealer  *auth.Sealer
	Config  *config.Config
	Logger  *slog.Logger
	Now     func() time.Time
	// CacheBackend is reported by the health check.
	CacheBackend string
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
