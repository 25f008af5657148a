// Package app provides the public API for embedding ga4dash.
package app

import (
	"ga4dash/internal"
	"ga4dash/internal/analytics"
	"ga4dash/internal/config"
	"ga4dash/internal/dashboard"
	"ga4dash/internal/ga4"
)

// Re-export core types
type (
	Application    = internal.Application
	Option         = internal.Option
	Config         = config.Config
	Summary        = analytics.Summary
	InsightReport  = analytics.InsightReport
	SummaryRequest = dashboard.SummaryRequest
	Source         = ga4.Source
	Property       = ga4.Property
)

// Re-export application options
var (
	WithLogger        = internal.WithLogger
	WithSource        = internal.WithSource
	WithRedisClient   = internal.WithRedisClient
	WithClock         = internal.WithClock
	WithOAuthEndpoint = internal.WithOAuthEndpoint
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	return config.GetConfig()
}

// NewApp creates a new application from the environment
func NewApp(opts ...Option) (*Application, error) {
	return internal.NewApp(opts...)
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *Config, opts ...Option) (*Application, error) {
	return internal.NewAppWithConfig(cfg, opts...)
}
