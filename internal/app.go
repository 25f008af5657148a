// Package internal contains core application functionality
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	"ga4dash/internal/auth"
	"ga4dash/internal/cache"
	"ga4dash/internal/config"
	"ga4dash/internal/dashboard"
	"ga4dash/internal/ga4"
	"ga4dash/internal/http"
	"ga4dash/internal/jobs"
	"ga4dash/internal/logging"
	"ga4dash/internal/timeframe"
)

// Redis key namespaces
const (
	summaryNamespace    = "ga4dash:summary"
	propertiesNamespace = "ga4dash:properties"
)

// Application wires configuration, caches, the upstream client, the HTTP
// server and background jobs together.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Server    *fiber.App
	Service   *dashboard.Service
	Scheduler *jobs.Scheduler

	summaries  cache.Store[dashboard.Result]
	properties cache.Store[[]ga4.Property]
	redis      *redis.Client
	ownRedis   bool
}

// Option customizes NewApp
type Option func(*appOptions)

type appOptions struct {
	logger        *slog.Logger
	source        ga4.Source
	redis         *redis.Client
	timeProvider  timeframe.TimeProvider
	now           func() time.Time
	oauthEndpoint oauth2.Endpoint
}

// WithLogger replaces the configured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *appOptions) { o.logger = logger }
}

// WithSource replaces the Google client as the report source.
func WithSource(source ga4.Source) Option {
	return func(o *appOptions) { o.source = source }
}

// WithRedisClient supplies a Redis client instead of dialing the configured
// address. The caller keeps ownership of it.
func WithRedisClient(client *redis.Client) Option {
	return func(o *appOptions) { o.redis = client }
}

// WithClock fixes the time used for date ranges, sessions and responses.
func WithClock(now func() time.Time) Option {
	return func(o *appOptions) {
		o.now = now
		o.timeProvider = clockProvider(now)
	}
}

// WithOAuthEndpoint overrides Google's OAuth endpoints.
func WithOAuthEndpoint(endpoint oauth2.Endpoint) Option {
	return func(o *appOptions) { o.oauthEndpoint = endpoint }
}

type clockProvider func() time.Time

func (c clockProvider) Now(loc *time.Location) time.Time {
	return c().In(loc)
}

// NewApp creates a new application instance with the default config
func NewApp(opts ...Option) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewAppWithConfig(cfg, opts...)
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config, opts ...Option) (*Application, error) {
	o := &appOptions{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.NewLogger(logging.OptionsFromConfig(cfg))
	}

	application := &Application{Config: cfg, Logger: logger}

	summaries, properties, err := application.buildCaches(o)
	if err != nil {
		return nil, err
	}
	application.summaries = summaries
	application.properties = properties

	source := o.source
	if source == nil {
		source = ga4.NewClient(
			ga4.WithHTTPClient(&nethttp.Client{Timeout: cfg.UpstreamTimeout()}),
			ga4.WithDataEndpoint(cfg.DataAPIEndpoint),
			ga4.WithAdminEndpoint(cfg.AdminAPIEndpoint),
			ga4.WithLogger(logger),
		)
	}

	application.Service = dashboard.NewService(source,
		dashboard.WithSummaryCache(summaries),
		dashboard.WithPropertiesCache(properties),
		dashboard.WithParser(timeframe.NewParser(cfg.Location(), o.timeProvider)),
		dashboard.WithLogger(logger),
		dashboard.WithTTLs(cfg.SummaryCacheTTL(), cfg.PropertiesCacheTTL()),
	)

	sealer, err := auth.NewSealer(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create session sealer: %w", err)
	}

	handlers := &http.Handlers{
		Service:      application.Service,
		OAuth:        auth.NewOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL(), o.oauthEndpoint),
		Sealer:       sealer,
		Config:       cfg,
		Logger:       logger,
		Now:          o.now,
		CacheBackend: cfg.CacheBackend,
	}

	application.Server = fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		ErrorHandler:          http.ErrorHandler(logger, o.now),
		DisableStartupMessage: true,
		Immutable:             true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		ProxyHeader:           proxyHeader(cfg),
	})
	MountAppRoutes(application.Server, cfg, handlers, auth.NewAuthenticator(sealer, o.now))

	cleanup := jobs.NewCacheCleanupJob(logger, summaries, properties)
	application.Scheduler = jobs.NewScheduler(logger, !cfg.IsTest(), cleanup.Job(cfg.CacheCleanInterval()))

	return application, nil
}

func (a *Application) buildCaches(o *appOptions) (cache.Store[dashboard.Result], cache.Store[[]ga4.Property], error) {
	if a.Config.CacheBackend != config.RedisCache {
		memOpts := []cache.MemoryOption{cache.WithClock(o.now)}
		return cache.NewMemory[dashboard.Result](memOpts...), cache.NewMemory[[]ga4.Property](memOpts...), nil
	}

	client := o.redis
	if client == nil {
		var err error
		client, err = cache.NewRedisClient(context.Background(), cache.RedisConfig{
			Addr:     a.Config.RedisAddr,
			Password: a.Config.RedisPassword,
			DB:       a.Config.RedisDB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		a.ownRedis = true
	}
	a.redis = client

	a.Logger.Info("Using Redis cache", slog.String("addr", client.Options().Addr))
	return cache.NewRedis[dashboard.Result](client, summaryNamespace),
		cache.NewRedis[[]ga4.Property](client, propertiesNamespace),
		nil
}

func proxyHeader(cfg *config.Config) string {
	if cfg.IsProduction() {
		return fiber.HeaderXForwardedFor
	}
	return ""
}

// StartAsync starts background jobs and serves HTTP on the configured port.
// Listener errors other than a clean shutdown are sent on the returned channel.
func (a *Application) StartAsync() (<-chan error, error) {
	ln, err := net.Listen("tcp", ":"+a.Config.AppPort)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %s: %w", a.Config.AppPort, err)
	}
	return a.Serve(ln), nil
}

// Serve is StartAsync on an existing listener.
func (a *Application) Serve(ln net.Listener) <-chan error {
	errs := make(chan error, 1)

	if err := a.Scheduler.Start(); err != nil {
		a.Logger.Error("Failed to start background jobs", slog.Any("error", err))
	}

	go func() {
		a.Logger.Info("Server listening",
			slog.String("addr", ln.Addr().String()),
			slog.String("environment", a.Config.Environment))
		if err := a.Server.Listener(ln); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	return errs
}

// ClearCaches drops every cached summary and property list.
func (a *Application) ClearCaches(ctx context.Context) error {
	if err := a.summaries.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear summaries: %w", err)
	}
	if err := a.properties.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear properties: %w", err)
	}
	return nil
}

// Shutdown stops jobs, drains in-flight requests and closes owned resources.
func (a *Application) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down...")

	a.Scheduler.Stop()

	var errs []error
	if err := a.Server.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if a.redis != nil && a.ownRedis {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	return errors.Join(errs...)
}
