// Package config provides configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Cache backends
const (
	MemoryCache = "memory"
	RedisCache  = "redis"
)

// DefaultPrivateKey is the development key. Production refuses to start with it.
const DefaultPrivateKey = "88888888888888888888888888888888"

// PrivateKeyLength is the required key size in bytes.
const PrivateKeyLength = 32

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName               string   `mapstructure:"appname"`
	AppPort               string   `mapstructure:"appport"`
	Environment           string   `mapstructure:"environment"`
	LogLevel              LogLevel `mapstructure:"loglevel"`
	PrivateKey            string   `mapstructure:"privatekey"`
	BaseURL               string   `mapstructure:"baseurl"`
	Timezone              string   `mapstructure:"timezone"`
	SessionTimeoutSeconds int      `mapstructure:"sessiontimeoutseconds"`
	AllowedOrigins        string   `mapstructure:"allowedorigins"`

	// Google OAuth
	GoogleClientID     string `mapstructure:"googleclientid"`
	GoogleClientSecret string `mapstructure:"googleclientsecret"`

	// Upstream API endpoints; empty means the Google defaults.
	DataAPIEndpoint        string `mapstructure:"dataapiendpoint"`
	AdminAPIEndpoint       string `mapstructure:"adminapiendpoint"`
	UpstreamTimeoutSeconds int    `mapstructure:"upstreamtimeoutseconds"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Cache settings
	CacheBackend              string `mapstructure:"cachebackend"`
	CacheCleanIntervalSeconds int    `mapstructure:"cachecleanintervalseconds"`
	SummaryCacheTTLSeconds    int    `mapstructure:"summarycachettlseconds"`
	PropertiesCacheTTLSeconds int    `mapstructure:"propertiescachettlseconds"`
	RedisAddr                 string `mapstructure:"redisaddr"`
	RedisPassword             string `mapstructure:"redispassword"`
	RedisDB                   int    `mapstructure:"redisdb"`

	// Rate limiting (production only)
	RateLimitMax           int `mapstructure:"ratelimitmax"`
	RateLimitWindowSeconds int `mapstructure:"ratelimitwindowseconds"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration. It exits the process when
// the configuration is invalid; use Load to handle the error instead.
func GetConfig() *Config {
	once.Do(func() {
		loaded, err := Load()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	})
	return cfg
}

// Load reads .env (when present) and the environment into a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("appname", "ga4dash")
	v.SetDefault("appport", "3000")
	v.SetDefault("environment", Development)
	v.SetDefault("loglevel", string(LogLevelDebug))
	v.SetDefault("privatekey", DefaultPrivateKey)
	v.SetDefault("baseurl", "http://localhost:3000")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("sessiontimeoutseconds", 604800) // 1 week
	v.SetDefault("allowedorigins", "")
	v.SetDefault("upstreamtimeoutseconds", 30)
	v.SetDefault("logsdir", "logs")
	v.SetDefault("logsmaxsizeinmb", 20)
	v.SetDefault("logsmaxbackups", 10)
	v.SetDefault("logsmaxageindays", 30)
	v.SetDefault("cachebackend", MemoryCache)
	v.SetDefault("cachecleanintervalseconds", 60)
	v.SetDefault("summarycachettlseconds", 300)
	v.SetDefault("propertiescachettlseconds", 3600)
	v.SetDefault("redisaddr", "localhost:6379")
	v.SetDefault("redisdb", 0)
	v.SetDefault("ratelimitmax", 60)
	v.SetDefault("ratelimitwindowseconds", 60)

	v.BindEnv("appname", "GA4DASH_APP_NAME")
	v.BindEnv("appport", "GA4DASH_APP_PORT")
	v.BindEnv("environment", "GA4DASH_ENV")
	v.BindEnv("loglevel", "GA4DASH_LOG_LEVEL")
	v.BindEnv("privatekey", "GA4DASH_PRIVATE_KEY")
	v.BindEnv("baseurl", "GA4DASH_BASE_URL")
	v.BindEnv("timezone", "GA4DASH_TIMEZONE")
	v.BindEnv("sessiontimeoutseconds", "GA4DASH_SESSION_TIMEOUT_SECONDS")
	v.BindEnv("allowedorigins", "GA4DASH_ALLOWED_ORIGINS")
	v.BindEnv("googleclientid", "GA4DASH_GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_ID")
	v.BindEnv("googleclientsecret", "GA4DASH_GOOGLE_CLIENT_SECRET", "GOOGLE_CLIENT_SECRET")
	v.BindEnv("dataapiendpoint", "GA4DASH_DATA_API_ENDPOINT")
	v.BindEnv("adminapiendpoint", "GA4DASH_ADMIN_API_ENDPOINT")
	v.BindEnv("upstreamtimeoutseconds", "GA4DASH_UPSTREAM_TIMEOUT_SECONDS")
	v.BindEnv("logsdir", "GA4DASH_LOGS_DIR")
	v.BindEnv("logsmaxsizeinmb", "GA4DASH_LOGS_MAX_SIZE_IN_MB")
	v.BindEnv("logsmaxbackups", "GA4DASH_LOGS_MAX_BACKUPS")
	v.BindEnv("logsmaxageindays", "GA4DASH_LOGS_MAX_AGE_IN_DAYS")
	v.BindEnv("cachebackend", "GA4DASH_CACHE_BACKEND")
	v.BindEnv("cachecleanintervalseconds", "GA4DASH_CACHE_CLEAN_INTERVAL_SECONDS")
	v.BindEnv("summarycachettlseconds", "GA4DASH_SUMMARY_CACHE_TTL_SECONDS")
	v.BindEnv("propertiescachettlseconds", "GA4DASH_PROPERTIES_CACHE_TTL_SECONDS")
	v.BindEnv("redisaddr", "GA4DASH_REDIS_ADDR")
	v.BindEnv("redispassword", "GA4DASH_REDIS_PASSWORD")
	v.BindEnv("redisdb", "GA4DASH_REDIS_DB")
	v.BindEnv("ratelimitmax", "GA4DASH_RATE_LIMIT_MAX")
	v.BindEnv("ratelimitwindowseconds", "GA4DASH_RATE_LIMIT_WINDOW_SECONDS")

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validBackends := map[string]bool{
		MemoryCache: true,
		RedisCache:  true,
	}
	if !validBackends[c.CacheBackend] {
		return fmt.Errorf("invalid cache backend: %s", c.CacheBackend)
	}

	if c.PrivateKey == "" {
		return errors.New("private key is required")
	}
	if len(c.PrivateKey) != PrivateKeyLength {
		return fmt.Errorf("private key must be %d bytes, got %d", PrivateKeyLength, len(c.PrivateKey))
	}
	if c.IsProduction() && c.PrivateKey == DefaultPrivateKey {
		return errors.New("production requires a unique GA4DASH_PRIVATE_KEY (cannot use default)")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	return nil
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// Location returns the configured timezone, UTC when unset.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OAuthRedirectURL is the callback registered with Google.
func (c *Config) OAuthRedirectURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/auth/callback"
}

// SessionTimeout returns the login session lifetime.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutSeconds) * time.Second
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

func (c *Config) CacheCleanInterval() time.Duration {
	return time.Duration(c.CacheCleanIntervalSeconds) * time.Second
}

func (c *Config) SummaryCacheTTL() time.Duration {
	return time.Duration(c.SummaryCacheTTLSeconds) * time.Second
}

func (c *Config) PropertiesCacheTTL() time.Duration {
	return time.Duration(c.PropertiesCacheTTLSeconds) * time.Second
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

// Origins splits AllowedOrigins on commas. Empty means same-origin only.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
