// Package config defines the dashboard service configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/dashboard/internal/configload"
	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
)

const (
	defaultServerPort        = 8070
	defaultServerTimeout     = 30 * time.Second
	defaultBackendTimeout    = 15 * time.Second
	defaultPollInterval      = 5 * time.Second
	defaultPageSize          = 20
	defaultRedisAddress      = "localhost:6379"
	defaultSessionTTL        = 24 * time.Hour
	defaultSessionCookie     = "nc_session"
	defaultCookiePath        = "/dashboard"
	defaultAvailabilityCache = 5 * time.Second
)

type Config struct {
	Debug     bool            `env:"APP_DEBUG" yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Redis     RedisConfig     `yaml:"redis"`
	Session   SessionConfig   `yaml:"session"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   logger.Config   `yaml:"logging"`
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" yaml:"host"`
	Port         int           `env:"SERVER_PORT" yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

// BackendConfig points at the news-analysis backend this service fronts.
type BackendConfig struct {
	BaseURL string        `env:"BACKEND_BASE_URL" yaml:"base_url"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT"  yaml:"timeout"`
}

// RedisConfig holds Redis connection configuration for the session store
// and the availability-check cache.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
}

type SessionConfig struct {
	CookieName   string        `env:"SESSION_COOKIE_NAME" yaml:"cookie_name"`
	CookiePath   string        `env:"SESSION_COOKIE_PATH" yaml:"cookie_path"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" yaml:"cookie_secure"`
	TTL          time.Duration `yaml:"ttl"`
}

// DashboardConfig tunes the job list view model.
type DashboardConfig struct {
	// PollInterval is how often the job list auto-refreshes.
	PollInterval time.Duration `env:"DASHBOARD_POLL_INTERVAL" yaml:"poll_interval"`
	// PageSize is the default job page size.
	PageSize int `env:"DASHBOARD_PAGE_SIZE" yaml:"page_size"`
	// AvailabilityCacheTTL bounds upstream volume for username/email checks.
	AvailabilityCacheTTL time.Duration `yaml:"availability_cache_ttl"`
}

func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server.host is required")
	}
	if c.Server.Port <= 0 {
		return errors.New("server.port is required and must be positive")
	}
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	if c.Redis.Address == "" {
		return errors.New("redis.address is required")
	}
	if c.Dashboard.PollInterval < time.Second {
		return fmt.Errorf("dashboard.poll_interval %s is below the 1s floor", c.Dashboard.PollInterval)
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg, err := configload.LoadWithDefaults(path, setDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultServerTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultServerTimeout
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = defaultBackendTimeout
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = defaultSessionCookie
	}
	if cfg.Session.CookiePath == "" {
		cfg.Session.CookiePath = defaultCookiePath
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = defaultSessionTTL
	}
	if cfg.Dashboard.PollInterval == 0 {
		cfg.Dashboard.PollInterval = defaultPollInterval
	}
	if cfg.Dashboard.PageSize == 0 {
		cfg.Dashboard.PageSize = defaultPageSize
	}
	if cfg.Dashboard.AvailabilityCacheTTL == 0 {
		cfg.Dashboard.AvailabilityCacheTTL = defaultAvailabilityCache
	}
}
