package bootstrap

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/dashboard/internal/api"
	"github.com/jonesrussell/north-cloud/dashboard/internal/backend"
	"github.com/jonesrussell/north-cloud/dashboard/internal/config"
	"github.com/jonesrussell/north-cloud/dashboard/internal/handlers"
	"github.com/jonesrussell/north-cloud/dashboard/internal/health"
	"github.com/jonesrussell/north-cloud/dashboard/internal/jobs"
	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/metrics"
	"github.com/jonesrussell/north-cloud/dashboard/internal/session"
)

type serverDeps struct {
	backend    *backend.Client
	redis      *redis.Client
	fetcher    *jobs.Fetcher
	dispatcher *jobs.Dispatcher
	metrics    *metrics.Metrics
	registry   *prometheus.Registry
	log        logger.Logger
}

// SetupHTTPServer assembles handlers, health checks and the router.
func SetupHTTPServer(cfg *config.Config, deps serverDeps) *api.Server {
	cookieCfg := session.CookieConfig{
		Name:   cfg.Session.CookieName,
		Path:   cfg.Session.CookiePath,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.CookieSecure,
	}
	store := session.NewRedisStore(deps.redis, cfg.Session.TTL)

	checker := health.NewChecker()
	checker.Register("backend", deps.backend.Ping)
	checker.Register("redis", func(ctx context.Context) error {
		return deps.redis.Ping(ctx).Err()
	})

	router := api.NewRouter(api.Deps{
		Jobs:     handlers.NewJobsHandler(deps.fetcher, deps.dispatcher, deps.backend, deps.log),
		Tools:    handlers.NewToolsHandler(deps.backend, deps.log),
		Register: handlers.NewRegisterHandler(deps.backend, store, deps.redis, cfg.Dashboard.AvailabilityCacheTTL, cookieCfg, deps.log),
		Health:   checker,
		Metrics:  deps.metrics,
		Registry: deps.registry,
		Log:      deps.log,

		Debug:       cfg.Debug,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	return api.NewServer(api.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, router, deps.log)
}
