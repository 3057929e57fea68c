// Package bootstrap handles application initialization and lifecycle
// management for the dashboard service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jonesrussell/north-cloud/dashboard/internal/jobs"
	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/metrics"
)

const version = "dev"

// Start initializes and runs the dashboard service.
func Start() error {
	// Phase 1: config and logger
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg, version)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Phase 2: metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Phase 3: Redis (sessions + availability cache)
	redisClient, err := SetupRedis(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() {
		if closeErr := redisClient.Close(); closeErr != nil {
			log.Error("Failed to close redis client", logger.Error(closeErr))
		}
	}()

	// Phase 4: backend client, probed with backoff so a backend still
	// starting up does not kill the dashboard.
	backendClient, err := SetupBackend(context.Background(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to reach backend: %w", err)
	}

	// Phase 5: view model. One shared fetcher/poller drives the job list
	// snapshot; the dispatcher reconciles through it after every action.
	fetcher := jobs.NewFetcher(backendClient, cfg.Dashboard.PageSize, m, log)
	defer fetcher.Close()

	dispatcher := jobs.NewDispatcher(backendClient, m, log)
	dispatcher.OnSuccess(func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
		defer cancel()
		_ = fetcher.Refresh(refreshCtx)
	})

	poller := jobs.NewPoller(fetcher, cfg.Dashboard.PollInterval, log)
	if pollErr := poller.Start(context.Background()); pollErr != nil {
		return fmt.Errorf("failed to start poller: %w", pollErr)
	}
	defer poller.Stop()

	// Phase 6: HTTP server
	server := SetupHTTPServer(cfg, serverDeps{
		backend:    backendClient,
		redis:      redisClient,
		fetcher:    fetcher,
		dispatcher: dispatcher,
		metrics:    m,
		registry:   registry,
		log:        log,
	})

	log.Info("Starting HTTP server",
		logger.String("host", cfg.Server.Host),
		logger.Int("port", cfg.Server.Port),
		logger.Duration("poll_interval", cfg.Dashboard.PollInterval),
	)

	if runErr := server.Run(); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Server exited")
	return nil
}
