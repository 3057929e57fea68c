package bootstrap

import (
	"context"

	"github.com/jonesrussell/north-cloud/dashboard/internal/backend"
	"github.com/jonesrussell/north-cloud/dashboard/internal/config"
	"github.com/jonesrussell/north-cloud/dashboard/internal/httpclient"
	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/retry"
)

// SetupBackend creates the backend client and waits for the backend to
// answer its health endpoint. This is the only place backend calls are
// retried; the serving paths surface failures immediately.
func SetupBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (*backend.Client, error) {
	client := backend.New(cfg.Backend.BaseURL, &httpclient.Config{
		Timeout: cfg.Backend.Timeout,
	})

	probe := func(ctx context.Context) error {
		if err := client.Ping(ctx); err != nil {
			log.Warn("Backend not ready", logger.Error(err))
			return err
		}
		return nil
	}

	if err := retry.Do(ctx, retry.DefaultConfig(), probe); err != nil {
		return nil, err
	}

	log.Info("Backend reachable", logger.String("base_url", cfg.Backend.BaseURL))
	return client, nil
}
