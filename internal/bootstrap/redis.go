package bootstrap

import (
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/dashboard/internal/config"
	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/redisclient"
)

// SetupRedis connects the Redis client backing the session store and the
// availability cache. Redis is required: without it registration cannot
// create sessions.
func SetupRedis(cfg *config.Config, log logger.Logger) (*redis.Client, error) {
	client, err := redisclient.New(redisclient.Config{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Redis connected", logger.String("address", cfg.Redis.Address))
	return client, nil
}
