package bootstrap

import (
	"flag"
	"fmt"

	"github.com/jonesrussell/north-cloud/dashboard/internal/config"
	"github.com/jonesrussell/north-cloud/dashboard/internal/configload"
	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
)

// LoadConfig loads configuration. Uses the -config flag with CONFIG_PATH
// as the fallback.
func LoadConfig() (*config.Config, error) {
	configPath := flag.String("config", configload.GetConfigPath("config.yml"), "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// CreateLogger creates the service logger from configuration.
func CreateLogger(cfg *config.Config, version string) (logger.Logger, error) {
	logCfg := cfg.Logging
	logCfg.Development = cfg.Debug

	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(
		logger.String("service", "dashboard"),
		logger.String("version", version),
	), nil
}
