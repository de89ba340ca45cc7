package app

import (
	"context"
	"fmt"

	"multiroot/internal/config"
	"multiroot/pkg/logging"
)

// Application is the main application structure that bootstraps and runs multiroot
type Application struct {
	config   *Config
	services *Services
}

// NewApplication creates and initializes a new application instance
func NewApplication(cfg *Config) (*Application, error) {
	// Logging goes to stderr; stdout belongs to the stdio transport
	logging.InitForServer(logLevel(cfg.Debug, ""), logging.FormatText)

	if cfg.MultirootConfig == nil {
		multirootCfg, err := cfg.loadConfig()
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load multiroot configuration")
			return nil, fmt.Errorf("failed to load multiroot configuration: %w", err)
		}
		cfg.MultirootConfig = &multirootCfg
		if cfg.ConfigPath != "" {
			logging.Info("Bootstrap", "Loaded configuration from custom path: %s", cfg.ConfigPath)
		} else {
			logging.Info("Bootstrap", "Loaded configuration using layered approach")
		}
	}

	logCfg := cfg.MultirootConfig.Logging
	logging.InitForServer(logLevel(cfg.Debug, logCfg.Level), logCfg.Format)

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Services returns the initialized components.
func (a *Application) Services() *Services {
	return a.services
}

// Run serves until ctx is cancelled or the transport closes.
func (a *Application) Run(ctx context.Context) error {
	settingsPath, err := config.ConfigFilePath(a.config.ConfigPath)
	if err != nil {
		logging.Warn("Bootstrap", "Could not determine settings file: %v", err)
		settingsPath = ""
	}
	return runServe(ctx, a.services, settingsPath)
}

// logLevel picks the log level; --debug wins over the configured level.
func logLevel(debug bool, configured string) logging.LogLevel {
	if debug {
		return logging.LevelDebug
	}
	if configured == "" {
		return logging.LevelInfo
	}
	level, err := logging.ParseLevel(configured)
	if err != nil {
		return logging.LevelInfo
	}
	return level
}
