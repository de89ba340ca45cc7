package app

import (
	"multiroot/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool

	// Transport overrides server.transport from the config files when set
	Transport string

	// ConfigPath loads a single config directory instead of the layered files
	ConfigPath string

	// Version is reported to MCP clients
	Version string

	// Loaded multiroot configuration
	MultirootConfig *config.MultirootConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, transport, configPath string) *Config {
	return &Config{
		Debug:      debug,
		Transport:  transport,
		ConfigPath: configPath,
	}
}

// loadConfig loads the configuration the way the command line asked for.
func (c *Config) loadConfig() (config.MultirootConfig, error) {
	if c.ConfigPath != "" {
		return config.LoadConfigFromPath(c.ConfigPath)
	}
	return config.LoadConfig()
}
