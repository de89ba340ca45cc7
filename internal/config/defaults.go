package config

import (
	"path/filepath"
	"time"
)

const (
	defaultHost         = "localhost"
	defaultPort         = 8093
	defaultEndpointPath = "/mcp"
	defaultDebounce     = 100 * time.Millisecond
)

// GetDefaultConfig returns the built-in configuration. The workspace root
// and state directory are filled in by the loader.
func GetDefaultConfig() MultirootConfig {
	return MultirootConfig{
		Server: ServerConfig{
			Transport:    TransportStdio,
			Host:         defaultHost,
			Port:         defaultPort,
			EndpointPath: defaultEndpointPath,
		},
		Watch: WatchConfig{
			Debounce: defaultDebounce,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// defaultStateDir returns the state directory under the user config dir.
func defaultStateDir() (string, error) {
	dir, err := GetUserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state"), nil
}
