package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/multiroot"
	projectConfigDir = ".multiroot"
	configFileName   = "config.yaml"
)

var (
	// ErrWorkspaceNotFound is returned when the workspace root is not a directory.
	ErrWorkspaceNotFound = errors.New("workspace root not found")

	// ErrInvalidConfig wraps validation failures.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// LoadConfig loads the multiroot configuration by layering default, user, and project settings.
func LoadConfig() (MultirootConfig, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. User-specific configuration is optional
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else if _, err := os.Stat(userConfigPath); err == nil {
		userConfig, err := loadConfigFromFile(userConfigPath)
		if err != nil {
			return MultirootConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
		}
		config = mergeConfigs(config, userConfig)
	}

	// 3. Project-specific configuration is optional too
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else if _, err := os.Stat(projectConfigPath); err == nil {
		projectConfig, err := loadConfigFromFile(projectConfigPath)
		if err != nil {
			return MultirootConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
		}
		config = mergeConfigs(config, projectConfig)
	}

	if err := finalize(&config); err != nil {
		return MultirootConfig{}, err
	}
	return config, nil
}

// LoadConfigFromPath loads configuration from a single directory containing
// config.yaml, on top of the defaults. User and project layers are skipped.
func LoadConfigFromPath(dir string) (MultirootConfig, error) {
	config := GetDefaultConfig()

	path := filepath.Join(dir, configFileName)
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return MultirootConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	config = mergeConfigs(config, overlay)

	if err := finalize(&config); err != nil {
		return MultirootConfig{}, err
	}
	return config, nil
}

// ConfigFilePath returns the file a settings watcher should follow: the
// config.yaml inside dir when dir is set, otherwise the project config file.
func ConfigFilePath(dir string) (string, error) {
	if dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	return getProjectConfigPath()
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a MultirootConfig from a YAML file.
func loadConfigFromFile(filePath string) (MultirootConfig, error) {
	var config MultirootConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return MultirootConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return MultirootConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config.
func mergeConfigs(base, overlay MultirootConfig) MultirootConfig {
	merged := base

	if overlay.Workspace.Root != "" {
		merged.Workspace.Root = overlay.Workspace.Root
	}
	if len(overlay.Workspace.Folders) > 0 {
		merged.Workspace.Folders = overlay.Workspace.Folders
	}

	// The settings namespace is replaced per key, never merged element-wise.
	if overlay.MultiRootConfig.File != "" {
		merged.MultiRootConfig.File = overlay.MultiRootConfig.File
	}
	if overlay.MultiRootConfig.Folders != nil {
		merged.MultiRootConfig.Folders = overlay.MultiRootConfig.Folders
	}

	if overlay.Server.Transport != "" {
		merged.Server.Transport = overlay.Server.Transport
	}
	if overlay.Server.Host != "" {
		merged.Server.Host = overlay.Server.Host
	}
	if overlay.Server.Port != 0 {
		merged.Server.Port = overlay.Server.Port
	}
	if overlay.Server.EndpointPath != "" {
		merged.Server.EndpointPath = overlay.Server.EndpointPath
	}

	if overlay.State.Dir != "" {
		merged.State.Dir = overlay.State.Dir
	}

	if overlay.Watch.Debounce != 0 {
		merged.Watch.Debounce = overlay.Watch.Debounce
	}
	if overlay.Watch.Settings != nil {
		merged.Watch.Settings = overlay.Watch.Settings
	}

	if overlay.Logging.Level != "" {
		merged.Logging.Level = overlay.Logging.Level
	}
	if overlay.Logging.Format != "" {
		merged.Logging.Format = overlay.Logging.Format
	}

	return merged
}

// finalize resolves paths and validates the merged configuration.
func finalize(config *MultirootConfig) error {
	wd, err := osGetwd()
	if err != nil {
		return fmt.Errorf("determining working directory: %w", err)
	}

	root := config.Workspace.Root
	if root == "" {
		root = wd
	} else if !filepath.IsAbs(root) {
		root = filepath.Join(wd, root)
	}
	config.Workspace.Root = filepath.Clean(root)

	if config.State.Dir == "" {
		dir, err := defaultStateDir()
		if err != nil {
			return fmt.Errorf("determining state directory: %w", err)
		}
		config.State.Dir = dir
	}

	return Validate(*config)
}

// Validate checks the configuration for values the application cannot run with.
func Validate(config MultirootConfig) error {
	info, err := os.Stat(config.Workspace.Root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, config.Workspace.Root)
	}

	switch config.Server.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, config.Server.Transport)
	}

	if config.Server.Port < 0 || config.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, config.Server.Port)
	}

	seen := make(map[string]bool)
	for _, f := range config.Workspace.Folders {
		if f.Name == "" {
			return fmt.Errorf("%w: workspace folder without a name", ErrInvalidConfig)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate workspace folder %q", ErrInvalidConfig, f.Name)
		}
		seen[f.Name] = true
	}

	return nil
}

// DocumentSettingsEqual reports whether two configurations carry the same
// multiRootConfig settings namespace.
func DocumentSettingsEqual(a, b MultirootConfig) bool {
	return reflect.DeepEqual(a.MultiRootConfig, b.MultiRootConfig)
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
