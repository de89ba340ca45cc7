package config

import (
	"time"

	"multiroot/internal/registry"
)

// MultirootConfig is the top-level configuration structure for multiroot.
type MultirootConfig struct {
	Workspace       WorkspaceConfig  `yaml:"workspace"`
	MultiRootConfig DocumentSettings `yaml:"multiRootConfig"`
	Server          ServerConfig     `yaml:"server"`
	State           StateConfig      `yaml:"state"`
	Watch           WatchConfig      `yaml:"watch"`
	Logging         LoggingConfig    `yaml:"logging"`
}

// WorkspaceConfig describes the workspace root and its folders.
type WorkspaceConfig struct {
	Root    string             `yaml:"root,omitempty"`    // Absolute, or relative to the working directory
	Folders []FolderDefinition `yaml:"folders,omitempty"` // Empty means every sub-directory of Root
}

// FolderDefinition maps a workspace folder name to its directory.
type FolderDefinition struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"` // Relative to the workspace root unless absolute
}

// DocumentSettings is the settings namespace read by the document source.
// File takes precedence over Folders when it yields a folder list.
type DocumentSettings struct {
	File    string                `yaml:"file,omitempty"`    // JSONC document, relative to the workspace root
	Folders []registry.FolderSpec `yaml:"folders,omitempty"` // Inline document
}

const (
	// TransportStdio serves the host API over standard I/O.
	TransportStdio = "stdio"
	// TransportStreamableHTTP serves the host API over streamable HTTP.
	TransportStreamableHTTP = "streamable-http"
)

// ServerConfig configures the host API server.
type ServerConfig struct {
	Transport    string `yaml:"transport,omitempty"`
	Host         string `yaml:"host,omitempty"`
	Port         int    `yaml:"port,omitempty"`
	EndpointPath string `yaml:"endpointPath,omitempty"`
}

// StateConfig configures where the persisted selection lives.
type StateConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// WatchConfig configures reload triggers.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
	// Settings enables reloading when the project configuration file changes.
	Settings *bool `yaml:"settings,omitempty"`
}

// WatchSettings reports whether settings changes trigger reloads.
func (w WatchConfig) WatchSettings() bool {
	return w.Settings == nil || *w.Settings
}

// LoggingConfig configures the serve command's log output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // "text" or "json"
}
