package provider

import "multiroot/internal/registry"

const (
	// Name is the provider's display name.
	Name = "Multi-root"
	// ExtensionID identifies the provider to the tooling consumer.
	ExtensionID = "multi-root-cpp-config-provider"
)

// SourceFileConfiguration is the compiler configuration for one file.
// IncludePath and Defines are always present; every other field is passed
// through exactly as declared.
type SourceFileConfiguration struct {
	IncludePath       []string                  `json:"includePath" yaml:"includePath"`
	Defines           []string                  `json:"defines" yaml:"defines"`
	IntelliSenseMode  registry.IntelliSenseMode `json:"intelliSenseMode,omitempty" yaml:"intelliSenseMode,omitempty"`
	Standard          registry.Standard         `json:"standard,omitempty" yaml:"standard,omitempty"`
	ForcedInclude     []string                  `json:"forcedInclude,omitempty" yaml:"forcedInclude,omitempty"`
	CompilerPath      *string                   `json:"compilerPath,omitempty" yaml:"compilerPath,omitempty"`
	CompilerArgs      []string                  `json:"compilerArgs,omitempty" yaml:"compilerArgs,omitempty"`
	WindowsSDKVersion *string                   `json:"windowsSdkVersion,omitempty" yaml:"windowsSdkVersion,omitempty"`
}

// SourceFileConfigurationItem pairs a file URI with its configuration.
type SourceFileConfigurationItem struct {
	URI           string                  `json:"uri" yaml:"uri"`
	Configuration SourceFileConfiguration `json:"configuration" yaml:"configuration"`
}

// WorkspaceBrowseConfiguration is the configuration used for workspace-wide
// symbol indexing.
type WorkspaceBrowseConfiguration struct {
	BrowsePath        []string          `json:"browsePath" yaml:"browsePath"`
	CompilerPath      *string           `json:"compilerPath,omitempty" yaml:"compilerPath,omitempty"`
	CompilerArgs      []string          `json:"compilerArgs,omitempty" yaml:"compilerArgs,omitempty"`
	Standard          registry.Standard `json:"standard,omitempty" yaml:"standard,omitempty"`
	WindowsSDKVersion *string           `json:"windowsSdkVersion,omitempty" yaml:"windowsSdkVersion,omitempty"`
}

// fromNamedConfig converts a declared configuration into the per-file form.
func fromNamedConfig(cfg registry.NamedConfig) SourceFileConfiguration {
	out := SourceFileConfiguration{
		IncludePath:       cfg.IncludePath,
		Defines:           cfg.Defines,
		IntelliSenseMode:  cfg.IntelliSenseMode,
		Standard:          cfg.CppStandard,
		ForcedInclude:     cfg.ForcedInclude,
		CompilerPath:      cfg.CompilerPath,
		CompilerArgs:      cfg.CompilerArgs,
		WindowsSDKVersion: cfg.WindowsSDKVersion,
	}
	if out.IncludePath == nil {
		out.IncludePath = []string{}
	}
	if out.Defines == nil {
		out.Defines = []string{}
	}
	return out
}

// browseFromNamedConfig converts the browse section of a declared configuration.
func browseFromNamedConfig(cfg registry.NamedConfig) WorkspaceBrowseConfiguration {
	out := WorkspaceBrowseConfiguration{
		CompilerPath:      cfg.CompilerPath,
		CompilerArgs:      cfg.CompilerArgs,
		Standard:          cfg.CppStandard,
		WindowsSDKVersion: cfg.WindowsSDKVersion,
	}
	if cfg.Browse != nil {
		out.BrowsePath = cfg.Browse.Path
	}
	if out.BrowsePath == nil {
		out.BrowsePath = []string{}
	}
	return out
}
