package registry

// IntelliSenseMode is the target triple tag a configuration is analysed with,
// e.g. "linux-gcc-x64" or "windows-msvc-arm64". The value is passed through
// untouched.
type IntelliSenseMode string

// Standard is the language standard tag, e.g. "c17" or "gnu++20".
type Standard string

// BrowseConfig holds the paths used for workspace-wide symbol indexing.
type BrowseConfig struct {
	Path []string `json:"path,omitempty" yaml:"path,omitempty"`
}

// NamedConfig is one compiler configuration profile declared by a folder.
// Every field except Name is optional: a nil slice or pointer means the
// field was not specified, which is different from an empty list.
type NamedConfig struct {
	Name              string           `json:"name" yaml:"name"`
	Browse            *BrowseConfig    `json:"browse,omitempty" yaml:"browse,omitempty"`
	IncludePath       []string         `json:"includePath,omitempty" yaml:"includePath,omitempty"`
	Defines           []string         `json:"defines,omitempty" yaml:"defines,omitempty"`
	IntelliSenseMode  IntelliSenseMode `json:"intelliSenseMode,omitempty" yaml:"intelliSenseMode,omitempty"`
	CppStandard       Standard         `json:"cppStandard,omitempty" yaml:"cppStandard,omitempty"`
	ForcedInclude     []string         `json:"forcedInclude,omitempty" yaml:"forcedInclude,omitempty"`
	CompilerPath      *string          `json:"compilerPath,omitempty" yaml:"compilerPath,omitempty"`
	CompilerArgs      []string         `json:"compilerArgs,omitempty" yaml:"compilerArgs,omitempty"`
	WindowsSDKVersion *string          `json:"windowsSdkVersion,omitempty" yaml:"windowsSdkVersion,omitempty"`
}

// HasBrowsePaths reports whether the configuration declares a browse section.
func (c *NamedConfig) HasBrowsePaths() bool {
	return c != nil && c.Browse != nil
}

// FolderSpec is the list of configurations a single workspace folder declares.
type FolderSpec struct {
	Name           string        `json:"name" yaml:"name"`
	Configurations []NamedConfig `json:"configurations" yaml:"configurations"`
}

// Document is the declarative input to Build: folders in declaration order.
type Document struct {
	Folders []FolderSpec `json:"folders" yaml:"folders"`
}

// IsEmpty reports whether the document declares no folders at all. A nil
// document is empty.
func (d *Document) IsEmpty() bool {
	return d == nil || len(d.Folders) == 0
}
