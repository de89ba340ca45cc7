// Package config provides configuration management for multiroot.
//
// Configuration is loaded from YAML files and merged in the following order,
// with later sources overriding earlier ones:
//
//  1. Default configuration (built into the binary)
//  2. User configuration (~/.config/multiroot/config.yaml)
//  3. Project configuration (./.multiroot/config.yaml)
//
// # Configuration Structure
//
//	workspace:
//	  root: "."
//	  folders:
//	    - name: "app"
//	      path: "app"
//	    - name: "lib"
//	      path: "third_party/lib"
//
//	multiRootConfig:
//	  file: "cpp-configs.jsonc"   # optional, takes precedence over folders
//	  folders:
//	    - name: "app"
//	      configurations:
//	        - name: "debug"
//	          includePath: ["include"]
//	          defines: ["DEBUG=1"]
//	          cppStandard: "c++20"
//
//	server:
//	  transport: "stdio"          # or "streamable-http"
//	  host: "localhost"
//	  port: 8093
//	  endpointPath: "/mcp"
//
//	state:
//	  dir: "~/.config/multiroot/state"
//
//	watch:
//	  debounce: "100ms"
//	  settings: true
//
// The multiRootConfig section is the settings namespace of the configuration
// provider. When the project file changes and this section differs from the
// previously loaded one, the provider reloads its configurations.
package config
