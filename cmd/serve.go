package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"multiroot/internal/app"
	"multiroot/internal/config"
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveTransport overrides server.transport from the config files.
var serveTransport string

// serveCmd defines the serve command structure.
// This is the main command of multiroot: it loads the configuration document,
// restores the last selection and serves the host API until stopped.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the multi-root configuration provider over MCP",
	Long: `Loads the multi-root configuration document, restores the configuration that was
active last time for this workspace and serves the provider API over MCP.

Transports:
  stdio            (default) for editors that spawn multiroot as a child process
  streamable-http  for a long-running server the other multiroot commands talk to

The document is reloaded whenever the configuration file or the multiRootConfig
settings in .multiroot/config.yaml change.

Configuration:
  multiroot loads ~/.config/multiroot/config.yaml, then .multiroot/config.yaml in the
  current directory. Use --config-path to load a single directory instead.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	if serveTransport != "" && serveTransport != config.TransportStdio && serveTransport != config.TransportStreamableHTTP {
		return fmt.Errorf("unsupported transport %q (use %s or %s)", serveTransport, config.TransportStdio, config.TransportStreamableHTTP)
	}

	cfg := app.NewConfig(serveDebug, serveTransport, configPath)
	cfg.Version = rootCmd.Version

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return application.Run(commandContext(cmd))
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "Host API transport: stdio or streamable-http (default: from config)")
}
