package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"multiroot/internal/color"
	"multiroot/pkg/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "multiroot",
	Short: "Serve per-folder C/C++ configurations for multi-root workspaces",
	Long: `multiroot gives every folder of a multi-root workspace its own set of named
C/C++ configurations (include paths, defines, compiler settings) and keeps one
configuration name active across all folders at once.

Run 'multiroot serve' to expose the configurations to your editor tooling over
MCP, then switch the active configuration with 'multiroot select'.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. unknown configuration names, server not running)
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.InitForCLI(logging.LevelWarn, cmd.ErrOrStderr())
		color.InitializeFromEnv()
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "multiroot version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())

	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "", "Load config.yaml from this directory instead of the user and project config files")
	rootCmd.PersistentFlags().StringVar(&endpointOverride, "endpoint", "", "Streamable-http URL of a running 'multiroot serve' (default: from config)")
}
