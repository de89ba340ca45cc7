package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"multiroot/internal/mcpserver"
)

var (
	activeCopy  bool
	activeLocal bool

	// For mocking in tests
	writeClipboard = clipboard.WriteAll
)

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "Print the active configuration name",
	Long: `Print the name of the active configuration, or "(no config)" when the
workspace has none.`,
	Args: cobra.NoArgs,
	RunE: runActive,
}

func init() {
	rootCmd.AddCommand(activeCmd)

	activeCmd.Flags().BoolVar(&activeCopy, "copy", false, "Also copy the name to the clipboard")
	activeCmd.Flags().BoolVar(&activeLocal, "local", false, "Read the persisted selection without a running server")
}

func runActive(cmd *cobra.Command, args []string) error {
	name, err := activeName(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), name)
	if activeCopy {
		if err := writeClipboard(name); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
	}
	return nil
}

func activeName(cmd *cobra.Command) (string, error) {
	if activeLocal {
		session, err := openLocal()
		if err != nil {
			return "", err
		}
		defer session.Close()
		return session.controller.StatusText(), nil
	}

	executor, err := connectExecutor(cmd, "table", false)
	if err != nil {
		return "", err
	}
	defer executor.Close()
	return executor.ExecuteSimple(commandContext(cmd), mcpserver.ToolActiveConfigurationName, nil)
}
