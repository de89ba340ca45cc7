package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"multiroot/internal/mcpserver"
	"multiroot/internal/status"
)

var statusWidth int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status item of the running server",
	Long: `Show the single-line status item: the active configuration name, or nothing
when the workspace has no configurations. Useful in shell prompts and status bars.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the configuration document",
	Long: `Ask the running server to re-read the configuration document. The active
configuration is kept when its name still exists.`,
	Args: cobra.NoArgs,
	RunE: runReload,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reloadCmd)

	statusCmd.Flags().IntVar(&statusWidth, "width", 40, "Maximum width of the status item")
}

func runStatus(cmd *cobra.Command, args []string) error {
	executor, err := connectExecutor(cmd, "json", true)
	if err != nil {
		return err
	}
	defer executor.Close()

	var res mcpserver.StatusResult
	if err := executor.ExecuteInto(commandContext(cmd), mcpserver.ToolStatus, nil, &res); err != nil {
		return err
	}

	item := status.Item{Text: res.Text, Tooltip: res.Tooltip, Visible: res.Visible, Command: res.Command}
	if line := item.Render(statusWidth); line != "" {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

func runReload(cmd *cobra.Command, args []string) error {
	executor, err := connectExecutor(cmd, "table", false)
	if err != nil {
		return err
	}
	defer executor.Close()

	var list mcpserver.ConfigurationList
	if err := executor.ExecuteInto(commandContext(cmd), mcpserver.ToolReload, nil, &list); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reloaded %d configurations, active: %s\n", len(list.Names), list.ActiveName)
	return nil
}
