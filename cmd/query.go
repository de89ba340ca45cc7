package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"multiroot/internal/cli"
	"multiroot/internal/mcpserver"
)

var (
	queryOutputFormat string
	queryQuiet        bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configuration names",
	Long: `List every configuration name declared by any folder, in index order, and
mark the active one.

Note: the server must be running with the streamable-http transport.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var configCmd = &cobra.Command{
	Use:   "config FILE...",
	Short: "Show the configuration that applies to source files",
	Long: `Show the active configuration for each FILE, as the editor tooling receives it.
Files whose folder has no entry for the active configuration are left out.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConfig,
}

var browseCmd = &cobra.Command{
	Use:   "browse FOLDER",
	Short: "Show the browse configuration of a workspace folder",
	Long: `Show the browse paths the active configuration declares for FOLDER. FOLDER is a
workspace folder name, or a path or file URI inside the folder.`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	for _, c := range []*cobra.Command{listCmd, configCmd, browseCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringVarP(&queryOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
		c.Flags().BoolVarP(&queryQuiet, "quiet", "q", false, "Suppress non-essential output")
	}
}

func runList(cmd *cobra.Command, args []string) error {
	executor, err := connectExecutor(cmd, queryOutputFormat, queryQuiet)
	if err != nil {
		return err
	}
	defer executor.Close()

	var list mcpserver.ConfigurationList
	if err := executor.ExecuteInto(commandContext(cmd), mcpserver.ToolListConfigurations, nil, &list); err != nil {
		return err
	}

	return executor.Formatter().Render(list, func(t table.Writer) {
		t.AppendHeader(cli.Header("#", "name", "active"))
		for i, name := range list.Names {
			active := ""
			if list.HasActive && i == list.Active {
				active = text.FgGreen.Sprint("*")
			}
			t.AppendRow(table.Row{i, name, active})
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d folders: %s", len(list.Folders), strings.Join(list.Folders, ", ")), ""})
	})
}

func runConfig(cmd *cobra.Command, args []string) error {
	executor, err := connectExecutor(cmd, queryOutputFormat, queryQuiet)
	if err != nil {
		return err
	}
	defer executor.Close()

	uris := make([]interface{}, len(args))
	for i, arg := range args {
		uris[i] = absArg(arg)
	}
	return executor.Execute(commandContext(cmd), mcpserver.ToolProvideConfigurations, map[string]interface{}{
		"uris": uris,
	})
}

func runBrowse(cmd *cobra.Command, args []string) error {
	executor, err := connectExecutor(cmd, queryOutputFormat, queryQuiet)
	if err != nil {
		return err
	}
	defer executor.Close()

	folder := args[0]
	if strings.ContainsRune(folder, filepath.Separator) || strings.Contains(folder, "://") {
		folder = absArg(folder)
	}
	return executor.Execute(commandContext(cmd), mcpserver.ToolProvideFolderBrowseConfiguration, map[string]interface{}{
		"uri": folder,
	})
}

// absArg makes a plain path absolute; URIs are passed through.
func absArg(arg string) string {
	if strings.Contains(arg, "://") {
		return arg
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return arg
	}
	return abs
}
