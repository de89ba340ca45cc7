package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"multiroot/internal/mcpserver"
	"multiroot/internal/picker"
	"multiroot/internal/selection"
)

var (
	selectLocal bool
	selectIndex int

	// newPicker builds the interactive picker; swapped in tests.
	newPicker = func(title string, active int) selection.Picker {
		return picker.New(title, active)
	}
)

const pickerTitle = "Select a configuration"

var selectCmd = &cobra.Command{
	Use:   "select [NAME]",
	Short: "Select the active configuration",
	Long: `Make NAME the active configuration in every folder of the workspace.

Without NAME an interactive list of the available configurations is shown.
Choosing the configuration that is already active changes nothing.

By default the running server is asked to switch. With --local the document is
loaded in-process and the choice is written to the state store, so the next
'multiroot serve' starts with it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().BoolVar(&selectLocal, "local", false, "Select without a running server and persist the choice")
	selectCmd.Flags().IntVar(&selectIndex, "index", -1, "Select by position in the configuration list")
}

func runSelect(cmd *cobra.Command, args []string) error {
	if selectLocal {
		return runSelectLocal(cmd, args)
	}

	executor, err := connectExecutor(cmd, "table", false)
	if err != nil {
		return err
	}
	defer executor.Close()
	ctx := commandContext(cmd)

	toolArgs := map[string]interface{}{}
	switch {
	case len(args) == 1:
		toolArgs["name"] = args[0]
	case selectIndex >= 0:
		toolArgs["index"] = selectIndex
	default:
		var list mcpserver.ConfigurationList
		if err := executor.ExecuteInto(ctx, mcpserver.ToolListConfigurations, nil, &list); err != nil {
			return err
		}
		if len(list.Names) == 0 {
			return selection.ErrNoConfigurations
		}
		items := make([]selection.Item, len(list.Names))
		for i, n := range list.Names {
			items[i] = selection.Item{Label: n, Index: i}
		}
		choice, ok, err := newPicker(pickerTitle, list.Active).Pick(ctx, items)
		if err != nil || !ok {
			return err
		}
		// By name: the server's list may have been reloaded meanwhile, and a
		// name that disappeared leaves the selection unchanged.
		toolArgs["name"] = choice.Label
		toolArgs["ifExists"] = true
	}

	var result mcpserver.SelectResult
	if err := executor.ExecuteInto(ctx, mcpserver.ToolSelectConfiguration, toolArgs, &result); err != nil {
		return err
	}
	printSelectResult(cmd.OutOrStdout(), result.Changed, result.ActiveName)
	return nil
}

func runSelectLocal(cmd *cobra.Command, args []string) error {
	session, err := openLocal()
	if err != nil {
		return err
	}
	defer session.Close()
	ctrl := session.controller

	var changed bool
	switch {
	case len(args) == 1:
		changed, err = ctrl.SelectName(args[0])
	case selectIndex >= 0:
		if selectIndex >= len(ctrl.Names()) {
			return fmt.Errorf("index %d out of range (%d configurations)", selectIndex, len(ctrl.Names()))
		}
		changed = ctrl.SelectIndex(selectIndex)
	default:
		if len(ctrl.Names()) == 0 {
			return selection.ErrNoConfigurations
		}
		snap := ctrl.Snapshot()
		changed = ctrl.SelectByUserChoice(commandContext(cmd), newPicker(pickerTitle, snap.Active))
	}
	if err != nil {
		return err
	}

	printSelectResult(cmd.OutOrStdout(), changed, ctrl.StatusText())
	return nil
}

func printSelectResult(w io.Writer, changed bool, name string) {
	if changed {
		fmt.Fprintf(w, "Active configuration: %s\n", name)
		return
	}
	fmt.Fprintf(w, "Active configuration unchanged: %s\n", name)
}
