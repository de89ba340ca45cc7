package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"multiroot/internal/cli"
	"multiroot/internal/registry"
	"multiroot/internal/source"
	"multiroot/internal/state"
	"multiroot/internal/workspace"
)

var inspectOutputFormat string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show which folders declare which configurations",
	Long: `Load the configuration document without a server and print a matrix of
configuration names against workspace folders. A mark means the folder declares
that configuration; an empty cell means the folder has no opinion while that
configuration is active.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

// InspectReport is the offline view of the registry.
type InspectReport struct {
	Root    string              `json:"root" yaml:"root"`
	Source  string              `json:"source" yaml:"source"`
	Names   []string            `json:"names" yaml:"names"`
	Active  string              `json:"active" yaml:"active"`
	Folders map[string][]string `json:"folders" yaml:"folders"`
	// Unmatched lists document folders with no workspace folder of that name.
	Unmatched []string `json:"unmatched,omitempty" yaml:"unmatched,omitempty"`

	folderOrder []string
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(inspectOutputFormat)
	if err != nil {
		return err
	}
	report, err := buildInspectReport()
	if err != nil {
		return err
	}

	return cli.NewFormatter(format, cmd.OutOrStdout()).Render(report, func(t table.Writer) {
		renderInspectTable(t, report)
	})
}

func buildInspectReport() (InspectReport, error) {
	cfg, err := loadConfig()
	if err != nil {
		return InspectReport{}, err
	}
	ws, err := workspace.New(cfg.Workspace)
	if err != nil {
		return InspectReport{}, err
	}

	remembered := ""
	if store, err := state.NewStore(cfg.State.Dir); err == nil {
		remembered, _ = store.Get(ws.Root())
	}

	src := source.Resolve(cfg.MultiRootConfig, ws.Root())
	reg := registry.Build(src.Load(), remembered)

	report := InspectReport{
		Root:        ws.Root(),
		Source:      src.Describe(),
		Names:       reg.Names(),
		Folders:     make(map[string][]string),
		folderOrder: reg.Folders(),
	}
	if i, ok := reg.Active(); ok {
		report.Active, _ = reg.Name(i)
	}

	for _, folder := range report.folderOrder {
		slots, _ := reg.Slots(folder)
		declared := []string{}
		for _, slot := range slots {
			if slot != nil {
				declared = append(declared, slot.Name)
			}
		}
		report.Folders[folder] = declared
		if _, ok := ws.Folder(folder); !ok {
			report.Unmatched = append(report.Unmatched, folder)
		}
	}
	return report, nil
}

func renderInspectTable(t table.Writer, report InspectReport) {
	header := []string{"configuration"}
	header = append(header, report.folderOrder...)
	t.AppendHeader(cli.Header(header...))

	for _, name := range report.Names {
		label := name
		if name == report.Active {
			label = text.FgGreen.Sprint(name + " *")
		}
		row := table.Row{label}
		for _, folder := range report.folderOrder {
			slots := report.Folders[folder]
			cell := ""
			for _, declared := range slots {
				if declared == name {
					cell = "x"
					break
				}
			}
			row = append(row, cell)
		}
		t.AppendRow(row)
	}

	t.SetCaption("%s (%s)", report.Root, report.Source)
	if len(report.Unmatched) > 0 {
		t.AppendFooter(table.Row{text.FgYellow.Sprintf("not in workspace: %v", report.Unmatched)})
	}
}
