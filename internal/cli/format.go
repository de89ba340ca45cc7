package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format for CLI commands
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (use table, json or yaml)", s)
	}
}

// Formatter writes values as a table, JSON, or YAML.
type Formatter struct {
	format OutputFormat
	out    io.Writer
}

// NewFormatter creates a formatter writing to out.
func NewFormatter(format OutputFormat, out io.Writer) *Formatter {
	return &Formatter{format: format, out: out}
}

// Render writes v. In table mode buildTable fills the table; when it is nil
// the generic layout derived from v's JSON form is used.
func (f *Formatter) Render(v any, buildTable func(t table.Writer)) error {
	switch f.format {
	case OutputFormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(f.out, string(data))
		return nil
	case OutputFormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %w", err)
		}
		fmt.Fprint(f.out, string(data))
		return nil
	case OutputFormatTable:
		if buildTable != nil {
			t := f.newTable()
			buildTable(t)
			t.Render()
			return nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return f.outputTable(string(data))
	default:
		return fmt.Errorf("unsupported output format: %s", f.format)
	}
}

// RenderJSONText writes a JSON document received as text.
func (f *Formatter) RenderJSONText(jsonData string) error {
	switch f.format {
	case OutputFormatJSON:
		fmt.Fprintln(f.out, jsonData)
		return nil
	case OutputFormatYAML:
		var data interface{}
		if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
		return f.Render(data, nil)
	case OutputFormatTable:
		return f.outputTable(jsonData)
	default:
		return fmt.Errorf("unsupported output format: %s", f.format)
	}
}

func (f *Formatter) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetStyle(table.StyleRounded)
	return t
}

// Header styles column titles.
func Header(cols ...string) table.Row {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = text.FgHiCyan.Sprint(strings.ToUpper(c))
	}
	return row
}

// outputTable formats data as a table
func (f *Formatter) outputTable(jsonData string) error {
	var data interface{}
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		fmt.Fprintln(f.out, jsonData) // Fallback to raw text if not JSON
		return nil
	}

	switch d := data.(type) {
	case map[string]interface{}:
		return f.formatKeyValueTable(d)
	case []interface{}:
		return f.formatTableFromArray(d)
	case nil:
		fmt.Fprintln(f.out, text.FgYellow.Sprint("Nothing to show"))
		return nil
	default:
		fmt.Fprintln(f.out, jsonData)
		return nil
	}
}

// formatTableFromArray creates a table from an array of objects
func (f *Formatter) formatTableFromArray(data []interface{}) error {
	if len(data) == 0 {
		fmt.Fprintln(f.out, text.FgYellow.Sprint("No items found"))
		return nil
	}

	firstObj, ok := data[0].(map[string]interface{})
	if !ok {
		for _, item := range data {
			fmt.Fprintln(f.out, item)
		}
		return nil
	}

	columns := orderColumns(firstObj)

	t := f.newTable()
	t.AppendHeader(Header(columns...))
	for _, item := range data {
		itemMap, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		row := make(table.Row, len(columns))
		for i, col := range columns {
			row[i] = formatCellValue(col, itemMap[col])
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

// formatKeyValueTable formats an object as key-value pairs
func (f *Formatter) formatKeyValueTable(data map[string]interface{}) error {
	t := f.newTable()
	t.AppendHeader(Header("property", "value"))

	for _, key := range orderColumns(data) {
		t.AppendRow(table.Row{
			text.FgYellow.Sprint(key),
			formatCellValue(key, data[key]),
		})
	}
	t.Render()
	return nil
}

// leadingColumns come first when present, in this order.
var leadingColumns = []string{"uri", "name", "text", "state", "browsePath", "configuration"}

func orderColumns(sample map[string]interface{}) []string {
	var columns []string
	used := make(map[string]bool)
	for _, col := range leadingColumns {
		if _, ok := sample[col]; ok {
			columns = append(columns, col)
			used[col] = true
		}
	}

	var rest []string
	for key := range sample {
		if !used[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

// formatCellValue formats individual cell values with appropriate styling
func formatCellValue(column string, value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return text.FgHiBlack.Sprint("-")
	case bool:
		if v {
			return text.FgGreen.Sprint("yes")
		}
		return text.FgRed.Sprint("no")
	case []interface{}:
		if len(v) == 0 {
			return text.FgHiBlack.Sprint("none")
		}
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(parts, "\n")
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %v", k, formatCellValue(k, v[k])))
		}
		return strings.Join(lines, "\n")
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	}

	strValue := fmt.Sprintf("%v", value)
	switch strings.ToLower(column) {
	case "state":
		return formatState(strValue)
	case "tooltip":
		return text.FgHiBlack.Sprint(strValue)
	default:
		return strValue
	}
}

// formatState formats the provider state
func formatState(state string) interface{} {
	switch strings.ToLower(state) {
	case "ready":
		return text.FgGreen.Sprint(state)
	case "uninitialized":
		return text.FgYellow.Sprint(state)
	default:
		return state
	}
}
