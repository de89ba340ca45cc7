package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"multiroot/internal/selection"
	"multiroot/pkg/logging"
)

// Tool names.
const (
	ToolCanProvideConfiguration          = "multiroot_can_provide_configuration"
	ToolProvideConfigurations            = "multiroot_provide_configurations"
	ToolProvideFolderBrowseConfiguration = "multiroot_provide_folder_browse_configuration"
	ToolListConfigurations               = "multiroot_list_configurations"
	ToolActiveConfigurationName          = "multiroot_active_configuration_name"
	ToolSelectConfiguration              = "multiroot_select_configuration"
	ToolReload                           = "multiroot_reload"
	ToolStatus                           = "multiroot_status"
)

// ConfigurationList is the result of ToolListConfigurations.
type ConfigurationList struct {
	Names      []string `json:"names" yaml:"names"`
	Folders    []string `json:"folders" yaml:"folders"`
	Active     int      `json:"active" yaml:"active"`
	ActiveName string   `json:"activeName" yaml:"activeName"`
	HasActive  bool     `json:"hasActive" yaml:"hasActive"`
}

// SelectResult is the result of ToolSelectConfiguration.
type SelectResult struct {
	Changed    bool   `json:"changed" yaml:"changed"`
	ActiveName string `json:"activeName" yaml:"activeName"`
}

// StatusResult is the result of ToolStatus.
type StatusResult struct {
	State          string `json:"state" yaml:"state"`
	Text           string `json:"text" yaml:"text"`
	Tooltip        string `json:"tooltip" yaml:"tooltip"`
	Visible        bool   `json:"visible" yaml:"visible"`
	Command        string `json:"command" yaml:"command"`
	Configurations int    `json:"configurations" yaml:"configurations"`
	Folders        int    `json:"folders" yaml:"folders"`
}

// CanProvideResult is the result of ToolCanProvideConfiguration.
type CanProvideResult struct {
	URI        string `json:"uri" yaml:"uri"`
	CanProvide bool   `json:"canProvide" yaml:"canProvide"`
}

// ListFromSnapshot converts a controller snapshot.
func ListFromSnapshot(snap selection.Snapshot) ConfigurationList {
	names := snap.Names
	if names == nil {
		names = []string{}
	}
	folders := snap.Folders
	if folders == nil {
		folders = []string{}
	}
	return ConfigurationList{
		Names:      names,
		Folders:    folders,
		Active:     snap.Active,
		ActiveName: snap.StatusText(),
		HasActive:  snap.HasActive,
	}
}

func (s *Server) serverTools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool(ToolCanProvideConfiguration,
				mcp.WithDescription("Report whether a configuration can be provided for a file"),
				mcp.WithString("uri",
					mcp.Required(),
					mcp.Description("File URI or path"),
				),
			),
			Handler: s.handleCanProvideConfiguration,
		},
		{
			Tool: mcp.NewTool(ToolProvideConfigurations,
				mcp.WithDescription("Return the active configuration for each file; files without one are omitted"),
				mcp.WithArray("uris",
					mcp.Required(),
					mcp.Description("File URIs or paths"),
					mcp.Items(map[string]any{"type": "string"}),
				),
			),
			Handler: s.handleProvideConfigurations,
		},
		{
			Tool: mcp.NewTool(ToolProvideFolderBrowseConfiguration,
				mcp.WithDescription("Return the browse configuration of the folder owning a URI, or null"),
				mcp.WithString("uri",
					mcp.Required(),
					mcp.Description("Folder or file URI or path"),
				),
			),
			Handler: s.handleProvideFolderBrowseConfiguration,
		},
		{
			Tool: mcp.NewTool(ToolListConfigurations,
				mcp.WithDescription("List the configuration names and the active one"),
			),
			Handler: s.handleListConfigurations,
		},
		{
			Tool: mcp.NewTool(ToolActiveConfigurationName,
				mcp.WithDescription("Return the active configuration name"),
			),
			Handler: s.handleActiveConfigurationName,
		},
		{
			Tool: mcp.NewTool(ToolSelectConfiguration,
				mcp.WithDescription("Make a configuration active, by name or by index"),
				mcp.WithString("name",
					mcp.Description("Configuration name"),
				),
				mcp.WithNumber("index",
					mcp.Description("Configuration index as listed by "+ToolListConfigurations),
				),
				mcp.WithBoolean("ifExists",
					mcp.Description("Leave the selection unchanged instead of failing when name is unknown"),
				),
			),
			Handler: s.handleSelectConfiguration,
		},
		{
			Tool: mcp.NewTool(ToolReload,
				mcp.WithDescription("Re-read the configuration document"),
			),
			Handler: s.handleReload,
		},
		{
			Tool: mcp.NewTool(ToolStatus,
				mcp.WithDescription("Return the status indicator and provider state"),
			),
			Handler: s.handleStatus,
		},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	resultJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(resultJSON)),
		},
	}, nil
}

func (s *Server) handleCanProvideConfiguration(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := req.RequireString("uri")
	if err != nil {
		return mcp.NewToolResultError("uri is required"), nil
	}
	return jsonResult(CanProvideResult{
		URI:        uri,
		CanProvide: s.deps.Provider.CanProvideConfiguration(uri),
	})
}

func (s *Server) handleProvideConfigurations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uris, err := stringSlice(req.GetArguments(), "uris")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	items, err := s.deps.Provider.ProvideConfigurations(ctx, uris)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to provide configurations: %v", err)), nil
	}
	return jsonResult(items)
}

func (s *Server) handleProvideFolderBrowseConfiguration(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := req.RequireString("uri")
	if err != nil {
		return mcp.NewToolResultError("uri is required"), nil
	}

	browse, ok := s.deps.Provider.ProvideFolderBrowseConfiguration(uri)
	if !ok {
		return jsonResult(nil)
	}
	return jsonResult(browse)
}

func (s *Server) handleListConfigurations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(ListFromSnapshot(s.deps.Controller.Snapshot()))
}

func (s *Server) handleActiveConfigurationName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.deps.Controller.StatusText()), nil
}

func (s *Server) handleSelectConfiguration(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	if name, ok := args["name"].(string); ok && name != "" {
		changed, err := s.deps.Controller.SelectName(name)
		if errors.Is(err, selection.ErrUnknownConfiguration) {
			if ifExists, _ := args["ifExists"].(bool); ifExists {
				logging.Debug("HostAPI", "Ignoring selection of %q, no longer present", name)
				return jsonResult(SelectResult{Changed: false, ActiveName: s.deps.Controller.StatusText()})
			}
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to select configuration: %v", err)), nil
		}
		return jsonResult(SelectResult{Changed: changed, ActiveName: s.deps.Controller.StatusText()})
	}

	raw, ok := args["index"]
	if !ok {
		return mcp.NewToolResultError("name or index is required"), nil
	}
	index, ok := raw.(float64)
	if !ok || index != float64(int(index)) {
		return mcp.NewToolResultError("index must be an integer"), nil
	}

	i := int(index)
	if i < 0 || i >= len(s.deps.Controller.Names()) {
		return mcp.NewToolResultError(fmt.Sprintf("index %d out of range", i)), nil
	}
	changed := s.deps.Controller.SelectIndex(i)
	return jsonResult(SelectResult{Changed: changed, ActiveName: s.deps.Controller.StatusText()})
}

func (s *Server) handleReload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.Reload == nil {
		return mcp.NewToolResultError("reload is not available"), nil
	}
	return jsonResult(ListFromSnapshot(s.deps.Reload(ctx)))
}

func (s *Server) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.deps.Controller.Snapshot()
	result := StatusResult{
		State:          s.deps.Controller.State().String(),
		Configurations: len(snap.Names),
		Folders:        len(snap.Folders),
	}
	if s.deps.Indicator != nil {
		item := s.deps.Indicator.Item()
		result.Text = item.Text
		result.Tooltip = item.Tooltip
		result.Visible = item.Visible
		result.Command = item.Command
	}
	return jsonResult(result)
}

// stringSlice reads a required array-of-strings argument.
func stringSlice(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("%s is required", key)
	}

	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", key, i)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
}
