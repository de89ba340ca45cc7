package cli

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiroot/internal/config"
	"multiroot/internal/mcpserver"
	"multiroot/internal/provider"
	"multiroot/internal/registry"
	"multiroot/internal/selection"
	"multiroot/internal/workspace"
)

type noFolders struct{}

func (noFolders) FolderFor(string) (workspace.Folder, bool) { return workspace.Folder{}, false }

func (noFolders) FolderByNameOrURI(string) (workspace.Folder, bool) {
	return workspace.Folder{}, false
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ServerConfig
		want string
	}{
		{
			name: "defaults",
			cfg:  config.ServerConfig{Host: "localhost", Port: 8090, EndpointPath: "/mcp"},
			want: "http://localhost:8090/mcp",
		},
		{
			name: "path without slash",
			cfg:  config.ServerConfig{Host: "127.0.0.1", Port: 9000, EndpointPath: "rpc"},
			want: "http://127.0.0.1:9000/rpc",
		},
		{
			name: "ipv6 host",
			cfg:  config.ServerConfig{Host: "::1", Port: 8090, EndpointPath: "/mcp"},
			want: "http://[::1]:8090/mcp",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Endpoint(tt.cfg))
		})
	}
}

func TestCheckServerRunning(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	assert.NoError(t, CheckServerRunning("http://"+addr+"/mcp"))

	ln.Close()
	origTimeout := dialTimeout
	dialTimeout = 200 * time.Millisecond
	defer func() { dialTimeout = origTimeout }()

	err = CheckServerRunning("http://" + addr + "/mcp")
	assert.ErrorIs(t, err, ErrServerNotRunning)
	assert.Contains(t, err.Error(), "multiroot serve")

	assert.Error(t, CheckServerRunning("://bad"))
}

func TestNewCLIClient(t *testing.T) {
	c := NewCLIClient(config.ServerConfig{Host: "localhost", Port: 8090, EndpointPath: "/mcp"})
	assert.Equal(t, "http://localhost:8090/mcp", c.Endpoint())
	assert.Equal(t, 30*time.Second, c.timeout)
}

func TestCLIClient_NotConnected(t *testing.T) {
	c := NewCLIClientWithEndpoint("http://localhost:8090/mcp")

	_, err := c.CallTool(context.Background(), mcpserver.ToolStatus, nil)
	assert.Error(t, err)
	assert.NoError(t, c.Close(), "closing an unconnected client is harmless")
}

func startServer(t *testing.T) (string, *selection.Controller) {
	t.Helper()
	ctrl := selection.New("")
	ctrl.Reload(&registry.Document{Folders: []registry.FolderSpec{
		{Name: "app", Configurations: []registry.NamedConfig{{Name: "debug"}, {Name: "release"}}},
	}})

	s := mcpserver.New(mcpserver.Config{Transport: mcpserver.TransportStreamableHTTP, Host: "127.0.0.1"}, mcpserver.Deps{
		Controller: ctrl,
		Provider:   provider.New(ctrl, noFolders{}),
	})
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { s.Stop(context.Background()) })
	return s.Endpoint(), ctrl
}

func TestCLIClient_RoundTrip(t *testing.T) {
	endpoint, ctrl := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := NewCLIClientWithEndpoint(endpoint)
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	var list mcpserver.ConfigurationList
	require.NoError(t, c.CallToolInto(ctx, mcpserver.ToolListConfigurations, nil, &list))
	assert.Equal(t, []string{"debug", "release"}, list.Names)

	name, err := c.CallToolSimple(ctx, mcpserver.ToolActiveConfigurationName, nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", name)

	_, err = c.CallToolSimple(ctx, mcpserver.ToolSelectConfiguration, map[string]interface{}{"name": "nope"})
	assert.Error(t, err)
	assert.Equal(t, "debug", ctrl.StatusText())
}

func TestToolExecutor(t *testing.T) {
	endpoint, ctrl := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	exec, err := NewToolExecutor(endpoint, ExecutorOptions{Format: OutputFormatJSON, Output: &out})
	require.NoError(t, err)
	require.NoError(t, exec.Connect(ctx))
	defer exec.Close()

	require.NoError(t, exec.Execute(ctx, mcpserver.ToolSelectConfiguration, map[string]interface{}{"name": "release"}))
	assert.Contains(t, out.String(), `"changed": true`)
	assert.Equal(t, "release", ctrl.StatusText())

	assert.Error(t, exec.Execute(ctx, mcpserver.ToolSelectConfiguration, map[string]interface{}{"name": "nope"}))
}

func TestNewToolExecutor_ServerDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewToolExecutor("http://"+addr+"/mcp", ExecutorOptions{})
	assert.ErrorIs(t, err, ErrServerNotRunning)
}
