package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiroot/internal/config"
	"multiroot/internal/mcpserver"
	"multiroot/internal/provider"
	"multiroot/internal/registry"
	"multiroot/internal/selection"
	"multiroot/internal/state"
	"multiroot/internal/status"
	"multiroot/internal/workspace"
)

type fixture struct {
	configDir string
	root      string
	stateDir  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{configDir: t.TempDir(), root: t.TempDir(), stateDir: t.TempDir()}
	require.NoError(t, os.Mkdir(filepath.Join(f.root, "app"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(f.root, "lib"), 0755))

	cfg := fmt.Sprintf(`workspace:
  root: %s
state:
  dir: %s
multiRootConfig:
  folders:
    - name: app
      configurations:
        - name: debug
        - name: release
    - name: lib
      configurations:
        - name: release
    - name: tools
      configurations:
        - name: asan
`, f.root, f.stateDir)
	require.NoError(t, os.WriteFile(filepath.Join(f.configDir, "config.yaml"), []byte(cfg), 0644))
	return f
}

func resetFlags() {
	configPath = ""
	endpointOverride = ""
	selectLocal = false
	selectIndex = -1
	activeCopy = false
	activeLocal = false
	queryOutputFormat = "table"
	queryQuiet = false
	inspectOutputFormat = "table"
	statusWidth = 40
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSelectLocal(t *testing.T) {
	f := newFixture(t)

	out, err := runCommand(t, "select", "release", "--local", "--config-path", f.configDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Active configuration: release")

	store, err := state.NewStore(f.stateDir)
	require.NoError(t, err)
	name, ok := store.Get(f.root)
	require.True(t, ok)
	assert.Equal(t, "release", name)

	out, err = runCommand(t, "select", "release", "--local", "--config-path", f.configDir)
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")

	_, err = runCommand(t, "select", "nope", "--local", "--config-path", f.configDir)
	assert.ErrorIs(t, err, selection.ErrUnknownConfiguration)

	_, err = runCommand(t, "select", "--index", "9", "--local", "--config-path", f.configDir)
	assert.Error(t, err)
}

func TestSelectLocal_Picker(t *testing.T) {
	f := newFixture(t)

	var offered []selection.Item
	orig := newPicker
	newPicker = func(title string, active int) selection.Picker {
		assert.Equal(t, 0, active)
		return selection.PickerFunc(func(ctx context.Context, items []selection.Item) (selection.Item, bool, error) {
			offered = items
			return items[2], true, nil
		})
	}
	defer func() { newPicker = orig }()

	out, err := runCommand(t, "select", "--local", "--config-path", f.configDir)
	require.NoError(t, err)
	assert.Equal(t, []selection.Item{
		{Label: "debug", Index: 0},
		{Label: "release", Index: 1},
		{Label: "asan", Index: 2},
	}, offered)
	assert.Contains(t, out, "Active configuration: asan")
}

func TestSelectLocal_NoConfigurations(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.configDir, "config.yaml"), []byte(fmt.Sprintf(
		"workspace:\n  root: %s\nstate:\n  dir: %s\n", f.root, f.stateDir)), 0644))

	orig := newPicker
	newPicker = func(title string, active int) selection.Picker {
		t.Fatal("picker must not open without configurations")
		return nil
	}
	defer func() { newPicker = orig }()

	_, err := runCommand(t, "select", "--local", "--config-path", f.configDir)
	assert.ErrorIs(t, err, selection.ErrNoConfigurations)
}

func TestActiveLocal(t *testing.T) {
	f := newFixture(t)

	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	defer func() { writeClipboard = orig }()

	out, err := runCommand(t, "active", "--local", "--copy", "--config-path", f.configDir)
	require.NoError(t, err)
	assert.Equal(t, "debug\n", out)
	assert.Equal(t, "debug", copied)
}

func TestActiveLocal_NoConfigurations(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.configDir, "config.yaml"), []byte(fmt.Sprintf(
		"workspace:\n  root: %s\nstate:\n  dir: %s\n", f.root, f.stateDir)), 0644))

	out, err := runCommand(t, "active", "--local", "--config-path", f.configDir)
	require.NoError(t, err)
	assert.Equal(t, selection.NoActiveConfiguration+"\n", out)
}

func TestInspect(t *testing.T) {
	f := newFixture(t)

	out, err := runCommand(t, "inspect", "-o", "json", "--config-path", f.configDir)
	require.NoError(t, err)

	var report InspectReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, f.root, report.Root)
	assert.Equal(t, []string{"debug", "release", "asan"}, report.Names)
	assert.Equal(t, "debug", report.Active)
	assert.Equal(t, []string{"debug", "release"}, report.Folders["app"])
	assert.Equal(t, []string{"release"}, report.Folders["lib"])
	assert.Equal(t, []string{"tools"}, report.Unmatched)

	out, err = runCommand(t, "inspect", "--config-path", f.configDir)
	require.NoError(t, err)
	assert.Contains(t, out, "CONFIGURATION")
	assert.Contains(t, out, "asan")
	assert.Contains(t, strings.ToLower(out), "not in workspace")

	_, err = runCommand(t, "inspect", "-o", "xml", "--config-path", f.configDir)
	assert.Error(t, err)
}

func startTestServer(t *testing.T) (string, *selection.Controller) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "app"), 0755))

	ws, err := workspace.New(config.WorkspaceConfig{Root: root})
	require.NoError(t, err)

	document := func() *registry.Document {
		return &registry.Document{Folders: []registry.FolderSpec{
			{Name: "app", Configurations: []registry.NamedConfig{
				{Name: "debug", IncludePath: []string{"inc"}, Browse: &registry.BrowseConfig{Path: []string{"inc"}}},
				{Name: "release"},
			}},
		}}
	}
	ctrl := selection.New("")
	ctrl.Reload(document())

	indicator := status.NewIndicator()
	t.Cleanup(indicator.Attach(ctrl))

	s := mcpserver.New(mcpserver.Config{Transport: mcpserver.TransportStreamableHTTP, Host: "127.0.0.1"}, mcpserver.Deps{
		Controller: ctrl,
		Provider:   provider.New(ctrl, ws),
		Indicator:  indicator,
		Reload: func(context.Context) selection.Snapshot {
			return ctrl.Reload(document())
		},
	})
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { s.Stop(context.Background()) })
	return s.Endpoint(), ctrl
}

func TestRemoteCommands(t *testing.T) {
	endpoint, ctrl := startTestServer(t)

	out, err := runCommand(t, "--endpoint", endpoint, "active")
	require.NoError(t, err)
	assert.Equal(t, "debug\n", out)

	out, err = runCommand(t, "--endpoint", endpoint, "list", "-o", "json")
	require.NoError(t, err)
	var list mcpserver.ConfigurationList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, []string{"debug", "release"}, list.Names)

	out, err = runCommand(t, "--endpoint", endpoint, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")

	out, err = runCommand(t, "--endpoint", endpoint, "select", "release")
	require.NoError(t, err)
	assert.Contains(t, out, "Active configuration: release")
	assert.Equal(t, "release", ctrl.StatusText())

	out, err = runCommand(t, "--endpoint", endpoint, "select", "--index", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Active configuration: debug")

	_, err = runCommand(t, "--endpoint", endpoint, "select", "nope")
	assert.Error(t, err)

	out, err = runCommand(t, "--endpoint", endpoint, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "debug")

	out, err = runCommand(t, "--endpoint", endpoint, "reload")
	require.NoError(t, err)
	assert.Contains(t, out, "Reloaded 2 configurations, active: debug")

	out, err = runCommand(t, "--endpoint", endpoint, "browse", "app", "-o", "json")
	require.NoError(t, err)
	var browse provider.WorkspaceBrowseConfiguration
	require.NoError(t, json.Unmarshal([]byte(out), &browse))
	assert.Equal(t, []string{"inc"}, browse.BrowsePath)
}

func TestRemoteSelect_Picker(t *testing.T) {
	endpoint, ctrl := startTestServer(t)

	orig := newPicker
	newPicker = func(title string, active int) selection.Picker {
		return selection.PickerFunc(func(ctx context.Context, items []selection.Item) (selection.Item, bool, error) {
			return selection.Item{}, false, nil
		})
	}
	defer func() { newPicker = orig }()

	out, err := runCommand(t, "--endpoint", endpoint, "select")
	require.NoError(t, err)
	assert.Empty(t, out, "a cancelled pick changes nothing")
	assert.Equal(t, "debug", ctrl.StatusText())
}

func TestRemoteSelect_PickerNameRemovedByReload(t *testing.T) {
	endpoint, ctrl := startTestServer(t)

	orig := newPicker
	newPicker = func(title string, active int) selection.Picker {
		return selection.PickerFunc(func(ctx context.Context, items []selection.Item) (selection.Item, bool, error) {
			ctrl.Reload(&registry.Document{Folders: []registry.FolderSpec{
				{Name: "app", Configurations: []registry.NamedConfig{{Name: "debug"}}},
			}})
			return items[1], true, nil
		})
	}
	defer func() { newPicker = orig }()

	out, err := runCommand(t, "--endpoint", endpoint, "select")
	require.NoError(t, err)
	assert.Contains(t, out, "Active configuration unchanged: debug")
	assert.Equal(t, "debug", ctrl.StatusText())
}

func TestRemoteCommands_ServerDown(t *testing.T) {
	_, err := runCommand(t, "--endpoint", "http://127.0.0.1:1/mcp", "list")
	assert.Error(t, err)
}
