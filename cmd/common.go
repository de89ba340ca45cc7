package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"multiroot/internal/cli"
	"multiroot/internal/config"
	"multiroot/internal/selection"
	"multiroot/internal/source"
	"multiroot/internal/state"
	"multiroot/internal/workspace"
)

var (
	configPath       string
	endpointOverride string
)

// loadConfig loads the configuration honouring --config-path.
func loadConfig() (config.MultirootConfig, error) {
	if configPath != "" {
		return config.LoadConfigFromPath(configPath)
	}
	return config.LoadConfig()
}

// serverEndpoint returns the URL of the running server.
func serverEndpoint() (string, error) {
	if endpointOverride != "" {
		return endpointOverride, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cli.Endpoint(cfg.Server), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// connectExecutor creates an executor for the running server and connects it.
func connectExecutor(cmd *cobra.Command, format string, quiet bool) (*cli.ToolExecutor, error) {
	outputFormat, err := cli.ParseOutputFormat(format)
	if err != nil {
		return nil, err
	}
	endpoint, err := serverEndpoint()
	if err != nil {
		return nil, err
	}

	executor, err := cli.NewToolExecutor(endpoint, cli.ExecutorOptions{
		Format: outputFormat,
		Quiet:  quiet,
		Output: cmd.OutOrStdout(),
	})
	if err != nil {
		return nil, err
	}
	if err := executor.Connect(commandContext(cmd)); err != nil {
		return nil, fmt.Errorf("failed to connect to multiroot server: %w", err)
	}
	return executor, nil
}

// localSession is an in-process controller over the configured document,
// persisting selections to the state store like the server does.
type localSession struct {
	workspace  *workspace.Workspace
	store      *state.Store
	controller *selection.Controller
	stop       func()
}

func openLocal() (*localSession, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	ws, err := workspace.New(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	store, err := state.NewStore(cfg.State.Dir)
	if err != nil {
		return nil, err
	}

	remembered, _ := store.Get(ws.Root())
	ctrl := selection.New(remembered)
	ctrl.Reload(source.Resolve(cfg.MultiRootConfig, ws.Root()).Load())

	return &localSession{
		workspace:  ws,
		store:      store,
		controller: ctrl,
		stop:       store.Track(ctrl, ws.Root()),
	}, nil
}

func (l *localSession) Close() {
	l.stop()
}
