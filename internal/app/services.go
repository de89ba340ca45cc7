package app

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"multiroot/internal/config"
	"multiroot/internal/mcpserver"
	"multiroot/internal/provider"
	"multiroot/internal/selection"
	"multiroot/internal/source"
	"multiroot/internal/state"
	"multiroot/internal/status"
	"multiroot/internal/watch"
	"multiroot/internal/workspace"
	"multiroot/pkg/logging"
)

const stopTimeout = 5 * time.Second

// Services holds all the initialized components
type Services struct {
	Workspace  *workspace.Workspace
	Store      *state.Store
	Controller *selection.Controller
	Indicator  *status.Indicator
	Provider   *provider.Provider
	Watcher    *watch.Manager
	Server     *mcpserver.Server

	// loadConfig re-reads the configuration files on settings changes.
	loadConfig func() (config.MultirootConfig, error)

	mu       sync.Mutex
	cfg      config.MultirootConfig
	settings *watch.FileWatcher

	reloadMu  sync.Mutex
	closed    bool
	cleanup   []func()
	closeOnce sync.Once
}

// InitializeServices creates the components and wires their subscriptions.
// Nothing is loaded or served until Start and Reload.
func InitializeServices(cfg *Config) (*Services, error) {
	mc := *cfg.MultirootConfig
	if cfg.Transport != "" {
		mc.Server.Transport = cfg.Transport
	}

	ws, err := workspace.New(mc.Workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to set up workspace: %w", err)
	}

	store, err := state.NewStore(mc.State.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	remembered, ok := store.Get(ws.Root())
	if ok {
		logging.Info("Services", "Restoring configuration %q for %s", remembered, ws.Root())
	}

	ctrl := selection.New(remembered)
	indicator := status.NewIndicator()

	s := &Services{
		Workspace:  ws,
		Store:      store,
		Controller: ctrl,
		Indicator:  indicator,
		Provider:   provider.New(ctrl, ws),
		loadConfig: cfg.loadConfig,
		cfg:        mc,
	}
	s.Watcher = watch.NewManager(mc.Watch.Debounce, func() {
		s.Reload(context.Background())
	})
	s.cleanup = append(s.cleanup,
		store.Track(ctrl, ws.Root()),
		indicator.Attach(ctrl),
	)

	s.Server = mcpserver.New(mcpserver.Config{
		Name:         "multiroot",
		Version:      cfg.Version,
		Transport:    mc.Server.Transport,
		Host:         mc.Server.Host,
		Port:         mc.Server.Port,
		EndpointPath: mc.Server.EndpointPath,
	}, mcpserver.Deps{
		Controller: ctrl,
		Provider:   s.Provider,
		Indicator:  indicator,
		Reload:     s.Reload,
	})

	return s, nil
}

// Start starts the host API and, when enabled, the settings watcher. A
// host API that cannot start is returned as an error.
func (s *Services) Start(ctx context.Context, settingsPath string) error {
	if err := s.Server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start host API: %w", err)
	}

	s.mu.Lock()
	watchSettings := s.cfg.Watch.WatchSettings()
	debounce := s.cfg.Watch.Debounce
	s.mu.Unlock()

	if !watchSettings || settingsPath == "" {
		return nil
	}

	fw, err := watch.NewFileWatcher(settingsPath, debounce, s.ApplySettings)
	if err == nil {
		err = fw.Start()
		if err != nil {
			_ = fw.Close()
		}
	}
	if err != nil {
		logging.Warn("Services", "Settings changes in %s will not be picked up: %v", settingsPath, err)
		return nil
	}

	s.mu.Lock()
	s.settings = fw
	s.mu.Unlock()
	return nil
}

// Reload resolves the document source from the current settings, rebuilds
// the controller and points the file watcher at the source's file. After
// Close it only reports the current snapshot.
func (s *Services) Reload(ctx context.Context) selection.Snapshot {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	if s.closed {
		logging.Debug("Services", "Ignoring reload after close")
		return s.Controller.Snapshot()
	}

	s.mu.Lock()
	src := source.Resolve(s.cfg.MultiRootConfig, s.Workspace.Root())
	s.mu.Unlock()

	logging.Debug("Services", "Reloading configurations from %s", src.Describe())
	snap := s.Controller.Reload(src.Load())

	path, _ := src.WatchPath()
	if err := s.Watcher.Ensure(path); err != nil {
		logging.Warn("Services", "Could not watch %s: %v", path, err)
	}
	return snap
}

// ApplySettings re-reads the configuration files and reloads when the
// document settings changed.
func (s *Services) ApplySettings() {
	if s.loadConfig == nil || s.isClosed() {
		return
	}
	next, err := s.loadConfig()
	if err != nil {
		logging.Warn("Services", "Ignoring unreadable settings: %v", err)
		return
	}

	s.mu.Lock()
	prev := s.cfg
	docChanged := !config.DocumentSettingsEqual(prev, next)
	wsChanged := !reflect.DeepEqual(prev.Workspace, next.Workspace)
	if docChanged {
		s.cfg.MultiRootConfig = next.MultiRootConfig
	}
	s.mu.Unlock()

	if wsChanged {
		if next.Workspace.Root != s.Workspace.Root() {
			logging.Warn("Services", "Workspace root changed to %s; restart to switch workspaces", next.Workspace.Root)
		} else if err := s.Workspace.Update(next.Workspace); err != nil {
			logging.Warn("Services", "Failed to update workspace folders: %v", err)
		}
	}

	if !docChanged {
		logging.Debug("Services", "Settings changed outside multiRootConfig, not reloading")
		return
	}
	logging.Info("Services", "multiRootConfig settings changed, reloading")
	s.Reload(context.Background())
}

// Close stops the host API, the watchers and all subscriptions.
func (s *Services) Close() {
	s.closeOnce.Do(func() {
		// Reloads already running finish first; later ones are no-ops.
		s.reloadMu.Lock()
		s.closed = true
		s.reloadMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := s.Server.Stop(ctx); err != nil {
			logging.Warn("Services", "Host API did not stop cleanly: %v", err)
		}

		s.mu.Lock()
		settings := s.settings
		s.settings = nil
		s.mu.Unlock()
		if settings != nil {
			_ = settings.Close()
		}
		_ = s.Watcher.Close()

		for _, fn := range s.cleanup {
			fn()
		}
	})
}

func (s *Services) isClosed() bool {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	return s.closed
}
