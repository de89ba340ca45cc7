// Package state persists the active configuration name per workspace so it
// survives restarts.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"multiroot/internal/selection"
	"multiroot/pkg/logging"
)

// StateFile is the file name inside the state directory.
const StateFile = "state.yaml"

// For mocking in tests
var now = time.Now

// WorkspaceState is what is remembered about one workspace.
type WorkspaceState struct {
	CurrentConfig string    `yaml:"currentConfig,omitempty"`
	UpdatedAt     time.Time `yaml:"updatedAt"`
}

type stateDocument struct {
	Workspaces map[string]WorkspaceState `yaml:"workspaces"`
}

// Store is the on-disk map of workspace root to WorkspaceState.
type Store struct {
	path string

	mu         sync.RWMutex
	workspaces map[string]WorkspaceState
}

// NewStore opens the store in dir. A missing file is an empty store; an
// unreadable one is logged and replaced on the next write.
func NewStore(dir string) (*Store, error) {
	s := &Store{
		path:       filepath.Join(dir, StateFile),
		workspaces: make(map[string]WorkspaceState),
	}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var doc stateDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		logging.Warn("State", "Ignoring unreadable state file %s: %v", s.path, err)
		return s, nil
	}
	for key, ws := range doc.Workspaces {
		s.workspaces[key] = ws
	}
	logging.Debug("State", "Loaded state for %d workspaces from %s", len(s.workspaces), s.path)
	return s, nil
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the remembered configuration name for a workspace. ok is
// false when nothing, or an empty name, is remembered.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[key]
	if !ok || ws.CurrentConfig == "" {
		return "", false
	}
	return ws.CurrentConfig, true
}

// Keys returns the workspace keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.workspaces))
	for k := range s.workspaces {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set remembers name for a workspace and writes the file. Setting the value
// already stored does not touch the disk.
func (s *Store) Set(key, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws, ok := s.workspaces[key]; ok && ws.CurrentConfig == name {
		return nil
	}
	s.workspaces[key] = WorkspaceState{CurrentConfig: name, UpdatedAt: now().UTC()}

	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	data, err := yaml.Marshal(stateDocument{Workspaces: s.workspaces})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	// Write atomically
	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempFile, s.path)
}

// Track persists the controller's active name for key after every reload
// and selection change. The returned function stops tracking.
func (s *Store) Track(ctrl *selection.Controller, key string) func() {
	return ctrl.Subscribe(func(evt selection.Event) {
		name := ""
		if evt.Snapshot.HasActive {
			name = evt.Snapshot.Name
		}
		if err := s.Set(key, name); err != nil {
			logging.Error("State", err, "Failed to persist active configuration for %s", key)
		}
	})
}
