package watch

import (
	"path/filepath"
	"sync"
	"time"

	"multiroot/pkg/logging"
)

// Manager keeps at most one FileWatcher alive and moves it when the watched
// path changes.
type Manager struct {
	debounce time.Duration
	onChange func()

	mu      sync.Mutex
	current *FileWatcher
}

// NewManager creates a Manager whose watchers call onChange.
func NewManager(debounce time.Duration, onChange func()) *Manager {
	return &Manager{debounce: debounce, onChange: onChange}
}

// Ensure makes path the watched file. The existing watcher is kept when it
// already follows path. An empty path stops watching.
func (m *Manager) Ensure(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if path != "" {
		abs, err := filepath.Abs(path)
		if err == nil {
			path = filepath.Clean(abs)
		}
	}

	if m.current != nil && m.current.Path() == path {
		return nil
	}

	if m.current != nil {
		if err := m.current.Close(); err != nil {
			logging.Warn("Watch", "Failed to close watcher for %s: %v", m.current.Path(), err)
		}
		m.current = nil
	}

	if path == "" {
		return nil
	}

	fw, err := NewFileWatcher(path, m.debounce, m.onChange)
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		_ = fw.Close()
		return err
	}
	m.current = fw
	return nil
}

// Path returns the watched path, or "" when nothing is watched.
func (m *Manager) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.Path()
}

// Close stops the current watcher.
func (m *Manager) Close() error {
	return m.Ensure("")
}
