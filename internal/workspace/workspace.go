// Package workspace maps files to the workspace folders that contain them.
package workspace

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"multiroot/internal/config"
	"multiroot/pkg/logging"
)

const (
	lookupExpiration = time.Minute
	lookupCleanup    = 5 * time.Minute
)

// Folder is a named directory of the workspace.
type Folder struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

type lookup struct {
	folder Folder
	found  bool
}

// Workspace is the set of folders configurations are provided for.
type Workspace struct {
	mu      sync.RWMutex
	root    string
	folders []Folder

	lookups *cache.Cache
}

// New builds a workspace from configuration. Folder paths are resolved
// against the root. When no folders are configured, every visible
// sub-directory of the root becomes a folder named after its base name.
func New(cfg config.WorkspaceConfig) (*Workspace, error) {
	w := &Workspace{
		lookups: cache.New(lookupExpiration, lookupCleanup),
	}
	if err := w.Update(cfg); err != nil {
		return nil, err
	}
	return w, nil
}

// Update replaces the folder set and forgets every cached lookup.
func (w *Workspace) Update(cfg config.WorkspaceConfig) error {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return fmt.Errorf("resolving workspace root %s: %w", cfg.Root, err)
	}

	var folders []Folder
	if len(cfg.Folders) > 0 {
		for _, def := range cfg.Folders {
			path := def.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}
			folders = append(folders, Folder{Name: def.Name, Path: filepath.Clean(path)})
		}
	} else {
		folders, err = discoverFolders(root)
		if err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.root = root
	w.folders = folders
	w.mu.Unlock()
	w.lookups.Flush()

	logging.Debug("Workspace", "Workspace %s has %d folders", root, len(folders))
	return nil
}

func discoverFolders(root string) ([]Folder, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("listing workspace root %s: %w", root, err)
	}

	var folders []Folder
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		folders = append(folders, Folder{Name: entry.Name(), Path: filepath.Join(root, entry.Name())})
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return folders, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.root
}

// Folders returns the workspace folders.
func (w *Workspace) Folders() []Folder {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Folder, len(w.folders))
	copy(out, w.folders)
	return out
}

// Folder returns the folder with the given name.
func (w *Workspace) Folder(name string) (Folder, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, f := range w.folders {
		if f.Name == name {
			return f, true
		}
	}
	return Folder{}, false
}

// FolderFor returns the folder containing the file identified by uri, which
// is either a file:// URI or a path. Nested folders resolve to the innermost.
func (w *Workspace) FolderFor(uri string) (Folder, bool) {
	path, err := w.resolve(uri)
	if err != nil {
		logging.Debug("Workspace", "Cannot resolve %q: %v", uri, err)
		return Folder{}, false
	}

	if cached, ok := w.lookups.Get(path); ok {
		l := cached.(lookup)
		return l.folder, l.found
	}

	w.mu.RLock()
	var best Folder
	found := false
	for _, f := range w.folders {
		if !contains(f.Path, path) {
			continue
		}
		if !found || len(f.Path) > len(best.Path) {
			best = f
			found = true
		}
	}
	w.mu.RUnlock()

	w.lookups.Set(path, lookup{folder: best, found: found}, cache.DefaultExpiration)
	return best, found
}

// FolderByNameOrURI accepts either a folder name or anything FolderFor
// accepts. Names take precedence.
func (w *Workspace) FolderByNameOrURI(s string) (Folder, bool) {
	if f, ok := w.Folder(s); ok {
		return f, true
	}
	return w.FolderFor(s)
}

func (w *Workspace) resolve(uri string) (string, error) {
	path, err := PathFromURI(uri)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.Root(), path)
	}
	return filepath.Clean(path), nil
}

// PathFromURI converts a file:// URI to a local path. Anything without a
// scheme is returned as a path unchanged.
func PathFromURI(uri string) (string, error) {
	if uri == "" {
		return "", fmt.Errorf("empty uri")
	}
	if !strings.HasPrefix(uri, "file:") {
		return uri, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parsing uri %q: %w", uri, err)
	}
	path := u.Path
	// file:///C:/src/x.cpp
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	if path == "" {
		return "", fmt.Errorf("uri %q has no path", uri)
	}
	return filepath.FromSlash(path), nil
}

// contains reports whether path is dir or lies beneath it.
func contains(dir, path string) bool {
	if path == dir {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
