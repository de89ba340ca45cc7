// Package source resolves where the configuration document comes from and
// loads it.
//
// A document is declared either inline in the multiRootConfig settings or in
// a separate JSONC file named by multiRootConfig.file. The file form may be
// edited independently of the settings, so it is also the path the watcher
// follows.
package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"multiroot/internal/config"
	"multiroot/internal/registry"
	"multiroot/pkg/logging"
)

const (
	// FoldersKey is the key holding the folder list in a document file.
	FoldersKey = "multiRootCppConfig.folders"
	// shortFoldersKey is accepted when FoldersKey is absent.
	shortFoldersKey = "folders"
)

// Source is where the configuration document is read from. It is either a
// Settings or a File.
type Source interface {
	// Load returns the document. It never fails: problems are logged and
	// an empty document is returned.
	Load() *registry.Document
	// WatchPath returns the path to watch for changes, if any.
	WatchPath() (string, bool)
	// Describe returns a short human readable description.
	Describe() string

	isSource()
}

// Settings is a document declared inline in the settings namespace.
type Settings struct {
	Folders []registry.FolderSpec
}

// File is a document stored in a JSONC file. Fallback is used when the file
// parses but declares no folder list.
type File struct {
	Path     string
	Fallback []registry.FolderSpec
}

func (Settings) isSource() {}
func (File) isSource()     {}

// Resolve picks the source for the given settings. A relative file path is
// resolved against root.
func Resolve(settings config.DocumentSettings, root string) Source {
	if settings.File == "" {
		return Settings{Folders: settings.Folders}
	}
	path := settings.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return File{Path: filepath.Clean(path), Fallback: settings.Folders}
}

func (s Settings) Load() *registry.Document {
	return &registry.Document{Folders: s.Folders}
}

func (s Settings) WatchPath() (string, bool) {
	return "", false
}

func (s Settings) Describe() string {
	return fmt.Sprintf("settings (%d folders)", len(s.Folders))
}

func (f File) Load() *registry.Document {
	folders, found, err := ReadFolders(f.Path)
	if err != nil {
		logging.Warn("Source", "Failed to load configuration file %s: %v", f.Path, err)
		return &registry.Document{}
	}
	if !found {
		logging.Debug("Source", "No folder list in %s, using settings", f.Path)
		return &registry.Document{Folders: f.Fallback}
	}
	return &registry.Document{Folders: folders}
}

func (f File) WatchPath() (string, bool) {
	return f.Path, true
}

func (f File) Describe() string {
	return "file " + f.Path
}

// ReadFolders reads a JSONC document file and returns its folder list.
// found is false when the file holds no list under FoldersKey or "folders".
func ReadFolders(path string) (folders []registry.FolderSpec, found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseFolders(data)
}

// ParseFolders strips comments and trailing commas from data and extracts
// the folder list.
func ParseFolders(data []byte) ([]registry.FolderSpec, bool, error) {
	stripped := jsonc.ToJSON(data)

	var top map[string]json.RawMessage
	if err := json.Unmarshal(stripped, &top); err != nil {
		return nil, false, fmt.Errorf("parsing document: %w", err)
	}

	raw, ok := top[FoldersKey]
	if !ok {
		raw, ok = top[shortFoldersKey]
	}
	if !ok {
		return nil, false, nil
	}

	var folders []registry.FolderSpec
	if err := json.Unmarshal(raw, &folders); err != nil {
		return nil, false, fmt.Errorf("parsing %s: %w", FoldersKey, err)
	}
	if folders == nil {
		return nil, false, nil
	}
	return folders, true, nil
}
