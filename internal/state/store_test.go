package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiroot/internal/registry"
	"multiroot/internal/selection"
)

func fixedNow(t *testing.T, at time.Time) {
	t.Helper()
	original := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = original })
}

func TestStore_SetAndReopen(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixedNow(t, at)

	s, err := NewStore(dir)
	require.NoError(t, err)

	_, ok := s.Get("/ws")
	assert.False(t, ok)

	require.NoError(t, s.Set("/ws", "debug"))
	require.NoError(t, s.Set("/other", "release"))

	reopened, err := NewStore(dir)
	require.NoError(t, err)

	name, ok := reopened.Get("/ws")
	require.True(t, ok)
	assert.Equal(t, "debug", name)
	assert.Equal(t, []string{"/other", "/ws"}, reopened.Keys())
	assert.True(t, at.Equal(reopened.workspaces["/ws"].UpdatedAt))

	_, err = os.Stat(filepath.Join(dir, StateFile+".tmp"))
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")
}

func TestStore_EmptyNameIsNotRemembered(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set("/ws", "debug"))
	require.NoError(t, s.Set("/ws", ""))

	_, ok := s.Get("/ws")
	assert.False(t, ok)
}

func TestStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	s, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set("/ws", "a"))
	assert.FileExists(t, filepath.Join(dir, StateFile))
}

func TestStore_UnchangedSetSkipsWrite(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set("/ws", "a"))
	require.NoError(t, os.Remove(s.Path()))

	require.NoError(t, s.Set("/ws", "a"))
	assert.NoFileExists(t, s.Path(), "unchanged value must not be written")

	require.NoError(t, s.Set("/ws", "b"))
	assert.FileExists(t, s.Path())
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFile), []byte("workspaces: [oops"), 0644))

	s, err := NewStore(dir)
	require.NoError(t, err)
	assert.Empty(t, s.Keys())

	require.NoError(t, s.Set("/ws", "a"))
	name, ok := s.Get("/ws")
	assert.True(t, ok)
	assert.Equal(t, "a", name)
}

func TestStore_Track(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	ctrl := selection.New("")
	stop := s.Track(ctrl, "/ws")

	ctrl.Reload(&registry.Document{Folders: []registry.FolderSpec{
		{Name: "app", Configurations: []registry.NamedConfig{{Name: "debug"}, {Name: "release"}}},
	}})
	name, ok := s.Get("/ws")
	require.True(t, ok)
	assert.Equal(t, "debug", name)

	require.True(t, ctrl.SelectIndex(1))
	name, _ = s.Get("/ws")
	assert.Equal(t, "release", name)

	ctrl.Reload(&registry.Document{})
	_, ok = s.Get("/ws")
	assert.False(t, ok, "an empty registry persists no name")

	stop()
	ctrl.Reload(&registry.Document{Folders: []registry.FolderSpec{
		{Name: "app", Configurations: []registry.NamedConfig{{Name: "other"}}},
	}})
	_, ok = s.Get("/ws")
	assert.False(t, ok, "stopped tracking")
}

func TestStore_RestoresAcrossControllers(t *testing.T) {
	dir := t.TempDir()
	doc := &registry.Document{Folders: []registry.FolderSpec{
		{Name: "app", Configurations: []registry.NamedConfig{{Name: "a"}, {Name: "b"}}},
	}}

	s, err := NewStore(dir)
	require.NoError(t, err)
	first := selection.New("")
	s.Track(first, "/ws")
	first.Reload(doc)
	require.True(t, first.SelectIndex(1))

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	remembered, _ := reopened.Get("/ws")
	second := selection.New(remembered)
	snap := second.Reload(doc)
	assert.Equal(t, "b", snap.Name)
}
