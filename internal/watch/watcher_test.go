package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 20 * time.Millisecond

func TestFileWatcher_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpp.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	var calls atomic.Int32
	fw, err := NewFileWatcher(path, testDebounce, func() { calls.Add(1) })
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Close()

	require.NoError(t, os.WriteFile(path, []byte(`{"folders": []}`), 0644))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestFileWatcher_DetectsCreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "later.jsonc")

	var calls atomic.Int32
	fw, err := NewFileWatcher(path, testDebounce, func() { calls.Add(1) })
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Close()

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestFileWatcher_DetectsRenameOver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpp.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	var calls atomic.Int32
	fw, err := NewFileWatcher(path, testDebounce, func() { calls.Add(1) })
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Close()

	tmp := filepath.Join(dir, "cpp.jsonc.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"folders": []}`), 0644))
	require.NoError(t, os.Rename(tmp, path))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestFileWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpp.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	var calls atomic.Int32
	fw, err := NewFileWatcher(path, testDebounce, func() { calls.Add(1) })
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))

	assert.Never(t, func() bool { return calls.Load() > 0 }, 200*time.Millisecond, 10*time.Millisecond)
}

func TestFileWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpp.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	var calls atomic.Int32
	fw, err := NewFileWatcher(path, 200*time.Millisecond, func() { calls.Add(1) })
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFileWatcher_CloseDropsPending(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpp.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	var calls atomic.Int32
	fw, err := NewFileWatcher(path, time.Second, func() { calls.Add(1) })
	require.NoError(t, err)
	require.NoError(t, fw.Start())

	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, fw.Close())
	assert.NoError(t, fw.Close(), "closing twice is harmless")

	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestManager_Ensure(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.jsonc")
	second := filepath.Join(dir, "b.jsonc")

	var calls atomic.Int32
	m := NewManager(testDebounce, func() { calls.Add(1) })
	defer m.Close()

	require.NoError(t, m.Ensure(first))
	assert.Equal(t, first, m.Path())
	watcher := m.current

	require.NoError(t, m.Ensure(first))
	assert.Same(t, watcher, m.current, "same path keeps the watcher")

	require.NoError(t, m.Ensure(second))
	assert.Equal(t, second, m.Path())
	assert.NotSame(t, watcher, m.current)

	require.NoError(t, os.WriteFile(first, []byte("{}"), 0644))
	assert.Never(t, func() bool { return calls.Load() > 0 }, 150*time.Millisecond, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(second, []byte("{}"), 0644))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Ensure(""))
	assert.Empty(t, m.Path())
}

func TestManager_EnsureMissingDirectory(t *testing.T) {
	m := NewManager(testDebounce, func() {})
	err := m.Ensure(filepath.Join(t.TempDir(), "missing", "cpp.jsonc"))
	assert.Error(t, err)
	assert.Empty(t, m.Path())
}
