package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"pages":[]}`), 0o644))
}

func TestExtSet(t *testing.T) {
	assert.Nil(t, ExtSet(nil))
	assert.Nil(t, ExtSet([]string{" ", ""}))
	assert.Equal(t, map[string]struct{}{"json": {}, "ndjson": {}}, ExtSet([]string{".JSON", "ndjson"}))
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/a/.cache"))
	assert.False(t, IsHidden("/a/b.json"))
	assert.False(t, IsHidden("."))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.json"))
	writeFile(t, filepath.Join(root, "a.JSON"))
	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, "nested", "c.json"))
	writeFile(t, filepath.Join(root, ".hidden", "d.json"))
	writeFile(t, filepath.Join(root, ".e.json"))

	files, stats, err := ScanDirectory(root, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.JSON"),
		filepath.Join(root, "b.json"),
		filepath.Join(root, "nested", "c.json"),
	}, files)
	assert.Equal(t, uint32(3), stats.Matched)

	files, _, err = ScanDirectory(root, nil, false)
	require.NoError(t, err)
	assert.Len(t, files, 5)

	files, _, err = ScanDirectory(root, ExtSet([]string{"txt"}), true)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "notes.txt")}, files)
}

func TestScanDirectory_Errors(t *testing.T) {
	_, _, err := ScanDirectory("  ", nil, true)
	assert.Error(t, err)

	_, _, err = ScanDirectory(filepath.Join(t.TempDir(), "missing"), nil, true)
	assert.Error(t, err)
}

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return ""
	}
}

func TestStartWatcher(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing.json")
	writeFile(t, existing)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		SkipHidden:  true,
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, existing, receive(t, events))

	writeFile(t, filepath.Join(root, "ignored.txt"))
	writeFile(t, filepath.Join(root, ".tmp.json"))
	created := filepath.Join(root, "new.json")
	writeFile(t, created)
	assert.Equal(t, created, receive(t, events))

	cancel()
	for range events {
	}
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
