package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/phpsymbols/internal/config"
)

type recordingSink struct {
	mu      sync.Mutex
	indexed map[string]int
	removed map[string]int
}

func newSink() *recordingSink {
	return &recordingSink{indexed: map[string]int{}, removed: map[string]int{}}
}

func (r *recordingSink) IndexFile(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed[path]++
	return nil
}

func (r *recordingSink) RemoveFile(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed[path]++
}

func (r *recordingSink) counts(path string) (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexed[path], r.removed[path]
}

func newWatcher(t *testing.T, sink Sink) (*Watcher, string) {
	t.Helper()
	cfg := config.Default()
	cfg.Debounce = 100 * time.Millisecond
	w, err := New(cfg, sink, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	root := t.TempDir()
	require.NoError(t, w.Add(root))
	return w, root
}

func TestWatcher_IndexesChangedFile(t *testing.T) {
	sink := newSink()
	_, root := newWatcher(t, sink)

	path := filepath.Join(root, "a.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("<?php class A {}"), 0o644))

	assert.Eventually(t, func() bool {
		n, _ := sink.counts(path)
		return n >= 1
	}, 5*time.Second, 10*time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	n, _ := sink.counts(path)
	assert.Equal(t, 1, n, "burst coalesced")
}

func TestWatcher_RemovedFile(t *testing.T) {
	sink := newSink()
	w, root := newWatcher(t, sink)

	path := filepath.Join(root, "gone.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php"), 0o644))
	assert.Eventually(t, func() bool {
		n, _ := sink.counts(path)
		return n == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool {
		_, n := sink.counts(path)
		return n == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, w.Flush())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	sink := newSink()
	_, root := newWatcher(t, sink)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	vendor := filepath.Join(root, "vendor")
	require.NoError(t, os.Mkdir(vendor, 0o755))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(vendor, "v.php"), []byte("<?php"), 0o644))

	time.Sleep(400 * time.Millisecond)
	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Empty(t, sink.indexed)
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	sink := newSink()
	_, root := newWatcher(t, sink)

	dir := filepath.Join(root, "src")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "b.php")

	// the watch on dir is added asynchronously
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("<?php"), 0o644)
		n, _ := sink.counts(path)
		return n >= 1
	}, 5*time.Second, 50*time.Millisecond)
}
