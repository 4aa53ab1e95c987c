package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(kind, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+path)
}

func (r *recorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.events, event)
}

func (r *recorder) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

func startWatcher(t *testing.T, dir string) *recorder {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())

	rec := &recorder{}
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, dir, logger, rec.record) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Let the watcher register the directory.
	time.Sleep(100 * time.Millisecond)
	return rec
}

func TestWatch_CreateUpdateDelete(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir)
	p := filepath.Join(dir, "guide.md")

	require.NoError(t, os.WriteFile(p, []byte("# One"), 0o644))
	assert.Eventually(t, func() bool { return rec.has("created:guide") }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(p, []byte("# Two"), 0o644))
	assert.Eventually(t, func() bool { return rec.has("updated:guide") }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(p))
	assert.Eventually(t, func() bool { return rec.has("deleted:guide") }, 5*time.Second, 20*time.Millisecond)
}

func TestWatch_UnchangedWriteSuppressed(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "stable.md")
	require.NoError(t, os.WriteFile(p, []byte("same"), 0o644))

	rec := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(p, []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.md"), []byte("m"), 0o644))
	require.Eventually(t, func() bool { return rec.has("created:marker") }, 5*time.Second, 20*time.Millisecond)

	// The truncate inside WriteFile may surface an empty intermediate state,
	// but the content never differs from the seed once writing finishes.
	assert.Equal(t, 0, rec.count("created:stable"))
}

func TestWatch_IgnoresNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.md"), []byte("x"), 0o644))
	require.Eventually(t, func() bool { return rec.has("created:real") }, 5*time.Second, 20*time.Millisecond)

	assert.False(t, rec.has("created:notes.txt"))
}

func TestWatch_MissingDirectory(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), logger, func(string, string) {})
	assert.Error(t, err)
}

func TestWatch_RequiresCallback(t *testing.T) {
	err := Watch(context.Background(), t.TempDir(), slog.Default(), nil)
	assert.Error(t, err)
}
