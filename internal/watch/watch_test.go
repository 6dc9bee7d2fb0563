package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReindexer struct {
	calls atomic.Int32
	err   error
}

func (c *countingReindexer) Reindex(ctx context.Context) (int, error) {
	n := c.calls.Add(1)
	return int(n), c.err
}

func startWatcher(t *testing.T, dir string, target Reindexer, opts ...Option) *Watcher {
	t.Helper()
	w := New(dir, target, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	var runErr error
	go func() {
		defer wg.Done()
		runErr = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
		assert.NoError(t, runErr)
	})

	// Give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)
	return w
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIsDocument(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/docs/research/event-sourcing.md", true},
		{"/docs/research/README.md", false},
		{"/docs/research/readme.md", false},
		{"/docs/research/index.json", false},
		{"/docs/research/index.json.lock", false},
		{"/docs/research/.event-sourcing.md.123.tmp", false},
		{"/docs/research/.hidden.md", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isDocument(tt.path), tt.path)
	}
}

func TestWatcher_ReindexesAfterEdit(t *testing.T) {
	dir := t.TempDir()
	target := &countingReindexer{}
	w := startWatcher(t, dir, target, WithDebounce(50*time.Millisecond))

	write(t, filepath.Join(dir, "saga-pattern.md"), "# Saga\n")

	require.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	stats := w.Stats()
	assert.GreaterOrEqual(t, stats.Events, 1)
	assert.Equal(t, filepath.Join(dir, "saga-pattern.md"), stats.LastPath)
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	target := &countingReindexer{}
	startWatcher(t, dir, target, WithDebounce(300*time.Millisecond))

	path := filepath.Join(dir, "outbox-pattern.md")
	for i := 0; i < 5; i++ {
		write(t, path, "# Outbox\n"+string(rune('a'+i)))
		time.Sleep(20 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), target.calls.Load())
}

func TestWatcher_IgnoresGeneratedFiles(t *testing.T) {
	dir := t.TempDir()
	target := &countingReindexer{}
	w := startWatcher(t, dir, target, WithDebounce(30*time.Millisecond))

	write(t, filepath.Join(dir, "README.md"), "# Index\n")
	write(t, filepath.Join(dir, "index.json"), "{}")

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, target.calls.Load())
	assert.Zero(t, w.Stats().Events)
}

func TestWatcher_ReportsReindexErrors(t *testing.T) {
	dir := t.TempDir()
	target := &countingReindexer{err: errors.New("disk full")}

	var (
		mu      sync.Mutex
		lastErr error
	)
	w := startWatcher(t, dir, target,
		WithDebounce(30*time.Millisecond),
		WithOnSync(func(_ int, err error) {
			mu.Lock()
			lastErr = err
			mu.Unlock()
		}),
	)

	write(t, filepath.Join(dir, "cqrs.md"), "# CQRS\n")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return lastErr != nil
	}, 3*time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.EqualError(t, lastErr, "disk full")
	mu.Unlock()
	assert.GreaterOrEqual(t, w.Stats().Errors, 1)
}

func TestWatcher_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs", "research")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, New(dir, &countingReindexer{}).Run(ctx))
	assert.DirExists(t, dir)
}
