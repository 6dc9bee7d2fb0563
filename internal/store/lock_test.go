package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock_BlocksUntilAvailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	unlock1, err := acquireLock(context.Background(), path)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		unlock2, err := acquireLock(context.Background(), path)
		if err == nil {
			unlock2()
		}
		done <- err
	}()

	// Give the second caller time to start waiting
	time.Sleep(100 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("second lock acquired while first was held")
	default:
	}

	unlock1()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second lock acquisition timed out")
	}
}

func TestAcquireLock_StaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	lp := lockPath(path)

	require.NoError(t, os.WriteFile(lp, []byte("crashed-writer"), 0o644))
	old := time.Now().Add(-10 * time.Second)
	require.NoError(t, os.Chtimes(lp, old, old))

	unlock, err := acquireLock(context.Background(), path)
	require.NoError(t, err)
	assert.FileExists(t, lp)

	unlock()
	assert.NoFileExists(t, lp)
}

func TestBreakStaleLock_KeepsLockTakenByAnotherWriter(t *testing.T) {
	lp := lockPath(filepath.Join(t.TempDir(), "index.json"))

	require.NoError(t, os.WriteFile(lp, []byte("crashed-writer"), 0o644))
	stale, err := os.Stat(lp)
	require.NoError(t, err)

	// Another waiter broke the stale lock and took a fresh one
	require.NoError(t, os.Remove(lp))
	require.NoError(t, os.WriteFile(lp, []byte("live-writer"), 0o644))

	breakStaleLock(lp, stale)

	data, err := os.ReadFile(lp)
	require.NoError(t, err)
	assert.Equal(t, "live-writer", string(data))

	assert.NoFileExists(t, lp+".break")
}

func TestAcquireLock_StaleLockBrokenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	lp := lockPath(path)

	require.NoError(t, os.WriteFile(lp, []byte("crashed-writer"), 0o644))
	old := time.Now().Add(-10 * time.Second)
	require.NoError(t, os.Chtimes(lp, old, old))

	var holders, maxHolders atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := acquireLock(context.Background(), path)
			if !assert.NoError(t, err) {
				return
			}
			n := holders.Add(1)
			for {
				m := maxHolders.Load()
				if n <= m || maxHolders.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			holders.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxHolders.Load(), "lock held by more than one writer")
}

func TestAcquireLock_ContextCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	unlock, err := acquireLock(context.Background(), path)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = acquireLock(ctx, path)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReleaseLock_OnlyOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	lp := lockPath(path)

	require.NoError(t, os.WriteFile(lp, []byte("someone-else"), 0o644))
	releaseLock(lp, "not-the-owner")
	assert.FileExists(t, lp)
}

func TestWriteFileAtomic_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "index.json")

	for i := 0; i < 5; i++ {
		require.NoError(t, writeFileAtomic(path, []byte(`{"n":1}`), 0o644))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".tmp", filepath.Ext(e.Name()), "leftover temp file %s", e.Name())
	}
}
