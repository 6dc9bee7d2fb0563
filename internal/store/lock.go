package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
)

const (
	// lockStaleAfter is how old a lock file may get before another writer breaks it
	lockStaleAfter = 5 * time.Second
	// lockPollInterval is how often a blocked writer retries
	lockPollInterval = 10 * time.Millisecond
)

func lockPath(path string) string {
	return path + ".lock"
}

// acquireLock takes the cross-process write lock guarding path.
// The returned func releases it and must be called on every exit path.
func acquireLock(ctx context.Context, path string) (func(), error) {
	lp := lockPath(path)
	token := uuid.NewString()

	for {
		f, err := os.OpenFile(lp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := f.WriteString(token)
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(lp)
				return nil, fmt.Errorf("write lock %s: %w", lp, errors.Join(werr, cerr))
			}
			return func() { releaseLock(lp, token) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create lock %s: %w", lp, err)
		}

		// Break locks left behind by a crashed writer
		if info, statErr := os.Stat(lp); statErr == nil && time.Since(info.ModTime()) > lockStaleAfter {
			breakStaleLock(lp, info)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %s: %w", lp, ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}

// breakStaleLock removes lp if it is still the stale file seen by the caller.
// Breakers take lp.break first, so two waiters that both saw the stale lock
// cannot remove a fresh lock taken by the one that broke it first.
func breakStaleLock(lp string, stale os.FileInfo) {
	guard := lp + ".break"
	g, err := os.OpenFile(guard, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if info, statErr := os.Stat(guard); statErr == nil && time.Since(info.ModTime()) > lockStaleAfter {
			_ = os.Remove(guard)
		}
		return
	}
	_ = g.Close()
	defer os.Remove(guard)

	cur, err := os.Stat(lp)
	if err == nil && os.SameFile(stale, cur) && time.Since(cur.ModTime()) > lockStaleAfter {
		_ = os.Remove(lp)
	}
}

// releaseLock removes the lock file only if we still own it
func releaseLock(lp, token string) {
	data, err := os.ReadFile(lp)
	if err != nil {
		return
	}
	if string(data) == token {
		_ = os.Remove(lp)
	}
}
