package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/kennyg/lore/internal/entry"
)

// manifest maps slug to entry metadata
type manifest map[string]entry.Entry

// indexFile loads and saves a tier's manifest, rebuilding it from the
// per-entry files when it is missing or fails to parse.
type indexFile struct {
	path    string
	tier    entry.Tier
	opts    *options
	rebuild func(ctx context.Context) (manifest, error)

	recoverMu sync.Mutex
}

// load reads the manifest for a caller that does not hold the tier's file lock
func (f *indexFile) load(ctx context.Context) (manifest, error) {
	return f.read(ctx, false)
}

// loadLocked reads the manifest for a writer already holding the file lock
func (f *indexFile) loadLocked(ctx context.Context) (manifest, error) {
	return f.read(ctx, true)
}

func (f *indexFile) read(ctx context.Context, locked bool) (manifest, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		m, rerr := f.rebuild(ctx)
		if rerr != nil {
			f.opts.logger.Warn("skipped unreadable entries while indexing",
				zap.String("tier", string(f.tier)),
				zap.Error(rerr))
		}
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", f.path, err)
	}

	m, err := decodeManifest(data)
	if err != nil {
		return f.recover(ctx, err, locked)
	}
	return m, nil
}

func decodeManifest(data []byte) (manifest, error) {
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = manifest{}
	}
	return m, nil
}

// recover rebuilds a corrupt index. The corrupt file is kept alongside as
// index.json.corrupt and the recovery is always reported. Readers take the
// file lock here since the rewrite races writers in other processes.
func (f *indexFile) recover(ctx context.Context, parseErr error, locked bool) (manifest, error) {
	f.recoverMu.Lock()
	defer f.recoverMu.Unlock()

	if !locked {
		unlock, err := acquireLock(ctx, f.path)
		if err != nil {
			return nil, fmt.Errorf("recover index %s: %w", f.path, err)
		}
		defer unlock()
	}

	data, err := os.ReadFile(f.path)
	if err == nil {
		if m, derr := decodeManifest(data); derr == nil {
			return m, nil // repaired while we waited
		}
		_ = writeFileAtomic(f.path+".corrupt", data, 0o644)
	}

	m, rebuildErr := f.rebuild(ctx)
	corrupt := fmt.Errorf("%w: %s: %v", ErrIndexCorrupt, f.path, parseErr)
	if rebuildErr != nil {
		corrupt = errors.Join(corrupt, rebuildErr)
	}

	if err := f.save(m); err != nil {
		return nil, fmt.Errorf("rewrite recovered index: %w", errors.Join(corrupt, err))
	}

	f.opts.logger.Warn("index corrupt, rebuilt from entry files",
		zap.String("tier", string(f.tier)),
		zap.String("path", f.path),
		zap.Int("entries", len(m)),
		zap.Error(corrupt))
	if f.opts.onRecover != nil {
		f.opts.onRecover(corrupt)
	}
	return m, nil
}

// save writes the manifest atomically. Callers hold the tier's write lock.
func (f *indexFile) save(m manifest) error {
	if m == nil {
		m = manifest{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return writeFileAtomic(f.path, append(data, '\n'), 0o644)
}

func (m manifest) list() []entry.Entry {
	out := make([]entry.Entry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sortNewestFirst(out)
	return out
}
