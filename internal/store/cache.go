package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/kennyg/lore/internal/entry"
	"github.com/kennyg/lore/internal/slug"
)

// CacheStore is the Tier-1 store: a user-scoped directory shared across projects.
//
// Layout:
//
//	<root>/index.json
//	<root>/entries/<slug>/metadata.json
//	<root>/entries/<slug>/content.md
//
// metadata.json is the authoritative record and carries the content as well,
// so a reader assembles an entry from a single atomically replaced file.
// content.md is a plain copy for agents and humans reading the cache directly.
type CacheStore struct {
	root  string
	opts  *options
	index *indexFile

	mu sync.RWMutex
}

var _ Index = (*CacheStore)(nil)

// NewCacheStore opens (without creating) a Tier-1 store rooted at root
func NewCacheStore(root string, opts ...Option) *CacheStore {
	s := &CacheStore{
		root: root,
		opts: newOptions(opts),
	}
	s.index = &indexFile{
		path:    filepath.Join(root, entry.IndexFilename),
		tier:    entry.TierCache,
		opts:    s.opts,
		rebuild: s.rebuild,
	}
	return s
}

// Tier implements Index
func (s *CacheStore) Tier() entry.Tier { return entry.TierCache }

// Root implements Index
func (s *CacheStore) Root() string { return s.root }

func (s *CacheStore) entryDir(key string) string {
	return filepath.Join(s.root, entry.EntriesDirName, key)
}

// ContentPath is the findings file for key
func (s *CacheStore) ContentPath(key string) string {
	return filepath.Join(s.entryDir(key), entry.ContentFilename)
}

// Lookup returns the entry for key including its content
func (s *CacheStore) Lookup(ctx context.Context, key string) (*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := s.index.load(ctx)
	if err != nil {
		return nil, err
	}
	meta, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%s in %s: %w", key, entry.TierCache.Label(), ErrNotFound)
	}

	e, err := readCacheEntry(s.entryDir(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s in %s: content missing: %w", key, entry.TierCache.Label(), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if e.Slug == "" {
		e.Slug = meta.Slug
	}
	e.HasNotes = e.TeamNotes != ""
	e.Tier = entry.TierCache
	return e, nil
}

// Put writes the entry record and its content copy, then updates the index
func (s *CacheStore) Put(ctx context.Context, e *entry.Entry) error {
	if e == nil {
		return fmt.Errorf("put: nil entry")
	}
	if !slug.Valid(e.Slug) {
		return fmt.Errorf("put %q: %w", e.Slug, ErrInvalidSlug)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := acquireLock(ctx, s.index.path)
	if err != nil {
		return err
	}
	defer unlock()

	stored := e.Clone()
	stored.Tier = entry.TierCache
	stored.HasNotes = stored.TeamNotes != ""

	dir := s.entryDir(stored.Slug)
	if err := writeFileAtomic(filepath.Join(dir, entry.ContentFilename), []byte(stored.Content), 0o644); err != nil {
		return err
	}
	meta, err := json.MarshalIndent(newCacheRecord(stored), "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata %s: %w", stored.Slug, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, entry.MetadataFilename), append(meta, '\n'), 0o644); err != nil {
		return err
	}

	m, err := s.index.loadLocked(ctx)
	if err != nil {
		return err
	}
	m[stored.Slug] = stored.Metadata()
	return s.index.save(m)
}

// Remove deletes key from the index and removes its entry directory
func (s *CacheStore) Remove(ctx context.Context, key string) error {
	if !slug.Valid(key) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := acquireLock(ctx, s.index.path)
	if err != nil {
		return err
	}
	defer unlock()

	m, err := s.index.loadLocked(ctx)
	if err != nil {
		return err
	}
	if _, ok := m[key]; ok {
		delete(m, key)
		if err := s.index.save(m); err != nil {
			return err
		}
	}
	if err := os.RemoveAll(s.entryDir(key)); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// List returns all entry metadata, newest first. Expired entries are included.
func (s *CacheStore) List(ctx context.Context) ([]entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := s.index.load(ctx)
	if err != nil {
		return nil, err
	}
	return m.list(), nil
}

// Aliases returns normalized alias → slug for every alias recorded on an entry
func (s *CacheStore) Aliases(ctx context.Context) (map[string]string, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	// Oldest first so newer entries win conflicting aliases
	for i := len(entries) - 1; i >= 0; i-- {
		for _, a := range entries[i].Aliases {
			if key := slug.Normalize(a); key != "" && key != entries[i].Slug {
				out[key] = entries[i].Slug
			}
		}
	}
	return out, nil
}

// WriteReadme regenerates the Tier-1 README.md from the index
func (s *CacheStore) WriteReadme(ctx context.Context) (string, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.root, entry.ReadmeFilename)
	content := renderCacheReadme(s.root, entries, s.opts.now())
	if err := writeFileAtomic(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// rebuild scans entries/*/metadata.json
func (s *CacheStore) rebuild(ctx context.Context) (manifest, error) {
	m := manifest{}
	dirs, err := os.ReadDir(filepath.Join(s.root, entry.EntriesDirName))
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("scan entries: %w", err)
	}

	var errs []error
	for _, d := range dirs {
		if ctx.Err() != nil {
			return m, ctx.Err()
		}
		if !d.IsDir() {
			continue
		}
		e, err := readCacheMetadata(s.entryDir(d.Name()))
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %s: %w", d.Name(), err))
			continue
		}
		if e.Slug == "" {
			e.Slug = d.Name()
		}
		e.Tier = entry.TierCache
		m[e.Slug] = e.Metadata()
	}
	return m, errors.Join(errs...)
}

// cacheRecord is the on-disk form of metadata.json. Content is a pointer so
// records written before content moved into them fall back to content.md.
type cacheRecord struct {
	entry.Entry
	Content *string `json:"content,omitempty"`
}

func newCacheRecord(e *entry.Entry) cacheRecord {
	content := e.Content
	return cacheRecord{Entry: *e, Content: &content}
}

func readCacheRecord(dir string) (*cacheRecord, error) {
	data, err := os.ReadFile(filepath.Join(dir, entry.MetadataFilename))
	if err != nil {
		return nil, err
	}
	var rec cacheRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &rec, nil
}

func readCacheMetadata(dir string) (*entry.Entry, error) {
	rec, err := readCacheRecord(dir)
	if err != nil {
		return nil, err
	}
	return &rec.Entry, nil
}

func readCacheEntry(dir string) (*entry.Entry, error) {
	rec, err := readCacheRecord(dir)
	if err != nil {
		return nil, err
	}
	e := rec.Entry
	if rec.Content != nil {
		e.Content = *rec.Content
		return &e, nil
	}
	content, err := os.ReadFile(filepath.Join(dir, entry.ContentFilename))
	if err != nil {
		return nil, err
	}
	e.Content = string(content)
	return &e, nil
}
