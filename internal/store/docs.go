package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kennyg/lore/internal/entry"
	"github.com/kennyg/lore/internal/slug"
)

// DocsStore is the Tier-2 store: promoted documents inside a project,
// meant to be committed alongside the code.
//
// Layout:
//
//	<root>/index.json
//	<root>/README.md
//	<root>/<slug>.md
//
// Each document keeps generated findings and team notes in separate marked
// sections. Writing a document never discards notes already present in it.
type DocsStore struct {
	root  string
	opts  *options
	index *indexFile

	mu sync.RWMutex
}

var _ Index = (*DocsStore)(nil)

// NewDocsStore opens (without creating) a Tier-2 store rooted at root
func NewDocsStore(root string, opts ...Option) *DocsStore {
	s := &DocsStore{
		root: root,
		opts: newOptions(opts),
	}
	s.index = &indexFile{
		path:    filepath.Join(root, entry.IndexFilename),
		tier:    entry.TierDocs,
		opts:    s.opts,
		rebuild: s.rebuild,
	}
	return s
}

// Tier implements Index
func (s *DocsStore) Tier() entry.Tier { return entry.TierDocs }

// Root implements Index
func (s *DocsStore) Root() string { return s.root }

// DocPath returns the path of the promoted document for key
func (s *DocsStore) DocPath(key string) string {
	return filepath.Join(s.root, key+entry.DocExt)
}

// Lookup returns the promoted entry for key
func (s *DocsStore) Lookup(ctx context.Context, key string) (*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := s.index.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := m[key]; !ok {
		return nil, fmt.Errorf("%s in %s: %w", key, entry.TierDocs.Label(), ErrNotFound)
	}

	e, err := s.readDoc(key)
	if errors.Is(err, fs.ErrNotExist) {
		s.opts.logger.Warn("indexed document is missing",
			zap.String("slug", key),
			zap.String("path", s.DocPath(key)))
		return nil, fmt.Errorf("%s in %s: document missing: %w", key, entry.TierDocs.Label(), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *DocsStore) readDoc(key string) (*entry.Entry, error) {
	path := s.DocPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	e, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if e.Slug == "" {
		e.Slug = key
	}
	return e, nil
}

// Put writes the promoted document for e and updates the index and README.
// When e carries no team notes, the notes already in the document are kept.
func (s *DocsStore) Put(ctx context.Context, e *entry.Entry) error {
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
	stored.Tier = entry.TierDocs
	stored.ExpiresAt = nil
	if stored.PromotedAt == nil {
		now := s.opts.now().UTC()
		stored.PromotedAt = &now
	}
	if strings.TrimSpace(stored.TeamNotes) == "" {
		if existing, err := s.readDoc(stored.Slug); err == nil {
			stored.TeamNotes = existing.TeamNotes
		}
	}
	stored.HasNotes = stored.TeamNotes != ""

	doc, err := renderDocument(stored)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.DocPath(stored.Slug), doc, 0o644); err != nil {
		return err
	}

	m, err := s.index.loadLocked(ctx)
	if err != nil {
		return err
	}
	m[stored.Slug] = stored.Metadata()
	if err := s.index.save(m); err != nil {
		return err
	}
	return s.writeReadme(m)
}

// Remove deletes the promoted document for key
func (s *DocsStore) Remove(ctx context.Context, key string) error {
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

	if err := os.Remove(s.DocPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}

	m, err := s.index.loadLocked(ctx)
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	if err := s.index.save(m); err != nil {
		return err
	}
	return s.writeReadme(m)
}

// List returns promoted entry metadata, newest first
func (s *DocsStore) List(ctx context.Context) ([]entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := s.index.load(ctx)
	if err != nil {
		return nil, err
	}
	return m.list(), nil
}

// Reindex rebuilds the manifest and README from the documents on disk.
// Use it after documents were edited or added by hand.
func (s *DocsStore) Reindex(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := acquireLock(ctx, s.index.path)
	if err != nil {
		return 0, err
	}
	defer unlock()

	m, rebuildErr := s.rebuild(ctx)
	if rebuildErr != nil {
		s.opts.logger.Warn("skipped unreadable documents", zap.Error(rebuildErr))
	}
	if err := s.index.save(m); err != nil {
		return 0, err
	}
	if err := s.writeReadme(m); err != nil {
		return 0, err
	}
	return len(m), nil
}

// WriteReadme regenerates README.md from the index
func (s *DocsStore) WriteReadme(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.index.load(ctx)
	if err != nil {
		return "", err
	}
	if err := s.writeReadme(m); err != nil {
		return "", err
	}
	return filepath.Join(s.root, entry.ReadmeFilename), nil
}

func (s *DocsStore) writeReadme(m manifest) error {
	content := renderDocsReadme(m.list())
	return writeFileAtomic(filepath.Join(s.root, entry.ReadmeFilename), []byte(content), 0o644)
}

// rebuild parses every <slug>.md in the root
func (s *DocsStore) rebuild(ctx context.Context) (manifest, error) {
	m := manifest{}
	files, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("scan documents: %w", err)
	}

	var errs []error
	for _, f := range files {
		if ctx.Err() != nil {
			return m, ctx.Err()
		}
		name := f.Name()
		if f.IsDir() || filepath.Ext(name) != entry.DocExt || strings.EqualFold(name, entry.ReadmeFilename) {
			continue
		}
		key := strings.TrimSuffix(name, entry.DocExt)
		e, err := s.readDoc(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if e.Slug != key {
			// The file name decides where Lookup reads from
			e.Slug = key
		}
		if !slug.Valid(e.Slug) {
			errs = append(errs, fmt.Errorf("document %s: %w", name, ErrInvalidSlug))
			continue
		}
		m[e.Slug] = e.Metadata()
	}
	return m, errors.Join(errs...)
}
