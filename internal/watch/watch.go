// Package watch keeps the Tier-2 manifest and README in step with hand edits.
//
// Promoted documents are version-controlled Markdown that people edit directly.
// The watcher notices changed <slug>.md files and, once the edits settle,
// rebuilds the index from the documents on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kennyg/lore/internal/entry"
)

// DefaultDebounce is how long a document must stay quiet before a rebuild
const DefaultDebounce = 500 * time.Millisecond

// Reindexer rebuilds a tier's manifest from its files
type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// Stats tracks watcher activity
type Stats struct {
	Events    int
	Reindexes int
	Errors    int
	LastPath  string
	LastSync  time.Time
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithOnSync registers fn to run after every rebuild attempt
func WithOnSync(fn func(documents int, err error)) Option {
	return func(w *Watcher) {
		w.onSync = fn
	}
}

// Watcher watches one Tier-2 directory
type Watcher struct {
	dir      string
	target   Reindexer
	debounce time.Duration
	logger   *zap.Logger
	onSync   func(int, error)

	mu      sync.Mutex
	pending map[string]time.Time
	stats   Stats
}

// New creates a watcher for dir that calls target.Reindex after changes
func New(dir string, target Reindexer, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		target:   target,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		pending:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. The directory is created if missing.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", w.dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching promoted documents", zap.String("dir", w.dir))

	tick := time.NewTicker(w.tickInterval())
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case now := <-tick.C:
			w.flush(ctx, now)
		}
	}
}

// Stats returns a snapshot of the counters
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) tickInterval() time.Duration {
	return max(w.debounce/5, 10*time.Millisecond)
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isDocument(event.Name) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.logger.Debug("document changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.stats.Events++
	w.stats.LastPath = event.Name
	w.mu.Unlock()
}

// flush rebuilds once when at least one pending path has settled
func (w *Watcher) flush(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var settled []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}

	n, err := w.target.Reindex(ctx)

	w.mu.Lock()
	w.stats.Reindexes++
	w.stats.LastSync = now
	if err != nil {
		w.stats.Errors++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("reindex failed", zap.Strings("changed", settled), zap.Error(err))
	} else {
		w.logger.Info("reindexed promoted documents", zap.Int("documents", n), zap.Strings("changed", settled))
	}
	if w.onSync != nil {
		w.onSync(n, err)
	}
}

// isDocument reports whether path is a promoted document, skipping the generated
// README, the manifest and temp files
func isDocument(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if filepath.Ext(name) != entry.DocExt {
		return false
	}
	return !strings.EqualFold(name, entry.ReadmeFilename)
}
