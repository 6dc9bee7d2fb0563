// Package store persists research entries for the two cache tiers.
//
// Both tiers keep an index.json manifest next to their per-entry files. Every
// mutation rewrites files through a temp-file rename while holding the tier's
// write lock, so a reader observes either the old or the new state.
package store

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kennyg/lore/internal/entry"
)

// Index is the contract shared by the Tier-1 and Tier-2 stores
type Index interface {
	// Tier identifies the store
	Tier() entry.Tier
	// Root is the directory the store writes to
	Root() string
	// Lookup returns the full entry for slug or ErrNotFound
	Lookup(ctx context.Context, slug string) (*entry.Entry, error)
	// Put stores e, replacing any entry with the same slug
	Put(ctx context.Context, e *entry.Entry) error
	// Remove deletes slug; removing a missing slug is not an error
	Remove(ctx context.Context, slug string) error
	// List returns entry metadata, newest first
	List(ctx context.Context) ([]entry.Entry, error)
}

// Option configures a store
type Option func(*options)

type options struct {
	logger    *zap.Logger
	onRecover func(error)
	now       func() time.Time
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger used for warnings such as index recovery
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecoveryHook registers fn to be called after a corrupt index was rebuilt.
// The error passed to fn wraps ErrIndexCorrupt.
func WithRecoveryHook(fn func(error)) Option {
	return func(o *options) {
		o.onRecover = fn
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// sortNewestFirst orders entries by CreatedAt descending, slug ascending on ties
func sortNewestFirst(entries []entry.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].Slug < entries[j].Slug
	})
}
