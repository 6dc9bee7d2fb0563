// Package research is the orchestrator around the two cache tiers.
//
// A topic is normalized into a slug, looked up in Tier-1 then Tier-2, and only on a
// miss (or an expired Tier-1 entry) handed to the configured Researcher. The result
// is written back to Tier-1. Promote copies Tier-1 entries into the project's Tier-2
// documents and Refresh forces a new research run while keeping team notes.
package research

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kennyg/lore/internal/entry"
	"github.com/kennyg/lore/internal/slug"
	"github.com/kennyg/lore/internal/store"
)

const (
	// DefaultTTL is how long Tier-1 entries stay fresh
	DefaultTTL = 30 * 24 * time.Hour
	// DefaultTimeout bounds one research run
	DefaultTimeout = 5 * time.Minute
)

// Status describes how a result was obtained
type Status string

const (
	// StatusFresh is a cache hit within its TTL, or any Tier-2 hit
	StatusFresh Status = "fresh"
	// StatusExpired is a Tier-1 entry past its TTL, still available for reuse
	StatusExpired Status = "expired"
	// StatusResearched means the researcher ran and the entry was just stored
	StatusResearched Status = "researched"
)

// Result is the outcome of Research, Check, Promote or Refresh
type Result struct {
	Entry  *entry.Entry
	Tier   entry.Tier
	Status Status
}

// Listing is one row of the merged inventory
type Listing struct {
	entry.Entry
	Status Status `json:"status"`
}

// Options configures a Service. Cache and Docs are required.
type Options struct {
	Cache store.Index
	Docs  store.Index

	// Researcher may be nil, in which case every miss fails with ErrResearchFailed
	Researcher Researcher
	Normalizer *slug.Normalizer

	// TTL of new Tier-1 entries. Zero uses DefaultTTL; negative means never expire.
	TTL time.Duration
	// Timeout of one research run. Zero uses DefaultTimeout.
	Timeout time.Duration

	Now    func() time.Time
	Logger *zap.Logger
}

// aliasSource is implemented by stores that record per-entry aliases
type aliasSource interface {
	Aliases(ctx context.Context) (map[string]string, error)
}

// Service runs the research cache state machine
type Service struct {
	cache      store.Index
	docs       store.Index
	researcher Researcher
	normalizer *slug.Normalizer
	ttl        time.Duration
	timeout    time.Duration
	now        func() time.Time
	logger     *zap.Logger

	locks keyedMutex
}

// New validates opts and builds a Service
func New(opts Options) (*Service, error) {
	if opts.Cache == nil || opts.Docs == nil {
		return nil, fmt.Errorf("new research service: both cache tiers are required")
	}

	s := &Service{
		cache:      opts.Cache,
		docs:       opts.Docs,
		researcher: opts.Researcher,
		normalizer: opts.Normalizer,
		ttl:        opts.TTL,
		timeout:    opts.Timeout,
		now:        opts.Now,
		logger:     opts.Logger,
	}
	if s.normalizer == nil {
		n, err := slug.NewNormalizer()
		if err != nil {
			return nil, fmt.Errorf("new research service: %w", err)
		}
		s.normalizer = n
	}
	if s.ttl == 0 {
		s.ttl = DefaultTTL
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s, nil
}

// Resolve returns the canonical slug for topic, consulting the built-in and
// configured aliases and then the aliases recorded on cached entries.
func (s *Service) Resolve(ctx context.Context, topic string) (string, error) {
	key := s.normalizer.Normalize(topic)
	if key == "" {
		return "", fmt.Errorf("%q: %w", topic, ErrInvalidTopic)
	}

	if src, ok := s.cache.(aliasSource); ok {
		aliases, err := src.Aliases(ctx)
		if err != nil {
			s.logger.Warn("could not read entry aliases", zap.Error(err))
		} else if canonical, ok := aliases[key]; ok {
			key = canonical
		}
	}
	return key, nil
}

// Research returns cached findings for topic, researching and caching them on a miss.
func (s *Service) Research(ctx context.Context, topic string) (*Result, error) {
	key, err := s.Resolve(ctx, topic)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	cached, err := lookupIn(ctx, s.cache, key)
	if err != nil {
		return nil, err
	}
	if cached != nil && !cached.Expired(s.now()) {
		s.logger.Debug("cache hit", zap.String("slug", key), zap.String("tier", string(entry.TierCache)))
		return &Result{Entry: cached, Tier: entry.TierCache, Status: StatusFresh}, nil
	}

	promoted, err := lookupIn(ctx, s.docs, key)
	if err != nil {
		return nil, err
	}
	if promoted != nil {
		s.logger.Debug("cache hit", zap.String("slug", key), zap.String("tier", string(entry.TierDocs)))
		return &Result{Entry: promoted, Tier: entry.TierDocs, Status: StatusFresh}, nil
	}

	if cached != nil {
		s.logger.Info("cached research expired", zap.String("slug", key), zap.Timep("expired_at", cached.ExpiresAt))
	}

	e, err := s.runResearch(ctx, key, topic, cached)
	if err != nil {
		return nil, err
	}
	return &Result{Entry: e, Tier: entry.TierCache, Status: StatusResearched}, nil
}

// Check looks topic up without ever researching it. An expired Tier-1 entry
// is returned with StatusExpired when Tier-2 has nothing better.
func (s *Service) Check(ctx context.Context, topic string) (*Result, error) {
	key, err := s.Resolve(ctx, topic)
	if err != nil {
		return nil, err
	}

	cached, err := lookupIn(ctx, s.cache, key)
	if err != nil {
		return nil, err
	}
	if cached != nil && !cached.Expired(s.now()) {
		return &Result{Entry: cached, Tier: entry.TierCache, Status: StatusFresh}, nil
	}

	promoted, err := lookupIn(ctx, s.docs, key)
	if err != nil {
		return nil, err
	}
	if promoted != nil {
		return &Result{Entry: promoted, Tier: entry.TierDocs, Status: StatusFresh}, nil
	}
	if cached != nil {
		return &Result{Entry: cached, Tier: entry.TierCache, Status: StatusExpired}, nil
	}
	return nil, fmt.Errorf("check %s: %w", key, ErrNotFound)
}

// Lookup returns the full entry for topic from one tier
func (s *Service) Lookup(ctx context.Context, topic string, tier entry.Tier) (*entry.Entry, error) {
	key, err := s.Resolve(ctx, topic)
	if err != nil {
		return nil, err
	}
	idx, err := s.index(tier)
	if err != nil {
		return nil, err
	}
	return idx.Lookup(ctx, key)
}

// Promote copies the Tier-1 entry for slug into Tier-2. The Tier-1 entry is kept.
// Team notes already present in the Tier-2 document survive the copy.
func (s *Service) Promote(ctx context.Context, slugOrTopic string) (*Result, error) {
	key, err := s.Resolve(ctx, slugOrTopic)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	src, err := lookupIn(ctx, s.cache, key)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("promote %s: %w", key, ErrNotFound)
	}

	now := s.now().UTC()
	if src.Expired(now) {
		s.logger.Warn("promoting expired research", zap.String("slug", key), zap.Timep("expired_at", src.ExpiresAt))
	}

	dup := src.Clone()
	dup.Tier = entry.TierDocs
	dup.ExpiresAt = nil
	dup.PromotedAt = &now

	existing, err := lookupIn(ctx, s.docs, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		dup.TeamNotes = existing.TeamNotes
	}
	dup.HasNotes = dup.TeamNotes != ""

	if err := s.docs.Put(ctx, dup); err != nil {
		return nil, fmt.Errorf("promote %s: %w", key, err)
	}

	s.logger.Info("promoted research",
		zap.String("slug", key),
		zap.Bool("replaced", existing != nil),
		zap.Bool("team_notes", dup.HasNotes))
	return &Result{Entry: dup, Tier: entry.TierDocs, Status: StatusFresh}, nil
}

// Refresh researches slug again regardless of expiry. The new Tier-1 entry keeps
// the previous team notes, and a promoted copy is rewritten with the new findings.
func (s *Service) Refresh(ctx context.Context, slugOrTopic string) (*Result, error) {
	key, err := s.Resolve(ctx, slugOrTopic)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	cached, err := lookupIn(ctx, s.cache, key)
	if err != nil {
		return nil, err
	}
	promoted, err := lookupIn(ctx, s.docs, key)
	if err != nil {
		return nil, err
	}

	prior := cached
	if prior == nil {
		prior = promoted
	}
	if prior == nil {
		return nil, fmt.Errorf("refresh %s: %w", key, ErrNotFound)
	}

	base := prior.Clone()
	if base.TeamNotes == "" && promoted != nil {
		base.TeamNotes = promoted.TeamNotes
	}
	topic := base.Topic
	if topic == "" {
		topic = key
	}

	e, err := s.runResearch(ctx, key, topic, base)
	if err != nil {
		return nil, err
	}

	if promoted != nil {
		updated := e.Clone()
		updated.Tier = entry.TierDocs
		updated.ExpiresAt = nil
		updated.PromotedAt = promoted.PromotedAt
		updated.TeamNotes = promoted.TeamNotes
		updated.HasNotes = updated.TeamNotes != ""
		if err := s.docs.Put(ctx, updated); err != nil {
			return nil, fmt.Errorf("refresh promoted copy of %s: %w", key, err)
		}
	}

	return &Result{Entry: e, Tier: entry.TierCache, Status: StatusResearched}, nil
}

// Remove deletes slug from the given tiers, or from both when none are given
func (s *Service) Remove(ctx context.Context, slugOrTopic string, tiers ...entry.Tier) error {
	key, err := s.Resolve(ctx, slugOrTopic)
	if err != nil {
		return err
	}
	if len(tiers) == 0 {
		tiers = []entry.Tier{entry.TierCache, entry.TierDocs}
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	for _, tier := range tiers {
		idx, err := s.index(tier)
		if err != nil {
			return err
		}
		if err := idx.Remove(ctx, key); err != nil {
			return fmt.Errorf("remove %s from %s: %w", key, tier.Label(), err)
		}
	}
	return nil
}

// List merges both tiers into one inventory, newest first
func (s *Service) List(ctx context.Context) ([]Listing, error) {
	var cached, promoted []entry.Entry

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cached, err = s.cache.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		promoted, err = s.docs.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	now := s.now()
	out := make([]Listing, 0, len(cached)+len(promoted))
	for _, e := range cached {
		status := StatusFresh
		if e.Expired(now) {
			status = StatusExpired
		}
		e.Tier = entry.TierCache
		out = append(out, Listing{Entry: e, Status: status})
	}
	for _, e := range promoted {
		e.Tier = entry.TierDocs
		out = append(out, Listing{Entry: e, Status: StatusFresh})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.Slug != b.Slug {
			return a.Slug < b.Slug
		}
		return a.Tier == entry.TierCache && b.Tier != entry.TierCache
	})
	return out, nil
}

func (s *Service) index(tier entry.Tier) (store.Index, error) {
	switch tier {
	case entry.TierCache:
		return s.cache, nil
	case entry.TierDocs:
		return s.docs, nil
	default:
		return nil, fmt.Errorf("unknown tier %q", tier)
	}
}

// runResearch calls the researcher under the timeout and stores the result in Tier-1.
// Nothing is written unless the researcher succeeds.
func (s *Service) runResearch(ctx context.Context, key, topic string, prior *entry.Entry) (*entry.Entry, error) {
	if s.researcher == nil {
		return nil, fmt.Errorf("%w: %s: no researcher configured", ErrResearchFailed, key)
	}

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.logger.Info("researching topic",
		zap.String("slug", key),
		zap.String("topic", topic),
		zap.String("provider", s.researcher.Name()),
		zap.Duration("timeout", s.timeout))

	started := time.Now()
	findings, err := s.research(rctx, Request{Slug: key, Topic: topic})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(rctx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("research timed out", zap.String("slug", key), zap.Duration("timeout", s.timeout))
			return nil, fmt.Errorf("%w: %s after %s: %w", ErrResearchTimeout, key, s.timeout, context.DeadlineExceeded)
		}
		s.logger.Warn("research failed", zap.String("slug", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrResearchFailed, key, err)
	}
	if findings == nil || strings.TrimSpace(findings.Content) == "" {
		return nil, fmt.Errorf("%w: %s: empty findings", ErrResearchFailed, key)
	}

	now := s.now().UTC()
	e := &entry.Entry{
		Slug:      key,
		Topic:     topic,
		Title:     findings.Title,
		Sources:   entry.MergeStrings(nil, findings.Sources...),
		Tags:      entry.MergeStrings(nil, findings.Tags...),
		Provider:  s.researcher.Name(),
		CreatedAt: now,
		Tier:      entry.TierCache,
		Content:   findings.Content,
	}
	if s.ttl > 0 {
		expires := now.Add(s.ttl)
		e.ExpiresAt = &expires
	}
	if raw := slug.Normalize(topic); raw != key {
		e.Aliases = entry.MergeStrings(nil, topic)
	}
	if prior != nil {
		e.Aliases = entry.MergeStrings(prior.Aliases, e.Aliases...)
		e.Tags = entry.MergeStrings(prior.Tags, e.Tags...)
		e.TeamNotes = prior.TeamNotes
		if e.Title == "" {
			e.Title = prior.Title
		}
	}
	if e.Title == "" {
		e.Title = topic
	}
	e.HasNotes = e.TeamNotes != ""

	if err := s.cache.Put(ctx, e); err != nil {
		return nil, fmt.Errorf("store research for %s: %w", key, err)
	}

	s.logger.Info("research cached",
		zap.String("slug", key),
		zap.Duration("took", time.Since(started)),
		zap.Int("bytes", len(e.Content)))
	return e, nil
}

type researchOutcome struct {
	findings *Findings
	err      error
}

// research runs the researcher in its own goroutine so the deadline holds even
// when the researcher ignores ctx. A result arriving after the deadline is
// dropped and the goroutine exits once the researcher returns.
func (s *Service) research(ctx context.Context, req Request) (*Findings, error) {
	done := make(chan researchOutcome, 1)
	go func() {
		findings, err := s.researcher.Research(ctx, req)
		done <- researchOutcome{findings: findings, err: err}
	}()

	select {
	case out := <-done:
		if out.err == nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return out.findings, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// lookupIn returns nil, nil when the tier has no entry for key
func lookupIn(ctx context.Context, idx store.Index, key string) (*entry.Entry, error) {
	e, err := idx.Lookup(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s in %s: %w", key, idx.Tier().Label(), err)
	}
	return e, nil
}
