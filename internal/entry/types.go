package entry

import (
	"strings"
	"time"
)

// Tier identifies which store an entry lives in
type Tier string

const (
	// TierCache is the user-local, cross-project cache (Tier-1)
	TierCache Tier = "cache"
	// TierDocs is the project-scoped, version-controlled copy (Tier-2)
	TierDocs Tier = "docs"
)

// Label returns the short display name of the tier
func (t Tier) Label() string {
	switch t {
	case TierCache:
		return "tier-1"
	case TierDocs:
		return "tier-2"
	default:
		return string(t)
	}
}

// ParseTier accepts "cache", "docs", "1", "2", "tier-1" or "tier-2".
func ParseTier(s string) (Tier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cache", "1", "tier-1", "tier1":
		return TierCache, true
	case "docs", "2", "tier-2", "tier2":
		return TierDocs, true
	}
	return "", false
}

// Entry is one cached research result
type Entry struct {
	Slug     string   `json:"slug"`
	Topic    string   `json:"topic"`
	Title    string   `json:"title"`
	Aliases  []string `json:"aliases,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Sources  []string `json:"sources,omitempty"`
	Provider string   `json:"provider,omitempty"`

	CreatedAt  time.Time  `json:"researched_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"` // nil never expires
	PromotedAt *time.Time `json:"promoted_at,omitempty"`

	Tier      Tier   `json:"tier"`
	TeamNotes string `json:"team_notes,omitempty"`
	HasNotes  bool   `json:"has_team_notes,omitempty"`

	Content string `json:"-"`
}

// Expired reports whether the entry's expiry has passed at now.
// Entries without an expiry never expire.
func (e *Entry) Expired(now time.Time) bool {
	if e.ExpiresAt == nil {
		return false
	}
	return now.After(*e.ExpiresAt)
}

// Metadata returns a copy without content or notes, suitable for an index manifest
func (e *Entry) Metadata() Entry {
	m := *e
	m.Content = ""
	m.HasNotes = strings.TrimSpace(e.TeamNotes) != "" || e.HasNotes
	m.TeamNotes = ""
	m.Aliases = cloneStrings(e.Aliases)
	m.Tags = cloneStrings(e.Tags)
	m.Sources = cloneStrings(e.Sources)
	return m
}

// Clone returns a deep copy of the entry
func (e *Entry) Clone() *Entry {
	c := *e
	c.Aliases = cloneStrings(e.Aliases)
	c.Tags = cloneStrings(e.Tags)
	c.Sources = cloneStrings(e.Sources)
	if e.ExpiresAt != nil {
		t := *e.ExpiresAt
		c.ExpiresAt = &t
	}
	if e.PromotedAt != nil {
		t := *e.PromotedAt
		c.PromotedAt = &t
	}
	return &c
}

// DisplayTitle falls back to the topic and then the slug
func (e *Entry) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	if e.Topic != "" {
		return e.Topic
	}
	return e.Slug
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// MergeStrings appends values from extra that are not already present, keeping order.
// Comparison is case-insensitive.
func MergeStrings(base []string, extra ...string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	var out []string
	for _, list := range [][]string{base, extra} {
		for _, v := range list {
			v = strings.TrimSpace(v)
			key := strings.ToLower(v)
			if v == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}
