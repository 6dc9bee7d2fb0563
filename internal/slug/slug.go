// Package slug turns free-text research topics into canonical cache keys.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

	// Symbols that carry meaning in technology names and would otherwise be stripped.
	symbolRewrites = strings.NewReplacer(
		"c#", "csharp",
		"f#", "fsharp",
		"c++", "cpp",
		".net", "dotnet",
	)
)

// Normalize lowercases topic, folds accents, rewrites language symbols and collapses
// every run of other characters into a single hyphen. It never fails; an empty
// result means the topic had nothing usable in it.
func Normalize(topic string) string {
	s := strings.ToLower(strings.TrimSpace(topic))
	s = foldAccents(s)
	s = symbolRewrites.Replace(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Valid reports whether s is already a canonical slug
func Valid(s string) bool {
	return s != "" && Normalize(s) == s
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// AliasMap maps a normalized alternate spelling to its canonical slug
type AliasMap map[string]string

// Add records alias → canonical. Both sides are normalized first. The map never
// holds a chain: if canonical is itself an alias it resolves to that target, and
// aliases that pointed at the new alias are re-pointed at canonical.
func (m AliasMap) Add(alias, canonical string) error {
	a := Normalize(alias)
	c := Normalize(canonical)
	if a == "" || c == "" {
		return fmt.Errorf("alias %q -> %q: empty after normalization", alias, canonical)
	}
	if target, ok := m[c]; ok {
		c = target
	}
	if a == c {
		return nil
	}
	if _, isCanonical := m.targets()[a]; isCanonical {
		for k, v := range m {
			if v == a {
				m[k] = c
			}
		}
	}
	m[a] = c
	return nil
}

// Resolve returns the canonical slug for an already-normalized key
func (m AliasMap) Resolve(key string) (string, bool) {
	c, ok := m[key]
	return c, ok
}

func (m AliasMap) targets() map[string]struct{} {
	t := make(map[string]struct{}, len(m))
	for _, v := range m {
		t[v] = struct{}{}
	}
	return t
}

// DefaultAliases returns the built-in acronym table
func DefaultAliases() AliasMap {
	m := AliasMap{}
	for alias, canonical := range builtinAliases {
		_ = m.Add(alias, canonical)
	}
	return m
}

var builtinAliases = map[string]string{
	"DDD":   "domain-driven-design",
	"CQRS":  "command-query-responsibility-segregation",
	"TDD":   "test-driven-development",
	"BDD":   "behavior-driven-development",
	"SOLID": "solid-principles",
	"K8s":   "kubernetes",
	"JS":    "javascript",
	"TS":    "typescript",
	"gRPC":  "grpc",
	"ES":    "event-sourcing",
	"SRE":   "site-reliability-engineering",
	"IaC":   "infrastructure-as-code",
	"CI/CD": "continuous-integration-and-delivery",
	"RAG":   "retrieval-augmented-generation",
}

// Normalizer resolves aliases on top of Normalize
type Normalizer struct {
	aliases AliasMap
}

// NewNormalizer builds a normalizer from the built-in aliases plus any extra maps.
// Extra entries are given as raw alias → canonical pairs.
func NewNormalizer(extra ...map[string]string) (*Normalizer, error) {
	m := DefaultAliases()
	for _, aliases := range extra {
		for alias, canonical := range aliases {
			if err := m.Add(alias, canonical); err != nil {
				return nil, err
			}
		}
	}
	return &Normalizer{aliases: m}, nil
}

// Normalize returns the canonical slug for topic.
// Normalize(Normalize(x)) == Normalize(x) for every x.
func (n *Normalizer) Normalize(topic string) string {
	s := Normalize(topic)
	if s == "" || n == nil {
		return s
	}
	if c, ok := n.aliases.Resolve(s); ok {
		return c
	}
	return s
}

// Aliases returns a copy of the alias table
func (n *Normalizer) Aliases() AliasMap {
	out := make(AliasMap, len(n.aliases))
	for k, v := range n.aliases {
		out[k] = v
	}
	return out
}
