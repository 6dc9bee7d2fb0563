// Package search ranks cached research entries against a free-text query.
package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kennyg/lore/internal/entry"
)

// common stopwords to filter out when extracting keywords
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "was": true,
	"are": true, "were": true, "been": true, "be": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "must": true,
	"this": true, "that": true, "these": true, "those": true, "it": true,
	"its": true, "when": true, "use": true, "using": true, "used": true,
	"can": true, "any": true, "other": true, "how": true, "what": true,
}

var nonWord = regexp.MustCompile(`[^a-z0-9\s]`)

// Document is one searchable entry
type Document struct {
	Entry    entry.Entry
	Keywords []string
	headings string
}

// Result represents a search match
type Result struct {
	Entry entry.Entry
	Score int // higher is better
}

// NewDocument extracts keywords from e's title, topic, tags and Markdown headings
func NewDocument(e entry.Entry) Document {
	headings := markdownHeadings(e.Content)
	text := strings.Join([]string{e.Title, e.Topic, strings.Join(e.Tags, " "), headings}, " ")
	e.Content = ""
	return Document{
		Entry:    e,
		Keywords: ExtractKeywords(text),
		headings: strings.ToLower(headings),
	}
}

// ExtractKeywords lowercases text, drops punctuation and stopwords, and dedupes
func ExtractKeywords(text string) []string {
	normalized := nonWord.ReplaceAllString(strings.ToLower(text), " ")

	seen := make(map[string]bool)
	var keywords []string
	for _, word := range strings.Fields(normalized) {
		if len(word) < 3 || stopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	return keywords
}

func markdownHeadings(content string) string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "#") {
			out = append(out, strings.TrimSpace(strings.TrimLeft(line, "#")))
		}
	}
	return strings.Join(out, " ")
}

// Search returns documents matching query, best first. Ties keep input order.
func Search(docs []Document, query string) []Result {
	queryWords := strings.Fields(nonWord.ReplaceAllString(strings.ToLower(query), " "))
	if len(queryWords) == 0 {
		return nil
	}

	var results []Result
	for _, doc := range docs {
		if score := scoreMatch(doc, queryWords); score > 0 {
			results = append(results, Result{Entry: doc.Entry, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func scoreMatch(doc Document, queryWords []string) int {
	score := 0
	slugWords := strings.Split(doc.Entry.Slug, "-")
	titleLower := strings.ToLower(doc.Entry.Title)

	for _, qw := range queryWords {
		// Slug match is highest value
		if doc.Entry.Slug == qw {
			score += 100
		} else if contains(slugWords, qw) {
			score += 50
		} else if strings.Contains(doc.Entry.Slug, qw) {
			score += 25
		}

		for _, alias := range doc.Entry.Aliases {
			if strings.EqualFold(alias, qw) {
				score += 40
			}
		}

		if strings.Contains(titleLower, qw) {
			score += 10
		}
		if strings.Contains(doc.headings, qw) {
			score += 5
		}

		for _, kw := range doc.Keywords {
			if kw == qw {
				score += 20
			} else if strings.Contains(kw, qw) {
				score += 5
			}
		}
	}
	return score
}

func contains(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}
