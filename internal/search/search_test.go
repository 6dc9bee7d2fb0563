package search

import (
	"reflect"
	"testing"

	"github.com/kennyg/lore/internal/entry"
)

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("The Saga Pattern: using compensating transactions, and the saga log")
	want := []string{"saga", "pattern", "compensating", "transactions", "log"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords() = %v, want %v", got, want)
	}
}

func docs() []Document {
	return []Document{
		NewDocument(entry.Entry{
			Slug:    "event-sourcing",
			Title:   "Event Sourcing",
			Tags:    []string{"architecture"},
			Content: "# Event Sourcing\n\n## Snapshots\n\nStore events.",
		}),
		NewDocument(entry.Entry{
			Slug:    "domain-driven-design",
			Title:   "Domain-Driven Design",
			Aliases: []string{"ddd"},
			Content: "# DDD\n\n## Aggregates and events\n",
		}),
		NewDocument(entry.Entry{
			Slug:  "react-hooks",
			Title: "React Hooks",
		}),
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"sourcing", []string{"event-sourcing"}},
		{"event", []string{"event-sourcing", "domain-driven-design"}},
		{"events", []string{"domain-driven-design"}},
		{"ddd", []string{"domain-driven-design"}},
		{"snapshots", []string{"event-sourcing"}},
		{"hooks", []string{"react-hooks"}},
		{"kubernetes", nil},
		{"  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got []string
			for _, r := range Search(docs(), tt.query) {
				got = append(got, r.Entry.Slug)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestNewDocument_DropsContent(t *testing.T) {
	doc := NewDocument(entry.Entry{Slug: "cqrs", Content: "# CQRS\nbody"})
	if doc.Entry.Content != "" {
		t.Error("document should not keep the full content")
	}
	if !reflect.DeepEqual(doc.Keywords, []string{"cqrs"}) {
		t.Errorf("Keywords = %v", doc.Keywords)
	}
}
