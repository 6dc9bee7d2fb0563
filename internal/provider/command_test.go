package provider

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kennyg/lore/internal/research"
)

func TestCommandArgs(t *testing.T) {
	t.Parallel()

	req := research.Request{Slug: "event-sourcing", Topic: "Event Sourcing"}
	tests := []struct {
		name string
		argv []string
		want []string
	}{
		{"appends topic", []string{"research.sh", "--deep"}, []string{"--deep", "Event Sourcing"}},
		{"topic placeholder", []string{"llm", "-p", "explain {topic}"}, []string{"-p", "explain Event Sourcing"}},
		{"slug placeholder", []string{"cat", "notes/{slug}.md"}, []string{"notes/event-sourcing.md"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			p, err := NewCommand(testCase.argv, nil)
			if err != nil {
				t.Fatalf("NewCommand failed: %v", err)
			}
			if got := p.args(req); !reflect.DeepEqual(got, testCase.want) {
				t.Fatalf("args = %q, want %q", got, testCase.want)
			}
		})
	}
}

func TestCommandResearch(t *testing.T) {
	t.Parallel()

	p, err := NewCommand([]string{"sh", "-c", `printf '# %s\n\nSee https://example.com/%s\n' "$LORE_TOPIC" "$LORE_SLUG"`}, nil)
	if err != nil {
		t.Fatalf("NewCommand failed: %v", err)
	}

	findings, err := p.Research(context.Background(), research.Request{Slug: "cqrs", Topic: "CQRS"})
	if err != nil {
		t.Fatalf("Research failed: %v", err)
	}
	if findings.Title != "CQRS" {
		t.Fatalf("title = %q", findings.Title)
	}
	if len(findings.Sources) != 1 || findings.Sources[0] != "https://example.com/cqrs" {
		t.Fatalf("sources = %v", findings.Sources)
	}
}

func TestCommandResearchFailure(t *testing.T) {
	t.Parallel()

	p, err := NewCommand([]string{"sh", "-c", "echo 'no credits left' >&2; exit 3"}, nil)
	if err != nil {
		t.Fatalf("NewCommand failed: %v", err)
	}

	_, err = p.Research(context.Background(), research.Request{Slug: "x", Topic: "x"})
	if err == nil || !strings.Contains(err.Error(), "no credits left") {
		t.Fatalf("error = %v, want stderr in message", err)
	}
}

func TestCommandResearchHonoursDeadline(t *testing.T) {
	t.Parallel()

	p, err := NewCommand([]string{"sh", "-c", "exec sleep 10"}, nil)
	if err != nil {
		t.Fatalf("NewCommand failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = p.Research(ctx, research.Request{Slug: "x", Topic: "x"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("command was not killed at the deadline")
	}
}

func TestNewCommandRequiresArgv(t *testing.T) {
	t.Parallel()

	for _, argv := range [][]string{nil, {}, {"  "}} {
		if _, err := NewCommand(argv, nil); err == nil {
			t.Errorf("NewCommand(%q) expected error", argv)
		}
	}
}
