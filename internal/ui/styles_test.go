package ui

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"domain-driven-design", 10, "domain-..."},
		{"événementiel", 6, "évé..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := Age(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("Age(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestUntil(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time { v := now.Add(d); return &v }

	tests := []struct {
		in   *time.Time
		want string
	}{
		{nil, "never"},
		{at(-time.Minute), "expired"},
		{at(90 * time.Second), "in 2m"},
		{at(5 * time.Hour), "in 5h"},
		{at(72 * time.Hour), "in 3d"},
	}
	for _, tt := range tests {
		if got := Until(tt.in, now); got != tt.want {
			t.Errorf("Until() = %q, want %q", got, tt.want)
		}
	}
}

func TestBadgesPlain(t *testing.T) {
	old := IsTTY
	IsTTY = false
	t.Cleanup(func() { IsTTY = old })

	if got := TierBadge("docs"); got != "[DOCS]" {
		t.Errorf("TierBadge(docs) = %q", got)
	}
	if got := StatusBadge("expired"); got != "[EXPIRED]" {
		t.Errorf("StatusBadge(expired) = %q", got)
	}
	if got := SectionHeader("Index"); got != "=== Index ===" {
		t.Errorf("SectionHeader() = %q", got)
	}
}
