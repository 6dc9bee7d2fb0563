package store

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kennyg/lore/internal/entry"
)

// docFrontmatter is the YAML header of a promoted document
type docFrontmatter struct {
	Slug          string   `yaml:"slug"`
	Title         string   `yaml:"title"`
	Topic         string   `yaml:"topic,omitempty"`
	Aliases       []string `yaml:"aliases,omitempty"`
	Tags          []string `yaml:"tags,omitempty"`
	Sources       []string `yaml:"sources,omitempty"`
	Provider      string   `yaml:"provider,omitempty"`
	PromotedAt    string   `yaml:"promoted_at,omitempty"`
	LastRefreshed string   `yaml:"last_refreshed,omitempty"`
}

// splitFrontmatter separates a leading YAML block from the body.
// ok is false when the text has no complete frontmatter block.
func splitFrontmatter(text string) (header, body string, ok bool) {
	if !strings.HasPrefix(text, "---") {
		return "", text, false
	}
	rest := strings.TrimPrefix(text[3:], "\n")

	idx := strings.Index(rest, "\n---")
	if idx == -1 {
		return "", text, false
	}
	header = rest[:idx]
	body = strings.TrimPrefix(rest[idx+4:], "\n")
	return header, body, true
}

// renderDocument builds the promoted Markdown file for e.
// Content and notes are written verbatim, each on its own lines between the
// markers. Empty team notes are replaced by the template so the section is
// always present.
func renderDocument(e *entry.Entry) ([]byte, error) {
	fm := docFrontmatter{
		Slug:     e.Slug,
		Title:    e.DisplayTitle(),
		Topic:    e.Topic,
		Aliases:  e.Aliases,
		Tags:     e.Tags,
		Sources:  e.Sources,
		Provider: e.Provider,
	}
	if e.PromotedAt != nil {
		fm.PromotedAt = formatTime(*e.PromotedAt)
	}
	if !e.CreatedAt.IsZero() {
		fm.LastRefreshed = formatTime(e.CreatedAt)
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize frontmatter: %w", err)
	}

	notes := e.TeamNotes
	if strings.TrimSpace(notes) == "" {
		notes = entry.TeamNotesTemplate
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(entry.AutoStart + "\n")
	b.WriteString(e.Content + "\n")
	b.WriteString(entry.AutoEnd + "\n\n")
	b.WriteString(entry.TeamStart + "\n")
	b.WriteString(notes + "\n")
	b.WriteString(entry.TeamEnd + "\n")
	return []byte(b.String()), nil
}

// parseDocument reads a promoted document back into an entry.
// Documents without section markers are treated as entirely generated content.
func parseDocument(data []byte) (*entry.Entry, error) {
	header, body, ok := splitFrontmatter(string(data))
	if !ok {
		return nil, fmt.Errorf("missing frontmatter")
	}

	var fm docFrontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	e := &entry.Entry{
		Slug:     fm.Slug,
		Title:    fm.Title,
		Topic:    fm.Topic,
		Aliases:  fm.Aliases,
		Tags:     fm.Tags,
		Sources:  fm.Sources,
		Provider: fm.Provider,
		Tier:     entry.TierDocs,
	}
	if t, err := parseTime(fm.LastRefreshed); err == nil {
		e.CreatedAt = t
	}
	if t, err := parseTime(fm.PromotedAt); err == nil {
		e.PromotedAt = &t
	}

	e.Content, e.TeamNotes = splitSections(body)
	e.HasNotes = e.TeamNotes != ""
	return e, nil
}

// splitSections returns the generated block and the team notes of a document body
func splitSections(body string) (content, notes string) {
	teamStart := strings.LastIndex(body, entry.TeamStart)
	generated := body
	if teamStart >= 0 {
		rest := body[teamStart+len(entry.TeamStart):]
		if end := strings.Index(rest, entry.TeamEnd); end >= 0 {
			notes = betweenMarkers(rest[:end])
		} else {
			notes = strings.Trim(rest, "\n")
		}
		generated = body[:teamStart]
	}
	if strings.TrimSpace(notes) == strings.TrimSpace(entry.TeamNotesTemplate) {
		notes = ""
	}

	start := strings.Index(generated, entry.AutoStart)
	end := strings.LastIndex(generated, entry.AutoEnd)
	if start >= 0 && end > start {
		return betweenMarkers(generated[start+len(entry.AutoStart) : end]), notes
	}
	return strings.TrimSpace(generated), notes
}

// betweenMarkers drops the line breaks renderDocument puts after the opening
// marker and before the closing one, keeping everything else as written
func betweenMarkers(section string) string {
	for _, nl := range []string{"\r\n", "\n"} {
		if strings.HasPrefix(section, nl) {
			section = section[len(nl):]
			break
		}
	}
	for _, nl := range []string{"\r\n", "\n"} {
		if strings.HasSuffix(section, nl) {
			section = section[:len(section)-len(nl)]
			break
		}
	}
	return section
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
