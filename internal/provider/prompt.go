package provider

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kennyg/lore/internal/entry"
	"github.com/kennyg/lore/internal/research"
)

const systemPrompt = `You are a senior engineer writing a research brief for a software team.
Answer in GitHub-flavoured Markdown. Start with a single "# " heading naming the topic.
Use these sections in order: Overview, Key Concepts, Best Practices, Common Pitfalls,
Tools and Libraries, References. Cite every source as a full URL in References.
Be concrete and prefer primary sources.`

func userPrompt(req research.Request) string {
	return fmt.Sprintf("Research the topic %q (cache key %q) and write the brief.", req.Topic, req.Slug)
}

var (
	urlPattern = regexp.MustCompile(`https?://[^\s<>()\[\]"'` + "`" + `]+`)
	urlTrim    = ".,;:!?*_"
)

// findingsFromMarkdown extracts the heading and cited URLs from a Markdown brief
func findingsFromMarkdown(text string) *research.Findings {
	text = strings.TrimSpace(text)
	f := &research.Findings{Content: text}

	for _, line := range strings.Split(text, "\n") {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			f.Title = strings.TrimSpace(title)
			break
		}
	}

	var sources []string
	for _, u := range urlPattern.FindAllString(text, -1) {
		sources = append(sources, strings.TrimRight(u, urlTrim))
	}
	f.Sources = entry.MergeStrings(nil, sources...)
	return f
}
