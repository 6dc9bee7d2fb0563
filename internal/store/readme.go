package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/kennyg/lore/internal/entry"
)

const maxTitleLen = 35

func shortTitle(title string) string {
	if len(title) > maxTitleLen {
		return title[:maxTitleLen-3] + "..."
	}
	return title
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("2006-01-02")
}

// renderCacheReadme renders the Tier-1 README with validity status per entry
func renderCacheReadme(root string, entries []entry.Entry, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Research Cache\n\n")
	b.WriteString("User-level cache for cross-project research reuse.\n\n")
	fmt.Fprintf(&b, "**Location:** `%s`\n", root)
	fmt.Fprintf(&b, "**Entries:** %d\n\n", len(entries))
	b.WriteString("## Index\n\n")
	b.WriteString("| Slug | Title | Researched | Expires | Status |\n")
	b.WriteString("|------|-------|------------|---------|--------|\n")

	var valid, expired int
	for i := range entries {
		e := &entries[i]
		status := "Valid"
		if e.Expired(now) {
			status = "Expired"
			expired++
		} else {
			valid++
		}
		created := e.CreatedAt
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			e.Slug, shortTitle(e.DisplayTitle()), formatDate(&created), formatDate(e.ExpiresAt), status)
	}

	b.WriteString("\n## Summary\n\n")
	fmt.Fprintf(&b, "- **Valid:** %d\n", valid)
	fmt.Fprintf(&b, "- **Expired:** %d\n", expired)
	b.WriteString("\n## Commands\n\n")
	b.WriteString("```bash\n")
	b.WriteString("lore research <topic>   # research a topic\n")
	b.WriteString("lore promote <slug>     # promote to project docs\n")
	b.WriteString("lore refresh <slug>     # refresh expired research\n")
	b.WriteString("```\n")
	return b.String()
}

// renderDocsReadme renders the Tier-2 README linking each promoted document
func renderDocsReadme(entries []entry.Entry) string {
	var b strings.Builder
	b.WriteString("# Research Index\n\n")
	b.WriteString("Curated technical research for this project.\n\n")
	b.WriteString("## Topics\n\n")
	b.WriteString("| Topic | Promoted | Last Refreshed | Team Notes |\n")
	b.WriteString("|-------|----------|----------------|------------|\n")

	var withNotes int
	for i := range entries {
		e := &entries[i]
		notes := "—"
		if e.HasNotes {
			notes = "Yes"
			withNotes++
		}
		created := e.CreatedAt
		fmt.Fprintf(&b, "| [%s](%s%s) | %s | %s | %s |\n",
			shortTitle(e.DisplayTitle()), e.Slug, entry.DocExt, formatDate(e.PromotedAt), formatDate(&created), notes)
	}

	b.WriteString("\n## Summary\n\n")
	fmt.Fprintf(&b, "- **Total:** %d\n", len(entries))
	fmt.Fprintf(&b, "- **With team notes:** %d\n", withNotes)
	fmt.Fprintf(&b, "- **Without team notes:** %d\n", len(entries)-withNotes)
	b.WriteString("\n## Contributing\n\n")
	b.WriteString("1. Research new topics: `lore research <topic>`\n")
	b.WriteString("2. Promote valuable research: `lore promote <slug>`\n")
	b.WriteString("3. Add team context in the TEAM-NOTES section\n")
	b.WriteString("4. Refresh when needed: `lore refresh <slug>`\n")
	return b.String()
}
