package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kennyg/lore/internal/entry"
	"github.com/kennyg/lore/internal/research"
	"github.com/kennyg/lore/internal/ui"
)

// Output formats for commands that print an entry
const (
	formatText     = "text"
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatPath     = "path"
	formatTable    = "table"
)

// resultJSON is the machine-readable shape of a research result
type resultJSON struct {
	entry.Entry
	Status  string `json:"status"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// entryPath is where the entry's findings live on disk
func (a *app) entryPath(e *entry.Entry) string {
	if e.Tier == entry.TierDocs {
		return a.docs.DocPath(e.Slug)
	}
	return a.cache.ContentPath(e.Slug)
}

func (a *app) printResult(res *research.Result, format string) {
	e := res.Entry
	switch format {
	case formatJSON:
		printJSON(resultJSON{Entry: *e, Status: string(res.Status), Path: a.entryPath(e), Content: e.Content})
	case formatMarkdown:
		fmt.Print(e.Content)
		if !strings.HasSuffix(e.Content, "\n") {
			fmt.Println()
		}
	case formatPath:
		fmt.Println(a.entryPath(e))
	default:
		a.printEntry(e, res.Status, true)
	}
}

// printEntry prints a header card, then the content when withContent is set
func (a *app) printEntry(e *entry.Entry, status research.Status, withContent bool) {
	now := time.Now()
	fmt.Println()
	fmt.Printf("  %s %s  %s\n", ui.TierBadge(string(e.Tier)), ui.StatusBadge(string(status)), ui.Render(ui.Highlight, e.DisplayTitle()))
	fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("    slug:       %s", e.Slug)))
	fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("    researched: %s (%s)", e.CreatedAt.Local().Format("2006-01-02 15:04"), ui.Age(e.CreatedAt, now))))
	if e.Tier == entry.TierCache {
		fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("    expires:    %s", ui.Until(e.ExpiresAt, now))))
	}
	if e.PromotedAt != nil {
		fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("    promoted:   %s", e.PromotedAt.Local().Format("2006-01-02"))))
	}
	if e.Provider != "" {
		fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("    provider:   %s", e.Provider)))
	}
	if len(e.Aliases) > 0 {
		fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("    aliases:    %s", strings.Join(e.Aliases, ", "))))
	}
	if len(e.Tags) > 0 {
		fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("    tags:       %s", strings.Join(e.Tags, ", "))))
	}
	fmt.Println(ui.Render(ui.Muted, "    path:       ") + ui.Render(ui.Link, a.entryPath(e)))

	if !withContent {
		fmt.Println()
		return
	}

	fmt.Println()
	fmt.Println(ui.SectionHeader("Findings"))
	fmt.Println()
	fmt.Println(strings.TrimRight(e.Content, "\n"))

	if strings.TrimSpace(e.TeamNotes) != "" {
		fmt.Println()
		fmt.Println(ui.SectionHeader("Team Notes"))
		fmt.Println()
		fmt.Println(strings.TrimRight(e.TeamNotes, "\n"))
	}
	if len(e.Sources) > 0 {
		fmt.Println()
		fmt.Println(ui.SectionHeader("Sources"))
		fmt.Println()
		for _, src := range e.Sources {
			fmt.Println("  " + ui.Render(ui.Link, src))
		}
	}
	fmt.Println(ui.PageFooter())
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		exitWithError(fmt.Sprintf("encode json: %v", err))
	}
}

func checkFormat(format string, allowed ...string) {
	for _, f := range allowed {
		if f == format {
			return
		}
	}
	exitWithError(fmt.Sprintf("unknown format %q (want one of %s)", format, strings.Join(allowed, ", ")))
}
