package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kennyg/lore/internal/entry"
	"github.com/kennyg/lore/internal/research"
	"github.com/kennyg/lore/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"index", "ls"},
	Short:   "List research in both tiers",
	Long: `Show every cached and promoted entry, newest first.
Expired cache entries are listed with their status so they can be refreshed.`,
	Run: runList,
}

var (
	listFormat string
	listTier   string
)

func init() {
	listCmd.Flags().StringVarP(&listFormat, "format", "f", formatTable, "Output format: table or json")
	listCmd.Flags().StringVarP(&listTier, "tier", "t", "", "Only show one tier (cache or docs)")
}

func runList(cmd *cobra.Command, args []string) {
	checkFormat(listFormat, formatTable, formatJSON)

	var only entry.Tier
	if listTier != "" {
		t, ok := entry.ParseTier(listTier)
		if !ok {
			exitWithError(fmt.Sprintf("unknown tier %q (want cache or docs)", listTier))
		}
		only = t
	}

	a := openApp(false)
	listings, err := a.service.List(cmd.Context())
	if err != nil {
		fail("list", err)
	}

	filtered := listings[:0:0]
	for _, l := range listings {
		if only == "" || l.Tier == only {
			filtered = append(filtered, l)
		}
	}

	if listFormat == formatJSON {
		printJSON(filtered)
		return
	}

	if len(filtered) == 0 {
		fmt.Print(ui.EmptyIndex())
		return
	}

	fmt.Println()
	fmt.Println(ui.SectionHeader("Research Index"))
	fmt.Println()

	now := time.Now()
	width := max(ui.TerminalWidth()-40, 20)
	counts := map[research.Status]int{}
	var promoted int
	for _, l := range filtered {
		if l.Tier == entry.TierDocs {
			promoted++
		} else {
			counts[l.Status]++
		}

		name := ui.Render(lipgloss.NewStyle().Foreground(ui.White).Bold(true), ui.Truncate(l.DisplayTitle(), width))
		if l.Status == research.StatusExpired {
			name = ui.Render(ui.Dim, ui.Truncate(l.DisplayTitle(), width))
		}
		fmt.Printf("  %s %s %s\n", ui.TierBadge(string(l.Tier)), ui.StatusBadge(string(l.Status)), name)

		detail := fmt.Sprintf("      %s · researched %s", l.Slug, ui.Age(l.CreatedAt, now))
		if l.Tier == entry.TierCache {
			detail += " · expires " + ui.Until(l.ExpiresAt, now)
		}
		if l.HasNotes {
			detail += " · team notes"
		}
		fmt.Println(ui.Render(ui.Muted, detail))
	}

	fmt.Println()
	footer := fmt.Sprintf("  %d cached (%d fresh, %d expired), %d promoted",
		counts[research.StatusFresh]+counts[research.StatusExpired],
		counts[research.StatusFresh], counts[research.StatusExpired], promoted)
	fmt.Println(ui.Render(ui.Dim, footer))
	fmt.Println(ui.PageFooter())
}
