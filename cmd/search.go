package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kennyg/lore/internal/research"
	"github.com/kennyg/lore/internal/search"
	"github.com/kennyg/lore/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Aliases: []string{"apropos", "find"},
	Short:   "Search cached and promoted research by keyword",
	Long: `Rank entries in both tiers by how well their slug, aliases, title, tags
and section headings match the query. Nothing is researched.

Examples:
  lore search events
  lore apropos "consistency boundaries"`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSearch,
}

var (
	searchLimit  int
	searchFormat string
)

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "Maximum results")
	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", formatTable, "Output format: table or json")
}

func runSearch(cmd *cobra.Command, args []string) {
	checkFormat(searchFormat, formatTable, formatJSON)
	query := strings.Join(args, " ")
	ctx := cmd.Context()

	a := openApp(false)
	listings, err := a.service.List(ctx)
	if err != nil {
		fail("search", err)
	}

	docs := make([]search.Document, 0, len(listings))
	for _, l := range listings {
		e, err := a.service.Lookup(ctx, l.Slug, l.Tier)
		if errors.Is(err, research.ErrNotFound) {
			continue
		}
		if err != nil {
			fail("search", err)
		}
		docs = append(docs, search.NewDocument(*e))
	}

	results := search.Search(docs, query)
	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}

	if searchFormat == formatJSON {
		printJSON(results)
		return
	}

	if len(results) == 0 {
		fmt.Println()
		fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("  Nothing cached matches %q", query)))
		fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("  Run `lore research %q` to research it", query)))
		fmt.Println()
		return
	}

	fmt.Println()
	fmt.Println(ui.SectionHeader(fmt.Sprintf("Results for %q", query)))
	fmt.Println()
	for _, r := range results {
		fmt.Printf("  %s %s\n", ui.TierBadge(string(r.Entry.Tier)), ui.Render(ui.Highlight, r.Entry.DisplayTitle()))
		fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("      %s · score %d", r.Entry.Slug, r.Score)))
	}
	fmt.Println(ui.PageFooter())
}
