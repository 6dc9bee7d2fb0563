package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kennyg/lore/internal/entry"
	"github.com/kennyg/lore/internal/research"
)

var showCmd = &cobra.Command{
	Use:     "show <slug>",
	Aliases: []string{"cat", "info"},
	Short:   "Print a cached or promoted entry",
	Long: `Print one entry from a specific tier, or from whichever tier has it
(promoted docs first) when --tier is not given.`,
	Args: cobra.ExactArgs(1),
	Run:  runShow,
}

var (
	showTier   string
	showFormat string
)

func init() {
	showCmd.Flags().StringVarP(&showTier, "tier", "t", "", "Tier to read from (cache or docs)")
	showCmd.Flags().StringVarP(&showFormat, "format", "f", formatText, "Output format: text, markdown, json or path")
}

func runShow(cmd *cobra.Command, args []string) {
	checkFormat(showFormat, formatText, formatMarkdown, formatJSON, formatPath)

	tiers := []entry.Tier{entry.TierDocs, entry.TierCache}
	if showTier != "" {
		t, ok := entry.ParseTier(showTier)
		if !ok {
			exitWithError(fmt.Sprintf("unknown tier %q (want cache or docs)", showTier))
		}
		tiers = []entry.Tier{t}
	}

	a := openApp(false)
	for _, tier := range tiers {
		e, err := a.service.Lookup(cmd.Context(), args[0], tier)
		if errors.Is(err, research.ErrNotFound) {
			continue
		}
		if err != nil {
			fail("show", err)
		}

		status := research.StatusFresh
		if e.Expired(time.Now()) {
			status = research.StatusExpired
		}
		a.printResult(&research.Result{Entry: e, Tier: tier, Status: status}, showFormat)
		return
	}
	fail("show", fmt.Errorf("show %s: %w", args[0], research.ErrNotFound))
}
