package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kennyg/lore/internal/ui"
)

var readmeCmd = &cobra.Command{
	Use:     "readme",
	Aliases: []string{"reindex"},
	Short:   "Rebuild both tiers' README.md and the promoted docs index",
	Long: `Regenerate the README.md index of each tier. The tier-2 manifest is
rebuilt from the documents on disk first, so hand-added or renamed documents
are picked up.`,
	Args: cobra.NoArgs,
	Run:  runReadme,
}

func runReadme(cmd *cobra.Command, args []string) {
	a := openApp(false)
	ctx := cmd.Context()

	n, err := a.docs.Reindex(ctx)
	if err != nil {
		fail("reindex", err)
	}
	docsReadme, err := a.docs.WriteReadme(ctx)
	if err != nil {
		fail("readme", err)
	}
	cacheReadme, err := a.cache.WriteReadme(ctx)
	if err != nil {
		fail("readme", err)
	}

	fmt.Println()
	fmt.Println(ui.SuccessLine(fmt.Sprintf("Indexed %d promoted documents", n)))
	fmt.Println(ui.Render(ui.Muted, "    "+docsReadme))
	fmt.Println(ui.Render(ui.Muted, "    "+cacheReadme))
	fmt.Println()
}
