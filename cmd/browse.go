package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kennyg/lore/internal/browse"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse research interactively",
	Long: `Open a full-screen list of both tiers. Type / to filter, enter to read
an entry, p to promote the selected cache entry, q to quit.`,
	Args: cobra.NoArgs,
	Run:  runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) {
	a := openApp(false)
	if err := browse.Run(cmd.Context(), a.service); err != nil {
		fail("browse", err)
	}
}
