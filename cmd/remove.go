package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kennyg/lore/internal/entry"
	"github.com/kennyg/lore/internal/ui"
)

var removeCmd = &cobra.Command{
	Use:     "remove <slug>",
	Aliases: []string{"rm", "delete", "forget"},
	Short:   "Remove research from one or both tiers",
	Long: `Remove an entry from the personal cache, the promoted docs, or both.

Examples:
  lore remove saga-pattern
  lore rm saga-pattern --tier cache`,
	Args: cobra.ExactArgs(1),
	Run:  runRemove,
}

var removeTier string

func init() {
	removeCmd.Flags().StringVarP(&removeTier, "tier", "t", "", "Only remove from this tier (cache or docs)")
}

func runRemove(cmd *cobra.Command, args []string) {
	var tiers []entry.Tier
	if removeTier != "" {
		t, ok := entry.ParseTier(removeTier)
		if !ok {
			exitWithError(fmt.Sprintf("unknown tier %q (want cache or docs)", removeTier))
		}
		tiers = append(tiers, t)
	}

	a := openApp(false)
	key, err := a.service.Resolve(cmd.Context(), args[0])
	if err != nil {
		fail("remove", err)
	}
	if err := a.service.Remove(cmd.Context(), key, tiers...); err != nil {
		fail("remove", err)
	}

	where := "both tiers"
	if len(tiers) == 1 {
		where = tiers[0].Label()
	}
	fmt.Println()
	fmt.Println(ui.SuccessLine(fmt.Sprintf("Removed %s from %s", key, where)))
	fmt.Println()
}
