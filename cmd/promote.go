package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kennyg/lore/internal/ui"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <slug>",
	Short: "Copy cached research into the project's docs/research",
	Long: `Promote a tier-1 entry to a version-controlled tier-2 document.

The document gets an AUTO-GENERATED block with the findings and a TEAM-NOTES
block for your own context. Promoting again rewrites the generated block and
keeps the team notes. The personal cache copy is left in place.

Examples:
  lore promote domain-driven-design
  lore promote DDD`,
	Args: cobra.ExactArgs(1),
	Run:  runPromote,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh <slug>",
	Short: "Research a cached topic again, keeping team notes",
	Long: `Force a new research run for a topic that is already cached or promoted.

Team notes carry over to the new entry. When the topic is promoted, its
tier-2 document is rewritten with the new findings and the same notes.`,
	Args: cobra.ExactArgs(1),
	Run:  runRefresh,
}

var refreshFormat string

func init() {
	refreshCmd.Flags().StringVarP(&refreshFormat, "format", "f", formatText, "Output format: text, markdown, json or path")
}

func runPromote(cmd *cobra.Command, args []string) {
	a := openApp(false)

	res, err := a.service.Promote(cmd.Context(), args[0])
	if err != nil {
		fail("promote", err)
	}

	fmt.Println()
	fmt.Println(ui.SuccessLine(fmt.Sprintf("Promoted %s", res.Entry.Slug)))
	fmt.Println(ui.Render(ui.Muted, "    "+a.entryPath(res.Entry)))
	if res.Entry.HasNotes {
		fmt.Println(ui.Render(ui.Muted, "    Existing team notes were kept."))
	} else {
		fmt.Println(ui.Render(ui.Muted, "    Add team context between the TEAM-NOTES markers and commit the file."))
	}
	fmt.Println()
}

func runRefresh(cmd *cobra.Command, args []string) {
	checkFormat(refreshFormat, formatText, formatMarkdown, formatJSON, formatPath)
	a := openApp(true)

	if refreshFormat == formatText {
		fmt.Println(ui.InfoLine(fmt.Sprintf("Refreshing %s", args[0])))
	}

	res, err := a.service.Refresh(cmd.Context(), args[0])
	if err != nil {
		fail("refresh", err)
	}

	if refreshFormat == formatText {
		fmt.Println(ui.SuccessLine(fmt.Sprintf("Refreshed %s", res.Entry.Slug)))
		if promoted, err := a.docs.Lookup(cmd.Context(), res.Entry.Slug); err == nil {
			fmt.Println(ui.Render(ui.Muted, "    Promoted copy updated: "+a.entryPath(promoted)))
		}
	}
	a.printResult(res, refreshFormat)
}
