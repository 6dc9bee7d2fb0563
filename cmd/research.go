package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kennyg/lore/internal/research"
	"github.com/kennyg/lore/internal/ui"
)

var researchCmd = &cobra.Command{
	Use:     "research <topic>",
	Aliases: []string{"r"},
	Short:   "Get research for a topic, running it only on a cache miss",
	Long: `Look the topic up in the personal cache and the project's promoted docs.
Only when neither has a fresh copy is the configured provider asked to
research it; the result is cached for the configured TTL.

Examples:
  lore research "Domain-Driven Design"
  lore research DDD --format markdown
  lore r "event sourcing" --format path`,
	Args: cobra.MinimumNArgs(1),
	Run:  runResearch,
}

var checkCmd = &cobra.Command{
	Use:   "check <topic>",
	Short: "Show cached research without ever researching",
	Long: `Look the topic up in both tiers. Expired entries are shown with an
EXPIRED badge instead of being researched again.

Exits non-zero when nothing is cached.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runCheck,
}

var (
	researchFormat string
	checkFormatArg string
)

func init() {
	researchCmd.Flags().StringVarP(&researchFormat, "format", "f", formatText, "Output format: text, markdown, json or path")
	checkCmd.Flags().StringVarP(&checkFormatArg, "format", "f", formatText, "Output format: text, markdown, json or path")
}

func runResearch(cmd *cobra.Command, args []string) {
	checkFormat(researchFormat, formatText, formatMarkdown, formatJSON, formatPath)
	topic := strings.Join(args, " ")
	a := openApp(true)

	if researchFormat == formatText {
		fmt.Println(ui.InfoLine(fmt.Sprintf("Looking up %q", topic)))
	}

	res, err := a.service.Research(cmd.Context(), topic)
	if err != nil {
		fail("research", err)
	}

	if researchFormat == formatText && res.Status == research.StatusResearched {
		fmt.Println(ui.SuccessLine(fmt.Sprintf("Researched and cached %s", res.Entry.Slug)))
	}
	a.printResult(res, researchFormat)
}

func runCheck(cmd *cobra.Command, args []string) {
	checkFormat(checkFormatArg, formatText, formatMarkdown, formatJSON, formatPath)
	a := openApp(false)

	res, err := a.service.Check(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		fail("check", err)
	}
	a.printResult(res, checkFormatArg)
}
