package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kennyg/lore/internal/doctor"
	"github.com/kennyg/lore/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the configuration is usable",
	Long: `Verify that both tiers are writable, the research provider has what it
needs (API key, token or binary), and the agent skill is installed.

Exits non-zero when a required check fails.`,
	Args: cobra.NoArgs,
	Run:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) {
	fmt.Println()
	fmt.Println(ui.SectionHeader("Diagnosing"))
	fmt.Println()

	if len(cfg.Sources) == 0 {
		fmt.Println(ui.Render(ui.Muted, "  No config file found, using defaults"))
	}
	for _, src := range cfg.Sources {
		fmt.Println(ui.Render(ui.Muted, "  Config: "+src))
	}
	fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("  TTL: %s  Timeout: %s", cfg.TTL, cfg.Timeout)))
	fmt.Println()

	results := doctor.VerifyAll(doctor.ForConfig(cfg, paths.Home))
	for _, r := range results {
		label := fmt.Sprintf("%s: %s", r.Requirement.Source, r.Requirement.Value)
		switch {
		case r.Satisfied:
			fmt.Printf("  %s %s\n", ui.Render(ui.Success, "✓"), label)
		case r.Requirement.Optional:
			fmt.Printf("  %s %s\n", ui.Render(ui.Warning, "!"), label)
		default:
			fmt.Printf("  %s %s\n", ui.Render(ui.Error, "✗"), label)
		}
		if r.Message != "" {
			for _, line := range strings.Split(r.Message, "\n") {
				fmt.Println(ui.Render(ui.Muted, "      "+strings.TrimSpace(line)))
			}
		}
	}
	fmt.Println(ui.PageFooter())

	if doctor.HasUnsatisfied(results) {
		os.Exit(1)
	}
}
