package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kennyg/lore/internal/config"
	"github.com/kennyg/lore/internal/skill"
	"github.com/kennyg/lore/internal/ui"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Manage the agent skill that teaches your coding agent to use lore",
}

var skillInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the lore skill for your coding agents",
	Long: `Write the lore-research skill into the configured agent's directory, or
into every detected agent with --all. Claude Code, OpenCode, Gemini CLI and
Amp get a SKILL.md; Cursor and Windsurf get a rule file.`,
	Args: cobra.NoArgs,
	Run:  runSkillInstall,
}

var skillPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the skill instead of installing it",
	Args:  cobra.NoArgs,
	Run:   runSkillPrint,
}

var (
	skillAll    bool
	skillAgent  string
	skillForce  bool
	skillFormat string
)

func init() {
	skillInstallCmd.Flags().BoolVarP(&skillAll, "all", "a", false, "Install for every detected agent")
	skillInstallCmd.Flags().StringVar(&skillAgent, "agent", "", "Install for this agent instead of the configured one")
	skillInstallCmd.Flags().BoolVar(&skillForce, "force", false, "Overwrite files lore did not write")
	skillPrintCmd.Flags().StringVar(&skillFormat, "as", string(skill.FormatSkill), "Layout: skill or rule")

	skillCmd.AddCommand(skillInstallCmd)
	skillCmd.AddCommand(skillPrintCmd)
}

func runSkillInstall(cmd *cobra.Command, args []string) {
	var agents []config.AgentConfig
	switch {
	case skillAll:
		agents = config.DetectInstalledAgents(paths.Home)
		if len(agents) == 0 {
			exitWithError("no coding agents detected in " + paths.Home)
		}
	case skillAgent != "":
		a := config.GetAgentConfig(config.Agent(skillAgent))
		if a == nil {
			exitWithError(fmt.Sprintf("unknown agent %q", skillAgent))
		}
		agents = append(agents, *a)
	default:
		agents = append(agents, *config.GetAgentConfig(cfg.Agent))
	}

	fmt.Println()
	s := skill.Default(Version)
	failed := false
	for _, agent := range agents {
		target := skill.TargetFor(paths.Home, agent)
		res, err := skill.Install(target, s, skillForce)
		if err != nil {
			failed = true
			fmt.Println(ui.WarningLine(fmt.Sprintf("%s: %v", agent.DisplayName, err)))
			continue
		}
		fmt.Println(ui.SuccessLine(fmt.Sprintf("%s: %s", agent.DisplayName, res)))
		fmt.Println(ui.Render(ui.Muted, "    "+target.Path))
	}
	fmt.Println()
	if failed {
		exitWithError("some agents were skipped")
	}
}

func runSkillPrint(cmd *cobra.Command, args []string) {
	data, err := skill.Default(Version).Render(skill.Format(skillFormat))
	if err != nil {
		exitWithError(err.Error())
	}
	fmt.Print(string(data))
}
