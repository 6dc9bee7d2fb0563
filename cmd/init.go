package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kennyg/lore/internal/config"
	"github.com/kennyg/lore/internal/provider"
	"github.com/kennyg/lore/internal/store"
	"github.com/kennyg/lore/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up lore for this project",
	Long: `Create .config/lore/config.yaml and the docs/research directory in the
current project. With --global the config is written to your user config
directory instead and no project files are touched.

Examples:
  lore init --provider openai
  lore init --global --provider gemini --ttl 14d`,
	Args: cobra.NoArgs,
	Run:  runInit,
}

var (
	initProvider string
	initTTL      string
	initDocsDir  string
	initGlobal   bool
	initForce    bool
)

func init() {
	initCmd.Flags().StringVarP(&initProvider, "provider", "p", "", "Research provider ("+strings.Join(provider.Names(), ", ")+")")
	initCmd.Flags().StringVar(&initTTL, "ttl", "", "How long cached research stays fresh, e.g. 30d or never")
	initCmd.Flags().StringVar(&initDocsDir, "docs", config.DocsDir, "Promoted docs directory, relative to the project root")
	initCmd.Flags().BoolVarP(&initGlobal, "global", "g", false, "Write the user config instead of the project config")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) {
	fmt.Println()
	fmt.Println(ui.SectionHeader("Setting up lore"))
	fmt.Println()

	target := paths.UserConfigFile
	root := ""
	if !initGlobal {
		cwd, err := os.Getwd()
		if err != nil {
			exitWithError(fmt.Sprintf("failed to get current directory: %v", err))
		}
		root = cwd
		if paths.ProjectRoot != "" {
			root = paths.ProjectRoot
		}
		target = filepath.Join(root, ".config", config.ConfigDir, config.ConfigFile)
	}

	if _, err := os.Stat(target); err == nil && !initForce {
		exitWithError(fmt.Sprintf("%s already exists (use --force to overwrite)", target))
	}

	out := &config.Config{}
	if initProvider != "" {
		known := false
		for _, name := range provider.Names() {
			known = known || name == initProvider
		}
		if !known {
			exitWithError(fmt.Sprintf("unknown provider %q (want one of %s)", initProvider, strings.Join(provider.Names(), ", ")))
		}
		out.Provider.Name = initProvider
	}
	if initTTL != "" {
		ttl, err := config.ParseDuration(initTTL)
		if err != nil {
			exitWithError(err.Error())
		}
		out.TTL = ttl
	}
	if !initGlobal && initDocsDir != config.DocsDir {
		out.DocsDir = initDocsDir
	}

	if err := out.Save(target); err != nil {
		exitWithError(fmt.Sprintf("failed to write %s: %v", target, err))
	}
	fmt.Println(ui.Render(ui.Muted, "  Created "+target))

	if !initGlobal {
		docsDir := initDocsDir
		if !filepath.IsAbs(docsDir) {
			docsDir = filepath.Join(root, docsDir)
		}
		readme, err := store.NewDocsStore(docsDir, store.WithLogger(logger)).WriteReadme(cmd.Context())
		if err != nil {
			exitWithError(fmt.Sprintf("failed to create %s: %v", docsDir, err))
		}
		fmt.Println(ui.Render(ui.Muted, "  Created "+readme))
	}

	fmt.Println()
	fmt.Println(ui.SuccessLine("lore is ready"))
	fmt.Println()
	fmt.Println(ui.Render(ui.Muted, "  Next steps:"))
	if initProvider == "" {
		fmt.Println(ui.Render(ui.Muted, "    1. Set provider.name in "+target))
	} else {
		fmt.Println(ui.Render(ui.Muted, "    1. Export the API key for "+initProvider+" if it needs one"))
	}
	fmt.Println(ui.Render(ui.Muted, "    2. Run 'lore research <topic>'"))
	fmt.Println(ui.Render(ui.Muted, "    3. Run 'lore promote <slug>' for research the team should share"))
	fmt.Println(ui.PageFooter())
}
