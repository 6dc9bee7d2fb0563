package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kennyg/lore/internal/config"
	"github.com/kennyg/lore/internal/ui"
)

var (
	// Version is set at build time
	Version = "dev"
)

// Global flags
var (
	configFile  string
	verbose     bool
	cacheDirArg string
	docsDirArg  string
)

// Set up by PersistentPreRunE for every command
var (
	logger *zap.Logger
	cfg    *config.Config
	paths  *config.Paths
)

var rootCmd = &cobra.Command{
	Use:   "lore",
	Short: "Two-tier research cache for AI coding agents",
	Long: ui.Logo() + `
  Research a topic once and reuse it everywhere.

  Findings land in a personal cache shared by all your projects (tier-1).
  Promote the ones your team relies on into docs/research (tier-2), where
  they are version-controlled and can carry team notes.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/lore/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&cacheDirArg, "cache-dir", "", "Tier-1 cache directory")
	rootCmd.PersistentFlags().StringVar(&docsDirArg, "docs-dir", "", "Tier-2 documents directory")

	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(readmeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	l, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = l

	paths, err = config.GetPaths()
	if err != nil {
		return err
	}
	cfg, err = config.Load(paths, configFile)
	if err != nil {
		return err
	}
	if cacheDirArg != "" {
		cfg.CacheDir = cacheDirArg
	}
	if docsDirArg != "" {
		cfg.DocsDir = docsDirArg
	}

	logger.Debug("configuration loaded",
		zap.Strings("sources", cfg.Sources),
		zap.String("cache_dir", cfg.CacheDir),
		zap.String("docs_dir", cfg.DocsDir),
		zap.Stringer("ttl", cfg.TTL),
		zap.String("provider", cfg.Provider.Name))
	return nil
}

// newLogger logs to stderr so stdout stays clean for --format json
func newLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lore %s\n", Version)
	},
}

// exitWithError prints an error and exits
func exitWithError(msg string) {
	if logger != nil {
		_ = logger.Sync()
	}
	fmt.Fprintln(os.Stderr, ui.Render(ui.Error, "Error: "+msg))
	os.Exit(1)
}
