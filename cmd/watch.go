package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kennyg/lore/internal/ui"
	"github.com/kennyg/lore/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the promoted docs index current while documents are edited",
	Long: `Watch the tier-2 directory and rebuild its index.json and README.md
whenever a promoted document is added, edited or deleted. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	Run:  runWatch,
}

var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before rebuilding")
}

func runWatch(cmd *cobra.Command, args []string) {
	a := openApp(false)

	w := watch.New(a.docs.Root(), a.docs,
		watch.WithDebounce(watchDebounce),
		watch.WithLogger(logger.Named("watch")),
		watch.WithOnSync(func(n int, err error) {
			if err != nil {
				fmt.Println(ui.WarningLine(fmt.Sprintf("reindex failed: %v", err)))
				return
			}
			fmt.Println(ui.SuccessLine(fmt.Sprintf("%s reindexed %d documents", time.Now().Format("15:04:05"), n)))
		}),
	)

	fmt.Println(ui.InfoLine("Watching " + a.docs.Root()))
	if err := w.Run(cmd.Context()); err != nil {
		fail("watch", err)
	}

	stats := w.Stats()
	logger.Debug("watch stopped", zap.Int("events", stats.Events), zap.Int("reindexes", stats.Reindexes), zap.Int("errors", stats.Errors))
}
