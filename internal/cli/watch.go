package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tagscope/internal/adapter/watch"
)

var (
	watchTags    string
	watchNoStore bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Rebuild the index whenever the project changes",
	Long: `Build the index, then watch the project and rebuild it in full after
every batch of changes to indexed files or to the tag listing.

Examples:
  tagscope watch . --tags tags`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchTags, "tags", "t", "", "tag listing file (default from config)")
	watchCmd.Flags().BoolVar(&watchNoStore, "no-store", false, "do not persist snapshots")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args)
	if err != nil {
		return err
	}

	s, err := openSession(path, !watchNoStore)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rebuild := func(ctx context.Context) {
		tags := tagsPathFor(path, watchTags)
		idx, err := s.service.Build(ctx, path, tags, nil)
		if err != nil {
			slog.Error("rebuild failed", "project", path, "error", err)
			return
		}
		fmt.Printf("Index rebuilt: %d files, %d warnings\n", len(idx.Files), len(idx.Errors))
	}
	rebuild(ctx)

	var extra []string
	if tags := tagsPathFor(path, watchTags); tags != "" {
		extra = append(extra, tags)
	}
	w, err := watch.NewWatcher(path, s.walker, GetConfig().Watch.Debounce, extra, func(changed []string) {
		slog.Info("changes detected", "files", len(changed))
		rebuild(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", path)
	<-ctx.Done()
	return nil
}
