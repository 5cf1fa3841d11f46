package cli

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the document list fresh until interrupted",
	Long: `Refreshes the document list in the background and prints documents as
they appear or disappear. Changes to the organization in the config file
are picked up while running.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if scheduler == nil || synchronizer == nil {
		return errors.New("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := newLibraryTracker(synchronizer.Items())
	var mu sync.Mutex
	scheduler.OnResult(func(result domain.TaskResult) {
		mu.Lock()
		defer mu.Unlock()
		if !result.Success {
			cmd.Println(failure("refresh failed: " + result.Error))
			return
		}
		if result.Skipped {
			return
		}
		added, removed := tracker.update(synchronizer.Items())
		for i := range added {
			cmd.Printf("%s %s %s\n", success("+"), added[i].Title, muted(added[i].ID))
		}
		for i := range removed {
			cmd.Printf("%s %s %s\n", failure("-"), removed[i].Title, muted(removed[i].ID))
		}
	})

	if configWatcher != nil {
		go func() {
			if err := configWatcher.Run(ctx); err != nil {
				logger.Warn("config watcher stopped: %v", err)
			}
		}()
	}

	cmd.Println(muted("Watching for document changes, Ctrl+C to stop."))
	go func() {
		<-ctx.Done()
		_ = scheduler.Stop()
	}()
	return scheduler.Start(ctx)
}

// libraryTracker diffs successive snapshots of the item cache.
type libraryTracker struct {
	items []domain.KnowledgeItem
}

func newLibraryTracker(items []domain.KnowledgeItem) *libraryTracker {
	return &libraryTracker{items: items}
}

// update records items and returns what was added and removed, each in
// the order of the snapshot it comes from.
func (t *libraryTracker) update(items []domain.KnowledgeItem) (added, removed []domain.KnowledgeItem) {
	prev := ids(t.items)
	next := ids(items)
	for i := range items {
		if !prev[items[i].ID] {
			added = append(added, items[i])
		}
	}
	for i := range t.items {
		if !next[t.items[i].ID] {
			removed = append(removed, t.items[i])
		}
	}
	t.items = items
	return added, removed
}

func ids(items []domain.KnowledgeItem) map[string]bool {
	set := make(map[string]bool, len(items))
	for i := range items {
		set[items[i].ID] = true
	}
	return set
}
