package file

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/kbsync/internal/logger"
)

// defaultSettle is how long the watcher waits after the last file event
// before reloading, so editors that write in several steps reload once.
const defaultSettle = 200 * time.Millisecond

// Watcher reloads the config file when it changes on disk and reports
// changes of the organization key.
type Watcher struct {
	store    *ConfigStore
	onChange func(ctx context.Context, organization string)
	settle   time.Duration
}

// NewWatcher creates a watcher over store. onChange runs on the watcher
// goroutine each time the organization value differs from the last one seen.
func NewWatcher(store *ConfigStore, onChange func(ctx context.Context, organization string)) *Watcher {
	return &Watcher{store: store, onChange: onChange, settle: defaultSettle}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory: editors often replace the file instead of writing it.
	if err := fsw.Add(filepath.Dir(w.store.Path())); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.store.Path()), err)
	}

	current := w.store.GetString(KeyOrganization)
	timer := time.NewTimer(w.settle)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.store.Path()) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(w.settle)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				timer.Reset(w.settle)
				continue
			}
			logger.Warn("config watcher: %v", err)

		case <-timer.C:
			if err := w.store.Load(); err != nil {
				logger.Warn("reload %s: %v", w.store.Path(), err)
				continue
			}
			org := w.store.GetString(KeyOrganization)
			if org == current {
				continue
			}
			logger.Info("organization changed in %s", w.store.Path())
			current = org
			if w.onChange != nil {
				w.onChange(ctx, org)
			}
		}
	}
}
