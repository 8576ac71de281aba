package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/pagemark-labs/pagemark-cli/internal/adapters/driven/booksdb"
	"github.com/pagemark-labs/pagemark-cli/internal/logger"
)

// watchDebounce coalesces the burst of database writes the reading
// application produces into a single sync.
const watchDebounce = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the annotation store and sync on change",
	Long: `Watches the annotation database directory and re-runs sync whenever the
reading application writes new annotation data. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	source := booksdb.NewSource(cfg.AnnotationDBDir, cfg.LibraryDBDir)
	watched := 0
	for _, dir := range source.AnnotationDirs() {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			logger.Warn("Cannot watch %s: %v", dir, err)
			continue
		}
		logger.Info("Watching %s", dir)
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("no annotation database directory to watch")
	}

	// Sync once up front so the documents start out current.
	if err := syncOnce(ctx, cmd); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("Change: %s", event)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)

		case <-fire:
			if err := syncOnce(ctx, cmd); err != nil {
				// Keep watching: a transiently locked database is normal
				// while the reading application is writing.
				logger.Warn("Sync failed: %v", err)
			}
		}
	}
}

// syncOnce runs a single fetch-populate-write pass.
func syncOnce(ctx context.Context, cmd *cobra.Command) error {
	lib, err := loadPopulatedLibrary(ctx)
	if err != nil {
		return err
	}
	if err := lib.WriteModified(ctx, cfg.BooksDir, false); err != nil {
		return err
	}
	cmd.Printf("Synced at %s\n", time.Now().Format(time.Kitchen))
	return nil
}
