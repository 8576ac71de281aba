package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagemark-labs/pagemark-cli/internal/adapters/driven/booksdb"
	"github.com/pagemark-labs/pagemark-cli/internal/core/services"
)

var (
	syncForce  bool
	syncDryRun bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull annotations and update modified book documents",
	Long: `Extracts the current annotations from the reading application's local
store, merges them into the book documents under the books directory and
rewrites only the books whose annotations changed.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "rewrite every book, modified or not")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "report what would be written without writing")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	lib, err := loadPopulatedLibrary(ctx)
	if err != nil {
		return err
	}

	if syncDryRun {
		for _, book := range lib.Books() {
			if book.IsModified() || syncForce {
				cmd.Printf("would write %s\n", book.Filename())
			}
		}
		return nil
	}

	if err := lib.WriteModified(ctx, cfg.BooksDir, syncForce); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	modified := 0
	for _, book := range lib.Books() {
		if book.IsModified() || syncForce {
			modified++
		}
	}
	cmd.Printf("Synced %d of %d books to %s\n", modified, len(lib.Books()), cfg.BooksDir)
	return nil
}

// loadPopulatedLibrary loads the persisted books and merges in the current
// annotation records. Shared by sync, list and watch.
func loadPopulatedLibrary(ctx context.Context) (*services.Library, error) {
	source := booksdb.NewSource(cfg.AnnotationDBDir, cfg.LibraryDBDir)

	records, err := source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch annotations: %w", err)
	}

	lib, err := newLibrary()
	if err != nil {
		return nil, err
	}
	if err := lib.Load(ctx, cfg.BooksDir); err != nil {
		return nil, err
	}
	lib.Populate(records)
	return lib, nil
}
