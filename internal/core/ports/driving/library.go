package driving

import (
	"context"

	"github.com/pagemark-labs/pagemark-cli/internal/core/domain"
)

// LibraryService is the driving port for the annotation merge engine.
type LibraryService interface {
	// Load restores previously persisted books from dir. Malformed files are
	// logged and skipped.
	Load(ctx context.Context, dir string) error

	// Populate merges a batch of raw annotation records into the collection:
	// grouping by asset ID, resolving title/author with fallback rules and
	// assigning ordered annotation lists.
	Populate(records []domain.AnnotationRecord)

	// Books returns the owned books in deterministic (asset ID) order.
	Books() []*domain.Book

	// WriteModified persists every modified book to dir; force writes
	// unmodified ones too. Books with notes sync disabled are skipped.
	WriteModified(ctx context.Context, dir string, force bool) error
}
