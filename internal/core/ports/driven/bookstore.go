package driven

import (
	"context"
	"time"

	"github.com/pagemark-labs/pagemark-cli/internal/core/domain"
)

// BookWrite is everything needed to persist one book document: its
// front-matter metadata plus the rendered body.
type BookWrite struct {
	Filename     string
	AssetID      string
	Title        string
	Author       string
	ModifiedDate time.Time
	Body         string
}

// BookStore persists book documents in a directory-like target.
// Backed by markdown files with YAML front matter.
type BookStore interface {
	// LoadAll parses every persisted document under dir. Malformed files are
	// reported through the onError callback and skipped; only a directory-
	// shape problem fails the whole load.
	LoadAll(ctx context.Context, dir string, onError func(name string, err error)) ([]*domain.Book, error)

	// EnsureDir makes sure dir exists, creating it if absent. An existing
	// non-directory path fails with domain.ErrNotADirectory.
	EnsureDir(dir string) error

	// Write persists one document to dir, overwriting any existing file of
	// the same name. Not transactional.
	Write(ctx context.Context, dir string, w BookWrite) error
}
