package driven

import (
	"context"

	"github.com/pagemark-labs/pagemark-cli/internal/core/domain"
)

// AnnotationSource supplies raw annotation records from the reading
// application's local store. The core trusts the field types and applies its
// own filtering; it never sees the database.
type AnnotationSource interface {
	// Fetch returns every non-deleted annotation record, joined with book
	// title and author where the library database allows it.
	Fetch(ctx context.Context) ([]domain.AnnotationRecord, error)
}
