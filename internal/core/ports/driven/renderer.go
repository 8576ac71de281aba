package driven

import "github.com/pagemark-labs/pagemark-cli/internal/core/domain"

// RenderInput carries the fixed set of named values the body template sees.
type RenderInput struct {
	Title       string
	Author      string
	Highlights  []domain.Annotation
	ReaderNotes string
}

// BodyRenderer renders a book document's textual body. The core treats the
// result as an opaque string to store.
type BodyRenderer interface {
	Render(in RenderInput) (string, error)
}
