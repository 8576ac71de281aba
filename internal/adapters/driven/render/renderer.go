// Package render produces the markdown body of a book document from an
// embedded template. The first three lines of the output are the fixed
// preamble; the two anchor lines delimit the protected reader-notes region.
package render

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/pagemark-labs/pagemark-cli/internal/core/ports/driven"
)

//go:embed templates/book.md.tmpl
var templateFS embed.FS

// Ensure Renderer implements the interface.
var _ driven.BodyRenderer = (*Renderer)(nil)

// Renderer renders book bodies with text/template.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded body template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/book.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing body template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the template over the given book values.
func (r *Renderer) Render(in driven.RenderInput) (string, error) {
	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, in); err != nil {
		return "", fmt.Errorf("rendering body: %w", err)
	}
	return sb.String(), nil
}
