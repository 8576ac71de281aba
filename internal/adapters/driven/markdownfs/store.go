// Package markdownfs persists book documents as markdown files with YAML
// front matter, one file per book.
package markdownfs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/pagemark-labs/pagemark-cli/internal/core/domain"
	"github.com/pagemark-labs/pagemark-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BookStore = (*Store)(nil)

// Store is the file-backed implementation of driven.BookStore.
type Store struct{}

// NewStore creates a markdown file store.
func NewStore() *Store {
	return &Store{}
}

// bookMeta is the front-matter schema of a persisted book document.
type bookMeta struct {
	AssetID      string `yaml:"asset_id"`
	Title        string `yaml:"title"`
	Author       string `yaml:"author"`
	ModifiedDate string `yaml:"modified_date,omitempty"`
	SyncNotes    *bool  `yaml:"sync_notes,omitempty"`
}

// LoadAll parses every *.md file under dir into a Book. Files that fail to
// parse are reported through onError and skipped. A missing directory is an
// empty collection; an existing non-directory is domain.ErrNotADirectory.
func (s *Store) LoadAll(_ context.Context, dir string, onError func(name string, err error)) ([]*domain.Book, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotADirectory, dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}

	var books []*domain.Book //nolint:prealloc // some files may be skipped
	for _, path := range paths {
		name := filepath.Base(path)
		book, err := s.loadOne(path, name)
		if err != nil {
			if onError != nil {
				onError(name, err)
			}
			continue
		}
		books = append(books, book)
	}
	return books, nil
}

// loadOne reads and parses a single persisted document.
func (s *Store) loadOne(path, name string) (*domain.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var meta bookMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return nil, fmt.Errorf("%w: front matter: %v", domain.ErrBookMetadata, err)
	}

	return domain.NewBookFromFile(domain.BookFile{
		Name:         name,
		AssetID:      meta.AssetID,
		Title:        meta.Title,
		Author:       meta.Author,
		ModifiedDate: meta.ModifiedDate,
		SyncNotes:    meta.SyncNotes,
		Body:         string(body),
	})
}

// EnsureDir makes sure dir exists. Creating it is not an error when it is
// already present; an existing non-directory path is.
func (s *Store) EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && !info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrNotADirectory, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// Write persists one document, overwriting any previous file of that name.
// The write is not transactional; a crash mid-write can leave a partial
// file.
func (s *Store) Write(_ context.Context, dir string, w driven.BookWrite) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrNotADirectory, dir)
	}

	meta := bookMeta{
		AssetID:      w.AssetID,
		Title:        w.Title,
		Author:       w.Author,
		ModifiedDate: w.ModifiedDate.Format(time.RFC3339),
	}
	front, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshalling front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(front)
	buf.WriteString("---\n\n")
	buf.WriteString(w.Body)
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		buf.WriteString("\n")
	}

	path := filepath.Join(dir, w.Filename)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
