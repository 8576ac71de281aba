package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pagemark-labs/pagemark-cli/internal/core/domain"
	"github.com/pagemark-labs/pagemark-cli/internal/core/ports/driven"
	"github.com/pagemark-labs/pagemark-cli/internal/core/ports/driving"
	"github.com/pagemark-labs/pagemark-cli/internal/logger"
)

// Ensure Library implements the interface.
var _ driving.LibraryService = (*Library)(nil)

// Library owns the collection of books keyed by asset ID and orchestrates
// population from annotation batches and conditional persistence.
// Every map key equals its book's asset ID.
type Library struct {
	bookStore driven.BookStore
	renderer  driven.BodyRenderer

	books map[string]*domain.Book

	// now is swappable for tests; it supplies the persisted modification
	// date when no annotation carries one.
	now func() time.Time
}

// NewLibrary creates an empty library over the given store and renderer.
func NewLibrary(bookStore driven.BookStore, renderer driven.BodyRenderer) *Library {
	return &Library{
		bookStore: bookStore,
		renderer:  renderer,
		books:     make(map[string]*domain.Book),
		now:       time.Now,
	}
}

// Load restores previously persisted books from dir. Each malformed file is
// logged and skipped; only a directory-shape problem aborts the load.
func (l *Library) Load(ctx context.Context, dir string) error {
	books, err := l.bookStore.LoadAll(ctx, dir, func(name string, err error) {
		logger.Warn("Skipping %s: %v", name, err)
	})
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}

	for _, book := range books {
		l.books[book.AssetID()] = book
	}
	logger.Info("Loaded %d books from %s", len(books), dir)
	return nil
}

// Populate merges a batch of raw annotation records into the collection.
// Records without an asset ID, or with neither selected text nor note, are
// dropped up front. Title/author resolution runs over the whole batch before
// any annotation is constructed, so it cannot depend on annotation ordering.
func (l *Library) Populate(records []domain.AnnotationRecord) {
	accepted := make([]domain.AnnotationRecord, 0, len(records))
	for _, rec := range records {
		if rec.AssetID == "" {
			continue
		}
		if rec.SelectedText == "" && rec.Note == "" {
			continue
		}
		accepted = append(accepted, rec)
	}

	// Pass 1: identity and metadata. Real values observed earlier win; only
	// unresolved or fallback fields accept incoming data.
	for _, rec := range accepted {
		book := l.getOrCreate(rec.AssetID)
		if book.CanUpdateTitle() && rec.Title != "" {
			book.SetTitle(rec.Title)
		}
		if book.CanUpdateAuthor() && rec.Author != "" {
			book.SetAuthor(rec.Author)
		}
	}

	// Pass 2: group records per book and build annotations. An invalid
	// record skips only itself.
	groups := make(map[string][]domain.Annotation)
	for _, rec := range accepted {
		anno, err := domain.NewAnnotation(rec)
		if err != nil {
			logger.Warn("Skipping annotation for %s: %v", rec.AssetID, err)
			continue
		}
		groups[rec.AssetID] = append(groups[rec.AssetID], anno)
	}
	for assetID, annos := range groups {
		l.books[assetID].SetAnnotations(annos)
	}

	// Pass 3: anything still unresolved gets its fallback sentinel.
	for _, book := range l.books {
		if book.CanUpdateTitle() {
			book.SetFallbackTitle()
		}
		if book.CanUpdateAuthor() {
			book.SetFallbackAuthor()
		}
	}
}

// Books returns the owned books sorted by asset ID for deterministic output.
func (l *Library) Books() []*domain.Book {
	books := make([]*domain.Book, 0, len(l.books))
	for _, book := range l.books {
		books = append(books, book)
	}
	sort.Slice(books, func(i, j int) bool {
		return books[i].AssetID() < books[j].AssetID()
	})
	return books
}

// Get returns the book for an asset ID, or nil when unknown.
func (l *Library) Get(assetID string) *domain.Book {
	return l.books[assetID]
}

// WriteModified ensures dir exists and persists every book that reports
// itself modified (or all of them when force is set). Books with notes sync
// disabled are logged and left alone. Write errors are fatal to the
// operation.
func (l *Library) WriteModified(ctx context.Context, dir string, force bool) error {
	if err := l.bookStore.EnsureDir(dir); err != nil {
		return err
	}

	for _, book := range l.Books() {
		if !book.IsModified() && !force {
			continue
		}
		if err := l.writeBook(ctx, dir, book); err != nil {
			return fmt.Errorf("write %s: %w", book.AssetID(), err)
		}
	}
	return nil
}

// writeBook renders and persists a single book. Disabled notes sync makes
// this a logged no-op, not an error.
func (l *Library) writeBook(ctx context.Context, dir string, book *domain.Book) error {
	if !book.SyncNotes() {
		logger.Info("Sync locked for %q, skipping", book.Title())
		return nil
	}

	logger.Info("Updating %q", book.Title())

	body, err := l.renderer.Render(driven.RenderInput{
		Title:       book.Title(),
		Author:      book.Author(),
		Highlights:  book.Annotations(),
		ReaderNotes: book.ReaderNotes(),
	})
	if err != nil {
		return fmt.Errorf("render body: %w", err)
	}

	return l.bookStore.Write(ctx, dir, driven.BookWrite{
		Filename:     book.Filename(),
		AssetID:      book.AssetID(),
		Title:        book.Title(),
		Author:       book.Author(),
		ModifiedDate: book.PersistModifiedDate(l.now()),
		Body:         body,
	})
}

// getOrCreate returns the book for assetID, creating a fresh one when the
// collection has never seen it.
func (l *Library) getOrCreate(assetID string) *domain.Book {
	if book, ok := l.books[assetID]; ok {
		return book
	}
	book := domain.NewBook(assetID)
	l.books[assetID] = book
	return book
}
