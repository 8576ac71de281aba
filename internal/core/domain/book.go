package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

const (
	// MaxFilenameLen caps generated filenames, slug included.
	MaxFilenameLen = 200

	fallbackTitlePrefix = "Untitled"

	// FallbackAuthor is the sentinel used when no real author was observed.
	FallbackAuthor = "Unknown"
)

// Marker lines delimiting the protected reader-notes region inside a
// persisted book document. They are part of the on-disk format and must
// never change.
const (
	ReaderNotesMarker    = `<a name="reader_notes_dont_delete"></a>`
	GeneratedNotesMarker = `<a name="generated_notes_dont_delete"></a>`
)

// preambleLines is the fixed number of body lines before any protected
// content (title heading, author line, blank separator).
const preambleLines = 3

// controlChars matches characters that YAML front matter cannot carry.
var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)

// BookFile is a persisted book document as parsed by the storage adapter:
// front-matter metadata plus the raw body. ModifiedDate is the stored
// ISO-8601 string, empty when absent. SyncNotes is nil when the key was not
// present (defaults to enabled).
type BookFile struct {
	Name         string
	AssetID      string
	Title        string
	Author       string
	ModifiedDate string
	SyncNotes    *bool
	Body         string
}

// Book is one book's accumulated annotation state. It is created either
// fresh from an asset ID or loaded from a persisted document, mutated during
// a population pass, and conditionally written back by the Library.
//
// All mutation goes through explicit methods so that the side effects
// (fallback provenance, filename regeneration) stay auditable.
type Book struct {
	assetID  string
	title    string
	author   string
	filename string

	titleIsFallback  bool
	authorIsFallback bool
	filenameLocked   bool

	// modifiedDate is the previously persisted modification date,
	// zero for a newly discovered book.
	modifiedDate time.Time

	syncNotes   bool
	readerNotes string
	annotations []Annotation
}

// NewBook creates a fresh Book known only by its asset ID. Title and author
// start unresolved; the caller is expected to assign them from record data or
// force fallbacks at the end of a population pass.
func NewBook(assetID string) *Book {
	return &Book{
		assetID:          assetID,
		syncNotes:        true,
		titleIsFallback:  true,
		authorIsFallback: true,
	}
}

// NewBookFromFile restores a Book from a persisted document. The filename is
// locked for the book's lifetime. A file without an asset_id, or with both
// note-section markers on one line, fails with ErrBookMetadata.
func NewBookFromFile(f BookFile) (*Book, error) {
	if f.AssetID == "" {
		return nil, fmt.Errorf("%w: asset_id missing in %s", ErrBookMetadata, f.Name)
	}

	b := &Book{
		assetID:        f.AssetID,
		title:          f.Title,
		author:         f.Author,
		filename:       f.Name,
		filenameLocked: true,
		syncNotes:      true,
	}

	if f.ModifiedDate != "" {
		// Parse failure degrades to "no persisted date" rather than failing
		// the load.
		b.modifiedDate = parseStoredDate(f.ModifiedDate)
	}
	if f.SyncNotes != nil {
		b.syncNotes = *f.SyncNotes
	}

	b.titleIsFallback = b.isFallbackTitle(b.title)
	b.authorIsFallback = isFallbackAuthor(b.author)

	notes, err := extractReaderNotes(f.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	b.readerNotes = notes

	return b, nil
}

// extractReaderNotes scans a document body for the protected reader-notes
// region. Neither marker present means no protected region; both markers on
// the same line is ambiguous and fatal for this document.
func extractReaderNotes(body string) (string, error) {
	lines := strings.Split(body, "\n")

	readerIdx, generatedIdx := -1, -1
	for i, line := range lines {
		if strings.Contains(line, ReaderNotesMarker) {
			readerIdx = i
		}
		if strings.Contains(line, GeneratedNotesMarker) {
			generatedIdx = i
		}
	}

	if readerIdx == -1 && generatedIdx == -1 {
		return "", nil
	}
	if readerIdx == generatedIdx {
		return "", fmt.Errorf("%w: note section markers on the same line", ErrBookMetadata)
	}

	var region []string
	switch {
	case readerIdx == -1:
		// Only the generated marker: everything between the fixed preamble
		// and the generated section is the reader's.
		if generatedIdx > preambleLines {
			region = lines[preambleLines:generatedIdx]
		}
	case generatedIdx != -1 && readerIdx < generatedIdx:
		region = lines[readerIdx+1 : generatedIdx]
	default:
		region = lines[readerIdx+1:]
	}

	return strings.TrimSpace(strings.Join(region, "\n")), nil
}

// AssetID returns the source-provided identity, used verbatim.
func (b *Book) AssetID() string { return b.assetID }

// Title returns the current title, which may be a fallback sentinel.
func (b *Book) Title() string { return b.title }

// Author returns the current author, which may be a fallback sentinel.
func (b *Book) Author() string { return b.author }

// Filename returns the document filename this book persists to.
func (b *Book) Filename() string { return b.filename }

// ReaderNotes returns the protected region text, preserved verbatim across
// rewrites.
func (b *Book) ReaderNotes() string { return b.readerNotes }

// SyncNotes reports whether writes are enabled for this book.
func (b *Book) SyncNotes() bool { return b.syncNotes }

// ModifiedDate returns the previously persisted modification date, zero for
// a newly discovered book.
func (b *Book) ModifiedDate() time.Time { return b.modifiedDate }

// Annotations returns the ordered annotation list.
func (b *Book) Annotations() []Annotation { return b.annotations }

// NumAnnotations returns the number of annotations held.
func (b *Book) NumAnnotations() int { return len(b.annotations) }

// SetTitle assigns a real title, clears its fallback flag and, unless the
// filename is locked, regenerates the filename from the new title. Empty or
// control-character-only input degrades to the Unknown sentinel.
func (b *Book) SetTitle(value string) {
	cleaned := yamlSafe(value)
	if cleaned == "" {
		cleaned = FallbackAuthor
	}
	b.title = cleaned
	b.titleIsFallback = false
	if !b.filenameLocked {
		b.filename = b.buildFilename(b.title)
	}
}

// SetAuthor assigns a real author and clears its fallback flag. Empty input
// degrades to the Unknown sentinel.
func (b *Book) SetAuthor(value string) {
	cleaned := yamlSafe(value)
	if cleaned == "" {
		cleaned = FallbackAuthor
	}
	b.author = cleaned
	b.authorIsFallback = false
}

// SetFallbackTitle assigns the synthesized title sentinel and marks the
// title as fallback so later real data may still replace it.
func (b *Book) SetFallbackTitle() {
	b.SetTitle(b.fallbackTitle())
	b.titleIsFallback = true
}

// SetFallbackAuthor assigns the author sentinel and marks it as fallback.
func (b *Book) SetFallbackAuthor() {
	b.SetAuthor(FallbackAuthor)
	b.authorIsFallback = true
}

// CanUpdateTitle reports whether incoming record data may overwrite the
// title. Real values observed earlier must never be overridden.
func (b *Book) CanUpdateTitle() bool {
	return b.titleIsFallback || b.isFallbackTitle(b.title)
}

// CanUpdateAuthor reports whether incoming record data may overwrite the
// author.
func (b *Book) CanUpdateAuthor() bool {
	return b.authorIsFallback || isFallbackAuthor(b.author)
}

// SetAnnotations replaces the annotation list and re-sorts it by parsed
// location. The sort is stable: annotations with equal position keys keep
// their original relative order.
func (b *Book) SetAnnotations(annos []Annotation) {
	b.annotations = annos
	sortAnnotations(b.annotations)
}

// IsModified reports whether the book has annotation data newer than what
// was last persisted. A book with no annotations is never modified. With no
// persisted date, any annotation counts as new; with one, the maximum
// annotation date must exceed it, and annotations carrying no dates at all
// are treated conservatively as modified.
func (b *Book) IsModified() bool {
	if b.modifiedDate.IsZero() {
		return len(b.annotations) > 0
	}
	if len(b.annotations) == 0 {
		return false
	}

	latest, dated := b.latestAnnotationDate()
	if !dated {
		return true
	}
	return latest.After(b.modifiedDate)
}

// PersistModifiedDate returns the modification date to store on write: the
// maximum across annotation dates, or now when none carries one.
func (b *Book) PersistModifiedDate(now time.Time) time.Time {
	if latest, dated := b.latestAnnotationDate(); dated {
		return latest
	}
	return now
}

// String renders the one-line listing used by the CLI:
// padded short ID, modified star, annotation count and title.
func (b *Book) String() string {
	mod := " "
	if b.IsModified() {
		mod = "*"
	}
	return fmt.Sprintf("%-8s %s %d\t%s", shortID(b.assetID), mod, len(b.annotations), b.title)
}

// latestAnnotationDate returns the maximum annotation modification date and
// whether any annotation carried one.
func (b *Book) latestAnnotationDate() (time.Time, bool) {
	var latest time.Time
	dated := false
	for _, anno := range b.annotations {
		if !anno.HasModifiedDate() {
			continue
		}
		dated = true
		if anno.ModifiedDate.After(latest) {
			latest = anno.ModifiedDate
		}
	}
	return latest, dated
}

// fallbackTitle synthesizes the "Untitled <short-id>" sentinel.
func (b *Book) fallbackTitle() string {
	short := shortID(b.assetID)
	if short == "" {
		short = "unknown"
	}
	return fallbackTitlePrefix + " " + short
}

// isFallbackTitle reports whether a title value is a synthesized default.
// The Unknown sentinel counts as a fallback title too: SetTitle substitutes
// it for empty input, so its presence never proves a real observation.
func (b *Book) isFallbackTitle(value string) bool {
	if value == "" || value == FallbackAuthor {
		return true
	}
	return value == b.fallbackTitle()
}

// isFallbackAuthor reports whether an author value is a synthesized default.
func isFallbackAuthor(value string) bool {
	return value == "" || value == FallbackAuthor
}

// buildFilename derives "<slug>-<id8>.md" from a title, capping the slug so
// the whole filename stays within MaxFilenameLen. An unsluggable title falls
// back to the literal "book".
func (b *Book) buildFilename(title string) string {
	suffix := "-" + strings.ToLower(shortID(b.assetID)) + ".md"
	maxSlug := MaxFilenameLen - len(suffix)
	if maxSlug < 1 {
		maxSlug = 1
	}
	s := truncateSlug(slug.Make(title), maxSlug)
	if s == "" {
		s = "book"
	}
	return s + suffix
}

// truncateSlug shortens a slug to maxLen, preferring a word boundary.
func truncateSlug(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if i := strings.LastIndex(cut, "-"); i > 0 {
		cut = cut[:i]
	}
	return strings.Trim(cut, "-")
}

// sortAnnotations stable-sorts annotations by their parsed location keys.
func sortAnnotations(annos []Annotation) {
	slices.SortStableFunc(annos, func(x, y Annotation) int {
		return CompareLocations(ParseLocation(x.Location), ParseLocation(y.Location))
	})
}

// yamlSafe strips characters YAML cannot represent and trims whitespace.
func yamlSafe(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}

// shortID returns at most the first 8 characters of an asset ID.
func shortID(assetID string) string {
	if len(assetID) > 8 {
		return assetID[:8]
	}
	return assetID
}

// parseStoredDate parses the ISO-8601 date stored in front matter. Failure
// degrades to the zero time ("no persisted date").
func parseStoredDate(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
