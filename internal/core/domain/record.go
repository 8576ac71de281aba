package domain

// AnnotationRecord is one raw row handed over by the extraction adapter.
// Empty strings mean the column was NULL; ModifiedDate is nil when absent.
// The record is untrusted input: Library filters and Annotation construction
// validate it before anything reaches a Book.
type AnnotationRecord struct {
	// AssetID identifies the book the annotation belongs to.
	// Records without one are dropped during population.
	AssetID string

	// Title and Author come from the library join and may be empty when the
	// book row is missing.
	Title  string
	Author string

	// Location is the raw position token (CFI-like or free-form).
	Location string

	// SelectedText is the highlighted passage.
	SelectedText string

	// Note is the reader's own comment on the passage.
	Note string

	// RepresentText is the surrounding representative passage.
	RepresentText string

	// Chapter is the chapter label, when the source recorded one.
	Chapter string

	// Style is the highlight colour/style identifier.
	Style string

	// ModifiedDate is seconds since the source's reference epoch
	// (2001-01-01 UTC), nil when the row had no modification date.
	ModifiedDate *float64
}
