package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidAnnotation indicates an annotation carries neither selected
	// text nor a note. The offending record is skipped; the batch proceeds.
	ErrInvalidAnnotation = errors.New("annotation needs selected text or a note")

	// ErrBookMetadata indicates a persisted book document is malformed
	// (missing asset_id, or ambiguous note-section markers). The file is
	// skipped from the loaded collection.
	ErrBookMetadata = errors.New("malformed book metadata")

	// ErrNotADirectory indicates a read or write target is not a directory.
	// Fatal to the calling operation.
	ErrNotADirectory = errors.New("not a directory")

	// ErrNoDatabase indicates no usable annotation or library database could
	// be located.
	ErrNoDatabase = errors.New("no annotation database found")
)
