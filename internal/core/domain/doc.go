// Package domain defines the core business entities for pagemark.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - Annotation: One highlight or note with its parsed-ready fields
//   - Book: One book's accumulated annotation state and metadata
//   - AnnotationRecord: A raw row handed over by the extraction adapter
//   - BookFile: A persisted book document as parsed from disk
//
// Position tokens are parsed and ordered here too: ParseLocation turns a
// raw token into an integer step sequence, and CompareLocations defines the
// total order that annotation sorting relies on.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library and small pure utilities only
//   - Cannot Import: Any internal/ package
package domain
