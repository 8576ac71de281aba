package domain

import (
	"strings"
	"time"
)

// referenceEpochOffset converts the source database's timestamps (seconds
// since 2001-01-01 UTC) to Unix time.
const referenceEpochOffset = 978307200

// Annotation is one highlight or note, owned by the Book it was grouped
// under. Empty strings mean the field was absent in the source record;
// a zero ModifiedDate means the record carried no modification date.
type Annotation struct {
	Location      string
	SelectedText  string
	Note          string
	RepresentText string
	Chapter       string
	Style         string
	ModifiedDate  time.Time
}

// NewAnnotation builds an Annotation from a raw record. A record with neither
// selected text nor a note is rejected with ErrInvalidAnnotation; everything
// else is optional. Free-standing whitespace is trimmed from the selected
// text, the note and the representative text. Timestamps are converted from
// the source's reference epoch; conversion failure degrades to "no date".
func NewAnnotation(rec AnnotationRecord) (Annotation, error) {
	if rec.SelectedText == "" && rec.Note == "" {
		return Annotation{}, ErrInvalidAnnotation
	}

	anno := Annotation{
		Location:      rec.Location,
		SelectedText:  strings.TrimSpace(rec.SelectedText),
		Note:          strings.TrimSpace(rec.Note),
		RepresentText: strings.TrimSpace(rec.RepresentText),
		Chapter:       rec.Chapter,
		Style:         rec.Style,
	}

	if rec.ModifiedDate != nil {
		anno.ModifiedDate = timeFromReferenceEpoch(*rec.ModifiedDate)
	}

	return anno, nil
}

// HasModifiedDate reports whether the annotation carries a modification date.
func (a Annotation) HasModifiedDate() bool {
	return !a.ModifiedDate.IsZero()
}

// timeFromReferenceEpoch converts seconds since the reference epoch to an
// absolute time. Values that would not fit are treated as "no date".
func timeFromReferenceEpoch(seconds float64) time.Time {
	unix := referenceEpochOffset + seconds
	if unix != unix || unix > float64(1<<62) || unix < float64(-1<<62) { // NaN or out of range
		return time.Time{}
	}
	sec := int64(unix)
	nsec := int64((unix - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}
