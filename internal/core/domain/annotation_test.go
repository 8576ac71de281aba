package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewAnnotation_RequiresTextOrNote tests the construction invariant.
func TestNewAnnotation_RequiresTextOrNote(t *testing.T) {
	_, err := NewAnnotation(AnnotationRecord{AssetID: "A1", Location: "page 1"})
	assert.ErrorIs(t, err, ErrInvalidAnnotation)

	_, err = NewAnnotation(AnnotationRecord{AssetID: "A1", SelectedText: "passage"})
	assert.NoError(t, err)

	_, err = NewAnnotation(AnnotationRecord{AssetID: "A1", Note: "thought"})
	assert.NoError(t, err)
}

// TestNewAnnotation_TrimsFreeText verifies whitespace trimming on the text
// fields and only those.
func TestNewAnnotation_TrimsFreeText(t *testing.T) {
	anno, err := NewAnnotation(AnnotationRecord{
		AssetID:       "A1",
		SelectedText:  "  a passage \n",
		Note:          "\tthe note ",
		RepresentText: " context ",
		Chapter:       " Chapter 1 ",
		Location:      " page 2 ",
	})
	require.NoError(t, err)

	assert.Equal(t, "a passage", anno.SelectedText)
	assert.Equal(t, "the note", anno.Note)
	assert.Equal(t, "context", anno.RepresentText)
	assert.Equal(t, " Chapter 1 ", anno.Chapter)
	assert.Equal(t, " page 2 ", anno.Location)
}

// TestNewAnnotation_ModifiedDate verifies the reference-epoch conversion.
func TestNewAnnotation_ModifiedDate(t *testing.T) {
	seconds := 700000000.0 // reference-epoch seconds, lands in 2023
	anno, err := NewAnnotation(AnnotationRecord{
		AssetID:      "A1",
		SelectedText: "x",
		ModifiedDate: &seconds,
	})
	require.NoError(t, err)

	require.True(t, anno.HasModifiedDate())
	want := time.Unix(978307200+700000000, 0)
	assert.True(t, anno.ModifiedDate.Equal(want))
}

// TestNewAnnotation_NoModifiedDate leaves the date zero.
func TestNewAnnotation_NoModifiedDate(t *testing.T) {
	anno, err := NewAnnotation(AnnotationRecord{AssetID: "A1", SelectedText: "x"})
	require.NoError(t, err)
	assert.False(t, anno.HasModifiedDate())
}
