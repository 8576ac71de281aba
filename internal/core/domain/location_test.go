package domain

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseLocation_Structured tests CFI-like tokens.
func TestParseLocation_Structured(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int
	}{
		{
			name: "full token with offset",
			raw:  "epubcfi(/6/4[chap01]!/4/2,/1:0,/1:10)",
			want: []int{6, 4, 4, 2, 1, 0},
		},
		{
			name: "second segment extends the path",
			raw:  "epubcfi(/6/4[chap01]!/4/4,/1:0,/1:5)",
			want: []int{6, 4, 4, 4, 1, 0},
		},
		{
			name: "malformed offset is dropped",
			raw:  "epubcfi(/6/4,/2:abc,/2:9)",
			want: []int{6, 4, 2},
		},
		{
			name: "no offset at all",
			raw:  "epubcfi(/6/8,/2/4)",
			want: []int{6, 8, 2, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocation(tt.raw))
		})
	}
}

// TestParseLocation_Unstructured tests free-form tokens.
func TestParseLocation_Unstructured(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int
	}{
		{name: "empty", raw: "", want: nil},
		{name: "plain page number", raw: "page 42", want: []int{42}},
		{name: "multiple runs in order", raw: "12-3.45", want: []int{12, 3, 45}},
		{name: "leading zeros do not change value", raw: "007", want: []int{7}},
		{name: "no digits", raw: "introduction", want: nil},
		{name: "cfi prefix without comma falls back to digit runs", raw: "epubcfi(/6/4)", want: []int{6, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocation(tt.raw))
		})
	}
}

// TestCompareLocations tests the three-way order.
func TestCompareLocations(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want int
	}{
		{name: "prefix precedes extension", a: []int{}, b: []int{1}, want: -1},
		{name: "first position dominates length", a: []int{2}, b: []int{1, 5}, want: 1},
		{name: "equal sequences", a: []int{1, 2}, b: []int{1, 2}, want: 0},
		{name: "later position decides", a: []int{1, 2, 3}, b: []int{1, 2, 4}, want: -1},
		{name: "both empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareLocations(tt.a, tt.b))
		})
	}
}

// TestCompareLocations_TotalOrder checks antisymmetry and transitivity over
// a fixed set of keys.
func TestCompareLocations_TotalOrder(t *testing.T) {
	keys := [][]int{
		nil, {1}, {1, 2}, {1, 2, 3}, {2}, {2, 1}, {0, 9}, {1, 3},
	}

	for _, a := range keys {
		for _, b := range keys {
			assert.Equal(t, CompareLocations(a, b), -CompareLocations(b, a),
				"antisymmetry for %v / %v", a, b)
			for _, c := range keys {
				if CompareLocations(a, b) <= 0 && CompareLocations(b, c) <= 0 {
					assert.LessOrEqual(t, CompareLocations(a, c), 0,
						"transitivity for %v / %v / %v", a, b, c)
				}
			}
		}
	}
}

// TestSortAnnotations_StableAndIdempotent verifies equal keys keep their
// relative order and that re-sorting a sorted list changes nothing.
func TestSortAnnotations_StableAndIdempotent(t *testing.T) {
	annos := []Annotation{
		{Location: "epubcfi(/6/4,/2:0,/2:4)", SelectedText: "c"},
		{Location: "page 3", SelectedText: "a"},
		{Location: "page 3", SelectedText: "b"},
		{Location: "page 1", SelectedText: "z"},
	}

	sortAnnotations(annos)
	first := slices.Clone(annos)

	// page 1 < page 3 == page 3 < /6/4/2/0...
	assert.Equal(t, "z", annos[0].SelectedText)
	assert.Equal(t, "a", annos[1].SelectedText)
	assert.Equal(t, "b", annos[2].SelectedText)

	sortAnnotations(annos)
	assert.Equal(t, first, annos)
}
