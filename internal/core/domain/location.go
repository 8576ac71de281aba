package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Structured position tokens follow the EPUB CFI shape:
// epubcfi(/6/4[chap01]!/4/2,/1:0,/1:10).
const (
	cfiPrefix = "epubcfi("
	cfiSuffix = ")"
)

var (
	cfiStepPattern  = regexp.MustCompile(`/(\d+)`)
	digitRunPattern = regexp.MustCompile(`\d+`)
)

// ParseLocation converts a raw position token into its ordered sequence of
// integer steps. The function is total: it never fails, and malformed input
// degrades to whatever integers can be recovered.
//
// A structured (CFI-like) token is recognised by the epubcfi( prefix, the
// closing parenthesis, and at least one comma inside. Anything else is treated
// as unstructured and yields every maximal digit run, left to right.
// An empty token yields nil.
func ParseLocation(raw string) []int {
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, cfiPrefix) && strings.HasSuffix(raw, cfiSuffix) {
		inner := raw[len(cfiPrefix) : len(raw)-len(cfiSuffix)]
		if strings.Contains(inner, ",") {
			return parseCFISteps(inner)
		}
	}

	runs := digitRunPattern.FindAllString(raw, -1)
	if len(runs) == 0 {
		return nil
	}
	steps := make([]int, 0, len(runs))
	for _, run := range runs {
		n, err := strconv.Atoi(run)
		if err != nil {
			continue // digit run too large for int; recover what we can
		}
		steps = append(steps, n)
	}
	return steps
}

// parseCFISteps extracts the step path from the inside of a structured token.
// The start of the annotated range is the concatenation of the first two
// comma-separated segments; an optional :offset suffix contributes one final
// integer and is silently dropped when it does not parse.
func parseCFISteps(inner string) []int {
	segments := strings.Split(inner, ",")
	start := segments[0] + segments[1]

	parts := strings.Split(start, ":")

	var steps []int
	for _, m := range cfiStepPattern.FindAllStringSubmatch(parts[0], -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		steps = append(steps, n)
	}

	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			steps = append(steps, n)
		}
	}
	return steps
}

// CompareLocations is a three-way total order over parsed position sequences:
// lexicographic by step, with a prefix ordering before its extension. It is
// the natural order for hierarchical chapter/section/paragraph paths.
func CompareLocations(a, b []int) int {
	depth := min(len(a), len(b))
	for i := 0; i < depth; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
