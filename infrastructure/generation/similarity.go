package generation

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// foldCaser is shared across comparisons; building a caser per call is
// wasteful.
var foldCaser = cases.Fold()

// Similarity scores how alike two statements are in [0, 1] using normalized
// Levenshtein distance over case-folded, whitespace-trimmed text. 1.0 means
// identical after normalization.
func Similarity(a, b string) float64 {
	a = foldCaser.String(strings.TrimSpace(a))
	b = foldCaser.String(strings.TrimSpace(b))

	if a == b {
		return 1.0
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(distance)/float64(longest)
}
