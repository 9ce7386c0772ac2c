package catalog

import (
	"regexp"
	"strings"
)

// Axis-name recognition and the dimensional-label pattern are the two
// heuristics the whole engine rests on. Both are kept as named predicates so
// they stay a visible, testable policy surface rather than inline conditions.

var dimensionalLabelRegex = regexp.MustCompile(`^\s*\d+(\.\d+)?\s*("|''|in\b|cm\b|mm\b)(\s*[×xX]\s*\d+(\.\d+)?\s*("|''|in\b|cm\b|mm\b)?)?\s*$`)

// IsSizeAxis reports whether an axis name denotes the size dimension.
func IsSizeAxis(name string) bool {
	return strings.Contains(strings.ToLower(name), "size")
}

// IsColorAxis reports whether an axis name denotes the color dimension.
// Both spellings occur in upstream catalogs.
func IsColorAxis(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "color") || strings.Contains(lower, "colour")
}

// IsDimensionalLabel reports whether a size label is a physical measurement
// (e.g. `7.5" × 3.75"` or `4" x 4"`) rather than a logical size category.
func IsDimensionalLabel(label string) bool {
	return dimensionalLabelRegex.MatchString(label)
}

// ReduceSizes folds a degenerate size axis to a single logical entry.
//
// A size axis whose every value is a physical measurement is not a real
// choice for the buyer (a sticker sold in three print dimensions is still
// one sticker), so the whole set collapses to "One Size". A true multi-size
// axis (S/M/L/XL) passes through untouched, as does an axis that already
// has exactly one distinct value. The fold is idempotent.
func ReduceSizes(labels []string) []string {
	if len(labels) == 0 {
		return labels
	}

	distinct := map[string]bool{}
	for _, label := range labels {
		distinct[label] = true
	}
	if len(distinct) == 1 {
		return labels
	}

	for _, label := range labels {
		if !IsDimensionalLabel(label) {
			return labels
		}
	}

	return []string{OneSizeLabel}
}
