package catalog

import (
	"errors"
	"fmt"
)

// ErrNoMatch is returned when a fully specified selection matches no enabled
// variant. Callers must block add-to-cart rather than show a price for a
// variant that does not exist.
var ErrNoMatch = errors.New("no enabled variant matches the selection")

// UpstreamDataError marks a catalog snapshot that is structurally invalid.
// The engine refuses to normalize such a product instead of guessing.
type UpstreamDataError struct {
	Field  string
	Reason string
}

func (e *UpstreamDataError) Error() string {
	return fmt.Sprintf("invalid catalog data: %s: %s", e.Field, e.Reason)
}

// WarningCode identifies a non-fatal data-quality condition. Warnings are
// carried on results so callers can surface a diagnostic affordance; they
// never abort resolution.
type WarningCode string

const (
	// WarnUnresolvedLabel flags an axis where at least one value fell through
	// to the "Option #<id>" fallback label.
	WarnUnresolvedLabel WarningCode = "unresolved_label"
	// WarnAmbiguousMatch flags a selection matched by more than one enabled
	// variant with identical option values.
	WarnAmbiguousMatch WarningCode = "ambiguous_match"
	// WarnCollapsedSizes flags a size axis folded to "One Size" because every
	// value was a physical measurement.
	WarnCollapsedSizes WarningCode = "collapsed_sizes"
)

// Warning is a data-quality diagnostic attached to a normalization or
// resolution result.
type Warning struct {
	Code   WarningCode `json:"code"`
	Axis   string      `json:"axis,omitempty"`
	Detail string      `json:"detail,omitempty"`
}

func (w Warning) String() string {
	if w.Axis == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Detail)
	}
	return fmt.Sprintf("%s (%s): %s", w.Code, w.Axis, w.Detail)
}
