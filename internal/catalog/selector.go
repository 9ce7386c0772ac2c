package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Status is the outcome of one resolution attempt. Every change to the
// selection restarts resolution from scratch; no incremental state is kept.
type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusResolved   Status = "resolved"
	StatusAmbiguous  Status = "ambiguous"
	StatusNoMatch    Status = "no_match"
)

// Resolution is the result of matching a selection against a product's
// variant list.
type Resolution struct {
	Status  Status   `json:"status"`
	Variant *Variant `json:"variant,omitempty"`
	// Effective is the selection actually matched, including axes the
	// selector auto-filled.
	Effective   Selection `json:"effective_selection"`
	MissingAxes []string  `json:"missing_axes,omitempty"`
	Warnings    []Warning `json:"warnings,omitempty"`
}

// Selector matches user selections against a product's enabled variants.
type Selector struct {
	dict *Dictionary
}

func NewSelector(dict *Dictionary) *Selector {
	if dict == nil {
		dict = NewDictionary()
	}
	return &Selector{dict: dict}
}

// Resolve applies auto-selection and searches for the enabled variant whose
// option values equal the selection.
//
// Any axis with exactly one normalized value is treated as pre-selected,
// independently per axis. Matching compares resolved display labels, not raw
// ids, so catalog id drift between fetches does not break resolution. A
// collapsed size axis is satisfied by every variant value; when that is the
// only source of multiple matches the first variant in catalog order wins
// without an ambiguity flag, since the fold deliberately removed that choice.
// Multiple matches that are identical on every axis are a data-quality
// condition: the first still wins, flagged WarnAmbiguousMatch.
func (s *Selector) Resolve(p *Product, axes []NormalizedAxis, selection Selection) Resolution {
	res := Resolution{Effective: Selection{}}

	declared := make(map[string]bool, len(axes))
	for _, axis := range axes {
		declared[axis.Name] = true
	}

	// Selection keys for undeclared axes are dropped so they never reach the
	// effective snapshot.
	for name, label := range selection {
		if !declared[name] {
			continue
		}
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			res.Effective[name] = trimmed
		}
	}

	for _, axis := range axes {
		if _, chosen := res.Effective[axis.Name]; chosen {
			continue
		}
		if len(axis.Values) == 1 {
			res.Effective[axis.Name] = axis.Values[0].Label
		}
	}

	for _, axis := range axes {
		if _, ok := res.Effective[axis.Name]; !ok {
			res.MissingAxes = append(res.MissingAxes, axis.Name)
		}
	}
	if len(res.MissingAxes) > 0 {
		res.Status = StatusIncomplete
		return res
	}

	matches := s.matchVariants(p, axes, res.Effective)
	switch {
	case len(matches) == 0:
		res.Status = StatusNoMatch
		return res
	case len(matches) == 1:
		res.Status = StatusResolved
		res.Variant = matches[0]
		return res
	}

	res.Variant = matches[0]
	if s.explainedByCollapse(axes, matches) {
		res.Status = StatusResolved
		return res
	}

	res.Status = StatusAmbiguous
	res.Warnings = append(res.Warnings, Warning{
		Code:   WarnAmbiguousMatch,
		Detail: fmt.Sprintf("%d enabled variants match the selection; using variant %d", len(matches), matches[0].ID),
	})
	return res
}

func (s *Selector) matchVariants(p *Product, axes []NormalizedAxis, effective Selection) []*Variant {
	var matches []*Variant

	for i := range p.Variants {
		v := &p.Variants[i]
		if !v.Enabled {
			continue
		}
		if s.variantMatches(p, axes, v, effective) {
			matches = append(matches, v)
		}
	}

	return matches
}

func (s *Selector) variantMatches(p *Product, axes []NormalizedAxis, v *Variant, effective Selection) bool {
	for _, axis := range axes {
		if axis.Collapsed {
			continue
		}

		valueID, ok := v.Selection[axis.Name]
		if !ok {
			return false
		}

		label := s.variantValueLabel(p, axis.Name, valueID)
		if !strings.EqualFold(label, effective[axis.Name]) {
			return false
		}
	}
	return true
}

func (s *Selector) variantValueLabel(p *Product, axisName string, valueID int64) string {
	for _, opt := range p.Options {
		if opt.Name != axisName {
			continue
		}
		if value, ok := opt.ValueByID(valueID); ok {
			if label, ok := s.dict.ValueLabel(value); ok {
				return label
			}
			return fallbackLabel(value)
		}
	}
	// Value id not declared on the axis; resolve through the dictionary so
	// drifted catalogs still compare by label.
	if label, ok := s.dict.Label(valueID); ok {
		return label
	}
	return fmt.Sprintf("Option #%d", valueID)
}

// explainedByCollapse reports whether every pair of matched variants differs
// on at least one collapsed axis. Identical variants mean upstream shipped
// true duplicates, which stays an ambiguity.
func (s *Selector) explainedByCollapse(axes []NormalizedAxis, matches []*Variant) bool {
	collapsed := false
	for _, axis := range axes {
		if axis.Collapsed {
			collapsed = true
			break
		}
	}
	if !collapsed {
		return false
	}

	seen := map[string]bool{}
	for _, v := range matches {
		fp := selectionFingerprint(v.Selection)
		if seen[fp] {
			return false
		}
		seen[fp] = true
	}
	return true
}

func selectionFingerprint(selection map[string]int64) string {
	keys := make([]string, 0, len(selection))
	for k := range selection {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%d;", k, selection[k])
	}
	return b.String()
}
