package catalog

import (
	"fmt"
	"strings"
)

// AxisKind classifies an axis by the name heuristics in sizeclass.go.
// Unrecognized axes pass through the engine opaquely.
type AxisKind string

const (
	AxisSize  AxisKind = "size"
	AxisColor AxisKind = "color"
	AxisOther AxisKind = "other"
)

// NormalizedValue is one selectable option with a guaranteed display label.
type NormalizedValue struct {
	ID    int64  `json:"id,omitempty"`
	RawID string `json:"raw_id,omitempty"`
	Label string `json:"label"`
}

// NormalizedAxis is the engine's canonical view of one option axis.
type NormalizedAxis struct {
	Name   string            `json:"name"`
	Kind   AxisKind          `json:"kind"`
	Values []NormalizedValue `json:"values"`
	// Collapsed marks a size axis folded to "One Size"; the selector treats
	// such an axis as satisfied by any variant value.
	Collapsed bool `json:"collapsed,omitempty"`
	// Unresolved marks an axis where at least one value needed the
	// "Option #<id>" fallback label.
	Unresolved bool `json:"unresolved,omitempty"`
}

// ValueLabel returns the display label behind a raw option value id, applying
// the same resolution order as Normalize. The collapsed state is not applied
// here; callers that need it go through the axis.
func (d *Dictionary) ValueLabel(v OptionValue) (string, bool) {
	if label := strings.TrimSpace(v.Label); label != "" {
		return label, true
	}
	if v.HasNumber {
		if label, ok := d.Label(v.NumericID); ok {
			return label, true
		}
		if d.InDimensionalRange(v.NumericID) {
			if label, ok := d.DimensionalLabel(v.NumericID); ok {
				return label, true
			}
		}
	}
	return "", false
}

// Normalizer turns raw option axes into deduplicated display values. It is a
// pure function over its inputs and the injected dictionary.
type Normalizer struct {
	dict *Dictionary
}

func NewNormalizer(dict *Dictionary) *Normalizer {
	if dict == nil {
		dict = NewDictionary()
	}
	return &Normalizer{dict: dict}
}

// Normalize resolves a display label for every value on the axis.
//
// Resolution order per value, first non-empty result wins: the raw label
// verbatim (trimmed); the static id dictionary; a synthesized `W" × H"`
// label for ids in the print-size block; a marker fallback ("Option #<id>")
// so the UI never renders a blank control. Values are deduplicated by label,
// first-seen order preserved. The second return reports whether any value
// fell through to the fallback.
func (n *Normalizer) Normalize(axis OptionAxis) ([]NormalizedValue, bool) {
	seen := map[string]bool{}
	values := make([]NormalizedValue, 0, len(axis.Values))
	unresolved := false

	for _, v := range axis.Values {
		label, ok := n.dict.ValueLabel(v)
		if !ok {
			label = fallbackLabel(v)
			unresolved = true
		}
		if seen[label] {
			continue
		}
		seen[label] = true
		values = append(values, NormalizedValue{
			ID:    v.NumericID,
			RawID: v.RawID,
			Label: label,
		})
	}

	return values, unresolved
}

// NormalizeProduct normalizes every axis of a product and applies the size
// fold. Warnings accumulate per axis; none of them abort normalization.
func (n *Normalizer) NormalizeProduct(p *Product) ([]NormalizedAxis, []Warning) {
	axes := make([]NormalizedAxis, 0, len(p.Options))
	var warnings []Warning

	for _, opt := range p.Options {
		values, unresolved := n.Normalize(opt)
		axis := NormalizedAxis{
			Name:   opt.Name,
			Kind:   classifyAxis(opt.Name),
			Values: values,
		}

		if unresolved {
			axis.Unresolved = true
			warnings = append(warnings, Warning{
				Code:   WarnUnresolvedLabel,
				Axis:   opt.Name,
				Detail: "one or more option values have no known label",
			})
		}

		if axis.Kind == AxisSize {
			labels := make([]string, len(values))
			for i, v := range values {
				labels[i] = v.Label
			}
			reduced := ReduceSizes(labels)
			if len(reduced) == 1 && len(labels) > 1 && reduced[0] == OneSizeLabel {
				axis.Collapsed = true
				axis.Values = []NormalizedValue{{Label: OneSizeLabel}}
				warnings = append(warnings, Warning{
					Code:   WarnCollapsedSizes,
					Axis:   opt.Name,
					Detail: fmt.Sprintf("%d dimensional sizes folded to %q", len(labels), OneSizeLabel),
				})
			}
		}

		axes = append(axes, axis)
	}

	return axes, warnings
}

func classifyAxis(name string) AxisKind {
	switch {
	case IsSizeAxis(name):
		return AxisSize
	case IsColorAxis(name):
		return AxisColor
	default:
		return AxisOther
	}
}

func fallbackLabel(v OptionValue) string {
	if v.RawID != "" {
		return fmt.Sprintf("Option #%s", v.RawID)
	}
	return "Option #?"
}
