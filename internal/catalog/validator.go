package catalog

import (
	"strings"
)

// Validator checks the structural preconditions the engine assumes of an
// upstream snapshot. A product that fails here is never normalized; the
// error propagates to the caller as an UpstreamDataError.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(p *Product) error {
	if p == nil {
		return &UpstreamDataError{Field: "product", Reason: "missing"}
	}

	if strings.TrimSpace(p.ID) == "" {
		return &UpstreamDataError{Field: "id", Reason: "product id is required"}
	}

	if len(p.Options) == 0 {
		return &UpstreamDataError{Field: "options", Reason: "at least one option axis is required"}
	}

	axisNames := make(map[string]bool, len(p.Options))
	for _, axis := range p.Options {
		if err := v.validateAxis(axis); err != nil {
			return err
		}
		if axisNames[axis.Name] {
			return &UpstreamDataError{Field: "options", Reason: "duplicate axis name: " + axis.Name}
		}
		axisNames[axis.Name] = true
	}

	if len(p.Variants) == 0 {
		return &UpstreamDataError{Field: "variants", Reason: "at least one variant is required"}
	}

	variantIDs := make(map[int64]bool, len(p.Variants))
	for _, variant := range p.Variants {
		if err := v.validateVariant(variant, axisNames); err != nil {
			return err
		}
		if variantIDs[variant.ID] {
			return &UpstreamDataError{Field: "variants", Reason: "duplicate variant id"}
		}
		variantIDs[variant.ID] = true
	}

	return nil
}

func (v *Validator) validateAxis(axis OptionAxis) error {
	if strings.TrimSpace(axis.Name) == "" {
		return &UpstreamDataError{Field: "options", Reason: "axis name is required"}
	}
	if len(axis.Values) == 0 {
		return &UpstreamDataError{Field: "options", Reason: "axis " + axis.Name + " has no values"}
	}
	for _, value := range axis.Values {
		if !value.HasNumber && strings.TrimSpace(value.RawID) == "" && strings.TrimSpace(value.Label) == "" {
			return &UpstreamDataError{Field: "options", Reason: "axis " + axis.Name + " has a value with neither id nor label"}
		}
	}
	return nil
}

func (v *Validator) validateVariant(variant Variant, axisNames map[string]bool) error {
	if variant.ID == 0 {
		return &UpstreamDataError{Field: "variants", Reason: "variant id is required"}
	}
	if variant.PriceMinorUnits < 0 {
		return &UpstreamDataError{Field: "variants", Reason: "variant price must be zero or positive"}
	}

	// Exactly one value per declared axis.
	if len(variant.Selection) != len(axisNames) {
		return &UpstreamDataError{Field: "variants", Reason: "variant option count does not match axis count"}
	}
	for name := range variant.Selection {
		if !axisNames[name] {
			return &UpstreamDataError{Field: "variants", Reason: "variant references undeclared axis: " + name}
		}
	}

	return nil
}
