// Package cart builds and stores validated cart line items.
package cart

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/printforgeapp/printforge/internal/catalog"
	"github.com/printforgeapp/printforge/internal/pricing"
)

const (
	MinQuantity = 1
	MaxQuantity = 10

	// lineIDDelimiter joins the id components; it never appears in product
	// ids or customization flag names.
	lineIDDelimiter = "::"

	placeholderImage   = "/assets/placeholder-product.svg"
	unknownProductName = "Unknown Product"
)

// LineItem is one validated, sanitized cart entry. After Build returns it,
// ownership passes to the cart store.
type LineItem struct {
	ID                  string            `json:"id"`
	ProductID           string            `json:"product_id"`
	VariantID           int64             `json:"variant_id"`
	Name                string            `json:"name"`
	UnitPriceMinorUnits int64             `json:"unit_price_minor_units"`
	UnitPriceDisplay    float64           `json:"unit_price_display"`
	Quantity            int64             `json:"quantity"`
	ImageURL            string            `json:"image_url"`
	Options             map[string]string `json:"options"`
	Customization       map[string]bool   `json:"customization,omitempty"`
}

// PricingLine adapts the item for totals computation.
func (li LineItem) PricingLine() pricing.Line {
	return pricing.Line{
		UnitPriceMinorUnits: li.UnitPriceMinorUnits,
		Quantity:            li.Quantity,
		Customization:       li.Customization,
	}
}

// ValidationError rejects a malformed cart-build input before any cart state
// is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid cart item: %s: %s", e.Field, e.Reason)
}

// Builder assembles line items from resolved variants.
type Builder struct {
	pricer *pricing.Resolver
}

func NewBuilder(pricer *pricing.Resolver) *Builder {
	return &Builder{pricer: pricer}
}

// Build validates and assembles a prospective cart entry. It fails with
// ValidationError when the quantity is outside [1,10], the resolution is not
// in the resolved state, or identity fields are missing. The returned item's
// id is deterministic over product, variant and the set of active
// customization flags, so repeated adds of the same combination merge instead
// of duplicating rows.
func (b *Builder) Build(product *catalog.Product, res catalog.Resolution, quantity int64, customization map[string]bool) (*LineItem, error) {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return nil, &ValidationError{
			Field:  "quantity",
			Reason: fmt.Sprintf("must be between %d and %d", MinQuantity, MaxQuantity),
		}
	}
	if res.Status != catalog.StatusResolved || res.Variant == nil {
		return nil, &ValidationError{Field: "resolution", Reason: "variant is not resolved"}
	}
	if product == nil || strings.TrimSpace(product.ID) == "" {
		return nil, &ValidationError{Field: "product_id", Reason: "missing"}
	}
	if res.Variant.ID == 0 {
		return nil, &ValidationError{Field: "variant_id", Reason: "missing"}
	}

	flags := activeFlags(customization)

	item := &LineItem{
		ID:                  deriveLineID(product.ID, res.Variant.ID, flags),
		ProductID:           strings.TrimSpace(product.ID),
		VariantID:           res.Variant.ID,
		Name:                sanitizeName(product.Title),
		UnitPriceMinorUnits: res.Variant.PriceMinorUnits,
		UnitPriceDisplay:    b.pricer.UnitPrice(res.Variant.PriceMinorUnits).Display,
		Quantity:            quantity,
		ImageURL:            imageFor(product, res.Variant),
		Options:             snapshotOptions(res.Effective),
	}

	if len(flags) > 0 {
		item.Customization = make(map[string]bool, len(flags))
		for _, flag := range flags {
			item.Customization[flag] = true
		}
	}

	return item, nil
}

// activeFlags keeps only truthy flags, sorted, so a false flag and a missing
// flag produce the same line id.
func activeFlags(customization map[string]bool) []string {
	var flags []string
	for flag, on := range customization {
		if on {
			flags = append(flags, flag)
		}
	}
	sort.Strings(flags)
	return flags
}

func deriveLineID(productID string, variantID int64, flags []string) string {
	parts := append([]string{strings.TrimSpace(productID), strconv.FormatInt(variantID, 10)}, flags...)
	return strings.Join(parts, lineIDDelimiter)
}

func sanitizeName(title string) string {
	if name := strings.TrimSpace(title); name != "" {
		return name
	}
	return unknownProductName
}

func snapshotOptions(effective catalog.Selection) map[string]string {
	snapshot := make(map[string]string, len(effective))
	for axis, label := range effective {
		snapshot[axis] = label
	}
	return snapshot
}

// imageFor prefers the image associated with the variant, then the variant's
// declared image index, then the product's first image.
func imageFor(product *catalog.Product, variant *catalog.Variant) string {
	for _, img := range product.Images {
		for _, id := range img.VariantIDs {
			if id == variant.ID && strings.TrimSpace(img.URL) != "" {
				return img.URL
			}
		}
	}

	if variant.ImageIndex != nil {
		idx := *variant.ImageIndex
		if idx >= 0 && idx < len(product.Images) && strings.TrimSpace(product.Images[idx].URL) != "" {
			return product.Images[idx].URL
		}
	}

	if len(product.Images) > 0 && strings.TrimSpace(product.Images[0].URL) != "" {
		return product.Images[0].URL
	}

	return placeholderImage
}
