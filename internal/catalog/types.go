// Package catalog provides product option normalization and variant resolution.
package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Product is a read-only snapshot of an upstream catalog product. It is
// decoded once per fetch and never mutated by the engine.
type Product struct {
	ID          string
	Title       string
	Description string
	Images      []Image
	Options     []OptionAxis
	Variants    []Variant
}

type Image struct {
	URL        string
	VariantIDs []int64
}

// OptionAxis is one selectable dimension of a product, e.g. "Color" or "Size".
type OptionAxis struct {
	Name   string
	Values []OptionValue
}

// OptionValue carries whatever identification the upstream payload provided.
// Either the numeric id or the label may be missing; the normalizer resolves
// a display label from whichever is present.
type OptionValue struct {
	RawID     string
	NumericID int64
	HasNumber bool
	Label     string
}

// Variant is one concrete purchasable combination of axis values.
type Variant struct {
	ID              int64
	PriceMinorUnits int64
	Enabled         bool
	ImageIndex      *int
	// Selection maps axis name to the option value id chosen on that axis.
	Selection map[string]int64
}

// Selection is a user's (possibly partial) choice of display labels per axis.
type Selection map[string]string

type wireProduct struct {
	ID          json.Number  `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Images      []wireImage  `json:"images"`
	Options     []wireOption `json:"options"`
	Variants    []struct {
		ID         int64           `json:"id"`
		Price      int64           `json:"price"`
		Options    json.RawMessage `json:"options"`
		IsEnabled  bool            `json:"is_enabled"`
		ImageIndex *int            `json:"image_index"`
	} `json:"variants"`
}

type wireImage struct {
	Src        string  `json:"src"`
	VariantIDs []int64 `json:"variant_ids"`
}

type wireOption struct {
	Name   string `json:"name"`
	Values []struct {
		ID    json.RawMessage `json:"id"`
		Title *string         `json:"title"`
	} `json:"values"`
}

// DecodeProduct parses an upstream catalog payload into a Product. Variant
// option selections arrive as an ordered id list and are mapped onto the
// declared axes positionally; an object form keyed by axis name is also
// accepted. Structural problems surface as UpstreamDataError via Validate.
func DecodeProduct(data []byte) (*Product, error) {
	var raw wireProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &UpstreamDataError{Field: "product", Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}

	p := &Product{
		ID:          raw.ID.String(),
		Title:       raw.Title,
		Description: raw.Description,
	}

	for _, img := range raw.Images {
		p.Images = append(p.Images, Image{URL: img.Src, VariantIDs: img.VariantIDs})
	}

	for _, opt := range raw.Options {
		axis := OptionAxis{Name: opt.Name}
		for _, v := range opt.Values {
			value, err := decodeOptionValue(v.ID, v.Title)
			if err != nil {
				return nil, err
			}
			axis.Values = append(axis.Values, value)
		}
		p.Options = append(p.Options, axis)
	}

	for i, v := range raw.Variants {
		selection, err := decodeVariantSelection(v.Options, p.Options, i)
		if err != nil {
			return nil, err
		}
		p.Variants = append(p.Variants, Variant{
			ID:              v.ID,
			PriceMinorUnits: v.Price,
			Enabled:         v.IsEnabled,
			ImageIndex:      v.ImageIndex,
			Selection:       selection,
		})
	}

	return p, nil
}

func decodeOptionValue(rawID json.RawMessage, title *string) (OptionValue, error) {
	value := OptionValue{}
	if title != nil {
		value.Label = *title
	}

	trimmed := strings.TrimSpace(string(rawID))
	if trimmed == "" || trimmed == "null" {
		return value, nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(rawID, &s); err != nil {
			return value, &UpstreamDataError{Field: "options.values.id", Reason: "unparseable string id"}
		}
		value.RawID = s
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			value.NumericID = n
			value.HasNumber = true
		}
		return value, nil
	}

	var n int64
	if err := json.Unmarshal(rawID, &n); err != nil {
		return value, &UpstreamDataError{Field: "options.values.id", Reason: "id is neither number nor string"}
	}
	value.RawID = strconv.FormatInt(n, 10)
	value.NumericID = n
	value.HasNumber = true
	return value, nil
}

func decodeVariantSelection(raw json.RawMessage, axes []OptionAxis, index int) (map[string]int64, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var m map[string]int64
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, &UpstreamDataError{
				Field:  "variants.options",
				Reason: fmt.Sprintf("variant %d: unparseable option map", index),
			}
		}
		return m, nil
	}

	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, &UpstreamDataError{
			Field:  "variants.options",
			Reason: fmt.Sprintf("variant %d: options is neither id list nor map", index),
		}
	}
	if len(ids) != len(axes) {
		return nil, &UpstreamDataError{
			Field:  "variants.options",
			Reason: fmt.Sprintf("variant %d: %d option ids for %d axes", index, len(ids), len(axes)),
		}
	}

	selection := make(map[string]int64, len(ids))
	for i, id := range ids {
		selection[axes[i].Name] = id
	}
	return selection, nil
}

// ValueByID returns the option value on the axis with the given numeric id.
func (a OptionAxis) ValueByID(id int64) (OptionValue, bool) {
	for _, v := range a.Values {
		if v.HasNumber && v.NumericID == id {
			return v, true
		}
	}
	return OptionValue{}, false
}
