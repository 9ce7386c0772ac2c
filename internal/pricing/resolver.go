// Package pricing converts minor-unit prices to display amounts and computes
// cart totals.
package pricing

import (
	"fmt"
	"math"
	"sort"
)

// Rates is externally configured pricing policy: the tax rate and the
// per-flag customization surcharges. Amounts are minor units.
type Rates struct {
	TaxRate    float64
	Surcharges map[string]int64
}

// Line is the pricing view of one cart entry.
type Line struct {
	UnitPriceMinorUnits int64
	Quantity            int64
	Customization       map[string]bool
}

// UnitPrice pairs the internal integer representation with its display form.
type UnitPrice struct {
	MinorUnits int64   `json:"minor_units"`
	Display    float64 `json:"display"`
}

// Totals is a cart price breakdown. Minor-unit fields are exact integers;
// display fields are divided by 100 exactly once and rounded half-up to two
// decimals at this boundary only.
type Totals struct {
	SubtotalMinorUnits   int64   `json:"subtotal_minor_units"`
	SurchargesMinorUnits int64   `json:"surcharges_minor_units"`
	TaxMinorUnits        int64   `json:"tax_minor_units"`
	TotalMinorUnits      int64   `json:"total_minor_units"`
	Subtotal             float64 `json:"subtotal"`
	Surcharges           float64 `json:"surcharges"`
	Tax                  float64 `json:"tax"`
	Total                float64 `json:"total"`
}

type Resolver struct {
	rates Rates
}

func NewResolver(rates Rates) *Resolver {
	if rates.Surcharges == nil {
		rates.Surcharges = map[string]int64{}
	}
	return &Resolver{rates: rates}
}

// UnitPrice converts a variant price to its display amount. The division by
// 100 happens here and nowhere else; callers must never pass an
// already-converted value back in.
func (r *Resolver) UnitPrice(minorUnits int64) UnitPrice {
	return UnitPrice{
		MinorUnits: minorUnits,
		Display:    Display(minorUnits),
	}
}

// ComputeTotals sums line subtotals and surcharges in exact minor units, then
// applies the tax rate. Tax is the only fractional intermediate and is
// rounded half-up to a whole minor unit exactly once.
func (r *Resolver) ComputeTotals(lines []Line) Totals {
	var subtotal, surcharges int64

	for _, line := range lines {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		subtotal += line.UnitPriceMinorUnits * qty
		surcharges += r.lineSurcharge(line) * qty
	}

	tax := roundHalfUpToInt(float64(subtotal+surcharges) * r.rates.TaxRate)
	total := subtotal + surcharges + tax

	return Totals{
		SubtotalMinorUnits:   subtotal,
		SurchargesMinorUnits: surcharges,
		TaxMinorUnits:        tax,
		TotalMinorUnits:      total,
		Subtotal:             Display(subtotal),
		Surcharges:           Display(surcharges),
		Tax:                  Display(tax),
		Total:                Display(total),
	}
}

// SurchargeFor returns the configured amount for one customization flag.
func (r *Resolver) SurchargeFor(flag string) (int64, bool) {
	amount, ok := r.rates.Surcharges[flag]
	return amount, ok
}

// Flags returns the configured surcharge flag names in stable order.
func (r *Resolver) Flags() []string {
	flags := make([]string, 0, len(r.rates.Surcharges))
	for flag := range r.rates.Surcharges {
		flags = append(flags, flag)
	}
	sort.Strings(flags)
	return flags
}

func (r *Resolver) lineSurcharge(line Line) int64 {
	var sum int64
	for flag, on := range line.Customization {
		if !on {
			continue
		}
		sum += r.rates.Surcharges[flag]
	}
	return sum
}

// Display converts minor units to a decimal display amount, rounded half-up
// to two decimals.
func Display(minorUnits int64) float64 {
	return roundHalfUp2(float64(minorUnits) / 100)
}

// FormatDisplay renders a display amount with two decimals.
func FormatDisplay(amount float64) string {
	return fmt.Sprintf("%.2f", roundHalfUp2(amount))
}

func roundHalfUp2(v float64) float64 {
	return roundHalfUp(v*100) / 100
}

func roundHalfUpToInt(v float64) int64 {
	return int64(roundHalfUp(v))
}

func roundHalfUp(v float64) float64 {
	if v < 0 {
		return math.Ceil(v - 0.5)
	}
	return math.Floor(v + 0.5)
}
