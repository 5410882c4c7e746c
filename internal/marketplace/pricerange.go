package marketplace

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriceRange is an inclusive price bucket parsed from "min-max". A zero value
// is unset and matches every price.
type PriceRange struct {
	Min    decimal.Decimal
	Max    decimal.Decimal
	HasMax bool
	set    bool
}

// ParsePriceRange parses "min-max". Either side may be empty; a missing or
// unparseable min becomes 0 and a missing or unparseable max is unbounded.
func ParsePriceRange(raw string) PriceRange {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PriceRange{}
	}

	lo, hi, _ := strings.Cut(raw, "-")
	r := PriceRange{Min: decimal.Zero, set: true}
	if v, err := decimal.NewFromString(strings.TrimSpace(lo)); err == nil {
		r.Min = v
	}
	if v, err := decimal.NewFromString(strings.TrimSpace(hi)); err == nil {
		r.Max = v
		r.HasMax = true
	}
	return r
}

// IsSet reports whether the range filters anything.
func (r PriceRange) IsSet() bool {
	return r.set
}

// Contains reports whether min <= price <= max.
func (r PriceRange) Contains(price decimal.Decimal) bool {
	if !r.set {
		return true
	}
	if price.LessThan(r.Min) {
		return false
	}
	if r.HasMax && price.GreaterThan(r.Max) {
		return false
	}
	return true
}
