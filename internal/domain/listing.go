package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Listing is a vehicle offered by the external listings provider. Listings
// are never persisted; they live in a visitor's browse session.
type Listing struct {
	ID         string          `json:"id"`
	Make       string          `json:"make"`
	Model      string          `json:"model"`
	Year       int             `json:"year"`
	Trim       string          `json:"trim"`
	Price      decimal.Decimal `json:"price"`
	Mileage    int             `json:"mileage"`
	ImageURL   string          `json:"imageUrl"`
	ListedDate *time.Time      `json:"listedDate,omitempty"`
}

// Category groups vehicle makes for browsing.
type Category struct {
	Name  string   `json:"name"`
	Makes []string `json:"makes"`
}

// SortOption selects the provider-side ordering of listings.
type SortOption string

const (
	SortNewest    SortOption = "newest"
	SortOldest    SortOption = "oldest"
	SortPriceHigh SortOption = "price_high"
	SortPriceLow  SortOption = "price_low"
)

// ParseSortOption maps user input onto a SortOption, defaulting to newest.
func ParseSortOption(s string) SortOption {
	switch SortOption(s) {
	case SortOldest, SortPriceHigh, SortPriceLow:
		return SortOption(s)
	default:
		return SortNewest
	}
}
