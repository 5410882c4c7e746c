package marketplace

import "carmine/internal/domain"

// Filter returns the listings that satisfy both the search mode and the
// price range, in input order. A nil mode matches everything. The input
// slice is never modified.
func Filter(listings []domain.Listing, mode SearchMode, priceRange PriceRange) []domain.Listing {
	out := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if mode != nil && !mode.Matches(l) {
			continue
		}
		if !priceRange.Contains(l.Price) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// FilterState applies a stored search state to listings.
func FilterState(listings []domain.Listing, state SearchState) []domain.Listing {
	return Filter(listings, state.Mode, ParsePriceRange(state.PriceRange))
}
