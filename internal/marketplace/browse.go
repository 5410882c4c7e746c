package marketplace

import "carmine/internal/domain"

// BrowseState is the per-visitor marketplace state kept in the session.
type BrowseState struct {
	Search  SearchState `json:"search"`
	Results Accumulator `json:"results"`
}

// View is what a visitor sees: the accumulated listings after filtering.
type View struct {
	Search   SearchState
	Listings []domain.Listing
	Total    int
	Page     int
	HasMore  bool
}

// View filters the accumulated listings with the current search state.
func (b *BrowseState) View() View {
	return View{
		Search:   b.Search,
		Listings: FilterState(b.Results.Listings, b.Search),
		Total:    len(b.Results.Listings),
		Page:     b.Results.Page,
		HasMore:  b.Results.HasMore(),
	}
}

// Reset replaces the search state and starts a new generation.
func (b *BrowseState) Reset(search SearchState) Ticket {
	b.Search = search
	return b.Results.Begin()
}
