package marketplace

import (
	"errors"

	"carmine/internal/domain"
)

// PageSize is the number of listings requested from the provider per page.
const PageSize = 100

var ErrStaleResponse = errors.New("listings response superseded by a newer search")

// Ticket identifies the fetch a response belongs to.
type Ticket struct {
	Generation uint64 `json:"generation"`
	Page       int    `json:"page"`
}

// Accumulator collects listing pages for the current search. Each new search
// bumps the generation so responses to older searches can be recognised and
// dropped.
type Accumulator struct {
	Generation   uint64           `json:"generation"`
	Page         int              `json:"page"`
	Listings     []domain.Listing `json:"listings"`
	LastPageSize int              `json:"lastPageSize"`
}

// Accumulate appends next to existing. Nothing is removed or de-duplicated:
// if the provider returns overlapping pages, the duplicates are kept.
func Accumulate(existing, next []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, 0, len(existing)+len(next))
	out = append(out, existing...)
	return append(out, next...)
}

// Begin starts a fresh search and returns the ticket for its first page.
// The previous listings stay visible until page 1 arrives, but no further
// page can be loaded for them.
func (a *Accumulator) Begin() Ticket {
	a.Generation++
	a.Page = 0
	a.LastPageSize = 0
	return Ticket{Generation: a.Generation, Page: 1}
}

// BeginMore returns the ticket for the page after the last applied one.
func (a *Accumulator) BeginMore() Ticket {
	return Ticket{Generation: a.Generation, Page: a.Page + 1}
}

// Apply merges a fetched page. Page 1 replaces the accumulated set, the next
// page appends to it. Tickets from an older generation, or for a page that
// is no longer next, return ErrStaleResponse and leave the state untouched.
func (a *Accumulator) Apply(t Ticket, listings []domain.Listing) error {
	if t.Generation != a.Generation {
		return ErrStaleResponse
	}

	switch {
	case t.Page == 1:
		a.Listings = Accumulate(nil, listings)
	case t.Page == a.Page+1:
		a.Listings = Accumulate(a.Listings, listings)
	default:
		return ErrStaleResponse
	}

	a.Page = t.Page
	a.LastPageSize = len(listings)
	return nil
}

// HasMore reports whether the last page was full, meaning another page may exist.
func (a *Accumulator) HasMore() bool {
	return a.Page > 0 && a.LastPageSize >= PageSize
}
