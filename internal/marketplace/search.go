// Package marketplace holds the browse pipeline for car listings: search
// modes, filtering, make suggestions and page accumulation. Everything here
// is pure and works on in-memory slices.
package marketplace

import (
	"encoding/json"
	"fmt"
	"strings"

	"carmine/internal/domain"

	"golang.org/x/text/cases"
)

// SearchMode is either a free-text search or a lock on a single make. The two
// are mutually exclusive: picking a make disables free-text matching.
type SearchMode interface {
	Matches(l domain.Listing) bool
	isSearchMode()
}

// FreeText matches a term against make, model and trim.
type FreeText struct {
	Term string
}

// CategoryLock restricts results to one make.
type CategoryLock struct {
	Make string
}

func (FreeText) isSearchMode()     {}
func (CategoryLock) isSearchMode() {}

// Matches reports whether make, model or trim contains the term, ignoring case.
// An empty term matches everything.
func (f FreeText) Matches(l domain.Listing) bool {
	term := fold(strings.TrimSpace(f.Term))
	if term == "" {
		return true
	}
	return strings.Contains(fold(l.Make), term) ||
		strings.Contains(fold(l.Model), term) ||
		strings.Contains(fold(l.Trim), term)
}

// Matches reports whether the listing's make equals the locked make, ignoring case.
func (c CategoryLock) Matches(l domain.Listing) bool {
	if strings.TrimSpace(c.Make) == "" {
		return true
	}
	return fold(l.Make) == fold(strings.TrimSpace(c.Make))
}

// NewSearchMode picks the mode for a request. A selected make always wins
// over the free-text term.
func NewSearchMode(term, selectedMake string) SearchMode {
	if m := strings.TrimSpace(selectedMake); m != "" {
		return CategoryLock{Make: m}
	}
	return FreeText{Term: strings.TrimSpace(term)}
}

// SearchState is what a visitor last asked for.
type SearchState struct {
	Mode       SearchMode
	PriceRange string
	Sort       domain.SortOption
}

// Term returns the free-text term, or "" when a make is locked.
func (s SearchState) Term() string {
	if ft, ok := s.Mode.(FreeText); ok {
		return ft.Term
	}
	return ""
}

// Make returns the locked make, or "" in free-text mode.
func (s SearchState) Make() string {
	if cl, ok := s.Mode.(CategoryLock); ok {
		return cl.Make
	}
	return ""
}

type searchStateJSON struct {
	Mode       string            `json:"mode"`
	Term       string            `json:"term,omitempty"`
	Make       string            `json:"make,omitempty"`
	PriceRange string            `json:"priceRange,omitempty"`
	Sort       domain.SortOption `json:"sort"`
}

const (
	modeFreeText = "free_text"
	modeCategory = "category"
)

func (s SearchState) MarshalJSON() ([]byte, error) {
	out := searchStateJSON{PriceRange: s.PriceRange, Sort: s.Sort}
	switch m := s.Mode.(type) {
	case CategoryLock:
		out.Mode = modeCategory
		out.Make = m.Make
	case FreeText:
		out.Mode = modeFreeText
		out.Term = m.Term
	default:
		out.Mode = modeFreeText
	}
	return json.Marshal(out)
}

func (s *SearchState) UnmarshalJSON(data []byte) error {
	var in searchStateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Mode {
	case modeCategory:
		s.Mode = CategoryLock{Make: in.Make}
	case modeFreeText, "":
		s.Mode = FreeText{Term: in.Term}
	default:
		return fmt.Errorf("unknown search mode %q", in.Mode)
	}
	s.PriceRange = in.PriceRange
	s.Sort = domain.ParseSortOption(string(in.Sort))
	return nil
}

// fold case-folds s for comparisons. A Caser is stateful, so each call gets
// its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
