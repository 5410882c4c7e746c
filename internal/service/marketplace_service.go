package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"carmine/internal/domain"
	"carmine/internal/listingapi"
	"carmine/internal/marketplace"
	"carmine/internal/session"

	"go.uber.org/zap"
)

var (
	ErrNoActiveSearch = errors.New("no active search to continue")
	ErrStaleResponse  = errors.New("search was superseded")
	ErrFetchListings  = errors.New("failed to fetch listings")
	ErrListingMissing = errors.New("listing not found")
)

// SearchQuery is a visitor's search request as submitted.
type SearchQuery struct {
	Term       string
	Make       string
	PriceRange string
	Sort       string
}

// MarketplaceService drives the browse pipeline for a session: fetch pages
// from the provider, accumulate them and filter the result.
type MarketplaceService interface {
	Search(ctx context.Context, sessionID string, q SearchQuery) (*marketplace.View, error)
	LoadMore(ctx context.Context, sessionID string) (*marketplace.View, error)
	View(ctx context.Context, sessionID string) (*marketplace.View, error)
	Suggest(term string) []string
	Categories() []domain.Category
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
}

type marketplaceService struct {
	fetcher  listingapi.Fetcher
	sessions *session.Manager
	logger   *zap.Logger

	// locks serialises the load-modify-save of browse state per session.
	// Fetches run outside it; generation tickets catch responses that
	// arrive late.
	locks *sessionLocks
}

// NewMarketplaceService creates a new instance of MarketplaceService
func NewMarketplaceService(fetcher listingapi.Fetcher, sessions *session.Manager, logger *zap.Logger) MarketplaceService {
	return &marketplaceService{
		fetcher:  fetcher,
		sessions: sessions,
		logger:   logger,
		locks:    newSessionLocks(),
	}
}

// Search starts a new generation, fetches page 1 and replaces the
// accumulated listings with it.
func (s *marketplaceService) Search(ctx context.Context, sessionID string, q SearchQuery) (*marketplace.View, error) {
	state := marketplace.SearchState{
		Mode:       marketplace.NewSearchMode(q.Term, q.Make),
		PriceRange: q.PriceRange,
		Sort:       domain.ParseSortOption(q.Sort),
	}

	var ticket marketplace.Ticket
	err := s.update(ctx, sessionID, func(b *marketplace.BrowseState) error {
		ticket = b.Reset(state)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.fetchAndApply(ctx, sessionID, ticket, state)
}

// LoadMore fetches the page after the last one applied and appends it.
func (s *marketplaceService) LoadMore(ctx context.Context, sessionID string) (*marketplace.View, error) {
	var (
		ticket marketplace.Ticket
		state  marketplace.SearchState
	)
	err := s.update(ctx, sessionID, func(b *marketplace.BrowseState) error {
		if b.Results.Page == 0 {
			return ErrNoActiveSearch
		}
		ticket = b.Results.BeginMore()
		state = b.Search
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.fetchAndApply(ctx, sessionID, ticket, state)
}

// View returns the filtered accumulated listings without fetching.
func (s *marketplaceService) View(ctx context.Context, sessionID string) (*marketplace.View, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	sess, err := s.sessions.LoadOrNew(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	browse := sess.Browse
	if browse == nil {
		browse = &marketplace.BrowseState{Search: marketplace.SearchState{Mode: marketplace.FreeText{}}}
	}

	view := browse.View()
	return &view, nil
}

func (s *marketplaceService) Suggest(term string) []string {
	return marketplace.Suggest(term, marketplace.Makes())
}

func (s *marketplaceService) Categories() []domain.Category {
	return marketplace.Categories()
}

func (s *marketplaceService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := s.fetcher.Get(ctx, id)
	if err != nil {
		if errors.Is(err, listingapi.ErrListingNotFound) {
			return nil, ErrListingMissing
		}
		s.logger.Error("Failed to fetch listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFetchListings, err)
	}
	return listing, nil
}

func (s *marketplaceService) fetchAndApply(ctx context.Context, sessionID string, ticket marketplace.Ticket, state marketplace.SearchState) (*marketplace.View, error) {
	listings, err := s.fetcher.Fetch(ctx, listingapi.FetchParams{
		Page: ticket.Page,
		Make: providerMake(state),
		Sort: state.Sort,
	})
	if err != nil {
		s.logger.Error("Failed to fetch listings",
			zap.String("session_id", sessionID),
			zap.Int("page", ticket.Page),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrFetchListings, err)
	}

	var view marketplace.View
	err = s.update(ctx, sessionID, func(b *marketplace.BrowseState) error {
		if err := b.Results.Apply(ticket, listings); err != nil {
			if errors.Is(err, marketplace.ErrStaleResponse) {
				s.logger.Info("Discarded superseded listings page",
					zap.String("session_id", sessionID),
					zap.Uint64("generation", ticket.Generation),
					zap.Uint64("current_generation", b.Results.Generation),
					zap.Int("page", ticket.Page),
				)
				return ErrStaleResponse
			}
			return err
		}
		view = b.View()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &view, nil
}

// update loads the session's browse state, applies fn and saves the result.
// Nothing is saved when fn fails.
func (s *marketplaceService) update(ctx context.Context, sessionID string, fn func(*marketplace.BrowseState) error) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	sess, err := s.sessions.LoadOrNew(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if sess.Browse == nil {
		sess.Browse = &marketplace.BrowseState{Search: marketplace.SearchState{Mode: marketplace.FreeText{}}}
	}

	if err := fn(sess.Browse); err != nil {
		return err
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// providerMake is the make filter sent upstream. A locked make is always
// sent; a free-text term only when it names a known make.
func providerMake(state marketplace.SearchState) string {
	if m := state.Make(); m != "" {
		return m
	}
	if canonical, ok := marketplace.LookupMake(state.Term()); ok {
		return canonical
	}
	return ""
}

// sessionLocks hands out one mutex per session id and forgets it once no
// request holds or waits for it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(sessionID string) (unlock func()) {
	l.mu.Lock()
	sl, ok := l.locks[sessionID]
	if !ok {
		sl = &sessionLock{}
		l.locks[sessionID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()

		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}
