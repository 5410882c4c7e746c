package transport

import (
	"errors"
	"net/http"

	"carmine/internal/domain"
	"carmine/internal/marketplace"
	"carmine/internal/middleware"
	"carmine/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ListingsResponse is the filtered view of a visitor's accumulated listings.
type ListingsResponse struct {
	Listings []domain.Listing        `json:"listings"`
	Count    int                     `json:"count"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	HasMore  bool                    `json:"hasMore"`
	Search   marketplace.SearchState `json:"search"`
}

// SuggestionsResponse lists makes matching a partial term.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// CategoriesResponse is the static make taxonomy.
type CategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
}

// MarketplaceHandler serves the browse pipeline
type MarketplaceHandler struct {
	marketplace service.MarketplaceService
	logger      *zap.Logger
}

// NewMarketplaceHandler creates a new MarketplaceHandler
func NewMarketplaceHandler(marketplace service.MarketplaceService, logger *zap.Logger) *MarketplaceHandler {
	return &MarketplaceHandler{
		marketplace: marketplace,
		logger:      logger,
	}
}

// RegisterRoutes registers marketplace and listing detail routes. Routes that
// touch browse state need the session middleware.
func (h *MarketplaceHandler) RegisterRoutes(r chi.Router, sessionMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/marketplace", func(r chi.Router) {
		r.Get("/suggestions", h.Suggestions)
		r.Get("/categories", h.Categories)

		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware)
			r.Get("/listings", h.Search)
			r.Post("/listings/more", h.LoadMore)
			r.Get("/view", h.View)
		})
	})

	r.Get("/api/listings/{id}", h.GetListing)
}

// Search starts a fresh search from the query string
func (h *MarketplaceHandler) Search(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session not initialised")
		return
	}

	q := r.URL.Query()
	view, err := h.marketplace.Search(r.Context(), sessionID, service.SearchQuery{
		Term:       q.Get("q"),
		Make:       q.Get("make"),
		PriceRange: q.Get("price_range"),
		Sort:       q.Get("sort"),
	})
	if err != nil {
		h.respondWithBrowseError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toListingsResponse(view))
}

// LoadMore appends the next provider page to the current search
func (h *MarketplaceHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session not initialised")
		return
	}

	view, err := h.marketplace.LoadMore(r.Context(), sessionID)
	if err != nil {
		h.respondWithBrowseError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toListingsResponse(view))
}

// View returns the current filtered listings without fetching
func (h *MarketplaceHandler) View(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session not initialised")
		return
	}

	view, err := h.marketplace.View(r.Context(), sessionID)
	if err != nil {
		h.respondWithBrowseError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toListingsResponse(view))
}

func (h *MarketplaceHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, SuggestionsResponse{
		Suggestions: h.marketplace.Suggest(r.URL.Query().Get("q")),
	})
}

func (h *MarketplaceHandler) Categories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, CategoriesResponse{
		Categories: h.marketplace.Categories(),
	})
}

// GetListing returns a single listing from the provider
func (h *MarketplaceHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	listing, err := h.marketplace.GetListing(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrListingMissing) {
			middleware.RespondWithError(w, http.StatusNotFound, "listing not found")
			return
		}
		h.respondWithBrowseError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, listing)
}

func (h *MarketplaceHandler) respondWithBrowseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrStaleResponse):
		middleware.RespondWithError(w, http.StatusConflict, "search was superseded by a newer one")
	case errors.Is(err, service.ErrNoActiveSearch):
		middleware.RespondWithError(w, http.StatusConflict, "no active search to load more results for")
	case errors.Is(err, service.ErrFetchListings):
		// Provider details stay in the logs
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to fetch listings")
	default:
		h.logger.Error("Marketplace request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func toListingsResponse(view *marketplace.View) ListingsResponse {
	listings := view.Listings
	if listings == nil {
		listings = []domain.Listing{}
	}
	return ListingsResponse{
		Listings: listings,
		Count:    len(listings),
		Total:    view.Total,
		Page:     view.Page,
		HasMore:  view.HasMore,
		Search:   view.Search,
	}
}
