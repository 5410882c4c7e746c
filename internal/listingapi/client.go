// Package listingapi talks to the third-party car listings provider.
package listingapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"carmine/internal/config"
	"carmine/internal/domain"
	"carmine/internal/marketplace"

	"go.uber.org/zap"
)

var (
	ErrUpstream        = errors.New("listings provider request failed")
	ErrListingNotFound = errors.New("listing not found")
)

// FetchParams selects one page of listings.
type FetchParams struct {
	Page int
	Make string
	Sort domain.SortOption
}

// Fetcher is the read side of the listings provider
type Fetcher interface {
	Fetch(ctx context.Context, params FetchParams) ([]domain.Listing, error)
	Get(ctx context.Context, id string) (*domain.Listing, error)
}

// Client is an HTTP Fetcher for the listings provider
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a listings client from configuration
func NewClient(cfg config.ListingsConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// SortParam maps a sort option onto the provider's sort parameter.
func SortParam(o domain.SortOption) string {
	switch o {
	case domain.SortOldest:
		return "listed_date:asc"
	case domain.SortPriceHigh:
		return "price:desc"
	case domain.SortPriceLow:
		return "price:asc"
	default:
		return "listed_date:desc"
	}
}

// Fetch issues exactly one request for a page of listings. Non-2xx responses
// are reported as ErrUpstream and never retried.
func (c *Client) Fetch(ctx context.Context, params FetchParams) ([]domain.Listing, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(marketplace.PageSize))
	if params.Make != "" {
		q.Set("make", params.Make)
	}
	q.Set("sort", SortParam(params.Sort))

	var body listingsResponse
	if err := c.getJSON(ctx, "/listings", q, &body); err != nil {
		return nil, err
	}

	listings := make([]domain.Listing, 0, len(body.Records))
	for _, r := range body.Records {
		listings = append(listings, r.toDomain())
	}

	c.logger.Debug("Fetched listings page",
		zap.Int("page", page),
		zap.String("make", params.Make),
		zap.String("sort", SortParam(params.Sort)),
		zap.Int("count", len(listings)),
	)

	return listings, nil
}

// Get fetches a single listing for the detail view
func (c *Client) Get(ctx context.Context, id string) (*domain.Listing, error) {
	if id == "" {
		return nil, ErrListingNotFound
	}

	q := url.Values{}
	q.Set("apikey", c.apiKey)

	var raw rawListing
	if err := c.getJSON(ctx, "/listings/"+url.PathEscape(id), q, &raw); err != nil {
		return nil, err
	}

	listing := raw.toDomain()
	if listing.ID == "" {
		listing.ID = id
	}
	return &listing, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out interface{}) error {
	endpoint := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build listings request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Listings provider unreachable", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound && path != "/listings" {
		return ErrListingNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Listings provider returned an error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", ErrUpstream, err)
	}

	return nil
}
