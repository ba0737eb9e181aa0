package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"pricedesk/internal/domain"
	"pricedesk/pkg/log"
)

const (
	// remotePageSize is the page size requested from the listings endpoint
	remotePageSize = 100
	// maxRemotePages bounds pagination against a misbehaving backend
	maxRemotePages = 1000
	// defaultRetryAfter is used when a 429 carries no usable wait hint
	defaultRetryAfter = 60 * time.Second
)

// RemoteBackend implements domain.Backend against the trading-bot pricing API
type RemoteBackend struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	listeners  snapshotListeners
}

// NewRemoteBackend creates a new remote pricing API backend
func NewRemoteBackend(baseURL, apiKey string, timeout time.Duration) *RemoteBackend {
	return &RemoteBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// remoteListing is the listing shape served by the pricing API
type remoteListing struct {
	Name  string                 `json:"name"`
	Buy   *domain.CurrencyAmount `json:"buy,omitempty"`
	Sell  *domain.CurrencyAmount `json:"sell,omitempty"`
	Image string                 `json:"image,omitempty"`
}

func (r remoteListing) toDomain() domain.Listing {
	listing := domain.Listing{
		Name: r.Name,
		Icon: r.Image,
	}
	if r.Buy != nil || r.Sell != nil {
		listing.Prices = &domain.PriceEntry{Buy: r.Buy, Sell: r.Sell}
	}
	return listing
}

type listingsPage struct {
	Success    bool            `json:"success"`
	Listings   []remoteListing `json:"listings"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
}

type addListingResponse struct {
	Success bool          `json:"success"`
	Listing remoteListing `json:"listing"`
}

type removeListingsRequest struct {
	Names []string `json:"names"`
}

type removeListingsResponse struct {
	Success bool     `json:"success"`
	Removed int      `json:"removed"`
	Failed  []string `json:"failed"`
}

// errorBody is the error envelope returned by the pricing API
type errorBody struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Messages   []string `json:"messages"`
	RetryAfter *float64 `json:"retryAfter"`
}

// Kind returns "remote"
func (b *RemoteBackend) Kind() string { return "remote" }

// Init verifies the API is reachable and the key is accepted
func (b *RemoteBackend) Init(ctx context.Context) error {
	listings, err := b.FetchListings(ctx)
	if err != nil {
		return fmt.Errorf("pricing API is not available: %w", err)
	}

	log.Info("remote backend ready",
		zap.String("url", b.baseURL),
		zap.Int("listings", len(listings)),
	)
	return nil
}

// FetchListings walks every page of the listings endpoint
func (b *RemoteBackend) FetchListings(ctx context.Context) ([]domain.Listing, error) {
	var listings []domain.Listing

	for page := 1; page <= maxRemotePages; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("limit", strconv.Itoa(remotePageSize))

		var resp listingsPage
		if err := b.do(ctx, http.MethodGet, "/v1/listings", query, nil, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch listings page %d: %w", page, err)
		}

		for _, l := range resp.Listings {
			listings = append(listings, l.toDomain())
		}

		if len(resp.Listings) == 0 || resp.Page >= resp.TotalPages {
			return listings, nil
		}
	}

	return nil, fmt.Errorf("listings did not finish after %d pages", maxRemotePages)
}

// AddListing creates a listing through the API
func (b *RemoteBackend) AddListing(ctx context.Context, spec domain.ListingSpec) (*domain.Listing, error) {
	var resp addListingResponse
	if err := b.do(ctx, http.MethodPost, "/v1/listings", nil, spec, &resp); err != nil {
		return nil, fmt.Errorf("failed to add listing %d: %w", spec.Defindex, err)
	}

	listing := resp.Listing.toDomain()
	log.Info("listing added", zap.String("name", listing.Name), zap.String("backend", b.Kind()))
	return &listing, nil
}

// RemoveListings deletes listings by name in one batch
func (b *RemoteBackend) RemoveListings(ctx context.Context, names []string) (domain.RemoveResult, error) {
	result := domain.RemoveResult{Requested: len(names)}

	var resp removeListingsResponse
	if err := b.do(ctx, http.MethodDelete, "/v1/listings", nil, removeListingsRequest{Names: names}, &resp); err != nil {
		return result, fmt.Errorf("failed to remove listings: %w", err)
	}

	result.Removed = resp.Removed
	result.Failed = resp.Failed
	return result, nil
}

// OnListings registers a snapshot listener. The remote API pushes snapshots
// through the event stream, which calls Publish.
func (b *RemoteBackend) OnListings(fn func([]domain.Listing)) {
	b.listeners.add(fn)
}

// Publish forwards a snapshot received from the event stream to listeners
func (b *RemoteBackend) Publish(listings []domain.Listing) {
	b.listeners.emit(listings)
}

func (b *RemoteBackend) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", b.apiKey)
	endpoint := fmt.Sprintf("%s%s?%s", b.baseURL, path, query.Encode())

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call pricing API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError maps a non-2xx response onto the domain error kinds
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var body errorBody
	_ = json.Unmarshal(raw, &body)

	message := body.Message
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &domain.RateLimitedError{RetryAfter: retryAfter(resp.Header.Get("Retry-After"), body.RetryAfter)}
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusUnprocessableEntity:
		messages := body.Messages
		if len(messages) == 0 {
			messages = []string{message}
		}
		return domain.NewValidationError(messages...)
	case resp.StatusCode >= 500:
		return &domain.ServerError{Status: resp.StatusCode, Message: message}
	default:
		return &domain.BackendError{Status: resp.StatusCode, Message: message}
	}
}

// retryAfter reads the wait hint from the Retry-After header (seconds or
// HTTP date), then the body, then falls back to defaultRetryAfter.
func retryAfter(header string, bodySeconds *float64) time.Duration {
	if header != "" {
		if seconds, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
		if at, err := http.ParseTime(header); err == nil {
			if wait := time.Until(at); wait > 0 {
				return wait
			}
			return 0
		}
	}

	if bodySeconds != nil && *bodySeconds >= 0 {
		return time.Duration(*bodySeconds * float64(time.Second))
	}

	return defaultRetryAfter
}

