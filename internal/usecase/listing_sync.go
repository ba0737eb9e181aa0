package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pricedesk/internal/domain"
	"pricedesk/internal/service"
	"pricedesk/pkg/log"
)

// PageSize is the number of listings shown per pricelist page
const PageSize = 100

// ListingView is a listing prepared for rendering
type ListingView struct {
	Name     string
	BuyText  string
	SellText string
	Icon     string
	Position int
}

// PriceListPage is one page of the pricelist
type PriceListPage struct {
	Items    []ListingView
	Page     int
	PrevPage int
	NextPage int
	HasPrev  bool
	HasNext  bool
	Total    int
}

// ListingSync mediates between the web layer and the listing backend.
// It keeps no state between calls: every operation fetches from the backend.
type ListingSync struct {
	backend domain.Backend
}

// NewListingSync creates a new ListingSync
func NewListingSync(backend domain.Backend) *ListingSync {
	return &ListingSync{backend: backend}
}

// BackendKind names the backend in use
func (s *ListingSync) BackendKind() string {
	return s.backend.Kind()
}

// List fetches every listing and formats its prices
func (s *ListingSync) List(ctx context.Context) ([]ListingView, error) {
	listings, err := s.backend.FetchListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}

	views := make([]ListingView, len(listings))
	for i, l := range listings {
		buy, sell := "none", "none"
		if l.Prices != nil && l.Prices.Buy != nil {
			buy = service.FormatCurrency(*l.Prices.Buy)
		}
		if l.Prices != nil && l.Prices.Sell != nil {
			sell = service.FormatCurrency(*l.Prices.Sell)
		}

		views[i] = ListingView{
			Name:     l.Name,
			BuyText:  "Buying for " + buy,
			SellText: "Selling for " + sell,
			Icon:     l.Icon,
			Position: i,
		}
	}

	return views, nil
}

// Page returns listings [(page-1)*PageSize, page*PageSize). Pages below 1 are treated as 1.
func (s *ListingSync) Page(ctx context.Context, page int) (*PriceListPage, error) {
	if page < 1 {
		page = 1
	}

	views, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	start := min((page-1)*PageSize, len(views))
	end := min(page*PageSize, len(views))

	return &PriceListPage{
		Items:    views[start:end],
		Page:     page,
		PrevPage: page - 1,
		NextPage: page + 1,
		HasPrev:  page > 1,
		HasNext:  end < len(views),
		Total:    len(views),
	}, nil
}

// RemoveByIndices removes the listings at the given positions of a fresh
// fetch. Positions refer to the order the backend returns right now.
func (s *ListingSync) RemoveByIndices(ctx context.Context, indices []int) (domain.RemoveResult, error) {
	if len(indices) == 0 {
		return domain.RemoveResult{}, domain.NewValidationError("You need to select items")
	}

	listings, err := s.backend.FetchListings(ctx)
	if err != nil {
		return domain.RemoveResult{}, fmt.Errorf("failed to fetch listings: %w", err)
	}

	seen := make(map[int]bool, len(indices))
	names := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(listings) {
			return domain.RemoveResult{}, domain.NewValidationError(
				fmt.Sprintf("Item %d is no longer in the pricelist, reload the page", idx))
		}
		if seen[idx] {
			return domain.RemoveResult{}, domain.NewValidationError(
				fmt.Sprintf("Item %d was selected more than once", idx))
		}
		seen[idx] = true
		names = append(names, listings[idx].Name)
	}

	return s.remove(ctx, names)
}

// RemoveAll removes every current listing
func (s *ListingSync) RemoveAll(ctx context.Context) (domain.RemoveResult, error) {
	listings, err := s.backend.FetchListings(ctx)
	if err != nil {
		return domain.RemoveResult{}, fmt.Errorf("failed to fetch listings: %w", err)
	}

	if len(listings) == 0 {
		return domain.RemoveResult{}, nil
	}

	return s.remove(ctx, domain.Names(listings))
}

// Add forwards a resolved item to the backend with autopricing enabled.
// Defindex 0 is a real item.
func (s *ListingSync) Add(ctx context.Context, candidate domain.ListingCandidate) (*domain.Listing, error) {
	if candidate.Defindex < 0 {
		return nil, domain.NewValidationError(fmt.Sprintf("Item defindex %d is not valid", candidate.Defindex))
	}

	spec := domain.ListingSpec{
		Defindex:   candidate.Defindex,
		Quality:    candidate.Quality,
		Craftable:  candidate.Craftable,
		Killstreak: candidate.Killstreak,
		Australium: candidate.Australium,
		Autoprice:  true,
		Enabled:    true,
	}

	return s.backend.AddListing(ctx, spec)
}

func (s *ListingSync) remove(ctx context.Context, names []string) (domain.RemoveResult, error) {
	result, err := s.backend.RemoveListings(ctx, names)
	if err != nil {
		return result, err
	}

	if result.Removed < len(names) {
		log.Warn("batch removal was partial",
			zap.Int("requested", len(names)),
			zap.Int("removed", result.Removed),
			zap.Strings("failed", result.Failed),
		)
		return result, &domain.PartialFailureError{
			Requested: len(names),
			Removed:   result.Removed,
			Failed:    result.Failed,
		}
	}

	log.Info("listings removed", zap.Int("count", result.Removed), zap.String("backend", s.backend.Kind()))
	return result, nil
}
