package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"pricedesk/internal/domain"
	"pricedesk/internal/service"
)

// fakeBackend records calls and serves canned listings
type fakeBackend struct {
	listings   []domain.Listing
	fetchErr   error
	addErr     error
	removeErr  error
	removeFunc func(names []string) domain.RemoveResult

	added   []domain.ListingSpec
	removed [][]string
}

func (f *fakeBackend) Init(ctx context.Context) error { return nil }

func (f *fakeBackend) FetchListings(ctx context.Context) ([]domain.Listing, error) {
	return f.listings, f.fetchErr
}

func (f *fakeBackend) AddListing(ctx context.Context, spec domain.ListingSpec) (*domain.Listing, error) {
	f.added = append(f.added, spec)
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &domain.Listing{Name: fmt.Sprintf("item %d", spec.Defindex)}, nil
}

func (f *fakeBackend) RemoveListings(ctx context.Context, names []string) (domain.RemoveResult, error) {
	f.removed = append(f.removed, names)
	if f.removeErr != nil {
		return domain.RemoveResult{Requested: len(names)}, f.removeErr
	}
	if f.removeFunc != nil {
		return f.removeFunc(names), nil
	}
	return domain.RemoveResult{Requested: len(names), Removed: len(names)}, nil
}

func (f *fakeBackend) OnListings(fn func([]domain.Listing)) {}

func (f *fakeBackend) Kind() string { return "fake" }

func threeListings() []domain.Listing {
	return []domain.Listing{
		{
			Name: "Mann Co. Supply Crate Key",
			Prices: &domain.PriceEntry{
				Buy:  &domain.CurrencyAmount{Metal: 55.11},
				Sell: &domain.CurrencyAmount{Metal: 55.339},
			},
			Icon: "https://img/key.png",
		},
		{
			Name:   "Strange Rocket Launcher",
			Prices: &domain.PriceEntry{Sell: &domain.CurrencyAmount{Keys: 1, Metal: 2.5}},
		},
		{Name: "Tour of Duty Ticket"},
	}
}

func TestListFormatsAndNumbers(t *testing.T) {
	sync := NewListingSync(&fakeBackend{listings: threeListings()})

	views, err := sync.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []ListingView{
		{Name: "Mann Co. Supply Crate Key", BuyText: "Buying for 55.11 ref", SellText: "Selling for 55.33 ref", Icon: "https://img/key.png", Position: 0},
		{Name: "Strange Rocket Launcher", BuyText: "Buying for none", SellText: "Selling for 1 key, 2.5 ref", Position: 1},
		{Name: "Tour of Duty Ticket", BuyText: "Buying for none", SellText: "Selling for none", Position: 2},
	}
	if !reflect.DeepEqual(views, want) {
		t.Errorf("got %+v\nwant %+v", views, want)
	}
}

func TestListPropagatesBackendError(t *testing.T) {
	backendErr := &domain.RateLimitedError{}
	sync := NewListingSync(&fakeBackend{fetchErr: backendErr})

	_, err := sync.List(context.Background())
	var rl *domain.RateLimitedError
	if !errors.As(err, &rl) {
		t.Errorf("expected RateLimitedError, got %v", err)
	}
}

func TestPage(t *testing.T) {
	listings := make([]domain.Listing, 250)
	for i := range listings {
		listings[i] = domain.Listing{Name: fmt.Sprintf("item %d", i)}
	}
	sync := NewListingSync(&fakeBackend{listings: listings})

	tests := []struct {
		page      int
		wantPage  int
		wantLen   int
		wantFirst int
		hasPrev   bool
		hasNext   bool
	}{
		{page: 0, wantPage: 1, wantLen: 100, wantFirst: 0, hasPrev: false, hasNext: true},
		{page: 1, wantPage: 1, wantLen: 100, wantFirst: 0, hasPrev: false, hasNext: true},
		{page: 2, wantPage: 2, wantLen: 100, wantFirst: 100, hasPrev: true, hasNext: true},
		{page: 3, wantPage: 3, wantLen: 50, wantFirst: 200, hasPrev: true, hasNext: false},
		{page: 9, wantPage: 9, wantLen: 0, hasPrev: true, hasNext: false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			p, err := sync.Page(context.Background(), tt.page)
			if err != nil {
				t.Fatalf("Page: %v", err)
			}
			if p.Page != tt.wantPage || len(p.Items) != tt.wantLen || p.HasPrev != tt.hasPrev || p.HasNext != tt.hasNext {
				t.Errorf("got page=%d len=%d prev=%v next=%v", p.Page, len(p.Items), p.HasPrev, p.HasNext)
			}
			if tt.wantLen > 0 && p.Items[0].Position != tt.wantFirst {
				t.Errorf("first position: got %d, want %d", p.Items[0].Position, tt.wantFirst)
			}
			if p.Total != 250 {
				t.Errorf("total: got %d", p.Total)
			}
		})
	}
}

func TestRemoveByIndices(t *testing.T) {
	backend := &fakeBackend{listings: threeListings()}
	sync := NewListingSync(backend)

	result, err := sync.RemoveByIndices(context.Background(), []int{0, 2})
	if err != nil {
		t.Fatalf("RemoveByIndices: %v", err)
	}
	if result.Removed != 2 {
		t.Errorf("removed: got %d", result.Removed)
	}

	want := [][]string{{"Mann Co. Supply Crate Key", "Tour of Duty Ticket"}}
	if !reflect.DeepEqual(backend.removed, want) {
		t.Errorf("backend removed %v, want %v", backend.removed, want)
	}
}

func TestRemoveByIndicesRejectsBadSelection(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
	}{
		{"empty", nil},
		{"out of range", []int{0, 3}},
		{"negative", []int{-1}},
		{"duplicate", []int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{listings: threeListings()}
			_, err := NewListingSync(backend).RemoveByIndices(context.Background(), tt.indices)

			var validation *domain.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(backend.removed) != 0 {
				t.Errorf("backend must not be called, got %v", backend.removed)
			}
		})
	}
}

func TestRemovePartialFailure(t *testing.T) {
	backend := &fakeBackend{
		listings: threeListings(),
		removeFunc: func(names []string) domain.RemoveResult {
			return domain.RemoveResult{Requested: len(names), Removed: 1, Failed: names[1:]}
		},
	}
	sync := NewListingSync(backend)

	result, err := sync.RemoveAll(context.Background())

	var partial *domain.PartialFailureError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialFailureError, got %v", err)
	}
	if partial.Requested != 3 || partial.Removed != 1 || len(partial.Failed) != 2 {
		t.Errorf("unexpected partial %+v", partial)
	}
	if result.Removed != 1 {
		t.Errorf("result removed: got %d", result.Removed)
	}
}

func TestRemoveAll(t *testing.T) {
	backend := &fakeBackend{listings: threeListings()}
	if _, err := NewListingSync(backend).RemoveAll(context.Background()); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if len(backend.removed) != 1 || len(backend.removed[0]) != 3 {
		t.Errorf("expected one batch of 3, got %v", backend.removed)
	}

	empty := &fakeBackend{}
	if _, err := NewListingSync(empty).RemoveAll(context.Background()); err != nil {
		t.Fatalf("RemoveAll on empty list: %v", err)
	}
	if len(empty.removed) != 0 {
		t.Errorf("empty list must not call the backend")
	}
}

func TestRemoveSurfacesBackendError(t *testing.T) {
	backend := &fakeBackend{listings: threeListings(), removeErr: &domain.ServerError{Status: 503}}

	_, err := NewListingSync(backend).RemoveByIndices(context.Background(), []int{1})
	var server *domain.ServerError
	if !errors.As(err, &server) {
		t.Errorf("expected ServerError, got %v", err)
	}
}

func TestAdd(t *testing.T) {
	backend := &fakeBackend{}
	sync := NewListingSync(backend)

	listing, err := sync.Add(context.Background(), domain.ListingCandidate{
		Defindex: 18, Quality: 11, Craftable: true, Killstreak: 3, Australium: true,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if listing.Name != "item 18" {
		t.Errorf("listing: got %+v", listing)
	}

	want := domain.ListingSpec{
		Defindex: 18, Quality: 11, Craftable: true, Killstreak: 3, Australium: true,
		Autoprice: true, Enabled: true,
	}
	if len(backend.added) != 1 || !reflect.DeepEqual(backend.added[0], want) {
		t.Errorf("backend got %+v, want %+v", backend.added, want)
	}
}

func TestAddRejectsNegativeDefindex(t *testing.T) {
	backend := &fakeBackend{}

	_, err := NewListingSync(backend).Add(context.Background(), domain.ListingCandidate{Defindex: -1, Quality: 6})
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(backend.added) != 0 {
		t.Error("backend must not be called")
	}
}

func TestAddForwardsDefindexZero(t *testing.T) {
	resolver := service.NewItemResolver([]domain.SchemaItem{
		{Defindex: 0, Name: "Bat"},
		{Defindex: 1, Name: "Bottle"},
	})
	defindex, err := resolver.Resolve("bat")
	if err != nil || defindex != 0 {
		t.Fatalf("Resolve(bat): got %d, %v", defindex, err)
	}

	backend := &fakeBackend{}
	if _, err := NewListingSync(backend).Add(context.Background(), domain.ListingCandidate{Defindex: defindex, Quality: 6, Craftable: true}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(backend.added) != 1 || backend.added[0].Defindex != 0 {
		t.Errorf("backend got %+v", backend.added)
	}
}
