package domain

import "context"

// Backend is the system of record for listings. It is implemented by an
// in-process store and by the remote trading-bot API.
type Backend interface {
	// Init prepares the backend; failure must abort startup
	Init(ctx context.Context) error

	// FetchListings returns every current listing in backend order
	FetchListings(ctx context.Context) ([]Listing, error)

	// AddListing adds a listing and returns it as stored
	AddListing(ctx context.Context, spec ListingSpec) (*Listing, error)

	// RemoveListings removes listings by name
	RemoveListings(ctx context.Context, names []string) (RemoveResult, error)

	// OnListings registers a listener for updated listing snapshots
	OnListings(fn func([]Listing))

	// Kind names the backend variant
	Kind() string
}
