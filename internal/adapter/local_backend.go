package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"pricedesk/internal/domain"
	"pricedesk/pkg/log"
)

// Item qualities as numbered by the item schema
var qualityNames = map[int]string{
	0:  "Normal",
	1:  "Genuine",
	3:  "Vintage",
	5:  "Unusual",
	6:  "Unique",
	7:  "Community",
	8:  "Valve",
	9:  "Self-Made",
	11: "Strange",
	13: "Haunted",
	14: "Collector's",
	15: "Decorated Weapon",
}

const qualityUnique = 6

var killstreakNames = map[int]string{
	1: "Killstreak",
	2: "Specialized Killstreak",
	3: "Professional Killstreak",
}

// LocalBackend keeps listings in process, seeded from the snapshot repository
type LocalBackend struct {
	// emitMu spans a mutation and its emit so listeners see snapshots in order
	emitMu    sync.Mutex
	mu        sync.Mutex
	listings  []domain.Listing
	catalog   domain.ItemCatalog
	snapshots domain.SnapshotRepository
	listeners snapshotListeners
}

// NewLocalBackend creates an in-process backend. Listings are named from catalog.
func NewLocalBackend(catalog domain.ItemCatalog, snapshots domain.SnapshotRepository) *LocalBackend {
	return &LocalBackend{
		catalog:   catalog,
		snapshots: snapshots,
	}
}

// Kind returns "local"
func (b *LocalBackend) Kind() string { return "local" }

// Init seeds listings from the latest snapshot. A missing or unreadable
// snapshot is not fatal: the backend starts empty.
func (b *LocalBackend) Init(ctx context.Context) error {
	if b.snapshots == nil {
		return nil
	}

	listings, err := b.snapshots.LoadLatest(ctx)
	if err != nil {
		log.Warn("failed to load listing snapshot, starting empty", zap.Error(err))
		return nil
	}

	b.mu.Lock()
	b.listings = listings
	b.mu.Unlock()

	log.Info("local backend seeded", zap.Int("listings", len(listings)))
	return nil
}

// FetchListings returns a copy of the current listings
func (b *LocalBackend) FetchListings(ctx context.Context) ([]domain.Listing, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	listings := make([]domain.Listing, len(b.listings))
	copy(listings, b.listings)
	return listings, nil
}

// AddListing appends a listing named from the item schema
func (b *LocalBackend) AddListing(ctx context.Context, spec domain.ListingSpec) (*domain.Listing, error) {
	item, ok := b.catalog.Item(spec.Defindex)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("Unknown item defindex %d", spec.Defindex))
	}

	listing := domain.Listing{Name: ListingName(item, spec)}

	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	b.mu.Lock()
	for _, existing := range b.listings {
		if strings.EqualFold(existing.Name, listing.Name) {
			b.mu.Unlock()
			return nil, domain.NewValidationError(fmt.Sprintf("%q is already in the pricelist", listing.Name))
		}
	}
	b.listings = append(b.listings, listing)
	snapshot := b.snapshotLocked()
	b.mu.Unlock()

	log.Info(fmt.Sprintf("%q has been added to the pricelist", listing.Name))
	b.listeners.emit(snapshot)

	return &listing, nil
}

// RemoveListings removes every named listing. Names that are not listed are
// reported in RemoveResult.Failed.
func (b *LocalBackend) RemoveListings(ctx context.Context, names []string) (domain.RemoveResult, error) {
	result := domain.RemoveResult{Requested: len(names)}

	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	b.mu.Lock()
	var removed []string
	for _, name := range names {
		idx := -1
		for i, l := range b.listings {
			if l.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			result.Failed = append(result.Failed, name)
			continue
		}
		b.listings = append(b.listings[:idx], b.listings[idx+1:]...)
		removed = append(removed, name)
	}
	result.Removed = len(removed)

	var snapshot []domain.Listing
	if len(removed) > 0 {
		snapshot = b.snapshotLocked()
	}
	b.mu.Unlock()

	for _, name := range removed {
		log.Info(fmt.Sprintf("%q is no longer in the pricelist", name))
	}
	if len(removed) > 0 {
		b.listeners.emit(snapshot)
	}

	return result, nil
}

// OnListings registers a listener called after every mutation
func (b *LocalBackend) OnListings(fn func([]domain.Listing)) {
	b.listeners.add(fn)
}

func (b *LocalBackend) snapshotLocked() []domain.Listing {
	snapshot := make([]domain.Listing, len(b.listings))
	copy(snapshot, b.listings)
	return snapshot
}

// ListingName builds the marketplace name of an item variant, e.g.
// "Non-Craftable Strange Professional Killstreak Australium Rocket Launcher".
func ListingName(item domain.SchemaItem, spec domain.ListingSpec) string {
	var parts []string

	if !spec.Craftable {
		parts = append(parts, "Non-Craftable")
	}
	if spec.Quality != qualityUnique {
		if name, ok := qualityNames[spec.Quality]; ok {
			parts = append(parts, name)
		}
	}
	if name, ok := killstreakNames[spec.Killstreak]; ok {
		parts = append(parts, name)
	}
	if spec.Australium {
		parts = append(parts, "Australium")
	}

	if len(parts) == 0 {
		return item.DisplayName()
	}
	return strings.Join(append(parts, item.Name), " ")
}
