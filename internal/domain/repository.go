package domain

import "context"

// SnapshotRepository persists listing snapshots used to seed the local backend
type SnapshotRepository interface {
	// Save stores the latest snapshot
	Save(ctx context.Context, listings []Listing) error

	// LoadLatest returns the most recent snapshot, or nil when none exists
	LoadLatest(ctx context.Context) ([]Listing, error)
}
