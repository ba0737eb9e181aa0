package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pricedesk/internal/domain"
)

// snapshotRetention is the number of snapshots kept in the table
const snapshotRetention = 20

// SnapshotRepository stores listing snapshots in PostgreSQL
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a new repository instance
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save inserts a snapshot row and prunes old ones
func (r *SnapshotRepository) Save(ctx context.Context, listings []domain.Listing) error {
	if listings == nil {
		listings = []domain.Listing{}
	}

	payload, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO listing_snapshots (id, taken_at, listing_count, listings)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), time.Now().UTC(), len(listings), payload)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM listing_snapshots
		WHERE id NOT IN (
			SELECT id FROM listing_snapshots
			ORDER BY taken_at DESC
			LIMIT $1
		)
	`, snapshotRetention)
	if err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}

	return tx.Commit(ctx)
}

// LoadLatest returns the newest snapshot, or nil when the table is empty
func (r *SnapshotRepository) LoadLatest(ctx context.Context) ([]domain.Listing, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, `
		SELECT listings
		FROM listing_snapshots
		ORDER BY taken_at DESC
		LIMIT 1
	`).Scan(&payload)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	var listings []domain.Listing
	if err := json.Unmarshal(payload, &listings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return listings, nil
}
