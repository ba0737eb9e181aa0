package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"pricedesk/internal/domain"
	"pricedesk/pkg/log"
)

// FileSnapshotRepository stores the listing snapshot as an indented JSON file
// (listings.json by default)
type FileSnapshotRepository struct {
	path string
}

// NewFileSnapshotRepository creates a new repository instance
func NewFileSnapshotRepository(path string) *FileSnapshotRepository {
	return &FileSnapshotRepository{path: path}
}

// Save writes the snapshot through a temp file so readers never see a partial file
func (r *FileSnapshotRepository) Save(ctx context.Context, listings []domain.Listing) error {
	if listings == nil {
		listings = []domain.Listing{}
	}

	data, err := json.MarshalIndent(listings, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".listings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	log.Debug("listing snapshot saved", zap.String("path", r.path), zap.Int("listings", len(listings)))
	return nil
}

// LoadLatest reads the snapshot. A missing file or a "null" document yields nil.
func (r *FileSnapshotRepository) LoadLatest(ctx context.Context) ([]domain.Listing, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var listings []domain.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", r.path, err)
	}

	return listings, nil
}
