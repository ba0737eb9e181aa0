package repository

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"pricedesk/internal/domain"
)

func TestFileSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "listings.json")
	repo := NewFileSnapshotRepository(path)
	ctx := context.Background()

	listings := []domain.Listing{
		{
			Name:   "Mann Co. Supply Crate Key",
			Prices: &domain.PriceEntry{Sell: &domain.CurrencyAmount{Metal: 55.33}},
			Icon:   "https://img/key.png",
		},
		{Name: "Tour of Duty Ticket"},
	}

	if err := repo.Save(ctx, listings); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.LoadLatest(ctx)
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if !reflect.DeepEqual(got, listings) {
		t.Errorf("got %+v, want %+v", got, listings)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only listings.json, found %d entries", len(entries))
	}
}

func TestFileSnapshotMissingFile(t *testing.T) {
	repo := NewFileSnapshotRepository(filepath.Join(t.TempDir(), "listings.json"))

	got, err := repo.LoadLatest(context.Background())
	if err != nil || got != nil {
		t.Errorf("expected nil, nil; got %v, %v", got, err)
	}
}

func TestFileSnapshotNullAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	nullPath := filepath.Join(dir, "null.json")
	_ = os.WriteFile(nullPath, []byte("null"), 0o644)
	got, err := NewFileSnapshotRepository(nullPath).LoadLatest(context.Background())
	if err != nil || got != nil {
		t.Errorf("null document: got %v, %v", got, err)
	}

	badPath := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(badPath, []byte("{not json"), 0o644)
	_, err = NewFileSnapshotRepository(badPath).LoadLatest(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unmarshal") {
		t.Errorf("corrupt document: expected unmarshal error, got %v", err)
	}
}

func TestFileSnapshotSavesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")
	if err := NewFileSnapshotRepository(path).Save(context.Background(), nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("expected empty array, got %q", data)
	}
}
