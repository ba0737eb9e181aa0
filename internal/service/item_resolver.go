package service

import (
	"strings"
	"sync/atomic"

	"pricedesk/internal/domain"
)

type schemaIndex struct {
	items      []domain.SchemaItem
	lowered    []string
	byDefindex map[int]domain.SchemaItem
}

// ItemResolver resolves free-text item names against the item schema.
// It is safe for concurrent use; Reload swaps the schema atomically.
type ItemResolver struct {
	schema atomic.Pointer[schemaIndex]
}

// NewItemResolver creates a resolver over the given schema
func NewItemResolver(items []domain.SchemaItem) *ItemResolver {
	r := &ItemResolver{}
	r.Reload(items)
	return r
}

// Reload replaces the schema. Order is kept: it decides which exact match wins.
func (r *ItemResolver) Reload(items []domain.SchemaItem) {
	idx := &schemaIndex{
		items:      make([]domain.SchemaItem, len(items)),
		lowered:    make([]string, len(items)),
		byDefindex: make(map[int]domain.SchemaItem, len(items)),
	}
	copy(idx.items, items)

	for i, item := range idx.items {
		idx.lowered[i] = strings.ToLower(item.DisplayName())
		if _, exists := idx.byDefindex[item.Defindex]; !exists {
			idx.byDefindex[item.Defindex] = item
		}
	}

	r.schema.Store(idx)
}

// Len returns the number of schema items
func (r *ItemResolver) Len() int {
	return len(r.schema.Load().items)
}

// Item looks up a schema item by defindex
func (r *ItemResolver) Item(defindex int) (domain.SchemaItem, bool) {
	item, ok := r.schema.Load().byDefindex[defindex]
	return item, ok
}

// Resolve returns the defindex of the item named by query.
//
// An exact case-insensitive match on the display name wins immediately.
// Otherwise every item whose display name contains the query is a candidate:
// a single candidate resolves, none returns domain.ErrItemNotFound, and several
// return a *domain.AmbiguousMatchError naming them all.
func (r *ItemResolver) Resolve(query string) (int, error) {
	idx := r.schema.Load()
	search := strings.ToLower(query)

	var candidates []int
	for i, name := range idx.lowered {
		if name == search {
			return idx.items[i].Defindex, nil
		}
		if strings.Contains(name, search) {
			candidates = append(candidates, i)
		}
	}

	switch len(candidates) {
	case 0:
		return 0, domain.ErrItemNotFound
	case 1:
		return idx.items[candidates[0]].Defindex, nil
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = idx.items[c].DisplayName()
	}
	return 0, &domain.AmbiguousMatchError{Query: query, Names: names}
}
