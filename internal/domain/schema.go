package domain

import "context"

// SchemaItem is one entry of the item catalog
type SchemaItem struct {
	Defindex   int    `json:"defindex"`
	Name       string `json:"item_name"`
	ProperName bool   `json:"proper_name"`
}

// DisplayName returns the canonical name, prefixed with "The " for proper-named items
func (i SchemaItem) DisplayName() string {
	if i.ProperName {
		return "The " + i.Name
	}
	return i.Name
}

// SchemaSource loads the item catalog
type SchemaSource interface {
	FetchItems(ctx context.Context) ([]SchemaItem, error)
}

// ItemCatalog looks up schema items by defindex
type ItemCatalog interface {
	Item(defindex int) (SchemaItem, bool)
}
