package dto

import "pricedesk/internal/usecase"

// AddItemForm is the body of POST /additem
type AddItemForm struct {
	URL string `form:"url"`
}

// RemoveForm is the body of POST /pricelist
type RemoveForm struct {
	Delete string   `form:"delete"`
	Names  []string `form:"name"`
}

// AddItemViewModel is the data for the addItem template
type AddItemViewModel struct {
	Result  string
	IsError bool
	URL     string
}

// PriceListViewModel is the data for the list template
type PriceListViewModel struct {
	Items       []usecase.ListingView
	Page        int
	PrevPage    int
	NextPage    int
	HasPrev     bool
	HasNext     bool
	Total       int
	Result      string
	IsError     bool
	BackendKind string
}

// NewPriceListViewModel copies a page into a view model
func NewPriceListViewModel(page *usecase.PriceListPage, backendKind string) PriceListViewModel {
	vm := PriceListViewModel{Page: 1, NextPage: 2, BackendKind: backendKind}
	if page == nil {
		return vm
	}

	vm.Items = page.Items
	vm.Page = page.Page
	vm.PrevPage = page.PrevPage
	vm.NextPage = page.NextPage
	vm.HasPrev = page.HasPrev
	vm.HasNext = page.HasNext
	vm.Total = page.Total
	return vm
}
