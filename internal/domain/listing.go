package domain

// CurrencyAmount is a price in keys and refined metal. Absent fields are zero.
type CurrencyAmount struct {
	Keys  float64 `json:"keys,omitempty"`
	Metal float64 `json:"metal,omitempty"`
}

// PriceEntry holds the buy and sell side of a listing. Either side may be absent.
type PriceEntry struct {
	Buy  *CurrencyAmount `json:"buy,omitempty"`
	Sell *CurrencyAmount `json:"sell,omitempty"`
}

// Listing is an item the trading bot currently buys or sells.
// The backend owns listings; the web layer only renders copies.
type Listing struct {
	Name   string      `json:"name"`
	Prices *PriceEntry `json:"prices,omitempty"`
	Icon   string      `json:"icon,omitempty"`
}

// ListingCandidate describes an item parsed from a marketplace link
type ListingCandidate struct {
	Defindex   int
	Quality    int
	Craftable  bool
	Killstreak int
	Australium bool
}

// ListingSpec is the add request forwarded to a backend
type ListingSpec struct {
	Defindex   int  `json:"defindex"`
	Quality    int  `json:"quality"`
	Craftable  bool `json:"craftable"`
	Killstreak int  `json:"killstreak"`
	Australium bool `json:"australium"`
	Effect     *int `json:"effect"`
	Autoprice  bool `json:"autoprice"`
	Enabled    bool `json:"enabled"`
}

// RemoveResult reports how a batch removal went
type RemoveResult struct {
	Requested int      `json:"requested"`
	Removed   int      `json:"removed"`
	Failed    []string `json:"failed,omitempty"`
}

// Names returns listing names in backend order
func Names(listings []Listing) []string {
	names := make([]string, len(listings))
	for i, l := range listings {
		names[i] = l.Name
	}
	return names
}
