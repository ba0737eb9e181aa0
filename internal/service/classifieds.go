package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"pricedesk/internal/domain"
)

const (
	classifiedsPath = "/classifieds"
	defaultQuality  = 6
)

// ClassifiedsQuery is the item description carried by a marketplace classifieds link
type ClassifiedsQuery struct {
	Item       string
	Quality    int
	Craftable  bool
	Killstreak int
	Australium bool
}

// Candidate attaches a resolved defindex to the query
func (q ClassifiedsQuery) Candidate(defindex int) domain.ListingCandidate {
	return domain.ListingCandidate{
		Defindex:   defindex,
		Quality:    q.Quality,
		Craftable:  q.Craftable,
		Killstreak: q.Killstreak,
		Australium: q.Australium,
	}
}

// ParseClassifiedsURL parses a link such as
// https://backpack.tf/classifieds?item=Rocket+Launcher&quality=11&craftable=1.
// The host must equal host and the path must be /classifieds, otherwise
// domain.ErrInvalidURL is returned.
func ParseClassifiedsURL(raw, host string) (ClassifiedsQuery, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ClassifiedsQuery{}, fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}

	if u.Path != classifiedsPath || !strings.EqualFold(u.Host, host) {
		return ClassifiedsQuery{}, fmt.Errorf("%w: %s%s", domain.ErrInvalidURL, u.Host, u.Path)
	}

	q := u.Query()
	return ClassifiedsQuery{
		Item:       strings.TrimSpace(q.Get("item")),
		Quality:    intParam(q.Get("quality"), defaultQuality),
		Craftable:  q.Get("craftable") == "" || intParam(q.Get("craftable"), 0) == 1,
		Killstreak: intParam(q.Get("killstreak_tier"), 0),
		Australium: intParam(q.Get("australium"), 0) == 1,
	}, nil
}

func intParam(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
