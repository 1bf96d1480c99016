package property

import "strings"

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// SearchParams describe the conjunctive property filters plus paging.
// Zero values mean "not filtered".
type SearchParams struct {
	Type       Type
	Status     Status
	City       string
	Rooms      int
	MinPrice   int64
	MaxPrice   int64
	MinSurface float64
	MaxSurface float64
	Page       int
	Limit      int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.City = strings.TrimSpace(strings.ToLower(normalized.City))
	if normalized.Rooms < 0 {
		normalized.Rooms = 0
	}
	if normalized.MinPrice < 0 {
		normalized.MinPrice = 0
	}
	if normalized.MaxPrice > 0 && normalized.MaxPrice < normalized.MinPrice {
		normalized.MaxPrice = 0
	}
	if normalized.MinSurface < 0 {
		normalized.MinSurface = 0
	}
	if normalized.MaxSurface > 0 && normalized.MaxSurface < normalized.MinSurface {
		normalized.MaxSurface = 0
	}
	if normalized.Page <= 0 {
		normalized.Page = 1
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	return normalized
}

// Offset converts page/limit paging into a skip count.
func (p SearchParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Matches reports whether a property satisfies every set filter.
// Repositories that cannot push predicates down reuse it directly.
func (p SearchParams) Matches(prop *Property) bool {
	if p.Type != "" && prop.Type != p.Type {
		return false
	}
	if p.Status != "" && prop.Status != p.Status {
		return false
	}
	if p.Rooms > 0 && prop.Rooms != p.Rooms {
		return false
	}
	if p.City != "" && !strings.Contains(strings.ToLower(prop.Address.City), p.City) {
		return false
	}
	if p.MinPrice > 0 && prop.Price < p.MinPrice {
		return false
	}
	if p.MaxPrice > 0 && prop.Price > p.MaxPrice {
		return false
	}
	if p.MinSurface > 0 && prop.Surface < p.MinSurface {
		return false
	}
	if p.MaxSurface > 0 && prop.Surface > p.MaxSurface {
		return false
	}
	return true
}

// SearchResult wraps one page of hits with the overall count.
type SearchResult struct {
	Items []*Property
	Total int64
}
