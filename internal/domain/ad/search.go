package ad

import (
	"strings"

	"immo/internal/domain/property"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// SearchParams describe ad-level filters plus an optional pre-resolved
// property identifier set. When PropertyIDs is non-nil only ads whose
// property is a member may match.
type SearchParams struct {
	Type        Type
	Status      Status
	MinPrice    int64
	MaxPrice    int64
	PropertyIDs []property.ID
	Page        int
	Limit       int
}

// Normalized returns a sanitized copy of params. Status defaults to
// active so public listings never leak inactive ads by accident.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	if normalized.Status == "" {
		normalized.Status = StatusActive
	}
	if normalized.MinPrice < 0 {
		normalized.MinPrice = 0
	}
	if normalized.MaxPrice > 0 && normalized.MaxPrice < normalized.MinPrice {
		normalized.MaxPrice = 0
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

func (p SearchParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Matches reports whether an ad passes every set ad-level filter.
func (p SearchParams) Matches(a *Ad) bool {
	if p.Status != "" && a.Status != p.Status {
		return false
	}
	if p.Type != "" && a.Type != p.Type {
		return false
	}
	if p.MinPrice > 0 && a.Price < p.MinPrice {
		return false
	}
	if p.MaxPrice > 0 && a.Price > p.MaxPrice {
		return false
	}
	if p.PropertyIDs != nil && !memberOf(a.PropertyID, p.PropertyIDs) {
		return false
	}
	return true
}

func memberOf(id property.ID, ids []property.ID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// PropertyFilter is the property-level part of an ad search. It is
// resolved to identifiers first, then intersected into the ad query.
type PropertyFilter struct {
	City         string
	PropertyType property.Type
	MinSurface   float64
	MaxSurface   float64
}

func (f PropertyFilter) Empty() bool {
	return strings.TrimSpace(f.City) == "" && f.PropertyType == "" && f.MinSurface <= 0 && f.MaxSurface <= 0
}

// SearchResult wraps one page of hits with the overall count.
type SearchResult struct {
	Items []*Ad
	Total int64
}
