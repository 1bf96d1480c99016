package memory

import (
	"context"
	"sort"
	"sync"

	domainad "immo/internal/domain/ad"
	domainproperty "immo/internal/domain/property"
)

type AdRepository struct {
	mu    sync.RWMutex
	items map[domainad.ID]*domainad.Ad
}

func NewAdRepository() *AdRepository {
	return &AdRepository{items: make(map[domainad.ID]*domainad.Ad)}
}

func (r *AdRepository) ByID(ctx context.Context, id domainad.ID) (*domainad.Ad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	advert, ok := r.items[id]
	if !ok {
		return nil, domainad.ErrNotFound
	}
	clone := *advert
	return &clone, nil
}

func (r *AdRepository) Save(ctx context.Context, advert *domainad.Ad) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *advert
	clone.ClearEvents()
	r.items[advert.ID] = &clone
	return nil
}

func (r *AdRepository) Delete(ctx context.Context, id domainad.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainad.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *AdRepository) Search(ctx context.Context, params domainad.SearchParams) (domainad.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainad.Ad, 0, len(r.items))
	for _, advert := range r.items {
		if !opts.Matches(advert) {
			continue
		}
		clone := *advert
		matches = append(matches, &clone)
	}

	// Highlighted ads first, then newest.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Highlighted != matches[j].Highlighted {
			return matches[i].Highlighted
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := int64(len(matches))
	return domainad.SearchResult{
		Items: paginate(matches, opts.Offset(), opts.Limit),
		Total: total,
	}, nil
}

func (r *AdRepository) ActiveByProperty(ctx context.Context, propertyID domainproperty.ID, exclude domainad.ID) ([]*domainad.Ad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainad.Ad, 0)
	for _, advert := range r.items {
		if advert.PropertyID != propertyID || !advert.Active() {
			continue
		}
		if exclude != "" && advert.ID == exclude {
			continue
		}
		clone := *advert
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *AdRepository) IncrementViews(ctx context.Context, id domainad.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	advert, ok := r.items[id]
	if !ok {
		return domainad.ErrNotFound
	}
	advert.ViewCount++
	return nil
}
