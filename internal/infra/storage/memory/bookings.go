package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainbooking "immo/internal/domain/booking"
	domainproperty "immo/internal/domain/property"
)

type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.ID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.ID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

// Save enforces the availability invariant the partial unique index
// covers in Mongo: one non-terminal booking per property/date/slot start.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !b.Status.Terminal() {
		for _, existing := range r.items {
			if existing.ID == b.ID || existing.Status.Terminal() {
				continue
			}
			if existing.PropertyID == b.PropertyID && existing.Date.Equal(b.Date) && existing.Slot.Start == b.Slot.Start {
				return domainbooking.ErrSlotTaken
			}
		}
	}
	clone := *b
	clone.ClearEvents()
	r.items[b.ID] = &clone
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.ListFilter) (domainbooking.ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f := filter.Normalized()
	matches := make([]*domainbooking.Booking, 0, len(r.items))
	for _, b := range r.items {
		if f.ClientID != "" && b.ClientID != f.ClientID {
			continue
		}
		if f.OwnerID != "" && b.OwnerID != f.OwnerID {
			continue
		}
		if f.PropertyID != "" && b.PropertyID != f.PropertyID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		clone := *b
		matches = append(matches, &clone)
	}

	// Soonest visit first, newest request breaking ties.
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].Date.Equal(matches[j].Date) {
			return matches[i].Date.Before(matches[j].Date)
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := int64(len(matches))
	return domainbooking.ListResult{
		Items: paginate(matches, f.Offset(), f.Limit),
		Total: total,
	}, nil
}

func (r *BookingRepository) FindActiveSlot(ctx context.Context, propertyID domainproperty.ID, date time.Time, slotStart string) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.items {
		if b.Status.Terminal() {
			continue
		}
		if b.PropertyID == propertyID && b.Date.Equal(date) && b.Slot.Start == slotStart {
			clone := *b
			return &clone, nil
		}
	}
	return nil, domainbooking.ErrNotFound
}
