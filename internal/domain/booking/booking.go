package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"immo/internal/domain/ad"
	"immo/internal/domain/property"
	"immo/internal/domain/shared/events"
	"immo/internal/domain/user"
)

var (
	ErrIDRequired         = errors.New("booking: id is required")
	ErrPropertyRequired   = errors.New("booking: property is required")
	ErrAdRequired         = errors.New("booking: ad is required")
	ErrClientRequired     = errors.New("booking: client is required")
	ErrOwnerRequired      = errors.New("booking: owner is required")
	ErrDateInPast         = errors.New("booking: visit date must be in the future")
	ErrOwnBooking         = errors.New("booking: cannot book a visit to your own property")
	ErrInvalidTransition  = errors.New("booking: invalid state transition")
	ErrSlotTaken          = errors.New("booking: time slot already booked")
	ErrNotFound           = errors.New("booking: not found")
	ErrNotCompleted       = errors.New("booking: feedback requires a completed visit")
	ErrFeedbackExists     = errors.New("booking: feedback already submitted")
	ErrInvalidRating      = errors.New("booking: rating must be between 1 and 5")
	ErrNotPending         = errors.New("booking: only pending bookings can be withdrawn")
	ErrAdPropertyMismatch = errors.New("booking: ad does not reference this property")
)

type ID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParseStatus maps external input to a known status.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", ErrInvalidTransition
	}
}

// Terminal reports whether the status ends the booking's lifecycle.
// Only non-terminal bookings count against the availability invariant.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// ClientFeedback is attached once by the visiting client after completion.
type ClientFeedback struct {
	Rating  int
	Comment string
}

// OwnerFeedback is attached once by the property owner after completion.
type OwnerFeedback struct {
	Comment string
}

type Booking struct {
	ID             ID
	PropertyID     property.ID
	AdID           ad.ID
	ClientID       user.ID
	OwnerID        user.ID
	Date           time.Time
	Slot           TimeSlot
	Status         Status
	Message        string
	Notes          string
	ClientFeedback *ClientFeedback
	OwnerFeedback  *OwnerFeedback
	CreatedAt      time.Time
	UpdatedAt      time.Time
	events.EventRecorder
}

// ListFilter narrows booking listings. Client/Owner scope the result to
// one party; Status is optional.
type ListFilter struct {
	ClientID   user.ID
	OwnerID    user.ID
	PropertyID property.ID
	Status     Status
	Page       int
	Limit      int
}

func (f ListFilter) Normalized() ListFilter {
	normalized := f
	if normalized.Page <= 0 {
		normalized.Page = 1
	}
	if normalized.Limit <= 0 {
		normalized.Limit = 10
	}
	if normalized.Limit > 100 {
		normalized.Limit = 100
	}
	return normalized
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type ListResult struct {
	Items []*Booking
	Total int64
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id ID) error
	List(ctx context.Context, filter ListFilter) (ListResult, error)
	// FindActiveSlot returns the non-terminal booking holding the given
	// property/date/slot-start tuple, or ErrNotFound.
	FindActiveSlot(ctx context.Context, propertyID property.ID, date time.Time, slotStart string) (*Booking, error)
}

type CreateParams struct {
	ID         ID
	PropertyID property.ID
	AdID       ad.ID
	ClientID   user.ID
	OwnerID    user.ID
	Date       time.Time
	Slot       TimeSlot
	Message    string
	Now        time.Time
}

// New assembles a pending booking. Cross-entity preconditions (ad
// active, ad/property consistency, self-booking, availability) live in
// the application workflow; this constructor guards local invariants.
func New(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.PropertyID)) == "" {
		return nil, ErrPropertyRequired
	}
	if strings.TrimSpace(string(params.AdID)) == "" {
		return nil, ErrAdRequired
	}
	if strings.TrimSpace(string(params.ClientID)) == "" {
		return nil, ErrClientRequired
	}
	if strings.TrimSpace(string(params.OwnerID)) == "" {
		return nil, ErrOwnerRequired
	}
	if err := params.Slot.Validate(); err != nil {
		return nil, err
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	date := normalizeDate(params.Date)
	if !date.After(now) {
		return nil, ErrDateInPast
	}

	b := &Booking{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		AdID:       params.AdID,
		ClientID:   params.ClientID,
		OwnerID:    params.OwnerID,
		Date:       date,
		Slot:       params.Slot,
		Status:     StatusPending,
		Message:    strings.TrimSpace(params.Message),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(Requested{BookingID: b.ID, PropertyID: b.PropertyID, AdID: b.AdID, ClientID: b.ClientID, Date: b.Date, SlotStart: b.Slot.Start, At: now})
	return b, nil
}

// Transition applies the status machine:
// pending -> confirmed | cancelled, confirmed -> cancelled | completed.
func (b *Booking) Transition(target Status, now time.Time) error {
	legal := false
	switch b.Status {
	case StatusPending:
		legal = target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		legal = target == StatusCancelled || target == StatusCompleted
	}
	if !legal {
		return ErrInvalidTransition
	}
	b.Status = target
	b.touch(now)
	switch target {
	case StatusConfirmed:
		b.Record(Confirmed{BookingID: b.ID, PropertyID: b.PropertyID, At: b.UpdatedAt})
	case StatusCancelled:
		b.Record(Cancelled{BookingID: b.ID, PropertyID: b.PropertyID, At: b.UpdatedAt})
	case StatusCompleted:
		b.Record(Completed{BookingID: b.ID, PropertyID: b.PropertyID, At: b.UpdatedAt})
	}
	return nil
}

func (b *Booking) AppendNotes(notes string, now time.Time) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return
	}
	if b.Notes == "" {
		b.Notes = notes
	} else {
		b.Notes = b.Notes + "\n" + notes
	}
	b.touch(now)
}

// AddClientFeedback attaches the client's one-time review of the visit.
func (b *Booking) AddClientFeedback(rating int, comment string, now time.Time) error {
	if b.Status != StatusCompleted {
		return ErrNotCompleted
	}
	if b.ClientFeedback != nil {
		return ErrFeedbackExists
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	b.ClientFeedback = &ClientFeedback{Rating: rating, Comment: strings.TrimSpace(comment)}
	b.touch(now)
	return nil
}

// AddOwnerFeedback attaches the owner's one-time note about the visit.
func (b *Booking) AddOwnerFeedback(comment string, now time.Time) error {
	if b.Status != StatusCompleted {
		return ErrNotCompleted
	}
	if b.OwnerFeedback != nil {
		return ErrFeedbackExists
	}
	b.OwnerFeedback = &OwnerFeedback{Comment: strings.TrimSpace(comment)}
	b.touch(now)
	return nil
}

func (b *Booking) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	b.UpdatedAt = now.UTC()
}

// normalizeDate truncates to day precision; the slot carries the time.
func normalizeDate(date time.Time) time.Time {
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
