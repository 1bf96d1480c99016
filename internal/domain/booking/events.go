package booking

import (
	"time"

	"immo/internal/domain/ad"
	"immo/internal/domain/property"
	"immo/internal/domain/user"
)

type Requested struct {
	BookingID  ID
	PropertyID property.ID
	AdID       ad.ID
	ClientID   user.ID
	Date       time.Time
	SlotStart  string
	At         time.Time
}

func (e Requested) EventName() string     { return "booking.requested" }
func (e Requested) AggregateID() string   { return string(e.BookingID) }
func (e Requested) OccurredAt() time.Time { return e.At }

type Confirmed struct {
	BookingID  ID
	PropertyID property.ID
	At         time.Time
}

func (e Confirmed) EventName() string     { return "booking.confirmed" }
func (e Confirmed) AggregateID() string   { return string(e.BookingID) }
func (e Confirmed) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	BookingID  ID
	PropertyID property.ID
	At         time.Time
}

func (e Cancelled) EventName() string     { return "booking.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.BookingID) }
func (e Cancelled) OccurredAt() time.Time { return e.At }

type Completed struct {
	BookingID  ID
	PropertyID property.ID
	At         time.Time
}

func (e Completed) EventName() string     { return "booking.completed" }
func (e Completed) AggregateID() string   { return string(e.BookingID) }
func (e Completed) OccurredAt() time.Time { return e.At }
