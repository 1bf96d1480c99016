package dto

import (
	"time"

	domainbooking "immo/internal/domain/booking"
)

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ClientFeedback struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

type OwnerFeedback struct {
	Comment string `json:"comment,omitempty"`
}

type Booking struct {
	ID             string          `json:"id"`
	PropertyID     string          `json:"property_id"`
	AdID           string          `json:"ad_id"`
	ClientID       string          `json:"client_id"`
	OwnerID        string          `json:"owner_id"`
	Date           time.Time       `json:"date"`
	Slot           TimeSlot        `json:"time_slot"`
	Status         string          `json:"status"`
	Message        string          `json:"message,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	ClientFeedback *ClientFeedback `json:"client_feedback,omitempty"`
	OwnerFeedback  *OwnerFeedback  `json:"owner_feedback,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func NewBooking(b *domainbooking.Booking) Booking {
	out := Booking{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		AdID:       string(b.AdID),
		ClientID:   string(b.ClientID),
		OwnerID:    string(b.OwnerID),
		Date:       b.Date,
		Slot:       TimeSlot{Start: b.Slot.Start, End: b.Slot.End},
		Status:     string(b.Status),
		Message:    b.Message,
		Notes:      b.Notes,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
	if b.ClientFeedback != nil {
		out.ClientFeedback = &ClientFeedback{Rating: b.ClientFeedback.Rating, Comment: b.ClientFeedback.Comment}
	}
	if b.OwnerFeedback != nil {
		out.OwnerFeedback = &OwnerFeedback{Comment: b.OwnerFeedback.Comment}
	}
	return out
}

func NewBookings(items []*domainbooking.Booking) []Booking {
	out := make([]Booking, 0, len(items))
	for _, b := range items {
		out = append(out, NewBooking(b))
	}
	return out
}
