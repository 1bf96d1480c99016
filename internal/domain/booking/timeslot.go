package booking

import (
	"errors"
	"time"
)

var (
	ErrSlotRequired = errors.New("booking: time slot start and end are required")
	ErrSlotFormat   = errors.New("booking: time slot must use HH:MM format")
	ErrSlotOrder    = errors.New("booking: time slot end must be after start")
)

const slotLayout = "15:04"

// TimeSlot is a same-day visit window expressed as wall-clock strings.
// Availability collisions key on Start only; overlapping windows with
// different starts are allowed.
type TimeSlot struct {
	Start string
	End   string
}

func (s TimeSlot) Validate() error {
	if s.Start == "" || s.End == "" {
		return ErrSlotRequired
	}
	start, err := time.Parse(slotLayout, s.Start)
	if err != nil {
		return ErrSlotFormat
	}
	end, err := time.Parse(slotLayout, s.End)
	if err != nil {
		return ErrSlotFormat
	}
	if !end.After(start) {
		return ErrSlotOrder
	}
	return nil
}
