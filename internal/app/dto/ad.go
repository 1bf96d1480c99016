package dto

import (
	"time"

	domainad "immo/internal/domain/ad"
)

type RentalDetails struct {
	Duration      string     `json:"duration,omitempty"`
	DepositAmount int64      `json:"deposit_amount,omitempty"`
	Availability  *time.Time `json:"availability,omitempty"`
}

type ContactInfo struct {
	UseOwnerInfo bool   `json:"use_owner_info"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

type Ad struct {
	ID            string         `json:"id"`
	PropertyID    string         `json:"property_id"`
	OwnerID       string         `json:"owner_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Type          string         `json:"type"`
	Price         int64          `json:"price"`
	Status        string         `json:"status"`
	RentalDetails *RentalDetails `json:"rental_details,omitempty"`
	ContactInfo   ContactInfo    `json:"contact_info"`
	Highlighted   bool           `json:"highlighted"`
	ViewCount     int64          `json:"view_count"`
	ExpiresAt     time.Time      `json:"expires_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func NewAd(a *domainad.Ad) Ad {
	out := Ad{
		ID:          string(a.ID),
		PropertyID:  string(a.PropertyID),
		OwnerID:     string(a.OwnerID),
		Title:       a.Title,
		Description: a.Description,
		Type:        string(a.Type),
		Price:       a.Price,
		Status:      string(a.Status),
		ContactInfo: ContactInfo{
			UseOwnerInfo: a.ContactInfo.UseOwnerInfo,
			Phone:        a.ContactInfo.Phone,
			Email:        a.ContactInfo.Email,
		},
		Highlighted: a.Highlighted,
		ViewCount:   a.ViewCount,
		ExpiresAt:   a.ExpiresAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.Type == domainad.TypeRental {
		details := RentalDetails{
			Duration:      a.RentalDetails.Duration,
			DepositAmount: a.RentalDetails.DepositAmount,
		}
		if !a.RentalDetails.Availability.IsZero() {
			availability := a.RentalDetails.Availability
			details.Availability = &availability
		}
		out.RentalDetails = &details
	}
	return out
}

func NewAds(items []*domainad.Ad) []Ad {
	out := make([]Ad, 0, len(items))
	for _, a := range items {
		out = append(out, NewAd(a))
	}
	return out
}
