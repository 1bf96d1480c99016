package dto

import (
	"time"

	domainproperty "immo/internal/domain/property"
)

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Address struct {
	Street   string    `json:"street,omitempty"`
	City     string    `json:"city"`
	ZipCode  string    `json:"zip_code"`
	Country  string    `json:"country"`
	Location *Location `json:"location,omitempty"`
}

type Property struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type"`
	Price       int64     `json:"price"`
	Surface     float64   `json:"surface"`
	Rooms       int       `json:"rooms,omitempty"`
	Address     Address   `json:"address"`
	Features    []string  `json:"features,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewProperty(p *domainproperty.Property) Property {
	address := Address{
		Street:  p.Address.Street,
		City:    p.Address.City,
		ZipCode: p.Address.ZipCode,
		Country: p.Address.Country,
	}
	if p.Address.Location != nil {
		address.Location = &Location{Lat: p.Address.Location.Lat, Lon: p.Address.Location.Lon}
	}
	return Property{
		ID:          string(p.ID),
		OwnerID:     string(p.OwnerID),
		Title:       p.Title,
		Description: p.Description,
		Type:        string(p.Type),
		Price:       p.Price,
		Surface:     p.Surface,
		Rooms:       p.Rooms,
		Address:     address,
		Features:    p.Features,
		Images:      p.Images,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewProperties(items []*domainproperty.Property) []Property {
	out := make([]Property, 0, len(items))
	for _, p := range items {
		out = append(out, NewProperty(p))
	}
	return out
}
