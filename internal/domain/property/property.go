package property

import (
	"context"
	"errors"
	"strings"
	"time"

	"immo/internal/domain/shared/events"
	"immo/internal/domain/user"
)

var (
	ErrIDRequired      = errors.New("property: id is required")
	ErrOwnerRequired   = errors.New("property: owner is required")
	ErrTitleRequired   = errors.New("property: title is required")
	ErrInvalidType     = errors.New("property: invalid type")
	ErrInvalidPrice    = errors.New("property: price must be positive")
	ErrInvalidSurface  = errors.New("property: surface must be positive")
	ErrCityRequired    = errors.New("property: city is required")
	ErrZipCodeRequired = errors.New("property: zip code is required")
	ErrInvalidStatus   = errors.New("property: invalid status")
	ErrImageNotFound   = errors.New("property: image not found")
	ErrNotFound        = errors.New("property: not found")
)

type ID string

type Type string

const (
	TypeApartment  Type = "apartment"
	TypeHouse      Type = "house"
	TypeLand       Type = "land"
	TypeCommercial Type = "commercial"
	TypeOffice     Type = "office"
	TypeGarage     Type = "garage"
)

// Status is reconciled by the ad and booking workflows; callers never set
// it directly through an update payload.
type Status string

const (
	StatusAvailable Status = "available"
	StatusForSale   Status = "for_sale"
	StatusForRent   Status = "for_rent"
	StatusSold      Status = "sold"
	StatusRented    Status = "rented"
	StatusReserved  Status = "reserved"
)

type Location struct {
	Lat float64
	Lon float64
}

type Address struct {
	Street   string
	City     string
	ZipCode  string
	Country  string
	Location *Location
}

func (a Address) Valid() bool {
	return strings.TrimSpace(a.City) != "" && strings.TrimSpace(a.ZipCode) != ""
}

type Property struct {
	ID          ID
	OwnerID     user.ID
	Title       string
	Description string
	Type        Type
	Price       int64
	Surface     float64
	Rooms       int
	Address     Address
	Features    []string
	Images      []string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Property, error)
	Save(ctx context.Context, prop *Property) error
	Delete(ctx context.Context, id ID) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateParams struct {
	ID          ID
	OwnerID     user.ID
	Title       string
	Description string
	Type        Type
	Price       int64
	Surface     float64
	Rooms       int
	Address     Address
	Features    []string
	Images      []string
	Now         time.Time
}

func New(params CreateParams) (*Property, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.OwnerID)) == "" {
		return nil, ErrOwnerRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if err := validateType(params.Type); err != nil {
		return nil, err
	}
	if params.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if params.Surface <= 0 {
		return nil, ErrInvalidSurface
	}
	if strings.TrimSpace(params.Address.City) == "" {
		return nil, ErrCityRequired
	}
	if strings.TrimSpace(params.Address.ZipCode) == "" {
		return nil, ErrZipCodeRequired
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	address := params.Address
	if strings.TrimSpace(address.Country) == "" {
		address.Country = "France"
	}

	return &Property{
		ID:          params.ID,
		OwnerID:     params.OwnerID,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		Type:        params.Type,
		Price:       params.Price,
		Surface:     params.Surface,
		Rooms:       params.Rooms,
		Address:     address,
		Features:    append([]string(nil), params.Features...),
		Images:      append([]string(nil), params.Images...),
		Status:      StatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update is the allowed-fields projection for owner edits. Owner and
// status are deliberately absent; status moves only through Transition.
type Update struct {
	Title       *string
	Description *string
	Type        *Type
	Price       *int64
	Surface     *float64
	Rooms       *int
	Address     *Address
	Features    *[]string
}

func (p *Property) Apply(update Update, now time.Time) error {
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return ErrTitleRequired
		}
		p.Title = title
	}
	if update.Description != nil {
		p.Description = strings.TrimSpace(*update.Description)
	}
	if update.Type != nil {
		if err := validateType(*update.Type); err != nil {
			return err
		}
		p.Type = *update.Type
	}
	if update.Price != nil {
		if *update.Price <= 0 {
			return ErrInvalidPrice
		}
		p.Price = *update.Price
	}
	if update.Surface != nil {
		if *update.Surface <= 0 {
			return ErrInvalidSurface
		}
		p.Surface = *update.Surface
	}
	if update.Rooms != nil {
		p.Rooms = *update.Rooms
	}
	if update.Address != nil {
		if !update.Address.Valid() {
			return ErrCityRequired
		}
		p.Address = *update.Address
	}
	if update.Features != nil {
		p.Features = append([]string(nil), (*update.Features)...)
	}
	p.touch(now)
	return nil
}

// Transition moves the reconciled status and records the change.
func (p *Property) Transition(status Status, now time.Time) error {
	switch status {
	case StatusAvailable, StatusForSale, StatusForRent, StatusSold, StatusRented, StatusReserved:
	default:
		return ErrInvalidStatus
	}
	if p.Status == status {
		return nil
	}
	previous := p.Status
	p.Status = status
	p.touch(now)
	p.Record(StatusChanged{PropertyID: p.ID, From: previous, To: status, At: p.UpdatedAt})
	return nil
}

func (p *Property) AddImages(urls []string, now time.Time) {
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		p.Images = append(p.Images, url)
	}
	p.touch(now)
}

func (p *Property) RemoveImage(url string, now time.Time) error {
	for i, img := range p.Images {
		if img == url {
			p.Images = append(p.Images[:i], p.Images[i+1:]...)
			p.touch(now)
			return nil
		}
	}
	return ErrImageNotFound
}

func (p *Property) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	p.UpdatedAt = now.UTC()
}

func validateType(t Type) error {
	switch t {
	case TypeApartment, TypeHouse, TypeLand, TypeCommercial, TypeOffice, TypeGarage:
		return nil
	default:
		return ErrInvalidType
	}
}

// StatusChanged is recorded whenever reconciliation moves the status.
type StatusChanged struct {
	PropertyID ID
	From       Status
	To         Status
	At         time.Time
}

func (e StatusChanged) EventName() string     { return "property.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.PropertyID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }
