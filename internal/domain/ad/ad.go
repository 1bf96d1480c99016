package ad

import (
	"context"
	"errors"
	"strings"
	"time"

	"immo/internal/domain/property"
	"immo/internal/domain/shared/events"
	"immo/internal/domain/user"
)

// Ads expire 30 days after publication unless the owner sets a date.
const DefaultLifetime = 30 * 24 * time.Hour

var (
	ErrIDRequired       = errors.New("ad: id is required")
	ErrPropertyRequired = errors.New("ad: property is required")
	ErrOwnerRequired    = errors.New("ad: owner is required")
	ErrTitleRequired    = errors.New("ad: title is required")
	ErrInvalidType      = errors.New("ad: invalid type")
	ErrInvalidPrice     = errors.New("ad: price must be positive")
	ErrInvalidStatus    = errors.New("ad: invalid status")
	ErrNotFound         = errors.New("ad: not found")
)

type ID string

type Type string

const (
	TypeSale   Type = "sale"
	TypeRental Type = "rental"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusExpired   Status = "expired"
	StatusCompleted Status = "completed"
)

// RentalDetails only applies to rental ads.
type RentalDetails struct {
	Duration      string
	DepositAmount int64
	Availability  time.Time
}

type ContactInfo struct {
	UseOwnerInfo bool
	Phone        string
	Email        string
}

type Ad struct {
	ID            ID
	PropertyID    property.ID
	OwnerID       user.ID
	Title         string
	Description   string
	Type          Type
	Price         int64
	Status        Status
	RentalDetails RentalDetails
	ContactInfo   ContactInfo
	Highlighted   bool
	ViewCount     int64
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Ad, error)
	Save(ctx context.Context, ad *Ad) error
	Delete(ctx context.Context, id ID) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
	ActiveByProperty(ctx context.Context, propertyID property.ID, exclude ID) ([]*Ad, error)
	IncrementViews(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID            ID
	PropertyID    property.ID
	OwnerID       user.ID
	Title         string
	Description   string
	Type          Type
	Price         int64
	RentalDetails RentalDetails
	ContactInfo   ContactInfo
	Highlighted   bool
	ExpiresAt     time.Time
	Now           time.Time
}

func New(params CreateParams) (*Ad, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.PropertyID)) == "" {
		return nil, ErrPropertyRequired
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

	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	expiresAt := params.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(DefaultLifetime)
	}

	a := &Ad{
		ID:            params.ID,
		PropertyID:    params.PropertyID,
		OwnerID:       params.OwnerID,
		Title:         title,
		Description:   strings.TrimSpace(params.Description),
		Type:          params.Type,
		Price:         params.Price,
		Status:        StatusActive,
		RentalDetails: params.RentalDetails,
		ContactInfo:   params.ContactInfo,
		Highlighted:   params.Highlighted,
		ExpiresAt:     expiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	a.Record(Created{AdID: a.ID, PropertyID: a.PropertyID, Type: a.Type, At: now})
	return a, nil
}

// Update is the allowed-fields projection for owner edits. Property and
// owner references are immutable for the ad's lifetime.
type Update struct {
	Title         *string
	Description   *string
	Price         *int64
	RentalDetails *RentalDetails
	ContactInfo   *ContactInfo
	Highlighted   *bool
	ExpiresAt     *time.Time
}

func (a *Ad) Apply(update Update, now time.Time) error {
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return ErrTitleRequired
		}
		a.Title = title
	}
	if update.Description != nil {
		a.Description = strings.TrimSpace(*update.Description)
	}
	if update.Price != nil {
		if *update.Price <= 0 {
			return ErrInvalidPrice
		}
		a.Price = *update.Price
	}
	if update.RentalDetails != nil {
		a.RentalDetails = *update.RentalDetails
	}
	if update.ContactInfo != nil {
		a.ContactInfo = *update.ContactInfo
	}
	if update.Highlighted != nil {
		a.Highlighted = *update.Highlighted
	}
	if update.ExpiresAt != nil {
		a.ExpiresAt = update.ExpiresAt.UTC()
	}
	a.touch(now)
	return nil
}

// SetStatus moves the ad status. Completion records an event so the
// property reconciliation can follow.
func (a *Ad) SetStatus(status Status, now time.Time) error {
	switch status {
	case StatusActive, StatusInactive, StatusExpired, StatusCompleted:
	default:
		return ErrInvalidStatus
	}
	if a.Status == status {
		return nil
	}
	previous := a.Status
	a.Status = status
	a.touch(now)
	if status == StatusCompleted {
		a.Record(Completed{AdID: a.ID, PropertyID: a.PropertyID, Type: a.Type, At: a.UpdatedAt})
	} else {
		a.Record(StatusChanged{AdID: a.ID, From: previous, To: status, At: a.UpdatedAt})
	}
	return nil
}

// PropertyStatusOnCompletion is the terminal property status matching
// the ad's type.
func (a *Ad) PropertyStatusOnCompletion() property.Status {
	if a.Type == TypeSale {
		return property.StatusSold
	}
	return property.StatusRented
}

// PropertyStatusOnPublish is the property status an active ad implies
// for an available property.
func (a *Ad) PropertyStatusOnPublish() property.Status {
	if a.Type == TypeSale {
		return property.StatusForSale
	}
	return property.StatusForRent
}

func (a *Ad) Active() bool {
	return a.Status == StatusActive
}

func (a *Ad) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	a.UpdatedAt = now.UTC()
}

func validateType(t Type) error {
	switch t {
	case TypeSale, TypeRental:
		return nil
	default:
		return ErrInvalidType
	}
}
