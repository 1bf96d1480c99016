package bookings

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"immo/internal/app/authz"
	"immo/internal/app/outbox"
	domainad "immo/internal/domain/ad"
	domainbooking "immo/internal/domain/booking"
	domainproperty "immo/internal/domain/property"
	"immo/internal/domain/user"
)

var ErrDependenciesMissing = errors.New("bookings: service dependencies not configured")

// Service runs the visit-booking workflow: availability and consistency
// checks at creation, the status machine, role-conditioned deletion and
// one-time feedback.
type Service struct {
	Bookings   domainbooking.Repository
	Ads        domainad.Repository
	Properties domainproperty.Repository
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

type CreateParams struct {
	AdID       domainad.ID
	PropertyID domainproperty.ID
	ClientID   user.ID
	Date       time.Time
	Slot       domainbooking.TimeSlot
	Message    string
	Now        time.Time
}

// Create validates the request in a fixed fast-fail order: ad exists and
// is active, property exists, ad references the property, date is in the
// future, the client is not the owner, and the slot is free. Nothing is
// written until every check has passed.
func (s *Service) Create(ctx context.Context, params CreateParams) (*domainbooking.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	advert, err := s.Ads.ByID(ctx, params.AdID)
	if err != nil {
		return nil, err
	}
	if !advert.Active() {
		return nil, domainad.ErrNotFound
	}

	prop, err := s.Properties.ByID(ctx, params.PropertyID)
	if err != nil {
		return nil, err
	}

	if advert.PropertyID != prop.ID {
		return nil, domainbooking.ErrAdPropertyMismatch
	}

	if err := params.Slot.Validate(); err != nil {
		return nil, err
	}
	date := dayOf(params.Date)
	if !date.After(now) {
		return nil, domainbooking.ErrDateInPast
	}

	if params.ClientID == prop.OwnerID {
		return nil, domainbooking.ErrOwnBooking
	}

	existing, err := s.Bookings.FindActiveSlot(ctx, prop.ID, date, params.Slot.Start)
	if err != nil && !errors.Is(err, domainbooking.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domainbooking.ErrSlotTaken
	}

	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.ID(uuid.NewString()),
		PropertyID: prop.ID,
		AdID:       advert.ID,
		ClientID:   params.ClientID,
		OwnerID:    prop.OwnerID,
		Date:       params.Date,
		Slot:       params.Slot,
		Message:    params.Message,
		Now:        now,
	})
	if err != nil {
		return nil, err
	}

	// The check above races with concurrent requests for the same slot;
	// the partial unique index on (property, date, slot start) makes the
	// loser fail with ErrSlotTaken instead of double-booking.
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.drainEvents(ctx, b)

	if s.Logger != nil {
		s.Logger.Info("booking requested", "booking_id", b.ID, "property_id", b.PropertyID, "client_id", b.ClientID)
	}
	return b, nil
}

type UpdateStatusParams struct {
	BookingID domainbooking.ID
	Status    string
	Notes     string
	Now       time.Time
}

// UpdateStatus applies a state machine transition on behalf of the
// booking's owner or an admin.
func (s *Service) UpdateStatus(ctx context.Context, actor authz.Actor, params UpdateStatusParams) (*domainbooking.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	b, err := s.Bookings.ByID(ctx, params.BookingID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnership(actor, b.OwnerID); err != nil {
		return nil, err
	}
	target, err := domainbooking.ParseStatus(params.Status)
	if err != nil {
		return nil, err
	}
	if err := b.Transition(target, params.Now); err != nil {
		return nil, err
	}
	b.AppendNotes(params.Notes, params.Now)
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.drainEvents(ctx, b)
	if s.Logger != nil {
		s.Logger.Info("booking status updated", "booking_id", b.ID, "status", b.Status, "actor_id", actor.ID)
	}
	return b, nil
}

// Delete is role-conditioned: clients may withdraw their own pending
// bookings, owners may remove bookings on their records, admins may
// remove anything. The delete is hard.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id domainbooking.ID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return err
	}
	switch actor.Role {
	case user.RoleClient:
		if b.ClientID != actor.ID {
			return authz.ErrForbidden
		}
		if b.Status != domainbooking.StatusPending {
			return domainbooking.ErrNotPending
		}
	case user.RoleOwner:
		if b.OwnerID != actor.ID {
			return authz.ErrForbidden
		}
	case user.RoleAdmin:
	default:
		return authz.ErrForbidden
	}
	return s.Bookings.Delete(ctx, id)
}

type ClientFeedbackParams struct {
	BookingID domainbooking.ID
	Rating    int
	Comment   string
	Now       time.Time
}

// AddClientFeedback stores the client's one-time review of a completed
// visit. Only the booking's client may submit it, admins included.
func (s *Service) AddClientFeedback(ctx context.Context, actor authz.Actor, params ClientFeedbackParams) (*domainbooking.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	b, err := s.Bookings.ByID(ctx, params.BookingID)
	if err != nil {
		return nil, err
	}
	if b.ClientID != actor.ID {
		return nil, authz.ErrForbidden
	}
	if err := b.AddClientFeedback(params.Rating, params.Comment, params.Now); err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

type OwnerFeedbackParams struct {
	BookingID domainbooking.ID
	Comment   string
	Now       time.Time
}

// AddOwnerFeedback stores the owner's one-time note about a completed
// visit, under the same once-only rule.
func (s *Service) AddOwnerFeedback(ctx context.Context, actor authz.Actor, params OwnerFeedbackParams) (*domainbooking.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	b, err := s.Bookings.ByID(ctx, params.BookingID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != actor.ID {
		return nil, authz.ErrForbidden
	}
	if err := b.AddOwnerFeedback(params.Comment, params.Now); err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetByID returns a booking to one of its parties or an admin.
func (s *Service) GetByID(ctx context.Context, actor authz.Actor, id domainbooking.ID) (*domainbooking.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.ClientID != actor.ID && b.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, authz.ErrForbidden
	}
	return b, nil
}

// List returns bookings scoped to the actor: clients see their
// requests, owners see bookings on their records, admins see all.
func (s *Service) List(ctx context.Context, actor authz.Actor, filter domainbooking.ListFilter) (domainbooking.ListResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return domainbooking.ListResult{}, err
	}
	switch actor.Role {
	case user.RoleClient:
		filter.ClientID = actor.ID
		filter.OwnerID = ""
	case user.RoleOwner:
		filter.OwnerID = actor.ID
		filter.ClientID = ""
	case user.RoleAdmin:
	default:
		return domainbooking.ListResult{}, authz.ErrForbidden
	}
	return s.Bookings.List(ctx, filter)
}

// ListByProperty returns every booking for one property, restricted to
// the property's owner or an admin.
func (s *Service) ListByProperty(ctx context.Context, actor authz.Actor, propertyID domainproperty.ID, filter domainbooking.ListFilter) (domainbooking.ListResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return domainbooking.ListResult{}, err
	}
	if err := authz.RequireRole(actor, user.RoleOwner, user.RoleAdmin); err != nil {
		return domainbooking.ListResult{}, err
	}
	prop, err := s.Properties.ByID(ctx, propertyID)
	if err != nil {
		return domainbooking.ListResult{}, err
	}
	if err := authz.RequireOwnership(actor, prop.OwnerID); err != nil {
		return domainbooking.ListResult{}, err
	}
	filter.PropertyID = prop.ID
	filter.ClientID = ""
	filter.OwnerID = ""
	return s.Bookings.List(ctx, filter)
}

func (s *Service) ensureDependencies() error {
	if s.Bookings == nil || s.Ads == nil || s.Properties == nil {
		return ErrDependenciesMissing
	}
	return nil
}

func (s *Service) drainEvents(ctx context.Context, b *domainbooking.Booking) {
	if err := outbox.Drain(ctx, s.Outbox, b); err != nil && s.Logger != nil {
		s.Logger.Warn("booking events not recorded", "booking_id", b.ID, "error", err)
	}
}

func dayOf(date time.Time) time.Time {
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
