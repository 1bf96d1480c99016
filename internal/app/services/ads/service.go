package ads

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"immo/internal/app/authz"
	"immo/internal/app/outbox"
	domainad "immo/internal/domain/ad"
	domainproperty "immo/internal/domain/property"
	"immo/internal/domain/shared/events"
	"immo/internal/domain/user"
)

var ErrDependenciesMissing = errors.New("ads: service dependencies not configured")

// Service owns ad CRUD plus the property status reconciliation: the
// property's status is kept consistent with its ads inside the request
// that mutates the ad.
type Service struct {
	Ads        domainad.Repository
	Properties domainproperty.Repository
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

type CreateParams struct {
	PropertyID    domainproperty.ID
	Title         string
	Description   string
	Type          domainad.Type
	Price         int64
	RentalDetails domainad.RentalDetails
	ContactInfo   domainad.ContactInfo
	Highlighted   bool
	ExpiresAt     time.Time
	Now           time.Time
}

// Create publishes an ad for a property the actor owns (or any property
// for admins). An available property moves to for_sale/for_rent.
func (s *Service) Create(ctx context.Context, actor authz.Actor, params CreateParams) (*domainad.Ad, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if err := authz.RequireRole(actor, user.RoleOwner, user.RoleAdmin); err != nil {
		return nil, err
	}
	prop, err := s.Properties.ByID(ctx, params.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnership(actor, prop.OwnerID); err != nil {
		return nil, err
	}

	advert, err := domainad.New(domainad.CreateParams{
		ID:            domainad.ID(uuid.NewString()),
		PropertyID:    prop.ID,
		OwnerID:       prop.OwnerID,
		Title:         params.Title,
		Description:   params.Description,
		Type:          params.Type,
		Price:         params.Price,
		RentalDetails: params.RentalDetails,
		ContactInfo:   params.ContactInfo,
		Highlighted:   params.Highlighted,
		ExpiresAt:     params.ExpiresAt,
		Now:           params.Now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Ads.Save(ctx, advert); err != nil {
		return nil, err
	}
	s.drainAdEvents(ctx, advert)

	if prop.Status == domainproperty.StatusAvailable {
		if err := s.transitionProperty(ctx, prop, advert.PropertyStatusOnPublish(), params.Now); err != nil {
			return nil, err
		}
	}

	if s.Logger != nil {
		s.Logger.Info("ad published", "ad_id", advert.ID, "property_id", advert.PropertyID, "type", advert.Type)
	}
	return advert, nil
}

type UpdateParams struct {
	AdID   domainad.ID
	Update domainad.Update
	Now    time.Time
}

// Update applies the allowed-fields projection; property and owner
// references never change.
func (s *Service) Update(ctx context.Context, actor authz.Actor, params UpdateParams) (*domainad.Ad, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	advert, err := s.Ads.ByID(ctx, params.AdID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnership(actor, advert.OwnerID); err != nil {
		return nil, err
	}
	if err := advert.Apply(params.Update, params.Now); err != nil {
		return nil, err
	}
	if err := s.Ads.Save(ctx, advert); err != nil {
		return nil, err
	}
	return advert, nil
}

type UpdateStatusParams struct {
	AdID   domainad.ID
	Status domainad.Status
	Now    time.Time
}

// UpdateStatus moves the ad status and reconciles the property:
// completion turns the property sold/rented by ad type; leaving active
// with no other active ad reverts the property to available.
func (s *Service) UpdateStatus(ctx context.Context, actor authz.Actor, params UpdateStatusParams) (*domainad.Ad, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	advert, err := s.Ads.ByID(ctx, params.AdID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnership(actor, advert.OwnerID); err != nil {
		return nil, err
	}
	wasActive := advert.Active()
	if err := advert.SetStatus(params.Status, params.Now); err != nil {
		return nil, err
	}
	if err := s.Ads.Save(ctx, advert); err != nil {
		return nil, err
	}
	s.drainAdEvents(ctx, advert)

	prop, err := s.Properties.ByID(ctx, advert.PropertyID)
	if err != nil {
		return nil, err
	}
	switch {
	case params.Status == domainad.StatusCompleted:
		if err := s.transitionProperty(ctx, prop, advert.PropertyStatusOnCompletion(), params.Now); err != nil {
			return nil, err
		}
	case wasActive && !advert.Active():
		if err := s.revertIfLastActive(ctx, prop, advert.ID, params.Now); err != nil {
			return nil, err
		}
	}
	return advert, nil
}

// Delete removes the ad; when it was the property's last active ad the
// property reverts to available.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id domainad.ID, now time.Time) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	advert, err := s.Ads.ByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnership(actor, advert.OwnerID); err != nil {
		return err
	}
	if err := s.Ads.Delete(ctx, id); err != nil {
		return err
	}
	deleted := domainad.Deleted{AdID: advert.ID, PropertyID: advert.PropertyID, At: timeOrNow(now)}
	if err := outbox.RecordDomainEvents(ctx, s.Outbox, nil, []events.DomainEvent{deleted}); err != nil && s.Logger != nil {
		s.Logger.Warn("ad events not recorded", "ad_id", advert.ID, "error", err)
	}

	prop, err := s.Properties.ByID(ctx, advert.PropertyID)
	if err != nil {
		if errors.Is(err, domainproperty.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.revertIfLastActive(ctx, prop, advert.ID, now)
}

// GetByID loads an ad and bumps its view counter.
func (s *Service) GetByID(ctx context.Context, id domainad.ID) (*domainad.Ad, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	advert, err := s.Ads.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Ads.IncrementViews(ctx, id); err != nil && s.Logger != nil {
		s.Logger.Warn("view count not incremented", "ad_id", id, "error", err)
	}
	advert.ViewCount++
	return advert, nil
}

// Search resolves property-level filters to identifiers first, then
// intersects them into the ad query.
func (s *Service) Search(ctx context.Context, params domainad.SearchParams, propFilter domainad.PropertyFilter) (domainad.SearchResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return domainad.SearchResult{}, err
	}
	params = params.Normalized()
	if !propFilter.Empty() {
		matches, err := s.Properties.Search(ctx, domainproperty.SearchParams{
			City:       propFilter.City,
			Type:       propFilter.PropertyType,
			MinSurface: propFilter.MinSurface,
			MaxSurface: propFilter.MaxSurface,
			Page:       1,
			Limit:      maxPropertyFanout,
		})
		if err != nil {
			return domainad.SearchResult{}, err
		}
		ids := make([]domainproperty.ID, 0, len(matches.Items))
		for _, prop := range matches.Items {
			ids = append(ids, prop.ID)
		}
		params.PropertyIDs = ids
	}
	return s.Ads.Search(ctx, params)
}

// ListByProperty returns the active ads referencing one property.
func (s *Service) ListByProperty(ctx context.Context, propertyID domainproperty.ID) ([]*domainad.Ad, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	return s.Ads.ActiveByProperty(ctx, propertyID, "")
}

// maxPropertyFanout caps the id set fed into the ad query membership filter.
const maxPropertyFanout = 100

func (s *Service) revertIfLastActive(ctx context.Context, prop *domainproperty.Property, exclude domainad.ID, now time.Time) error {
	remaining, err := s.Ads.ActiveByProperty(ctx, prop.ID, exclude)
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return nil
	}
	return s.transitionProperty(ctx, prop, domainproperty.StatusAvailable, now)
}

func (s *Service) transitionProperty(ctx context.Context, prop *domainproperty.Property, status domainproperty.Status, now time.Time) error {
	if err := prop.Transition(status, now); err != nil {
		return err
	}
	if err := s.Properties.Save(ctx, prop); err != nil {
		return err
	}
	if err := outbox.Drain(ctx, s.Outbox, prop); err != nil && s.Logger != nil {
		s.Logger.Warn("property events not recorded", "property_id", prop.ID, "error", err)
	}
	return nil
}

func (s *Service) drainAdEvents(ctx context.Context, advert *domainad.Ad) {
	if err := outbox.Drain(ctx, s.Outbox, advert); err != nil && s.Logger != nil {
		s.Logger.Warn("ad events not recorded", "ad_id", advert.ID, "error", err)
	}
}

func (s *Service) ensureDependencies() error {
	if s.Ads == nil || s.Properties == nil {
		return ErrDependenciesMissing
	}
	return nil
}

func timeOrNow(now time.Time) time.Time {
	if now.IsZero() {
		return time.Now().UTC()
	}
	return now.UTC()
}
