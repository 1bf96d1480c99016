package users

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"immo/internal/app/authz"
	domainproperty "immo/internal/domain/property"
	domainuser "immo/internal/domain/user"
)

var ErrDependenciesMissing = errors.New("users: service dependencies not configured")

// Service covers profile reads and updates, favorites, and the
// admin-only account listing.
type Service struct {
	Users      domainuser.Repository
	Properties domainproperty.Repository
	Logger     *slog.Logger
}

func (s *Service) Profile(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	return s.Users.ByID(ctx, id)
}

type UpdateProfileParams struct {
	Update domainuser.ProfileUpdate
	Now    time.Time
}

func (s *Service) UpdateProfile(ctx context.Context, id domainuser.ID, params UpdateProfileParams) (*domainuser.User, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	account, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.ApplyProfile(params.Update, params.Now); err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) AddFavorite(ctx context.Context, id domainuser.ID, propertyID domainproperty.ID, now time.Time) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	if _, err := s.Properties.ByID(ctx, propertyID); err != nil {
		return err
	}
	account, err := s.Users.ByID(ctx, id)
	if err != nil {
		return err
	}
	if err := account.AddFavorite(string(propertyID), now); err != nil {
		return err
	}
	return s.Users.Save(ctx, account)
}

func (s *Service) RemoveFavorite(ctx context.Context, id domainuser.ID, propertyID domainproperty.ID, now time.Time) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	account, err := s.Users.ByID(ctx, id)
	if err != nil {
		return err
	}
	if err := account.RemoveFavorite(string(propertyID), now); err != nil {
		return err
	}
	return s.Users.Save(ctx, account)
}

// Favorites returns the favorite properties that still exist; stale
// references are skipped rather than surfaced as errors.
func (s *Service) Favorites(ctx context.Context, id domainuser.ID) ([]*domainproperty.Property, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	account, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	favorites := make([]*domainproperty.Property, 0, len(account.Favorites))
	for _, propertyID := range account.Favorites {
		prop, err := s.Properties.ByID(ctx, domainproperty.ID(propertyID))
		if err != nil {
			if errors.Is(err, domainproperty.ErrNotFound) {
				continue
			}
			return nil, err
		}
		favorites = append(favorites, prop)
	}
	return favorites, nil
}

// ListAll is restricted to admins.
func (s *Service) ListAll(ctx context.Context, actor authz.Actor) ([]*domainuser.User, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if err := authz.RequireRole(actor, domainuser.RoleAdmin); err != nil {
		return nil, err
	}
	return s.Users.List(ctx)
}

func (s *Service) ensureDependencies() error {
	if s.Users == nil || s.Properties == nil {
		return ErrDependenciesMissing
	}
	return nil
}
