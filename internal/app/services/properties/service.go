package properties

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"immo/internal/app/authz"
	domainproperty "immo/internal/domain/property"
	"immo/internal/domain/user"
)

var ErrDependenciesMissing = errors.New("properties: service dependencies not configured")

// ImageUploader stores a binary and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

type Service struct {
	Properties domainproperty.Repository
	Uploader   ImageUploader
	Logger     *slog.Logger
}

type CreateParams struct {
	Title       string
	Description string
	Type        domainproperty.Type
	Price       int64
	Surface     float64
	Rooms       int
	Address     domainproperty.Address
	Features    []string
	Images      []string
	Now         time.Time
}

// Create registers a property owned by the actor. Only owners and
// admins may list properties.
func (s *Service) Create(ctx context.Context, actor authz.Actor, params CreateParams) (*domainproperty.Property, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if err := authz.RequireRole(actor, user.RoleOwner, user.RoleAdmin); err != nil {
		return nil, err
	}
	prop, err := domainproperty.New(domainproperty.CreateParams{
		ID:          domainproperty.ID(uuid.NewString()),
		OwnerID:     actor.ID,
		Title:       params.Title,
		Description: params.Description,
		Type:        params.Type,
		Price:       params.Price,
		Surface:     params.Surface,
		Rooms:       params.Rooms,
		Address:     params.Address,
		Features:    params.Features,
		Images:      params.Images,
		Now:         params.Now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Properties.Save(ctx, prop); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("property registered", "property_id", prop.ID, "owner_id", prop.OwnerID, "city", prop.Address.City)
	}
	return prop, nil
}

type UpdateParams struct {
	PropertyID domainproperty.ID
	Update     domainproperty.Update
	Now        time.Time
}

// Update applies the whitelist projection; owner and status are not
// part of it.
func (s *Service) Update(ctx context.Context, actor authz.Actor, params UpdateParams) (*domainproperty.Property, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	prop, err := s.Properties.ByID(ctx, params.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnership(actor, prop.OwnerID); err != nil {
		return nil, err
	}
	if err := prop.Apply(params.Update, params.Now); err != nil {
		return nil, err
	}
	if err := s.Properties.Save(ctx, prop); err != nil {
		return nil, err
	}
	return prop, nil
}

func (s *Service) Delete(ctx context.Context, actor authz.Actor, id domainproperty.ID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	prop, err := s.Properties.ByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnership(actor, prop.OwnerID); err != nil {
		return err
	}
	return s.Properties.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	return s.Properties.ByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, params domainproperty.SearchParams) (domainproperty.SearchResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return domainproperty.SearchResult{}, err
	}
	return s.Properties.Search(ctx, params)
}

func (s *Service) Images(ctx context.Context, id domainproperty.ID) ([]string, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	prop, err := s.Properties.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return prop.Images, nil
}

type UploadImageParams struct {
	PropertyID  domainproperty.ID
	FileName    string
	ContentType string
	Reader      io.Reader
	Now         time.Time
}

// UploadImage stores the binary through the uploader and appends its
// public URL to the property.
func (s *Service) UploadImage(ctx context.Context, actor authz.Actor, params UploadImageParams) (string, error) {
	if err := s.ensureDependencies(); err != nil {
		return "", err
	}
	if s.Uploader == nil {
		return "", errors.New("properties: image uploads not configured")
	}
	prop, err := s.Properties.ByID(ctx, params.PropertyID)
	if err != nil {
		return "", err
	}
	if err := authz.RequireOwnership(actor, prop.OwnerID); err != nil {
		return "", err
	}
	key := fmt.Sprintf("properties/%s/%s-%s", prop.ID, uuid.NewString(), params.FileName)
	url, err := s.Uploader.Upload(ctx, key, params.Reader, params.ContentType)
	if err != nil {
		return "", err
	}
	prop.AddImages([]string{url}, params.Now)
	if err := s.Properties.Save(ctx, prop); err != nil {
		return "", err
	}
	return url, nil
}

type AddImagesParams struct {
	PropertyID domainproperty.ID
	URLs       []string
	Now        time.Time
}

// AddImages appends already-hosted image URLs.
func (s *Service) AddImages(ctx context.Context, actor authz.Actor, params AddImagesParams) ([]string, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	prop, err := s.Properties.ByID(ctx, params.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnership(actor, prop.OwnerID); err != nil {
		return nil, err
	}
	prop.AddImages(params.URLs, params.Now)
	if err := s.Properties.Save(ctx, prop); err != nil {
		return nil, err
	}
	return prop.Images, nil
}

func (s *Service) RemoveImage(ctx context.Context, actor authz.Actor, id domainproperty.ID, url string, now time.Time) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	prop, err := s.Properties.ByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnership(actor, prop.OwnerID); err != nil {
		return err
	}
	if err := prop.RemoveImage(url, now); err != nil {
		return err
	}
	return s.Properties.Save(ctx, prop)
}

func (s *Service) ensureDependencies() error {
	if s.Properties == nil {
		return ErrDependenciesMissing
	}
	return nil
}
