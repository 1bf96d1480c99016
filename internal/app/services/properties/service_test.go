package properties

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"immo/internal/app/authz"
	domainproperty "immo/internal/domain/property"
	"immo/internal/domain/user"
	"immo/internal/infra/storage/memory"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var (
	owner    = authz.Actor{ID: "owner-1", Role: user.RoleOwner}
	stranger = authz.Actor{ID: "owner-2", Role: user.RoleOwner}
	admin    = authz.Actor{ID: "admin-1", Role: user.RoleAdmin}
	client   = authz.Actor{ID: "client-1", Role: user.RoleClient}
)

type stubUploader struct {
	uploaded []string
	err      error
}

func (u *stubUploader) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.uploaded = append(u.uploaded, key)
	return "https://cdn.example.com/" + key, nil
}

func newService() (*Service, *stubUploader) {
	uploader := &stubUploader{}
	return &Service{
		Properties: memory.NewPropertyRepository(),
		Uploader:   uploader,
	}, uploader
}

func validCreateParams() CreateParams {
	return CreateParams{
		Title:   "Rue Garibaldi 5",
		Type:    domainproperty.TypeApartment,
		Price:   280_000,
		Surface: 64,
		Rooms:   3,
		Address: domainproperty.Address{City: "Lyon", ZipCode: "69003"},
		Now:     testNow,
	}
}

func TestCreate(t *testing.T) {
	s, _ := newService()

	prop, err := s.Create(context.Background(), owner, validCreateParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prop.OwnerID != owner.ID {
		t.Errorf("owner should be the actor, got %s", prop.OwnerID)
	}
	if prop.Status != domainproperty.StatusAvailable {
		t.Errorf("new property should be available, got %s", prop.Status)
	}

	if _, err := s.Create(context.Background(), client, validCreateParams()); !errors.Is(err, authz.ErrRoleNotAllowed) {
		t.Errorf("clients must not register properties, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	s, _ := newService()
	prop, err := s.Create(context.Background(), owner, validCreateParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Bright apartment near Part-Dieu"
	price := int64(275_000)
	updated, err := s.Update(context.Background(), owner, UpdateParams{
		PropertyID: prop.ID,
		Update:     domainproperty.Update{Title: &title, Price: &price},
		Now:        testNow,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || updated.Price != price {
		t.Errorf("update not applied: %+v", updated)
	}

	if _, err := s.Update(context.Background(), stranger, UpdateParams{
		PropertyID: prop.ID,
		Update:     domainproperty.Update{Title: &title},
		Now:        testNow,
	}); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("foreign owner must not update, got %v", err)
	}

	if _, err := s.Update(context.Background(), admin, UpdateParams{
		PropertyID: prop.ID,
		Update:     domainproperty.Update{Price: &price},
		Now:        testNow,
	}); err != nil {
		t.Errorf("admins update anything, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s, _ := newService()
	prop, err := s.Create(context.Background(), owner, validCreateParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Delete(context.Background(), stranger, prop.ID); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("foreign owner must not delete, got %v", err)
	}
	if err := s.Delete(context.Background(), owner, prop.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetByID(context.Background(), prop.ID); !errors.Is(err, domainproperty.ErrNotFound) {
		t.Errorf("property should be gone, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	s, _ := newService()
	if _, err := s.Create(context.Background(), owner, validCreateParams()); err != nil {
		t.Fatalf("create: %v", err)
	}
	house := validCreateParams()
	house.Title = "House in Lille"
	house.Type = domainproperty.TypeHouse
	house.Price = 350_000
	house.Address = domainproperty.Address{City: "Lille", ZipCode: "59000"}
	if _, err := s.Create(context.Background(), owner, house); err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := s.Search(context.Background(), domainproperty.SearchParams{City: "Lyon"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Total != 1 || len(result.Items) != 1 {
		t.Fatalf("expected one Lyon property, got %d", result.Total)
	}
	if result.Items[0].Address.City != "Lyon" {
		t.Errorf("wrong property matched: %s", result.Items[0].Address.City)
	}

	result, err = s.Search(context.Background(), domainproperty.SearchParams{MaxPrice: 300_000})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("price ceiling should match one property, got %d", result.Total)
	}
}

func TestUploadImage(t *testing.T) {
	s, uploader := newService()
	prop, err := s.Create(context.Background(), owner, validCreateParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	url, err := s.UploadImage(context.Background(), owner, UploadImageParams{
		PropertyID:  prop.ID,
		FileName:    "front.jpg",
		ContentType: "image/jpeg",
		Reader:      strings.NewReader("fake image bytes"),
		Now:         testNow,
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(url, "https://cdn.example.com/properties/") {
		t.Errorf("unexpected url: %s", url)
	}
	if len(uploader.uploaded) != 1 {
		t.Fatalf("expected one upload, got %d", len(uploader.uploaded))
	}

	images, err := s.Images(context.Background(), prop.ID)
	if err != nil {
		t.Fatalf("images: %v", err)
	}
	if len(images) != 1 || images[0] != url {
		t.Errorf("url should be attached to the property: %v", images)
	}

	if _, err := s.UploadImage(context.Background(), stranger, UploadImageParams{
		PropertyID: prop.ID,
		FileName:   "back.jpg",
		Reader:     strings.NewReader("x"),
		Now:        testNow,
	}); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("foreign owner must not upload, got %v", err)
	}
}

func TestAddAndRemoveImages(t *testing.T) {
	s, _ := newService()
	prop, err := s.Create(context.Background(), owner, validCreateParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	images, err := s.AddImages(context.Background(), owner, AddImagesParams{
		PropertyID: prop.ID,
		URLs:       []string{"https://img.example.com/a.jpg", "  ", "https://img.example.com/b.jpg"},
		Now:        testNow,
	})
	if err != nil {
		t.Fatalf("add images: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("blank urls should be skipped, got %v", images)
	}

	if err := s.RemoveImage(context.Background(), owner, prop.ID, "https://img.example.com/a.jpg", testNow); err != nil {
		t.Fatalf("remove image: %v", err)
	}
	if err := s.RemoveImage(context.Background(), owner, prop.ID, "https://img.example.com/a.jpg", testNow); !errors.Is(err, domainproperty.ErrImageNotFound) {
		t.Errorf("removing twice should fail, got %v", err)
	}

	images, err = s.Images(context.Background(), prop.ID)
	if err != nil {
		t.Fatalf("images: %v", err)
	}
	if len(images) != 1 || images[0] != "https://img.example.com/b.jpg" {
		t.Errorf("unexpected images after removal: %v", images)
	}
}
