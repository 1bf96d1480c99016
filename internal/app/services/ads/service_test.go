package ads

import (
	"context"
	"errors"
	"testing"
	"time"

	"immo/internal/app/authz"
	domainad "immo/internal/domain/ad"
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

type fixture struct {
	service    *Service
	properties *memory.PropertyRepository
	ads        *memory.AdRepository
	property   *domainproperty.Property
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		properties: memory.NewPropertyRepository(),
		ads:        memory.NewAdRepository(),
	}
	f.service = &Service{
		Ads:        f.ads,
		Properties: f.properties,
		Outbox:     memory.NewOutboxStore(),
	}
	f.property = f.addProperty(t, "p-1", "owner-1")
	return f
}

func (f *fixture) addProperty(t *testing.T, id domainproperty.ID, ownerID user.ID) *domainproperty.Property {
	t.Helper()
	prop, err := domainproperty.New(domainproperty.CreateParams{
		ID:      id,
		OwnerID: ownerID,
		Title:   "Rue Garibaldi 5",
		Type:    domainproperty.TypeApartment,
		Price:   280_000,
		Surface: 64,
		Address: domainproperty.Address{City: "Lyon", ZipCode: "69003"},
		Now:     testNow,
	})
	if err != nil {
		t.Fatalf("property fixture: %v", err)
	}
	if err := f.properties.Save(context.Background(), prop); err != nil {
		t.Fatalf("property fixture: %v", err)
	}
	return prop
}

func saleParams(propertyID domainproperty.ID) CreateParams {
	return CreateParams{
		PropertyID: propertyID,
		Title:      "Apartment for sale",
		Type:       domainad.TypeSale,
		Price:      280_000,
		Now:        testNow,
	}
}

func (f *fixture) propertyStatus(t *testing.T) domainproperty.Status {
	t.Helper()
	prop, err := f.properties.ByID(context.Background(), f.property.ID)
	if err != nil {
		t.Fatalf("property lookup: %v", err)
	}
	return prop.Status
}

func TestCreateMovesPropertyForSale(t *testing.T) {
	f := newFixture(t)

	advert, err := f.service.Create(context.Background(), owner, saleParams("p-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if advert.Status != domainad.StatusActive {
		t.Errorf("new ad should be active, got %s", advert.Status)
	}
	if got := f.propertyStatus(t); got != domainproperty.StatusForSale {
		t.Errorf("property should be for_sale, got %s", got)
	}
}

func TestCreateMovesPropertyForRent(t *testing.T) {
	f := newFixture(t)

	params := saleParams("p-1")
	params.Type = domainad.TypeRental
	params.Price = 900
	params.RentalDetails = domainad.RentalDetails{Duration: "12 months", DepositAmount: 900}
	if _, err := f.service.Create(context.Background(), owner, params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.propertyStatus(t); got != domainproperty.StatusForRent {
		t.Errorf("property should be for_rent, got %s", got)
	}
}

func TestCreateAuthorization(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Create(context.Background(), client, saleParams("p-1")); !errors.Is(err, authz.ErrRoleNotAllowed) {
		t.Errorf("clients must not publish ads, got %v", err)
	}
	if _, err := f.service.Create(context.Background(), stranger, saleParams("p-1")); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("foreign owners must not publish ads, got %v", err)
	}
	if _, err := f.service.Create(context.Background(), admin, saleParams("p-1")); err != nil {
		t.Errorf("admins publish for anyone, got %v", err)
	}
}

func TestCreateKeepsNonAvailableStatus(t *testing.T) {
	f := newFixture(t)
	if err := f.property.Transition(domainproperty.StatusReserved, testNow); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	if err := f.properties.Save(context.Background(), f.property); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	if _, err := f.service.Create(context.Background(), owner, saleParams("p-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.propertyStatus(t); got != domainproperty.StatusReserved {
		t.Errorf("reserved property should stay reserved, got %s", got)
	}
}

func TestCompleteSaleMarksPropertySold(t *testing.T) {
	f := newFixture(t)
	advert, err := f.service.Create(context.Background(), owner, saleParams("p-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.service.UpdateStatus(context.Background(), owner, UpdateStatusParams{
		AdID: advert.ID, Status: domainad.StatusCompleted, Now: testNow,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.Status != domainad.StatusCompleted {
		t.Errorf("ad should be completed, got %s", updated.Status)
	}
	if got := f.propertyStatus(t); got != domainproperty.StatusSold {
		t.Errorf("property should be sold, got %s", got)
	}
}

func TestCompleteRentalMarksPropertyRented(t *testing.T) {
	f := newFixture(t)
	params := saleParams("p-1")
	params.Type = domainad.TypeRental
	params.RentalDetails = domainad.RentalDetails{Duration: "12 months"}
	advert, err := f.service.Create(context.Background(), owner, params)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.service.UpdateStatus(context.Background(), owner, UpdateStatusParams{
		AdID: advert.ID, Status: domainad.StatusCompleted, Now: testNow,
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got := f.propertyStatus(t); got != domainproperty.StatusRented {
		t.Errorf("property should be rented, got %s", got)
	}
}

func TestDeactivateLastActiveRevertsProperty(t *testing.T) {
	f := newFixture(t)
	advert, err := f.service.Create(context.Background(), owner, saleParams("p-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.service.UpdateStatus(context.Background(), owner, UpdateStatusParams{
		AdID: advert.ID, Status: domainad.StatusInactive, Now: testNow,
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if got := f.propertyStatus(t); got != domainproperty.StatusAvailable {
		t.Errorf("property should revert to available, got %s", got)
	}
}

func TestDeactivateWithRemainingActiveAdKeepsProperty(t *testing.T) {
	f := newFixture(t)
	first, err := f.service.Create(context.Background(), owner, saleParams("p-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.service.Create(context.Background(), owner, saleParams("p-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.service.UpdateStatus(context.Background(), owner, UpdateStatusParams{
		AdID: first.ID, Status: domainad.StatusInactive, Now: testNow,
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if got := f.propertyStatus(t); got != domainproperty.StatusForSale {
		t.Errorf("another ad is still active, property should stay for_sale, got %s", got)
	}
}

func TestDeleteLastActiveRevertsProperty(t *testing.T) {
	f := newFixture(t)
	advert, err := f.service.Create(context.Background(), owner, saleParams("p-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.service.Delete(context.Background(), owner, advert.ID, testNow); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.ads.ByID(context.Background(), advert.ID); !errors.Is(err, domainad.ErrNotFound) {
		t.Error("ad should be gone after delete")
	}
	if got := f.propertyStatus(t); got != domainproperty.StatusAvailable {
		t.Errorf("property should revert to available, got %s", got)
	}
}

func TestDeleteForeignAdForbidden(t *testing.T) {
	f := newFixture(t)
	advert, err := f.service.Create(context.Background(), owner, saleParams("p-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.service.Delete(context.Background(), stranger, advert.ID, testNow); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	advert, err := f.service.Create(context.Background(), owner, saleParams("p-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Bright apartment, third floor"
	price := int64(275_000)
	updated, err := f.service.Update(context.Background(), owner, UpdateParams{
		AdID:   advert.ID,
		Update: domainad.Update{Title: &title, Price: &price},
		Now:    testNow,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || updated.Price != price {
		t.Errorf("update not applied: %+v", updated)
	}

	if _, err := f.service.Update(context.Background(), stranger, UpdateParams{
		AdID:   advert.ID,
		Update: domainad.Update{Title: &title},
		Now:    testNow,
	}); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("foreign owner must not update, got %v", err)
	}
}

func TestGetByIDCountsViews(t *testing.T) {
	f := newFixture(t)
	advert, err := f.service.Create(context.Background(), owner, saleParams("p-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := f.service.GetByID(context.Background(), advert.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ViewCount != 1 {
		t.Errorf("first read should count one view, got %d", got.ViewCount)
	}
	got, err = f.service.GetByID(context.Background(), advert.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ViewCount != 2 {
		t.Errorf("second read should count two views, got %d", got.ViewCount)
	}
}

func TestSearchWithPropertyFilter(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.Create(context.Background(), owner, saleParams("p-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	other, err := domainproperty.New(domainproperty.CreateParams{
		ID:      "p-2",
		OwnerID: "owner-1",
		Title:   "House in Lille",
		Type:    domainproperty.TypeHouse,
		Price:   350_000,
		Surface: 120,
		Address: domainproperty.Address{City: "Lille", ZipCode: "59000"},
		Now:     testNow,
	})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	if err := f.properties.Save(context.Background(), other); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	if _, err := f.service.Create(context.Background(), owner, saleParams("p-2")); err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := f.service.Search(context.Background(), domainad.SearchParams{}, domainad.PropertyFilter{City: "lyon"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Total != 1 || len(result.Items) != 1 {
		t.Fatalf("expected one Lyon ad, got %d", result.Total)
	}
	if result.Items[0].PropertyID != "p-1" {
		t.Errorf("wrong ad matched: %s", result.Items[0].PropertyID)
	}

	// No property matches the filter: the id membership is empty, not absent.
	result, err = f.service.Search(context.Background(), domainad.SearchParams{}, domainad.PropertyFilter{City: "paris"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("expected no ads, got %d", result.Total)
	}
}

func TestListByProperty(t *testing.T) {
	f := newFixture(t)
	active, err := f.service.Create(context.Background(), owner, saleParams("p-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	inactive, err := f.service.Create(context.Background(), owner, saleParams("p-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.service.UpdateStatus(context.Background(), owner, UpdateStatusParams{
		AdID: inactive.ID, Status: domainad.StatusInactive, Now: testNow,
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	got, err := f.service.ListByProperty(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != active.ID {
		t.Fatalf("expected only the active ad, got %d", len(got))
	}
}
