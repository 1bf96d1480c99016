package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domainad "immo/internal/domain/ad"
	domainproperty "immo/internal/domain/property"
	"immo/internal/domain/user"
)

func newTestAd(t *testing.T, id domainad.ID, propertyID domainproperty.ID, highlighted bool, createdAt time.Time) *domainad.Ad {
	t.Helper()
	advert, err := domainad.New(domainad.CreateParams{
		ID:          id,
		PropertyID:  propertyID,
		OwnerID:     user.ID("owner-1"),
		Title:       "Ad " + string(id),
		Type:        domainad.TypeSale,
		Price:       280_000,
		Highlighted: highlighted,
		Now:         createdAt,
	})
	if err != nil {
		t.Fatalf("ad fixture: %v", err)
	}
	return advert
}

func TestAdRepositorySearchOrder(t *testing.T) {
	repo := NewAdRepository()
	fixtures := []*domainad.Ad{
		newTestAd(t, "a-1", "p-1", false, testNow),
		newTestAd(t, "a-2", "p-1", true, testNow.Add(time.Minute)),
		newTestAd(t, "a-3", "p-1", false, testNow.Add(2*time.Minute)),
	}
	for _, advert := range fixtures {
		if err := repo.Save(context.Background(), advert); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	result, err := repo.Search(context.Background(), domainad.SearchParams{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Total != 3 {
		t.Fatalf("expected 3 ads, got %d", result.Total)
	}
	// Highlighted first, then newest.
	want := []domainad.ID{"a-2", "a-3", "a-1"}
	for i, id := range want {
		if result.Items[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, result.Items[i].ID, id)
		}
	}
}

func TestAdRepositorySearchExcludesInactiveByDefault(t *testing.T) {
	repo := NewAdRepository()
	active := newTestAd(t, "a-1", "p-1", false, testNow)
	inactive := newTestAd(t, "a-2", "p-1", false, testNow)
	if err := inactive.SetStatus(domainad.StatusInactive, testNow); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	for _, advert := range []*domainad.Ad{active, inactive} {
		if err := repo.Save(context.Background(), advert); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	result, err := repo.Search(context.Background(), domainad.SearchParams{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Total != 1 || result.Items[0].ID != "a-1" {
		t.Errorf("default search should only see active ads, got %+v", result.Items)
	}

	result, err = repo.Search(context.Background(), domainad.SearchParams{Status: domainad.StatusInactive})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Total != 1 || result.Items[0].ID != "a-2" {
		t.Errorf("explicit status filter should see inactive ads, got %+v", result.Items)
	}
}

func TestAdRepositoryActiveByProperty(t *testing.T) {
	repo := NewAdRepository()
	fixtures := []*domainad.Ad{
		newTestAd(t, "a-1", "p-1", false, testNow),
		newTestAd(t, "a-2", "p-1", false, testNow.Add(time.Minute)),
		newTestAd(t, "a-3", "p-2", false, testNow),
	}
	for _, advert := range fixtures {
		if err := repo.Save(context.Background(), advert); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := repo.ActiveByProperty(context.Background(), "p-1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a-2" || got[1].ID != "a-1" {
		t.Fatalf("unexpected ads: %+v", got)
	}

	got, err = repo.ActiveByProperty(context.Background(), "p-1", "a-2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a-1" {
		t.Errorf("exclusion should drop a-2, got %+v", got)
	}
}

func TestAdRepositoryIncrementViews(t *testing.T) {
	repo := NewAdRepository()
	if err := repo.Save(context.Background(), newTestAd(t, "a-1", "p-1", false, testNow)); err != nil {
		t.Fatalf("save: %v", err)
	}

	for range 3 {
		if err := repo.IncrementViews(context.Background(), "a-1"); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	got, err := repo.ByID(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ViewCount != 3 {
		t.Errorf("view count = %d, want 3", got.ViewCount)
	}

	if err := repo.IncrementViews(context.Background(), "missing"); !errors.Is(err, domainad.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
